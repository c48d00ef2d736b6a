package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/walldriyan/pos11v-sub000/internal/domain/billing"
	"github.com/walldriyan/pos11v-sub000/internal/domain/catalog"
	"github.com/walldriyan/pos11v-sub000/internal/domain/promotion"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// ReturnService applies and undoes sale returns. Both operations rebuild
// the adjusted bill from the pristine original and the surviving return
// log, so repeated apply/undo cycles always converge to the same state.
type ReturnService struct {
	tx            TxManager
	sales         billing.SaleRecordRepository
	installments  billing.InstallmentRepository
	products      catalog.ProductRepository
	batches       catalog.BatchRepository
	campaigns     promotion.CampaignRepository
	globalTaxRate decimal.Decimal
	logger        *zap.Logger
}

func NewReturnService(
	tx TxManager,
	sales billing.SaleRecordRepository,
	installments billing.InstallmentRepository,
	products catalog.ProductRepository,
	batches catalog.BatchRepository,
	campaigns promotion.CampaignRepository,
	globalTaxRate decimal.Decimal,
	logger *zap.Logger,
) *ReturnService {
	return &ReturnService{
		tx:            tx,
		sales:         sales,
		installments:  installments,
		products:      products,
		batches:       batches,
		campaigns:     campaigns,
		globalTaxRate: globalTaxRate,
		logger:        logger,
	}
}

// ProcessReturn takes back quantities from the currently active bill state,
// restores stock, appends to the return log, rebuilds the adjusted record
// and writes an immutable return transaction record. The pristine original
// is read but never modified.
func (s *ReturnService) ProcessReturn(ctx context.Context, scope shared.TenantScope, req ProcessReturnRequest, userID uuid.UUID) (*ProcessReturnResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Return must name at least one item")
	}
	for _, line := range req.Items {
		if !line.Quantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Returned quantity must be positive")
		}
	}

	var resp *ProcessReturnResponse
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		pristine, err := s.sales.FindByID(ctx, scope, req.PristineID)
		if err != nil {
			return err
		}
		if !pristine.IsPristine() {
			return shared.NewDomainError("INVALID_STATE", "Returns must reference the pristine original sale record")
		}

		active, err := s.resolveActive(ctx, scope, pristine, req.ActiveID)
		if err != nil {
			return err
		}

		returnTransactionID := uuid.New()
		entries := billing.ReturnedItemList{}
		for _, line := range req.Items {
			item := active.GetItem(line.ProductID, line.BatchID)
			if item == nil {
				return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %s is not on the active bill", line.ProductID))
			}
			if line.Quantity.GreaterThan(item.Quantity) {
				return shared.NewDomainError("INVALID_INPUT",
					fmt.Sprintf("Cannot return %s of %s; only %s remain on the bill",
						line.Quantity, item.ProductName, item.Quantity))
			}
			entry, err := billing.NewReturnedItemDetail(*item, line.Quantity, returnTransactionID, userID)
			if err != nil {
				return err
			}
			entries = append(entries, *entry)
		}

		products, err := s.loadProducts(ctx, scope, pristine)
		if err != nil {
			return err
		}

		for idx := range entries {
			if err := s.restoreStock(ctx, &entries[idx], products); err != nil {
				return err
			}
		}

		fullLog := make(billing.ReturnedItemList, 0, len(active.ReturnedItemsLog)+len(entries))
		fullLog = append(fullLog, active.ReturnedItemsLog...)
		fullLog = append(fullLog, entries...)

		campaign, err := s.campaignFor(ctx, scope, pristine)
		if err != nil {
			return err
		}

		state, err := billing.RebuildAdjusted(pristine, fullLog, campaign, products, s.globalTaxRate)
		if err != nil {
			return err
		}

		var adjusted *billing.SaleRecord
		firstReturn := active.ID == pristine.ID
		if firstReturn {
			adjusted = billing.NewAdjustedRecord(pristine, state, fullLog)
			adjusted.SetCreatedBy(userID)
		} else {
			active.ApplyAdjustedState(state, fullLog)
			adjusted = active
		}
		if err := s.recomputeCredit(ctx, pristine, adjusted); err != nil {
			return err
		}
		if firstReturn {
			if err := s.sales.Create(ctx, adjusted); err != nil {
				return err
			}
		} else if err := s.sales.Save(ctx, adjusted); err != nil {
			return err
		}

		returnRecord := billing.NewReturnTransactionRecord(pristine, entries, returnTransactionID)
		returnRecord.SetCreatedBy(userID)
		if err := s.sales.Create(ctx, returnRecord); err != nil {
			return err
		}

		resp = &ProcessReturnResponse{
			ReturnTransactionID: returnTransactionID,
			AdjustedSaleID:      adjusted.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("return processed",
		zap.String("return_transaction_id", resp.ReturnTransactionID.String()),
		zap.String("adjusted_sale_id", resp.AdjustedSaleID.String()))
	return resp, nil
}

// UndoReturn marks one return log entry undone, deducts the restored stock
// back out and rebuilds the adjusted state from the surviving entries.
// When no active entries remain the adjusted record is removed and the
// pristine original stands alone again.
func (s *ReturnService) UndoReturn(ctx context.Context, scope shared.TenantScope, masterID, entryID, userID uuid.UUID) (*SaleRecordResponse, error) {
	var result *billing.SaleRecord
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		master, err := s.sales.FindByID(ctx, scope, masterID)
		if err != nil {
			return err
		}
		if master.RecordType != billing.RecordTypeSale {
			return shared.NewDomainError("INVALID_STATE", "Undo must reference the active sale record, not a return transaction")
		}

		entry := master.ReturnedItemsLog.FindByID(entryID)
		if entry == nil {
			return shared.NewDomainError("NOT_FOUND", "Return entry not found on this record")
		}
		if err := entry.MarkUndone(userID); err != nil {
			return err
		}

		pristine := master
		if master.OriginalSaleRecordID != nil {
			pristine, err = s.sales.FindByID(ctx, scope, *master.OriginalSaleRecordID)
			if err != nil {
				return err
			}
		}

		products, err := s.loadProducts(ctx, scope, pristine)
		if err != nil {
			return err
		}

		s.deductRestoredStock(ctx, entry, products)

		if !master.HasActiveReturns() {
			if master.ID != pristine.ID {
				if err := s.sales.Delete(ctx, master.ID); err != nil {
					return err
				}
			} else {
				if err := master.ResetToPristine(); err != nil {
					return err
				}
				if err := s.sales.Save(ctx, master); err != nil {
					return err
				}
			}
			if err := s.recomputeCredit(ctx, pristine, pristine); err != nil {
				return err
			}
			if pristine.IsCredit() {
				if err := s.sales.Save(ctx, pristine); err != nil {
					return err
				}
			}
			result = pristine
			return nil
		}

		campaign, err := s.campaignFor(ctx, scope, pristine)
		if err != nil {
			return err
		}
		state, err := billing.RebuildAdjusted(pristine, master.ReturnedItemsLog, campaign, products, s.globalTaxRate)
		if err != nil {
			return err
		}
		master.ApplyAdjustedState(state, master.ReturnedItemsLog)
		if err := s.recomputeCredit(ctx, pristine, master); err != nil {
			return err
		}
		if err := s.sales.Save(ctx, master); err != nil {
			return err
		}
		result = master
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("return undone",
		zap.String("entry_id", entryID.String()),
		zap.String("sale_id", result.ID.String()))

	// Installments always hang off the pristine original
	ledgerID := result.ID
	if result.OriginalSaleRecordID != nil {
		ledgerID = *result.OriginalSaleRecordID
	}
	installments, err := s.installments.FindBySaleRecord(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	resp := ToSaleRecordResponse(result, installments)
	return &resp, nil
}

// resolveActive returns the record returns operate against: the caller's
// explicit choice, the existing adjusted-active record, or the pristine
// original when no return has happened yet.
func (s *ReturnService) resolveActive(ctx context.Context, scope shared.TenantScope, pristine *billing.SaleRecord, activeID *uuid.UUID) (*billing.SaleRecord, error) {
	if activeID != nil && *activeID != pristine.ID {
		active, err := s.sales.FindByID(ctx, scope, *activeID)
		if err != nil {
			return nil, err
		}
		if !active.IsAdjustedActive() || active.OriginalSaleRecordID == nil || *active.OriginalSaleRecordID != pristine.ID {
			return nil, shared.NewDomainError("INVALID_STATE", "Active record does not belong to this sale")
		}
		return active, nil
	}
	active, err := s.sales.FindAdjustedActiveFor(ctx, scope, pristine.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return pristine, nil
		}
		return nil, err
	}
	return active, nil
}

// restoreStock puts a returned quantity back into the original batch, or
// into the product's synthetic returned-stock batch when the original
// batch no longer exists. Service products carry no stock.
func (s *ReturnService) restoreStock(ctx context.Context, entry *billing.ReturnedItemDetail, products map[uuid.UUID]*catalog.Product) error {
	product, ok := products[entry.ProductID]
	if ok && product.IsService {
		return nil
	}

	if entry.OriginalBatchID != nil {
		batch, err := s.batches.FindByIDForUpdate(ctx, *entry.OriginalBatchID)
		if err == nil {
			if err := batch.Restore(entry.ReturnedQuantity); err != nil {
				return err
			}
			return s.batches.Save(ctx, batch)
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
	}

	batch, err := s.batches.FindReturnedStockBatch(ctx, entry.ProductID)
	if errors.Is(err, shared.ErrNotFound) {
		sellingPrice := entry.RefundAmountPerUnit
		if ok {
			sellingPrice = product.SellingPrice
		}
		batch = catalog.NewReturnedStockBatch(entry.ProductID, sellingPrice)
		if err := batch.Restore(entry.ReturnedQuantity); err != nil {
			return err
		}
		return s.batches.Create(ctx, batch)
	}
	if err != nil {
		return err
	}
	if err := batch.Restore(entry.ReturnedQuantity); err != nil {
		return err
	}
	return s.batches.Save(ctx, batch)
}

// deductRestoredStock reverses a return's stock restoration on undo. The
// goods may have been sold on in the meantime, so a missing batch or
// insufficient quantity is logged and tolerated rather than blocking the
// financial correction.
func (s *ReturnService) deductRestoredStock(ctx context.Context, entry *billing.ReturnedItemDetail, products map[uuid.UUID]*catalog.Product) {
	if product, ok := products[entry.ProductID]; ok && product.IsService {
		return
	}

	batchID := entry.BatchID
	if entry.OriginalBatchID != nil {
		batchID = entry.OriginalBatchID
	}

	var batch *catalog.StockBatch
	var err error
	if batchID != nil {
		batch, err = s.batches.FindByIDForUpdate(ctx, *batchID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("undo return: batch lookup failed, stock not adjusted",
				zap.String("product_id", entry.ProductID.String()), zap.Error(err))
			return
		}
	}
	if batch == nil {
		batch, err = s.batches.FindReturnedStockBatch(ctx, entry.ProductID)
		if err != nil {
			s.logger.Warn("undo return: no batch holds the restored stock, proceeding without deduction",
				zap.String("product_id", entry.ProductID.String()))
			return
		}
	}

	if !batch.CanDeduct(entry.ReturnedQuantity) {
		s.logger.Warn("undo return: restored stock already consumed, proceeding without deduction",
			zap.String("product_id", entry.ProductID.String()),
			zap.String("batch_number", batch.BatchNumber))
		return
	}
	if err := batch.Deduct(entry.ReturnedQuantity); err != nil {
		s.logger.Warn("undo return: stock deduction failed, proceeding",
			zap.String("product_id", entry.ProductID.String()), zap.Error(err))
		return
	}
	if err := s.batches.Save(ctx, batch); err != nil {
		s.logger.Warn("undo return: stock save failed, proceeding",
			zap.String("product_id", entry.ProductID.String()), zap.Error(err))
	}
}

// campaignFor loads the campaign the pristine bill was priced with. A
// deleted campaign degrades to uncampaigned pricing rather than blocking
// the return.
func (s *ReturnService) campaignFor(ctx context.Context, scope shared.TenantScope, pristine *billing.SaleRecord) (*promotion.Campaign, error) {
	if pristine.CampaignID == nil {
		return nil, nil
	}
	campaign, err := s.campaigns.FindByID(ctx, scope, *pristine.CampaignID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("campaign missing for return recomputation, pricing without it",
				zap.String("campaign_id", pristine.CampaignID.String()))
			return nil, nil
		}
		return nil, err
	}
	return campaign, nil
}

func (s *ReturnService) loadProducts(ctx context.Context, scope shared.TenantScope, pristine *billing.SaleRecord) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(pristine.Items))
	for _, item := range pristine.Items {
		ids = append(ids, item.ProductID)
	}
	return s.products.FindByIDs(ctx, scope, ids)
}

// recomputeCredit re-derives the credit ledger on the active record from
// the full installment history against the active total.
func (s *ReturnService) recomputeCredit(ctx context.Context, pristine, active *billing.SaleRecord) error {
	if !pristine.IsCredit() {
		return nil
	}
	installments, err := s.installments.FindBySaleRecord(ctx, pristine.ID)
	if err != nil {
		return err
	}
	active.RecomputeCredit(billing.SumInstallments(installments))
	return nil
}
