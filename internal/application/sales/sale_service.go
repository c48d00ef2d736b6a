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

// TxManager runs a function inside a single database transaction. The
// context handed to fn carries the transaction; repositories resolve it
// from there.
type TxManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SaleService creates sale transactions: stock decrement, discount
// evaluation, pricing and the optional credit ledger opening all happen
// inside one transaction.
type SaleService struct {
	tx            TxManager
	sales         billing.SaleRecordRepository
	installments  billing.InstallmentRepository
	products      catalog.ProductRepository
	batches       catalog.BatchRepository
	campaigns     promotion.CampaignRepository
	globalTaxRate decimal.Decimal
	logger        *zap.Logger
}

func NewSaleService(
	tx TxManager,
	sales billing.SaleRecordRepository,
	installments billing.InstallmentRepository,
	products catalog.ProductRepository,
	batches catalog.BatchRepository,
	campaigns promotion.CampaignRepository,
	globalTaxRate decimal.Decimal,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
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

// CreateSale validates the cart, evaluates the applicable campaign,
// decrements row-locked stock batches and persists the pristine sale
// record. Credit sales additionally record the initial installment.
func (s *SaleService) CreateSale(ctx context.Context, scope shared.TenantScope, req CreateSaleRequest, userID uuid.UUID) (*SaleRecordResponse, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	campaign, err := s.resolveCampaign(ctx, scope, req.CampaignID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, line := range req.Items {
		productIDs = append(productIDs, line.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, scope, productIDs)
	if err != nil {
		return nil, err
	}
	for _, line := range req.Items {
		if _, ok := products[line.ProductID]; !ok {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %s not found", line.ProductID))
		}
	}

	var record *billing.SaleRecord
	var installments []billing.PaymentInstallment
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		pricingLines, err := s.reserveStock(ctx, req.Items, products)
		if err != nil {
			return err
		}

		items, summary, rollup := billing.PriceBill(pricingLines, campaign, products)

		record, err = billing.NewSaleRecord(scope.TenantID(), req.BillNumber, items, rollup, summary)
		if err != nil {
			return err
		}
		record.SetCreatedBy(userID)
		if req.CustomerID != nil {
			record.SetCustomer(*req.CustomerID, req.CustomerName)
		} else if req.CustomerName != "" {
			record.CustomerName = req.CustomerName
		}
		if campaign != nil {
			record.SetCampaign(campaign.ID)
		}
		if req.PaymentMethod == billing.PaymentMethodCredit {
			if err := record.MarkAsCredit(req.AmountPaid); err != nil {
				return err
			}
		}

		if err := s.sales.Create(ctx, record); err != nil {
			return err
		}

		if record.IsCredit() && req.AmountPaid.IsPositive() {
			initial, err := billing.NewPaymentInstallment(record.ID, scope.TenantID(), req.AmountPaid, "cash", userID)
			if err != nil {
				return err
			}
			initial.IsInitial = true
			initial.Note = "initial payment"
			if err := s.installments.Create(ctx, initial); err != nil {
				return err
			}
		}

		// Re-read inside the transaction so the response is a consistent
		// snapshot of what was committed.
		installments, err = s.installments.FindBySaleRecord(ctx, record.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("bill_number", record.BillNumber),
		zap.String("sale_id", record.ID.String()),
		zap.String("payment_method", string(record.PaymentMethod)))

	resp := ToSaleRecordResponse(record, installments)
	return &resp, nil
}

// reserveStock re-reads every referenced batch under a row lock, verifies
// availability and decrements it, returning the priced lines for the bill.
func (s *SaleService) reserveStock(ctx context.Context, lines []SaleLineRequest, products map[uuid.UUID]*catalog.Product) ([]billing.PricingLine, error) {
	pricing := make([]billing.PricingLine, 0, len(lines))
	for _, line := range lines {
		product := products[line.ProductID]
		unitPrice := product.SellingPrice
		batchNumber := ""

		if line.BatchID != nil {
			batch, err := s.batches.FindByIDForUpdate(ctx, *line.BatchID)
			if err != nil {
				return nil, err
			}
			if batch.ProductID != line.ProductID {
				return nil, shared.NewDomainError("INVALID_INPUT", "Batch does not belong to the given product")
			}
			if !product.IsService {
				if err := batch.Deduct(line.Quantity); err != nil {
					return nil, err
				}
				if err := s.batches.Save(ctx, batch); err != nil {
					return nil, err
				}
			}
			unitPrice = batch.SellingPrice
			batchNumber = batch.BatchNumber
		} else if !product.IsService {
			return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Product %s requires a stock batch", product.Name))
		}

		if line.UnitPrice != nil && line.UnitPrice.IsPositive() {
			unitPrice = *line.UnitPrice
		}

		unit := line.Unit
		if unit == "" {
			unit = product.Units.BaseUnit
		}

		pricing = append(pricing, billing.PricingLine{
			ProductID:      line.ProductID,
			ProductName:    product.Name,
			BatchID:        line.BatchID,
			BatchNumber:    batchNumber,
			Unit:           unit,
			Quantity:       line.Quantity,
			UnitPrice:      unitPrice,
			TaxRate:        product.EffectiveTaxRate(s.globalTaxRate),
			CustomDiscount: line.CustomDiscount,
		})
	}
	return pricing, nil
}

// resolveCampaign loads the requested campaign, or the tenant default when
// none was named. A missing default is not an error; sales run uncampaigned.
func (s *SaleService) resolveCampaign(ctx context.Context, scope shared.TenantScope, campaignID *uuid.UUID) (*promotion.Campaign, error) {
	if campaignID != nil {
		return s.campaigns.FindByID(ctx, scope, *campaignID)
	}
	campaign, err := s.campaigns.FindDefault(ctx, scope)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return campaign, nil
}

func validateCreateRequest(req CreateSaleRequest) error {
	if req.BillNumber == "" {
		return shared.NewDomainError("INVALID_INPUT", "Bill number is required")
	}
	if len(req.Items) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Sale must contain at least one item")
	}
	if req.PaymentMethod != billing.PaymentMethodCash && req.PaymentMethod != billing.PaymentMethodCredit {
		return shared.NewDomainError("INVALID_INPUT", "Unknown payment method")
	}
	if req.AmountPaid.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Amount paid cannot be negative")
	}
	for _, line := range req.Items {
		if !line.Quantity.IsPositive() {
			return shared.NewDomainError("INVALID_INPUT", "Line quantity must be positive")
		}
		if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_INPUT", "Unit price cannot be negative")
		}
		if cd := line.CustomDiscount; cd != nil {
			if cd.Type != promotion.RuleTypePercentage && cd.Type != promotion.RuleTypeFixed {
				return shared.NewDomainError("INVALID_INPUT", "Unknown custom discount type")
			}
			if cd.Value.IsNegative() {
				return shared.NewDomainError("INVALID_INPUT", "Custom discount value cannot be negative")
			}
			if cd.Type == promotion.RuleTypePercentage && cd.Value.GreaterThan(decimal.NewFromInt(100)) {
				return shared.NewDomainError("INVALID_INPUT", "Custom discount percentage cannot exceed 100")
			}
		}
	}
	return nil
}
