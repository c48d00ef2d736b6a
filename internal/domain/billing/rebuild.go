package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walldriyan/pos11v-sub000/internal/domain/catalog"
	"github.com/walldriyan/pos11v-sub000/internal/domain/promotion"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// AdjustedState is the recomputed content of an adjusted-active bill
type AdjustedState struct {
	Items   SaleItemList
	Summary promotion.AppliedRuleList
	Rollup  Rollup
}

// RebuildAdjusted re-derives the adjusted bill state as a pure function of
// (pristine original, current return log). Apply and undo both call it, so
// the adjusted state after any sequence of actions depends only on which
// entries are active, never on the order they were applied or undone.
//
// The campaign must be the one the pristine original was priced with; a
// return never changes which campaign applied. Tax rates come from the
// current catalog (product override or global) with the pristine item's
// recorded rate as fallback when the product is gone.
func RebuildAdjusted(pristine *SaleRecord, log ReturnedItemList, campaign *promotion.Campaign, products map[uuid.UUID]*catalog.Product, globalTaxRate decimal.Decimal) (*AdjustedState, error) {
	if pristine.RecordType != RecordTypeSale {
		return nil, shared.NewDomainError("INVALID_STATE", "Adjusted state must derive from a sale record, not a return transaction")
	}

	returned := log.activeQuantities()

	var lines []PricingLine
	for _, item := range pristine.Items {
		returnedQty := returned[item.key()]
		keptQty := item.Quantity.Sub(returnedQty)
		if keptQty.IsNegative() {
			return nil, shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Returned quantity for %s exceeds the original line quantity", item.ProductName))
		}
		if keptQty.IsZero() {
			continue
		}

		taxRate := item.TaxRate
		if p, ok := products[item.ProductID]; ok {
			taxRate = p.EffectiveTaxRate(globalTaxRate)
		}

		lines = append(lines, PricingLine{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			BatchID:        item.BatchID,
			BatchNumber:    item.BatchNumber,
			Unit:           item.Unit,
			Quantity:       keptQty,
			UnitPrice:      item.UnitPrice,
			TaxRate:        taxRate,
			CustomDiscount: item.CustomDiscount,
		})
	}

	// An empty kept set is a fully-emptied bill: the adjusted state
	// persists with zero items rather than collapsing to the original.
	items, summary, rollup := PriceBill(lines, campaign, products)

	return &AdjustedState{Items: items, Summary: summary, Rollup: rollup}, nil
}

// NewAdjustedRecord materializes an adjusted-active record from a pristine
// original and a rebuilt state. Bill number, tenancy, customer, campaign
// and payment method carry over; only one adjusted record may exist per
// original at a time, enforced by the caller at the transition boundary.
func NewAdjustedRecord(pristine *SaleRecord, state *AdjustedState, log ReturnedItemList) *SaleRecord {
	adjusted := &SaleRecord{
		TenantAggregateRoot:    shared.NewTenantAggregateRoot(pristine.TenantID),
		RecordType:             RecordTypeSale,
		Status:                 StatusAdjustedActive,
		BillNumber:             pristine.BillNumber,
		CustomerID:             pristine.CustomerID,
		CustomerName:           pristine.CustomerName,
		CampaignID:             pristine.CampaignID,
		PaymentMethod:          pristine.PaymentMethod,
		OriginalSaleRecordID:   &pristine.ID,
	}
	adjusted.ApplyAdjustedState(state, log)
	return adjusted
}

// ApplyAdjustedState overwrites this record's content with a rebuilt
// state and the full return log (undone entries preserved for audit).
func (r *SaleRecord) ApplyAdjustedState(state *AdjustedState, log ReturnedItemList) {
	r.Items = state.Items
	r.SubtotalOriginal = state.Rollup.SubtotalOriginal
	r.TotalItemDiscount = state.Rollup.TotalItemDiscount
	r.TotalCartDiscount = state.Rollup.TotalCartDiscount
	r.NetSubtotal = state.Rollup.NetSubtotal
	r.TaxAmount = state.Rollup.TaxAmount
	r.TotalAmount = state.Rollup.TotalAmount
	r.AppliedDiscountSummary = state.Summary
	r.ReturnedItemsLog = log
	r.Status = StatusAdjustedActive
}

// NewReturnTransactionRecord creates the immutable record of one return
// action. Its items mirror the returned lines at their refund prices and
// its total is the refund for this single action.
func NewReturnTransactionRecord(pristine *SaleRecord, entries ReturnedItemList, returnTransactionID uuid.UUID) *SaleRecord {
	items := make(SaleItemList, 0, len(entries))
	total := decimal.Zero
	for _, e := range entries {
		items = append(items, SaleItem{
			ProductID:                 e.ProductID,
			ProductName:               e.ProductName,
			BatchID:                   e.BatchID,
			Quantity:                  e.ReturnedQuantity,
			UnitPrice:                 e.RefundAmountPerUnit,
			NetLineTotal:              e.TotalRefund,
			EffectivePricePaidPerUnit: e.RefundAmountPerUnit,
		})
		total = total.Add(e.TotalRefund)
	}

	rec := &SaleRecord{
		TenantAggregateRoot:  shared.NewTenantAggregateRoot(pristine.TenantID),
		RecordType:           RecordTypeReturnTransaction,
		Status:               StatusReturnTransactionCompleted,
		BillNumber:           pristine.BillNumber,
		CustomerID:           pristine.CustomerID,
		CustomerName:         pristine.CustomerName,
		Items:                items,
		NetSubtotal:          total,
		TotalAmount:          total,
		OriginalSaleRecordID: &pristine.ID,
		ReturnedItemsLog:     entries,
		PaymentMethod:        pristine.PaymentMethod,
	}
	rec.ID = returnTransactionID
	return rec
}
