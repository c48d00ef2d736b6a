package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walldriyan/pos11v-sub000/internal/domain/catalog"
	"github.com/walldriyan/pos11v-sub000/internal/domain/promotion"
)

// PricingLine is the input to PriceBill: one cart line plus the tax rate
// already resolved for its product.
type PricingLine struct {
	ProductID      uuid.UUID
	ProductName    string
	BatchID        *uuid.UUID
	BatchNumber    string
	Unit           string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	TaxRate        decimal.Decimal
	CustomDiscount *promotion.CustomDiscount
}

// PriceBill runs the full pricing pipeline over a set of lines: rule
// evaluation, cart discount proration, per-line tax, effective prices and
// rollups. Sale creation and return recomputation both go through here so
// the two can never price a bill differently.
func PriceBill(lines []PricingLine, campaign *promotion.Campaign, products map[uuid.UUID]*catalog.Product) (SaleItemList, promotion.AppliedRuleList, Rollup) {
	cartLines := make([]promotion.CartLine, len(lines))
	for idx, line := range lines {
		cartLines[idx] = promotion.CartLine{
			LineID:         uuid.New(),
			ProductID:      line.ProductID,
			BatchID:        line.BatchID,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			CustomDiscount: line.CustomDiscount,
		}
	}

	result := promotion.Evaluate(cartLines, campaign, products)
	summary := promotion.SummarizeApplied(cartLines, result)

	rollup := Rollup{
		SubtotalOriginal:  decimal.Zero,
		TotalItemDiscount: decimal.Zero,
		TotalCartDiscount: result.CartDiscount,
	}

	// Net line values before cart proration
	netLines := make([]decimal.Decimal, len(lines))
	netSum := decimal.Zero
	for idx, line := range lines {
		gross := line.Quantity.Mul(line.UnitPrice)
		lineDiscount := result.LineDiscounts[cartLines[idx].LineID]
		netLines[idx] = gross.Sub(lineDiscount)
		netSum = netSum.Add(netLines[idx])
		rollup.SubtotalOriginal = rollup.SubtotalOriginal.Add(gross)
		rollup.TotalItemDiscount = rollup.TotalItemDiscount.Add(lineDiscount)
	}

	// Prorate the cart discount across lines by net line value. The last
	// line takes the remainder so the shares sum exactly.
	shares := make([]decimal.Decimal, len(lines))
	if result.CartDiscount.GreaterThan(decimal.Zero) && netSum.GreaterThan(decimal.Zero) {
		allocated := decimal.Zero
		for idx := range lines {
			if idx == len(lines)-1 {
				shares[idx] = result.CartDiscount.Sub(allocated)
				break
			}
			shares[idx] = result.CartDiscount.Mul(netLines[idx]).Div(netSum).Round(4)
			allocated = allocated.Add(shares[idx])
		}
	}

	items := make(SaleItemList, len(lines))
	for idx, line := range lines {
		lineDiscount := result.LineDiscounts[cartLines[idx].LineID]
		netTotal := netLines[idx].Sub(shares[idx])
		if netTotal.IsNegative() {
			netTotal = decimal.Zero
		}
		taxAmount := netTotal.Mul(line.TaxRate).Div(decimal.NewFromInt(100))

		effective := decimal.Zero
		if line.Quantity.GreaterThan(decimal.Zero) {
			effective = netTotal.Div(line.Quantity).Round(4)
		}

		items[idx] = SaleItem{
			ProductID:                 line.ProductID,
			ProductName:               line.ProductName,
			BatchID:                   line.BatchID,
			BatchNumber:               line.BatchNumber,
			Unit:                      line.Unit,
			Quantity:                  line.Quantity,
			UnitPrice:                 line.UnitPrice,
			LineDiscount:              lineDiscount,
			CartDiscountShare:         shares[idx],
			NetLineTotal:              netTotal,
			EffectivePricePaidPerUnit: effective,
			TaxRate:                   line.TaxRate,
			TaxAmount:                 taxAmount,
			CustomDiscount:            line.CustomDiscount,
		}

		rollup.TaxAmount = rollup.TaxAmount.Add(taxAmount)
	}

	rollup.NetSubtotal = rollup.SubtotalOriginal.
		Sub(rollup.TotalItemDiscount).
		Sub(rollup.TotalCartDiscount)
	if rollup.NetSubtotal.IsNegative() {
		rollup.NetSubtotal = decimal.Zero
	}
	rollup.TotalAmount = rollup.NetSubtotal.Add(rollup.TaxAmount)

	return items, summary, rollup
}
