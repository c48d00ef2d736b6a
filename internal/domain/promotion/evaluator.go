package promotion

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walldriyan/pos11v-sub000/internal/domain/catalog"
)

// CustomDiscount is a manual per-line discount set at sale time. It fully
// replaces any campaign-derived discount for its line.
type CustomDiscount struct {
	Type  RuleType        `json:"type"`
	Value decimal.Decimal `json:"value"`
	// ApplyFixedOnce applies a fixed amount once per line instead of per unit
	ApplyFixedOnce bool `json:"applyFixedOnce,omitempty"`
}

// CartLine is one priced line item presented to the evaluator
type CartLine struct {
	LineID         uuid.UUID
	ProductID      uuid.UUID
	BatchID        *uuid.UUID
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	CustomDiscount *CustomDiscount
}

// GrossValue returns quantity times unit price
func (l CartLine) GrossValue() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Result is the evaluator's complete output
type Result struct {
	// LineDiscounts maps line ID to the line's total discount amount
	LineDiscounts map[uuid.UUID]decimal.Decimal
	// CartDiscount is the cart-level amount, not attributed to any line
	CartDiscount decimal.Decimal
	// AppliedRules is the audit trail, in applied order
	AppliedRules AppliedRuleList
}

// TotalDiscount returns the sum of line and cart discounts
func (r Result) TotalDiscount() decimal.Decimal {
	total := r.CartDiscount
	for _, d := range r.LineDiscounts {
		total = total.Add(d)
	}
	return total
}

func emptyResult() Result {
	return Result{
		LineDiscounts: make(map[uuid.UUID]decimal.Decimal),
		CartDiscount:  decimal.Zero,
		AppliedRules:  AppliedRuleList{},
	}
}

// candidate is one potential rule application, kept separate so the
// one-time-per-transaction cap can pick a single winner.
type candidate struct {
	info   AppliedRuleInfo
	lineID *uuid.UUID // nil for cart-level
}

// Evaluate computes which campaign rules apply to a cart and how much each
// line and the cart receive. Pure: no I/O, no mutation of inputs, safe for
// concurrent use. A nil campaign yields a zero result.
//
// Precedence per line: a custom discount override replaces campaign line
// rules entirely; otherwise the product override rule set (when active)
// beats the campaign defaults, and categories evaluate in fixed order
// (specific-qty, specific-unit-price, line-quantity, line-value). Cart
// rules run against the post-line-discount subtotal. Buy-get rules run
// last and escape the one-time cap.
func Evaluate(lines []CartLine, campaign *Campaign, products map[uuid.UUID]*catalog.Product) Result {
	result := emptyResult()
	for _, line := range lines {
		result.LineDiscounts[line.LineID] = decimal.Zero
	}
	if campaign == nil || !campaign.IsActive {
		// Custom line discounts apply even without a campaign
		applyCustomDiscounts(lines, &result)
		return result
	}

	applyCustomDiscounts(lines, &result)

	var campaignCandidates []candidate
	for idx := range lines {
		line := lines[idx]
		if line.CustomDiscount != nil {
			continue
		}
		campaignCandidates = append(campaignCandidates, lineCandidates(line, campaign)...)
	}

	if campaign.IsOneTimePerTransaction {
		applyOneTimeCap(lines, campaign, campaignCandidates, &result)
	} else {
		for _, c := range campaignCandidates {
			applyCandidate(c, &result)
		}
		applyCartRules(lines, campaign, &result)
	}

	clampLineDiscounts(lines, &result)
	applyBuyGetRules(lines, campaign, products, &result)
	clampLineDiscounts(lines, &result)

	return result
}

// applyCustomDiscounts handles lines carrying a manual override
func applyCustomDiscounts(lines []CartLine, result *Result) {
	for _, line := range lines {
		cd := line.CustomDiscount
		if cd == nil {
			continue
		}
		var amount decimal.Decimal
		appliedOnce := false
		switch cd.Type {
		case RuleTypePercentage:
			amount = line.GrossValue().Mul(cd.Value).Div(decimal.NewFromInt(100))
		case RuleTypeFixed:
			if cd.ApplyFixedOnce {
				amount = cd.Value
				appliedOnce = true
			} else {
				amount = cd.Value.Mul(line.Quantity)
			}
		default:
			continue
		}
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		if amount.GreaterThan(line.GrossValue()) {
			amount = line.GrossValue()
		}
		productID := line.ProductID
		lineID := line.LineID
		result.LineDiscounts[line.LineID] = amount
		result.AppliedRules = append(result.AppliedRules, AppliedRuleInfo{
			RuleName:       "Custom discount",
			RuleCategory:   CategoryCustomLine,
			DiscountAmount: amount,
			AppliedOnce:    appliedOnce,
			ProductID:      &productID,
			LineID:         &lineID,
		})
	}
}

// lineCandidates evaluates every category of the line's resolved rule set
func lineCandidates(line CartLine, campaign *Campaign) []candidate {
	var out []candidate
	for _, category := range lineCategoryOrder {
		rule := campaign.ruleFor(line.ProductID, category)
		if rule == nil {
			continue
		}
		metric := lineMetric(line, category)
		if !rule.Matches(metric) {
			continue
		}
		amount, appliedOnce := rule.discountFor(category, line.GrossValue(), line.Quantity)
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		productID := line.ProductID
		lineID := line.LineID
		out = append(out, candidate{
			lineID: &lineID,
			info: AppliedRuleInfo{
				RuleName:       rule.Name,
				CampaignName:   campaign.Name,
				RuleCategory:   category,
				DiscountAmount: amount,
				AppliedOnce:    appliedOnce,
				ProductID:      &productID,
				LineID:         &lineID,
			},
		})
	}
	return out
}

// lineMetric returns the condition metric for a category
func lineMetric(line CartLine, category RuleCategory) decimal.Decimal {
	switch category {
	case CategorySpecificQty, CategoryLineQuantity:
		return line.Quantity
	case CategorySpecificUnitPrice:
		return line.UnitPrice
	case CategoryLineValue:
		return line.GrossValue()
	}
	return decimal.Zero
}

func applyCandidate(c candidate, result *Result) {
	if c.lineID != nil {
		result.LineDiscounts[*c.lineID] = result.LineDiscounts[*c.lineID].Add(c.info.DiscountAmount)
	} else {
		result.CartDiscount = result.CartDiscount.Add(c.info.DiscountAmount)
	}
	result.AppliedRules = append(result.AppliedRules, c.info)
}

// applyCartRules evaluates the two global cart rules against the
// post-line-discount subtotal and total quantity.
func applyCartRules(lines []CartLine, campaign *Campaign, result *Result) {
	subtotal := decimal.Zero
	totalQty := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.GrossValue().Sub(result.LineDiscounts[line.LineID]))
		totalQty = totalQty.Add(line.Quantity)
	}

	for _, cr := range []struct {
		rule     *RuleConfig
		category RuleCategory
		metric   decimal.Decimal
	}{
		{campaign.CartValueRule, CategoryCartValue, subtotal},
		{campaign.CartQuantityRule, CategoryCartQuantity, totalQty},
	} {
		if cr.rule == nil || !cr.rule.Matches(cr.metric) {
			continue
		}
		amount, appliedOnce := cr.rule.discountFor(cr.category, subtotal, totalQty)
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		remaining := subtotal.Sub(result.CartDiscount)
		if amount.GreaterThan(remaining) {
			amount = remaining
		}
		applyCandidate(candidate{info: AppliedRuleInfo{
			RuleName:       cr.rule.Name,
			CampaignName:   campaign.Name,
			RuleCategory:   cr.category,
			DiscountAmount: amount,
			AppliedOnce:    appliedOnce,
		}}, result)
	}
}

// applyOneTimeCap keeps only the single qualifying rule with the greatest
// discount across all lines and the cart. Cart candidates are measured
// against the undiscounted subtotal: if one wins, no line discounts
// survive, so that is also the basis it finally applies to.
func applyOneTimeCap(lines []CartLine, campaign *Campaign, lineCands []candidate, result *Result) {
	subtotal := decimal.Zero
	totalQty := decimal.Zero
	for _, line := range lines {
		if line.CustomDiscount != nil {
			continue
		}
		subtotal = subtotal.Add(line.GrossValue())
		totalQty = totalQty.Add(line.Quantity)
	}

	all := make([]candidate, 0, len(lineCands)+2)
	all = append(all, lineCands...)
	for _, cr := range []struct {
		rule     *RuleConfig
		category RuleCategory
		metric   decimal.Decimal
	}{
		{campaign.CartValueRule, CategoryCartValue, subtotal},
		{campaign.CartQuantityRule, CategoryCartQuantity, totalQty},
	} {
		if cr.rule == nil || !cr.rule.Matches(cr.metric) {
			continue
		}
		amount, appliedOnce := cr.rule.discountFor(cr.category, subtotal, totalQty)
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		if amount.GreaterThan(subtotal) {
			amount = subtotal
		}
		all = append(all, candidate{info: AppliedRuleInfo{
			RuleName:       cr.rule.Name,
			CampaignName:   campaign.Name,
			RuleCategory:   cr.category,
			DiscountAmount: amount,
			AppliedOnce:    appliedOnce,
		}})
	}

	var best *candidate
	for idx := range all {
		if best == nil || all[idx].info.DiscountAmount.GreaterThan(best.info.DiscountAmount) {
			best = &all[idx]
		}
	}
	if best != nil && best.info.DiscountAmount.GreaterThan(decimal.Zero) {
		applyCandidate(*best, result)
	}
}

// applyBuyGetRules evaluates Buy X Get Y rules last; they escape the
// one-time-per-transaction cap. The benefit is granted as a discount on
// the target product's line; a target absent from both cart and catalog
// cannot receive a benefit.
func applyBuyGetRules(lines []CartLine, campaign *Campaign, products map[uuid.UUID]*catalog.Product, result *Result) {
	if len(campaign.BuyGetRules) == 0 {
		return
	}

	qtyByProduct := make(map[uuid.UUID]decimal.Decimal)
	for _, line := range lines {
		qtyByProduct[line.ProductID] = qtyByProduct[line.ProductID].Add(line.Quantity)
	}

	for _, rule := range campaign.BuyGetRules {
		if !rule.IsEnabled {
			continue
		}
		// Stored rules bypass Validate on the read path; a zero buy
		// quantity would panic the division below.
		if rule.BuyQuantity.LessThanOrEqual(decimal.Zero) {
			continue
		}
		boughtQty := qtyByProduct[rule.SourceProductID]
		occurrences := boughtQty.Div(rule.BuyQuantity).Floor()
		if occurrences.LessThan(decimal.NewFromInt(1)) {
			continue
		}
		if !rule.IsRepeatable {
			occurrences = decimal.NewFromInt(1)
		}

		// The benefit lands on the target product's line in this cart
		target := findLineByProduct(lines, rule.TargetProductID)
		if target == nil {
			continue
		}
		if products != nil {
			if p, ok := products[rule.TargetProductID]; ok && !p.IsActive {
				continue
			}
		}

		benefitUnits := occurrences.Mul(rule.GetQuantity)
		if benefitUnits.GreaterThan(target.Quantity) {
			benefitUnits = target.Quantity
		}

		var amount decimal.Decimal
		switch rule.DiscountType {
		case RuleTypePercentage:
			amount = target.UnitPrice.Mul(benefitUnits).Mul(rule.DiscountValue).Div(decimal.NewFromInt(100))
		case RuleTypeFixed:
			amount = rule.DiscountValue.Mul(benefitUnits)
		default:
			continue
		}
		if amount.IsNegative() {
			amount = decimal.Zero
		}

		productID := rule.TargetProductID
		lineID := target.LineID
		applyCandidate(candidate{
			lineID: &lineID,
			info: AppliedRuleInfo{
				RuleName:       rule.Name,
				CampaignName:   campaign.Name,
				RuleCategory:   CategoryBuyGet,
				DiscountAmount: amount,
				AppliedOnce:    !rule.IsRepeatable,
				ProductID:      &productID,
				LineID:         &lineID,
			},
		}, result)
	}
}

func findLineByProduct(lines []CartLine, productID uuid.UUID) *CartLine {
	for idx := range lines {
		if lines[idx].ProductID == productID {
			return &lines[idx]
		}
	}
	return nil
}

// clampLineDiscounts caps each line's discount at its gross value so
// effective prices never go negative.
func clampLineDiscounts(lines []CartLine, result *Result) {
	for _, line := range lines {
		if result.LineDiscounts[line.LineID].GreaterThan(line.GrossValue()) {
			result.LineDiscounts[line.LineID] = line.GrossValue()
		}
	}
}
