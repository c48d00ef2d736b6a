package promotion

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// RuleType is how a rule's value is interpreted
type RuleType string

const (
	RuleTypePercentage RuleType = "percentage"
	RuleTypeFixed      RuleType = "fixed"
)

// IsValid checks if the rule type is known
func (t RuleType) IsValid() bool {
	return t == RuleTypePercentage || t == RuleTypeFixed
}

// RuleCategory identifies which metric a rule inspects
type RuleCategory string

const (
	CategorySpecificQty       RuleCategory = "SPECIFIC_QTY_THRESHOLD"
	CategorySpecificUnitPrice RuleCategory = "SPECIFIC_UNIT_PRICE_THRESHOLD"
	CategoryLineQuantity      RuleCategory = "LINE_ITEM_QUANTITY"
	CategoryLineValue         RuleCategory = "LINE_ITEM_VALUE"
	CategoryCartQuantity      RuleCategory = "CART_TOTAL_QUANTITY"
	CategoryCartValue         RuleCategory = "CART_TOTAL_VALUE"
	CategoryBuyGet            RuleCategory = "BUY_X_GET_Y"
	CategoryCustomLine        RuleCategory = "CUSTOM_LINE_DISCOUNT"
)

// lineCategoryOrder is the fixed evaluation order within a line's rule set
var lineCategoryOrder = []RuleCategory{
	CategorySpecificQty,
	CategorySpecificUnitPrice,
	CategoryLineQuantity,
	CategoryLineValue,
}

// quantityScaled reports whether a fixed-amount rule in this category
// scales by matching quantity (unless ApplyFixedOnce). Value/price based
// categories apply the fixed amount once regardless of the flag.
func (c RuleCategory) quantityScaled() bool {
	return c == CategorySpecificQty || c == CategoryLineQuantity || c == CategoryCartQuantity
}

// RuleConfig is one configurable discount rule. A rule only fires when the
// relevant metric falls within [ConditionMin, ConditionMax]; a nil bound is
// unbounded on that side.
type RuleConfig struct {
	IsEnabled     bool             `json:"isEnabled"`
	Name          string           `json:"name"`
	Type          RuleType         `json:"type"`
	Value         decimal.Decimal  `json:"value"`
	ConditionMin  *decimal.Decimal `json:"conditionMin,omitempty"`
	ConditionMax  *decimal.Decimal `json:"conditionMax,omitempty"`
	ApplyFixedOnce bool            `json:"applyFixedOnce,omitempty"`
}

// Validate checks the static shape of a rule config
func (r RuleConfig) Validate() error {
	if !r.IsEnabled {
		return nil
	}
	if r.Name == "" {
		return shared.NewDomainError("INVALID_RULE", "Rule name cannot be empty")
	}
	if !r.Type.IsValid() {
		return shared.NewDomainError("INVALID_RULE", fmt.Sprintf("Unknown rule type %q", r.Type))
	}
	if r.Value.IsNegative() {
		return shared.NewDomainError("INVALID_RULE", "Rule value cannot be negative")
	}
	if r.Type == RuleTypePercentage && r.Value.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_RULE", "Percentage rule value cannot exceed 100")
	}
	if r.ConditionMin != nil && r.ConditionMax != nil && r.ConditionMin.GreaterThan(*r.ConditionMax) {
		return shared.NewDomainError("INVALID_RULE", "Condition minimum cannot exceed maximum")
	}
	return nil
}

// Matches reports whether the metric lies inside the condition window
func (r RuleConfig) Matches(metric decimal.Decimal) bool {
	if !r.IsEnabled {
		return false
	}
	if r.ConditionMin != nil && metric.LessThan(*r.ConditionMin) {
		return false
	}
	if r.ConditionMax != nil && metric.GreaterThan(*r.ConditionMax) {
		return false
	}
	return true
}

// discountFor computes the rule's discount amount for the given basis and
// matching quantity. appliedOnce reports whether a fixed amount was applied
// a single time rather than scaled.
func (r RuleConfig) discountFor(category RuleCategory, basis, matchingQty decimal.Decimal) (amount decimal.Decimal, appliedOnce bool) {
	switch r.Type {
	case RuleTypePercentage:
		return basis.Mul(r.Value).Div(decimal.NewFromInt(100)), false
	case RuleTypeFixed:
		if category.quantityScaled() && !r.ApplyFixedOnce {
			return r.Value.Mul(matchingQty), false
		}
		return r.Value, true
	}
	return decimal.Zero, false
}

// AppliedRuleInfo is one audit entry: which rule fired, from which
// campaign, and how much it contributed. The stored list must be
// sufficient to explain the final total without re-running the engine.
type AppliedRuleInfo struct {
	RuleName       string          `json:"ruleName"`
	CampaignName   string          `json:"campaignName"`
	RuleCategory   RuleCategory    `json:"ruleCategory"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	AppliedOnce    bool            `json:"appliedOnce"`
	// ProductID and LineID are nil for cart-level rules. LineID pins the
	// contribution to one cart line even when a product appears on several.
	ProductID *uuid.UUID `json:"productId,omitempty"`
	LineID    *uuid.UUID `json:"lineId,omitempty"`
}

// AppliedRuleList is the JSONB-stored audit trail
type AppliedRuleList []AppliedRuleInfo

// Value implements driver.Valuer for JSONB storage
func (l AppliedRuleList) Value() (driver.Value, error) {
	if l == nil {
		l = AppliedRuleList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner. Unreadable stored summaries decode to an
// empty list rather than failing the row read.
func (l *AppliedRuleList) Scan(value any) error {
	*l = AppliedRuleList{}
	if value == nil {
		*l = AppliedRuleList{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into AppliedRuleList", value)
	}
	if len(raw) == 0 {
		*l = AppliedRuleList{}
		return nil
	}
	if err := json.Unmarshal(raw, l); err != nil {
		*l = AppliedRuleList{}
	}
	return nil
}

// Total returns the sum of all contributions in the list
func (l AppliedRuleList) Total() decimal.Decimal {
	total := decimal.Zero
	for _, r := range l {
		total = total.Add(r.DiscountAmount)
	}
	return total
}
