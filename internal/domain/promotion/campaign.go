package promotion

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// ProductRuleOverride replaces the campaign's default line rules for one
// product. A nil rule slot falls through to nothing, not to the default:
// the override owns the whole slot set once it is active.
type ProductRuleOverride struct {
	ProductID                  uuid.UUID   `json:"productId"`
	IsActiveForProductInCampaign bool      `json:"isActiveForProductInCampaign"`
	LineValueRule              *RuleConfig `json:"lineValueRule,omitempty"`
	LineQuantityRule           *RuleConfig `json:"lineQuantityRule,omitempty"`
	SpecificQtyRule            *RuleConfig `json:"specificQtyRule,omitempty"`
	SpecificUnitPriceRule      *RuleConfig `json:"specificUnitPriceRule,omitempty"`
}

// BuyGetRule grants a benefit on a target product keyed to the purchased
// quantity of a source product.
type BuyGetRule struct {
	Name            string          `json:"name"`
	IsEnabled       bool            `json:"isEnabled"`
	SourceProductID uuid.UUID       `json:"sourceProductId"`
	TargetProductID uuid.UUID       `json:"targetProductId"`
	BuyQuantity     decimal.Decimal `json:"buyQuantity"`
	GetQuantity     decimal.Decimal `json:"getQuantity"`
	DiscountType    RuleType        `json:"discountType"`
	// DiscountValue is a percentage of the target unit price, or a fixed
	// amount per benefit unit
	DiscountValue decimal.Decimal `json:"discountValue"`
	IsRepeatable  bool            `json:"isRepeatable"`
}

// Validate checks the static shape of a buy-get rule
func (r BuyGetRule) Validate() error {
	if !r.IsEnabled {
		return nil
	}
	if r.Name == "" {
		return shared.NewDomainError("INVALID_RULE", "Buy-get rule name cannot be empty")
	}
	if r.SourceProductID == uuid.Nil || r.TargetProductID == uuid.Nil {
		return shared.NewDomainError("INVALID_RULE", "Buy-get rule requires source and target products")
	}
	if r.BuyQuantity.LessThanOrEqual(decimal.Zero) || r.GetQuantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_RULE", "Buy-get quantities must be positive")
	}
	if !r.DiscountType.IsValid() {
		return shared.NewDomainError("INVALID_RULE", fmt.Sprintf("Unknown buy-get discount type %q", r.DiscountType))
	}
	if r.DiscountValue.IsNegative() {
		return shared.NewDomainError("INVALID_RULE", "Buy-get discount value cannot be negative")
	}
	return nil
}

// DefaultLineRules is the campaign-wide rule set applied to lines without
// a product override.
type DefaultLineRules struct {
	LineValueRule         *RuleConfig `json:"lineValueRule,omitempty"`
	LineQuantityRule      *RuleConfig `json:"lineQuantityRule,omitempty"`
	SpecificQtyRule       *RuleConfig `json:"specificQtyRule,omitempty"`
	SpecificUnitPriceRule *RuleConfig `json:"specificUnitPriceRule,omitempty"`
}

// Campaign is a named, tenant-scoped discount rule container ("discount set")
type Campaign struct {
	shared.TenantAggregateRoot
	Name     string
	IsActive bool
	// IsDefault marks the campaign applied when a sale names none.
	// At most one default exists per tenant; enforced on save.
	IsDefault bool
	// IsOneTimePerTransaction caps the whole campaign to its single
	// best-value rule instead of stacking contributions.
	IsOneTimePerTransaction bool

	CartValueRule    *RuleConfig `gorm:"type:jsonb;serializer:json"`
	CartQuantityRule *RuleConfig `gorm:"type:jsonb;serializer:json"`

	DefaultRules     DefaultLineRules      `gorm:"type:jsonb;serializer:json"`
	ProductOverrides ProductOverrideList   `gorm:"type:jsonb"`
	BuyGetRules      BuyGetRuleList        `gorm:"type:jsonb"`
}

// NewCampaign creates a new discount campaign
func NewCampaign(tenantID uuid.UUID, name string) (*Campaign, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CAMPAIGN", "Campaign name cannot be empty")
	}
	return &Campaign{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		IsActive:            true,
	}, nil
}

// Validate checks every configured rule before persisting
func (c *Campaign) Validate() error {
	if c.Name == "" {
		return shared.NewDomainError("INVALID_CAMPAIGN", "Campaign name cannot be empty")
	}
	for _, r := range []*RuleConfig{
		c.CartValueRule, c.CartQuantityRule,
		c.DefaultRules.LineValueRule, c.DefaultRules.LineQuantityRule,
		c.DefaultRules.SpecificQtyRule, c.DefaultRules.SpecificUnitPriceRule,
	} {
		if r == nil {
			continue
		}
		if err := r.Validate(); err != nil {
			return err
		}
	}
	for _, o := range c.ProductOverrides {
		if o.ProductID == uuid.Nil {
			return shared.NewDomainError("INVALID_CAMPAIGN", "Product override requires a product ID")
		}
		for _, r := range []*RuleConfig{o.LineValueRule, o.LineQuantityRule, o.SpecificQtyRule, o.SpecificUnitPriceRule} {
			if r == nil {
				continue
			}
			if err := r.Validate(); err != nil {
				return err
			}
		}
	}
	for _, bg := range c.BuyGetRules {
		if err := bg.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// OverrideFor returns the active product override for a product, nil when
// the campaign default rules apply.
func (c *Campaign) OverrideFor(productID uuid.UUID) *ProductRuleOverride {
	for idx := range c.ProductOverrides {
		o := &c.ProductOverrides[idx]
		if o.ProductID == productID && o.IsActiveForProductInCampaign {
			return o
		}
	}
	return nil
}

// ruleFor resolves the rule for one category on one line, honoring the
// product-override-beats-default precedence.
func (c *Campaign) ruleFor(productID uuid.UUID, category RuleCategory) *RuleConfig {
	if o := c.OverrideFor(productID); o != nil {
		switch category {
		case CategoryLineValue:
			return o.LineValueRule
		case CategoryLineQuantity:
			return o.LineQuantityRule
		case CategorySpecificQty:
			return o.SpecificQtyRule
		case CategorySpecificUnitPrice:
			return o.SpecificUnitPriceRule
		}
		return nil
	}
	switch category {
	case CategoryLineValue:
		return c.DefaultRules.LineValueRule
	case CategoryLineQuantity:
		return c.DefaultRules.LineQuantityRule
	case CategorySpecificQty:
		return c.DefaultRules.SpecificQtyRule
	case CategorySpecificUnitPrice:
		return c.DefaultRules.SpecificUnitPriceRule
	}
	return nil
}

// MarkDefault flags this campaign as the tenant default
func (c *Campaign) MarkDefault() {
	c.IsDefault = true
	c.UpdatedAt = time.Now()
}

// ClearDefault removes the default flag
func (c *Campaign) ClearDefault() {
	c.IsDefault = false
	c.UpdatedAt = time.Now()
}

// Deactivate turns the campaign off without deleting its configuration
func (c *Campaign) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
}

// ProductOverrideList is the JSONB-stored override collection
type ProductOverrideList []ProductRuleOverride

// Value implements driver.Valuer
func (l ProductOverrideList) Value() (driver.Value, error) {
	if l == nil {
		l = ProductOverrideList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner, lenient on malformed stored data
func (l *ProductOverrideList) Scan(value any) error {
	*l = ProductOverrideList{}
	return scanJSONList(value, l, "ProductOverrideList")
}

// BuyGetRuleList is the JSONB-stored buy-get collection
type BuyGetRuleList []BuyGetRule

// Value implements driver.Valuer
func (l BuyGetRuleList) Value() (driver.Value, error) {
	if l == nil {
		l = BuyGetRuleList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner, lenient on malformed stored data
func (l *BuyGetRuleList) Scan(value any) error {
	*l = BuyGetRuleList{}
	return scanJSONList(value, l, "BuyGetRuleList")
}

// scanJSONList decodes a JSONB column into dst, repairing unreadable or
// null values to the empty state instead of failing the read. Callers zero
// dst before calling so struct reuse cannot leak a previous row.
func scanJSONList(value any, dst any, typeName string) error {
	settle := func(raw []byte) {
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, dst)
		}
	}
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		settle(v)
		return nil
	case string:
		settle([]byte(v))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into %s", value, typeName)
	}
}
