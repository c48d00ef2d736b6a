package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// DerivedUnit is a sellable unit defined in terms of the base unit,
// e.g. a "box" of 24 pieces has ConversionFactor 24.
type DerivedUnit struct {
	Name             string          `json:"name"`
	ConversionFactor decimal.Decimal `json:"conversionFactor"`
	Threshold        decimal.Decimal `json:"threshold"`
}

// UnitDefinition describes how a product is measured and sold
type UnitDefinition struct {
	BaseUnit     string        `json:"baseUnit"`
	DerivedUnits []DerivedUnit `json:"derivedUnits,omitempty"`
}

// Value implements driver.Valuer for JSONB storage
func (u UnitDefinition) Value() (driver.Value, error) {
	return json.Marshal(u)
}

// Scan implements sql.Scanner. Malformed stored definitions are repaired to
// a bare "unit" base rather than failing the read.
func (u *UnitDefinition) Scan(value any) error {
	// GORM reuses destination structs across rows; start from zero so a
	// previous row's units cannot leak into this one.
	*u = UnitDefinition{}
	if value == nil {
		*u = UnitDefinition{BaseUnit: "unit"}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into UnitDefinition", value)
	}
	if err := json.Unmarshal(raw, u); err != nil {
		*u = UnitDefinition{BaseUnit: "unit"}
		return nil
	}
	if u.BaseUnit == "" {
		u.BaseUnit = "unit"
	}
	return nil
}

// ConversionTo returns the factor converting the named unit to base units.
// The base unit itself converts at 1.
func (u UnitDefinition) ConversionTo(unit string) (decimal.Decimal, error) {
	if unit == "" || unit == u.BaseUnit {
		return decimal.NewFromInt(1), nil
	}
	for _, d := range u.DerivedUnits {
		if d.Name == unit {
			if d.ConversionFactor.LessThanOrEqual(decimal.Zero) {
				return decimal.Decimal{}, shared.NewDomainError("INVALID_UNIT", "Derived unit has a non-positive conversion factor")
			}
			return d.ConversionFactor, nil
		}
	}
	return decimal.Decimal{}, shared.NewDomainError("INVALID_UNIT", fmt.Sprintf("Unknown unit %q for base unit %q", unit, u.BaseUnit))
}

// Product represents a catalog entry. Price fields hold the default
// selling/cost price; batch records may carry lot-specific prices.
type Product struct {
	shared.TenantAggregateRoot
	Name         string
	Code         string
	SellingPrice decimal.Decimal
	CostPrice    decimal.Decimal
	IsService    bool
	IsActive     bool
	// TaxRate overrides the global tax percentage when non-nil
	TaxRate *decimal.Decimal
	Units   UnitDefinition `gorm:"type:jsonb"`
	Batches []StockBatch   `gorm:"foreignKey:ProductID"`
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, name, code string, sellingPrice, costPrice decimal.Decimal, isService bool) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if sellingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	if costPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Code:                code,
		SellingPrice:        sellingPrice,
		CostPrice:           costPrice,
		IsService:           isService,
		IsActive:            true,
		Units:               UnitDefinition{BaseUnit: "unit"},
	}, nil
}

// SetTaxRate sets a per-product tax rate override
func (p *Product) SetTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	p.TaxRate = &rate
	p.UpdatedAt = time.Now()
	return nil
}

// ClearTaxRate removes the override so the global rate applies
func (p *Product) ClearTaxRate() {
	p.TaxRate = nil
	p.UpdatedAt = time.Now()
}

// EffectiveTaxRate returns the product override when set, else the global rate
func (p *Product) EffectiveTaxRate(globalRate decimal.Decimal) decimal.Decimal {
	if p.TaxRate != nil {
		return *p.TaxRate
	}
	return globalRate
}

// Stock returns total quantity across all batches. Services carry no stock.
func (p *Product) Stock() decimal.Decimal {
	if p.IsService {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, b := range p.Batches {
		total = total.Add(b.Quantity)
	}
	return total
}

// AddBatch attaches a new stock batch to the product
func (p *Product) AddBatch(batchNumber string, quantity, costPrice, sellingPrice decimal.Decimal) (*StockBatch, error) {
	if p.IsService {
		return nil, shared.NewDomainError("INVALID_STATE", "Service products cannot carry stock")
	}
	batch, err := NewStockBatch(p.ID, batchNumber, quantity, costPrice, sellingPrice)
	if err != nil {
		return nil, err
	}
	p.Batches = append(p.Batches, *batch)
	p.UpdatedAt = time.Now()
	return batch, nil
}

// GetBatch returns a batch by ID, nil when absent
func (p *Product) GetBatch(batchID uuid.UUID) *StockBatch {
	for idx := range p.Batches {
		if p.Batches[idx].ID == batchID {
			return &p.Batches[idx]
		}
	}
	return nil
}
