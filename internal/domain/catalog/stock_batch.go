package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// ReturnedStockBatchNumber is the synthetic batch returned units land in
// when their originating batch is no longer available.
const ReturnedStockBatchNumber = "RETURNED_STOCK"

// StockBatch represents one lot of stock with lot-specific prices
type StockBatch struct {
	shared.BaseEntity
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BatchNumber  string
	Quantity     decimal.Decimal
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
}

// NewStockBatch creates a new stock batch
func NewStockBatch(productID uuid.UUID, batchNumber string, quantity, costPrice, sellingPrice decimal.Decimal) (*StockBatch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity cannot be negative")
	}
	if costPrice.IsNegative() || sellingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Batch prices cannot be negative")
	}
	return &StockBatch{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		BatchNumber:  batchNumber,
		Quantity:     quantity,
		CostPrice:    costPrice,
		SellingPrice: sellingPrice,
	}, nil
}

// NewReturnedStockBatch creates the synthetic batch used when a return's
// originating batch reference is unavailable.
func NewReturnedStockBatch(productID uuid.UUID, sellingPrice decimal.Decimal) *StockBatch {
	return &StockBatch{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		BatchNumber:  ReturnedStockBatchNumber,
		Quantity:     decimal.Zero,
		CostPrice:    decimal.Zero,
		SellingPrice: sellingPrice,
	}
}

// Deduct removes quantity from the batch. Unlike an adjustment, a sale must
// never partially fill: insufficient quantity fails the whole deduction.
func (b *StockBatch) Deduct(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduct quantity must be positive")
	}
	if b.Quantity.LessThan(quantity) {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Batch %s has %s units, %s requested", b.BatchNumber, b.Quantity.String(), quantity.String()))
	}
	b.Quantity = b.Quantity.Sub(quantity)
	b.UpdatedAt = time.Now()
	return nil
}

// Restore adds quantity back to the batch (returns, undo reversals)
func (b *StockBatch) Restore(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Restore quantity must be positive")
	}
	b.Quantity = b.Quantity.Add(quantity)
	b.UpdatedAt = time.Now()
	return nil
}

// CanDeduct reports whether the batch holds at least the requested quantity
func (b *StockBatch) CanDeduct(quantity decimal.Decimal) bool {
	return b.Quantity.GreaterThanOrEqual(quantity)
}

// IsReturnedStock reports whether this is the synthetic returned-stock batch
func (b *StockBatch) IsReturnedStock() bool {
	return b.BatchNumber == ReturnedStockBatchNumber
}
