package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

func newTestBatch(t *testing.T, qty float64) *StockBatch {
	t.Helper()
	b, err := NewStockBatch(uuid.New(), "B-1", dec(qty), dec(70), dec(100))
	require.NoError(t, err)
	return b
}

func TestStockBatch_DeductNeverPartiallyFills(t *testing.T) {
	b := newTestBatch(t, 10)

	err := b.Deduct(dec(11))
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.True(t, b.Quantity.Equal(dec(10)), "failed deduction must leave quantity untouched")

	require.NoError(t, b.Deduct(dec(10)))
	assert.True(t, b.Quantity.IsZero())
}

func TestStockBatch_DeductRejectsNonPositive(t *testing.T) {
	b := newTestBatch(t, 10)
	assert.Error(t, b.Deduct(decimal.Zero))
	assert.Error(t, b.Deduct(dec(-1)))
}

func TestStockBatch_Restore(t *testing.T) {
	b := newTestBatch(t, 2)
	require.NoError(t, b.Restore(dec(3)))
	assert.True(t, b.Quantity.Equal(dec(5)))

	assert.Error(t, b.Restore(decimal.Zero))
}

func TestStockBatch_CanDeduct(t *testing.T) {
	b := newTestBatch(t, 5)
	assert.True(t, b.CanDeduct(dec(5)))
	assert.False(t, b.CanDeduct(dec(5.5)))
}

func TestNewReturnedStockBatch(t *testing.T) {
	productID := uuid.New()
	b := NewReturnedStockBatch(productID, dec(100))

	assert.True(t, b.IsReturnedStock())
	assert.Equal(t, ReturnedStockBatchNumber, b.BatchNumber)
	assert.Equal(t, productID, b.ProductID)
	assert.True(t, b.Quantity.IsZero())

	regular := newTestBatch(t, 1)
	assert.False(t, regular.IsReturnedStock())
}

func TestNewStockBatch_Validation(t *testing.T) {
	_, err := NewStockBatch(uuid.Nil, "B-1", dec(1), dec(1), dec(1))
	assert.Error(t, err)
	_, err = NewStockBatch(uuid.New(), "B-1", dec(-1), dec(1), dec(1))
	assert.Error(t, err)
	_, err = NewStockBatch(uuid.New(), "B-1", dec(1), dec(-1), dec(1))
	assert.Error(t, err)
}
