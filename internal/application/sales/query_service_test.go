package sales

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/walldriyan/pos11v-sub000/internal/domain/billing"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

func TestSaleQueryService_GetSaleContext_NoReturns(t *testing.T) {
	salesRepo := new(MockSaleRecordRepository)
	instRepo := new(MockInstallmentRepository)
	service := NewSaleQueryService(salesRepo, instRepo)

	ctx := context.Background()
	scope := newTestScope()
	product, batch := newTestProduct(t, "Rice 5kg", 100)
	pristine := newPristineSale(t, product, batch, 10, nil)

	salesRepo.On("FindPristineByBillNumber", mock.Anything, scope, pristine.BillNumber).Return(pristine, nil)
	salesRepo.On("FindAdjustedActiveFor", mock.Anything, scope, pristine.ID).Return(nil, shared.ErrNotFound)
	instRepo.On("FindBySaleRecord", mock.Anything, pristine.ID).Return([]billing.PaymentInstallment{}, nil)

	result, err := service.GetSaleContext(ctx, scope, pristine.BillNumber)

	require.NoError(t, err)
	// Before any return the active record is the pristine itself
	assert.Equal(t, pristine.ID, result.PristineOriginal.ID)
	assert.Equal(t, pristine.ID, result.ActiveRecord.ID)
	assert.Equal(t, billing.StatusCompletedOriginal, result.ActiveRecord.Status)
}

func TestSaleQueryService_GetSaleContext_WithAdjustedActive(t *testing.T) {
	salesRepo := new(MockSaleRecordRepository)
	instRepo := new(MockInstallmentRepository)
	service := NewSaleQueryService(salesRepo, instRepo)

	ctx := context.Background()
	scope := newTestScope()
	product, batch := newTestProduct(t, "Rice 5kg", 100)
	pristine := newPristineSale(t, product, batch, 10, nil)
	adjusted, _ := newAdjustedFixture(t, pristine, product, 3, nil)

	salesRepo.On("FindPristineByBillNumber", mock.Anything, scope, pristine.BillNumber).Return(pristine, nil)
	salesRepo.On("FindAdjustedActiveFor", mock.Anything, scope, pristine.ID).Return(adjusted, nil)
	instRepo.On("FindBySaleRecord", mock.Anything, pristine.ID).Return([]billing.PaymentInstallment{}, nil)

	result, err := service.GetSaleContext(ctx, scope, pristine.BillNumber)

	require.NoError(t, err)
	assert.Equal(t, pristine.ID, result.PristineOriginal.ID)
	assert.Equal(t, adjusted.ID, result.ActiveRecord.ID)
	assert.Equal(t, billing.StatusAdjustedActive, result.ActiveRecord.Status)
	// The pristine view still shows the full original quantities
	assert.True(t, result.PristineOriginal.Items[0].Quantity.GreaterThan(result.ActiveRecord.Items[0].Quantity))
}

func TestSaleQueryService_GetSaleContext_UnknownBill(t *testing.T) {
	salesRepo := new(MockSaleRecordRepository)
	service := NewSaleQueryService(salesRepo, new(MockInstallmentRepository))

	ctx := context.Background()
	scope := newTestScope()
	salesRepo.On("FindPristineByBillNumber", mock.Anything, scope, "MISSING").Return(nil, shared.ErrNotFound)

	_, err := service.GetSaleContext(ctx, scope, "MISSING")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSaleQueryService_ListSales_ReturnsOriginalsOnly(t *testing.T) {
	salesRepo := new(MockSaleRecordRepository)
	service := NewSaleQueryService(salesRepo, new(MockInstallmentRepository))

	ctx := context.Background()
	scope := newTestScope()
	product, batch := newTestProduct(t, "Rice 5kg", 100)
	pristine := newPristineSale(t, product, batch, 10, nil)

	salesRepo.On("FindOriginals", mock.Anything, scope, mock.AnythingOfType("shared.Filter")).
		Return([]billing.SaleRecord{*pristine}, int64(1), nil)

	result, err := service.ListSales(ctx, scope, SaleListFilter{Page: 1, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, pristine.BillNumber, result.Items[0].BillNumber)
}
