package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/walldriyan/pos11v-sub000/internal/domain/billing"
	"github.com/walldriyan/pos11v-sub000/internal/domain/catalog"
	"github.com/walldriyan/pos11v-sub000/internal/domain/promotion"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// passthroughTx runs the function directly; service tests exercise the
// logic, not transaction demarcation.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockSaleRecordRepository is a mock implementation of SaleRecordRepository
type MockSaleRecordRepository struct {
	mock.Mock
}

func (m *MockSaleRecordRepository) FindByID(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*billing.SaleRecord, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.SaleRecord), args.Error(1)
}

func (m *MockSaleRecordRepository) FindPristineByBillNumber(ctx context.Context, scope shared.TenantScope, billNumber string) (*billing.SaleRecord, error) {
	args := m.Called(ctx, scope, billNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.SaleRecord), args.Error(1)
}

func (m *MockSaleRecordRepository) FindAdjustedActiveFor(ctx context.Context, scope shared.TenantScope, originalID uuid.UUID) (*billing.SaleRecord, error) {
	args := m.Called(ctx, scope, originalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.SaleRecord), args.Error(1)
}

func (m *MockSaleRecordRepository) FindOriginals(ctx context.Context, scope shared.TenantScope, filter shared.Filter) ([]billing.SaleRecord, int64, error) {
	args := m.Called(ctx, scope, filter)
	return args.Get(0).([]billing.SaleRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockSaleRecordRepository) FindCreditSales(ctx context.Context, scope shared.TenantScope, filter billing.CreditSaleFilter) ([]billing.SaleRecord, int64, error) {
	args := m.Called(ctx, scope, filter)
	return args.Get(0).([]billing.SaleRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockSaleRecordRepository) Create(ctx context.Context, record *billing.SaleRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSaleRecordRepository) Save(ctx context.Context, record *billing.SaleRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSaleRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInstallmentRepository is a mock implementation of InstallmentRepository
type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) FindByID(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*billing.PaymentInstallment, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentInstallment), args.Error(1)
}

func (m *MockInstallmentRepository) FindBySaleRecord(ctx context.Context, saleRecordID uuid.UUID) ([]billing.PaymentInstallment, error) {
	args := m.Called(ctx, saleRecordID)
	return args.Get(0).([]billing.PaymentInstallment), args.Error(1)
}

func (m *MockInstallmentRepository) Create(ctx context.Context, installment *billing.PaymentInstallment) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

func (m *MockInstallmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, scope shared.TenantScope, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	args := m.Called(ctx, scope, ids)
	return args.Get(0).(map[uuid.UUID]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockBatchRepository is a mock implementation of BatchRepository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.StockBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.StockBatch), args.Error(1)
}

func (m *MockBatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.StockBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.StockBatch), args.Error(1)
}

func (m *MockBatchRepository) FindReturnedStockBatch(ctx context.Context, productID uuid.UUID) (*catalog.StockBatch, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.StockBatch), args.Error(1)
}

func (m *MockBatchRepository) Save(ctx context.Context, batch *catalog.StockBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) Create(ctx context.Context, batch *catalog.StockBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

// MockCampaignRepository is a mock implementation of CampaignRepository
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) FindByID(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*promotion.Campaign, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) FindDefault(ctx context.Context, scope shared.TenantScope) (*promotion.Campaign, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) FindAll(ctx context.Context, scope shared.TenantScope, filter shared.Filter) ([]promotion.Campaign, error) {
	args := m.Called(ctx, scope, filter)
	return args.Get(0).([]promotion.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Save(ctx context.Context, campaign *promotion.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

// Test helper functions
func newTestTenantID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func newTestUserID() uuid.UUID {
	return uuid.MustParse("22222222-2222-2222-2222-222222222222")
}

func newTestScope() shared.TenantScope {
	scope, _ := shared.TenantOf(newTestTenantID())
	return scope
}
