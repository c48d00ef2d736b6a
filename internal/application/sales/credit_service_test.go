package sales

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/walldriyan/pos11v-sub000/internal/domain/billing"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// newCreditSale builds a pristine credit sale of the given total with an
// initial payment already applied.
func newCreditSale(t *testing.T, total, initialPaid int64) (*billing.SaleRecord, []billing.PaymentInstallment) {
	t.Helper()
	product, batch := newTestProduct(t, "Rice 5kg", float64(total))
	pristine := newPristineSale(t, product, batch, 1, nil)
	require.NoError(t, pristine.MarkAsCredit(decimal.NewFromInt(initialPaid)))

	var history []billing.PaymentInstallment
	if initialPaid > 0 {
		inst, err := billing.NewPaymentInstallment(pristine.ID, newTestTenantID(), decimal.NewFromInt(initialPaid), "cash", newTestUserID())
		require.NoError(t, err)
		inst.IsInitial = true
		history = append(history, *inst)
	}
	return pristine, history
}

func TestCreditService_RecordPayment_Success(t *testing.T) {
	salesRepo := new(MockSaleRecordRepository)
	instRepo := new(MockInstallmentRepository)
	service := NewCreditService(passthroughTx{}, salesRepo, instRepo, zap.NewNop())

	ctx := context.Background()
	scope := newTestScope()
	pristine, history := newCreditSale(t, 1000, 200)

	salesRepo.On("FindByID", mock.Anything, scope, pristine.ID).Return(pristine, nil)
	salesRepo.On("FindAdjustedActiveFor", mock.Anything, scope, pristine.ID).Return(nil, shared.ErrNotFound)
	salesRepo.On("Save", mock.Anything, pristine).Return(nil)

	payment, err := billing.NewPaymentInstallment(pristine.ID, newTestTenantID(), decimal.NewFromInt(300), "cash", newTestUserID())
	require.NoError(t, err)
	finalHistory := append(append([]billing.PaymentInstallment{}, history...), *payment)

	var recorded *billing.PaymentInstallment
	instRepo.On("Create", mock.Anything, mock.AnythingOfType("*billing.PaymentInstallment")).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(*billing.PaymentInstallment)
		}).Return(nil)
	instRepo.On("FindBySaleRecord", mock.Anything, pristine.ID).Return(finalHistory, nil)

	result, err := service.RecordPayment(ctx, scope, RecordPaymentRequest{
		SaleID: pristine.ID,
		Amount: decimal.NewFromInt(300),
		Method: "cash",
	}, newTestUserID())

	require.NoError(t, err)
	require.NotNil(t, recorded)
	assert.True(t, recorded.Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, pristine.ID, recorded.SaleRecordID)
	assert.Equal(t, billing.CreditStatusPartiallyPaid, result.CreditStatus)
	assert.True(t, result.AmountPaid.Equal(decimal.NewFromInt(500)))
	assert.True(t, result.CreditOutstanding.Equal(decimal.NewFromInt(500)))
	assert.Len(t, result.PaymentInstallments, 2)
}

func TestCreditService_RecordPayment_RejectsOverpayment(t *testing.T) {
	salesRepo := new(MockSaleRecordRepository)
	instRepo := new(MockInstallmentRepository)
	service := NewCreditService(passthroughTx{}, salesRepo, instRepo, zap.NewNop())

	ctx := context.Background()
	scope := newTestScope()
	pristine, _ := newCreditSale(t, 1000, 200)

	salesRepo.On("FindByID", mock.Anything, scope, pristine.ID).Return(pristine, nil)
	salesRepo.On("FindAdjustedActiveFor", mock.Anything, scope, pristine.ID).Return(nil, shared.ErrNotFound)

	_, err := service.RecordPayment(ctx, scope, RecordPaymentRequest{
		SaleID: pristine.ID,
		Amount: decimal.NewFromInt(900),
		Method: "cash",
	}, newTestUserID())

	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	instRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreditService_RecordPayment_ValidatesAgainstAdjustedTotal(t *testing.T) {
	salesRepo := new(MockSaleRecordRepository)
	instRepo := new(MockInstallmentRepository)
	service := NewCreditService(passthroughTx{}, salesRepo, instRepo, zap.NewNop())

	ctx := context.Background()
	scope := newTestScope()
	product, batch := newTestProduct(t, "Rice 5kg", 100)
	pristine := newPristineSale(t, product, batch, 10, nil)
	require.NoError(t, pristine.MarkAsCredit(decimal.NewFromInt(200)))
	initial, err := billing.NewPaymentInstallment(pristine.ID, newTestTenantID(), decimal.NewFromInt(200), "cash", newTestUserID())
	require.NoError(t, err)
	history := []billing.PaymentInstallment{*initial}

	// A return shrank the bill to 700; 200 already paid leaves 500
	adjusted, _ := newAdjustedFixture(t, pristine, product, 3, nil)
	adjusted.RecomputeCredit(billing.SumInstallments(history))

	salesRepo.On("FindByID", mock.Anything, scope, pristine.ID).Return(pristine, nil)
	salesRepo.On("FindAdjustedActiveFor", mock.Anything, scope, pristine.ID).Return(adjusted, nil)

	_, err = service.RecordPayment(ctx, scope, RecordPaymentRequest{
		SaleID: pristine.ID,
		Amount: decimal.NewFromInt(600),
		Method: "cash",
	}, newTestUserID())

	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
}

func TestCreditService_RecordPayment_RejectsNonCreditSale(t *testing.T) {
	salesRepo := new(MockSaleRecordRepository)
	service := NewCreditService(passthroughTx{}, salesRepo, new(MockInstallmentRepository), zap.NewNop())

	ctx := context.Background()
	scope := newTestScope()
	product, batch := newTestProduct(t, "Rice 5kg", 100)
	pristine := newPristineSale(t, product, batch, 1, nil)

	salesRepo.On("FindByID", mock.Anything, scope, pristine.ID).Return(pristine, nil)
	salesRepo.On("FindAdjustedActiveFor", mock.Anything, scope, pristine.ID).Return(nil, shared.ErrNotFound)

	_, err := service.RecordPayment(ctx, scope, RecordPaymentRequest{
		SaleID: pristine.ID,
		Amount: decimal.NewFromInt(10),
		Method: "cash",
	}, newTestUserID())

	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestCreditService_DeleteInstallment_RecomputesLedger(t *testing.T) {
	salesRepo := new(MockSaleRecordRepository)
	instRepo := new(MockInstallmentRepository)
	service := NewCreditService(passthroughTx{}, salesRepo, instRepo, zap.NewNop())

	ctx := context.Background()
	scope := newTestScope()
	pristine, history := newCreditSale(t, 1000, 200)
	target := history[0]

	instRepo.On("FindByID", mock.Anything, scope, target.ID).Return(&target, nil)
	salesRepo.On("FindByID", mock.Anything, scope, pristine.ID).Return(pristine, nil)
	salesRepo.On("FindAdjustedActiveFor", mock.Anything, scope, pristine.ID).Return(nil, shared.ErrNotFound)
	instRepo.On("Delete", mock.Anything, target.ID).Return(nil)
	instRepo.On("FindBySaleRecord", mock.Anything, pristine.ID).Return([]billing.PaymentInstallment{}, nil)
	salesRepo.On("Save", mock.Anything, pristine).Return(nil)

	result, err := service.DeleteInstallment(ctx, scope, target.ID)

	require.NoError(t, err)
	assert.Equal(t, billing.CreditStatusPending, result.CreditStatus)
	assert.True(t, result.CreditOutstanding.Equal(decimal.NewFromInt(1000)))
	assert.True(t, result.AmountPaid.IsZero())
	instRepo.AssertExpectations(t)
}
