package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// PaymentInstallment is one credit payment event against a sale's
// outstanding balance. Immutable once created except by explicit deletion,
// which triggers a ledger recomputation.
type PaymentInstallment struct {
	shared.BaseEntity
	SaleRecordID uuid.UUID `gorm:"type:uuid;not null;index"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal
	Method       string
	Note         string
	// IsInitial marks the payment taken at sale creation time
	IsInitial  bool
	RecordedBy uuid.UUID `gorm:"type:uuid"`
	PaidAt     time.Time
}

// NewPaymentInstallment creates a new installment
func NewPaymentInstallment(saleRecordID, tenantID uuid.UUID, amount decimal.Decimal, method string, userID uuid.UUID) (*PaymentInstallment, error) {
	if saleRecordID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale record ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Installment amount must be positive")
	}
	return &PaymentInstallment{
		BaseEntity:   shared.NewBaseEntity(),
		SaleRecordID: saleRecordID,
		TenantID:     tenantID,
		Amount:       amount,
		Method:       method,
		RecordedBy:   userID,
		PaidAt:       time.Now(),
	}, nil
}

// SumInstallments totals a set of installments
func SumInstallments(installments []PaymentInstallment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range installments {
		total = total.Add(inst.Amount)
	}
	return total
}
