package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// SaleRecordRepository provides access to sale, adjusted and return records
type SaleRecordRepository interface {
	FindByID(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*SaleRecord, error)
	// FindPristineByBillNumber returns the COMPLETED_ORIGINAL record
	FindPristineByBillNumber(ctx context.Context, scope shared.TenantScope, billNumber string) (*SaleRecord, error)
	// FindAdjustedActiveFor returns the single ADJUSTED_ACTIVE record for
	// an original, or shared.ErrNotFound when none exists
	FindAdjustedActiveFor(ctx context.Context, scope shared.TenantScope, originalID uuid.UUID) (*SaleRecord, error)
	// FindOriginals lists pristine sale records only (no return
	// transactions, no adjusted states), paginated
	FindOriginals(ctx context.Context, scope shared.TenantScope, filter shared.Filter) ([]SaleRecord, int64, error)
	FindCreditSales(ctx context.Context, scope shared.TenantScope, filter CreditSaleFilter) ([]SaleRecord, int64, error)
	// Create inserts a new record; a unique violation on bill number
	// surfaces as shared.ErrDuplicateBillNumber
	Create(ctx context.Context, record *SaleRecord) error
	Save(ctx context.Context, record *SaleRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreditSaleFilter narrows credit sale queries
type CreditSaleFilter struct {
	Status     *CreditStatus
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// InstallmentRepository provides access to payment installments
type InstallmentRepository interface {
	FindByID(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*PaymentInstallment, error)
	FindBySaleRecord(ctx context.Context, saleRecordID uuid.UUID) ([]PaymentInstallment, error)
	Create(ctx context.Context, installment *PaymentInstallment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
