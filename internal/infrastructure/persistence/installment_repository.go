package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/walldriyan/pos11v-sub000/internal/domain/billing"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// GormInstallmentRepository implements billing.InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByID finds an installment by its ID
func (r *GormInstallmentRepository) FindByID(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*billing.PaymentInstallment, error) {
	var installment billing.PaymentInstallment
	if err := scoped(sessionFrom(ctx, r.db), scope).
		First(&installment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &installment, nil
}

// FindBySaleRecord lists all installments of one ledger, oldest first.
// Installments are keyed by the pristine original's ID across the sale's
// whole lifecycle.
func (r *GormInstallmentRepository) FindBySaleRecord(ctx context.Context, saleRecordID uuid.UUID) ([]billing.PaymentInstallment, error) {
	var installments []billing.PaymentInstallment
	if err := sessionFrom(ctx, r.db).
		Where("sale_record_id = ?", saleRecordID).
		Order("paid_at ASC").
		Find(&installments).Error; err != nil {
		return nil, err
	}
	return installments, nil
}

// Create inserts a new installment
func (r *GormInstallmentRepository) Create(ctx context.Context, installment *billing.PaymentInstallment) error {
	return sessionFrom(ctx, r.db).Create(installment).Error
}

// Delete removes an installment by ID
func (r *GormInstallmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return sessionFrom(ctx, r.db).Delete(&billing.PaymentInstallment{}, "id = ?", id).Error
}
