package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/walldriyan/pos11v-sub000/internal/domain/billing"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// GormSaleRecordRepository implements billing.SaleRecordRepository using GORM
type GormSaleRecordRepository struct {
	db *gorm.DB
}

// NewGormSaleRecordRepository creates a new GormSaleRecordRepository
func NewGormSaleRecordRepository(db *gorm.DB) *GormSaleRecordRepository {
	return &GormSaleRecordRepository{db: db}
}

// FindByID finds a sale record by its ID
func (r *GormSaleRecordRepository) FindByID(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*billing.SaleRecord, error) {
	var record billing.SaleRecord
	if err := scoped(sessionFrom(ctx, r.db), scope).
		First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindPristineByBillNumber returns the immutable original for a bill number
func (r *GormSaleRecordRepository) FindPristineByBillNumber(ctx context.Context, scope shared.TenantScope, billNumber string) (*billing.SaleRecord, error) {
	var record billing.SaleRecord
	if err := scoped(sessionFrom(ctx, r.db), scope).
		Where("bill_number = ? AND record_type = ? AND status = ?",
			billNumber, billing.RecordTypeSale, billing.StatusCompletedOriginal).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindAdjustedActiveFor returns the single adjusted-active record derived
// from an original, shared.ErrNotFound when the original has no returns.
func (r *GormSaleRecordRepository) FindAdjustedActiveFor(ctx context.Context, scope shared.TenantScope, originalID uuid.UUID) (*billing.SaleRecord, error) {
	var record billing.SaleRecord
	if err := scoped(sessionFrom(ctx, r.db), scope).
		Where("original_sale_record_id = ? AND status = ?", originalID, billing.StatusAdjustedActive).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindOriginals lists pristine originals, newest first
func (r *GormSaleRecordRepository) FindOriginals(ctx context.Context, scope shared.TenantScope, filter shared.Filter) ([]billing.SaleRecord, int64, error) {
	query := scoped(sessionFrom(ctx, r.db), scope).
		Model(&billing.SaleRecord{}).
		Where("record_type = ? AND status = ?", billing.RecordTypeSale, billing.StatusCompletedOriginal)

	if v, ok := filter.Filters["customer_id"]; ok {
		query = query.Where("customer_id = ?", v)
	}
	if v, ok := filter.Filters["from"]; ok {
		query = query.Where("created_at >= ?", v)
	}
	if v, ok := filter.Filters["to"]; ok {
		query = query.Where("created_at <= ?", v)
	}
	if filter.Search != "" {
		query = query.Where("bill_number ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, SaleRecordSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var records []billing.SaleRecord
	if err := paging(query.Order(orderBy+" "+orderDir), filter.Page, filter.PageSize).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// FindCreditSales lists pristine credit sale originals
func (r *GormSaleRecordRepository) FindCreditSales(ctx context.Context, scope shared.TenantScope, filter billing.CreditSaleFilter) ([]billing.SaleRecord, int64, error) {
	query := scoped(sessionFrom(ctx, r.db), scope).
		Model(&billing.SaleRecord{}).
		Where("record_type = ? AND status = ? AND payment_method = ?",
			billing.RecordTypeSale, billing.StatusCompletedOriginal, billing.PaymentMethodCredit)

	if filter.Status != nil {
		query = query.Where("credit_status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []billing.SaleRecord
	if err := paging(query.Order("created_at DESC"), filter.Page, filter.PageSize).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Create inserts a new record. A unique violation on the bill number
// surfaces as shared.ErrDuplicateBillNumber.
func (r *GormSaleRecordRepository) Create(ctx context.Context, record *billing.SaleRecord) error {
	if err := sessionFrom(ctx, r.db).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrDuplicateBillNumber
		}
		return err
	}
	return nil
}

// Save persists all fields of an existing record
func (r *GormSaleRecordRepository) Save(ctx context.Context, record *billing.SaleRecord) error {
	return sessionFrom(ctx, r.db).Save(record).Error
}

// Delete removes a record by ID
func (r *GormSaleRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return sessionFrom(ctx, r.db).Delete(&billing.SaleRecord{}, "id = ?", id).Error
}
