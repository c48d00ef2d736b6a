package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/walldriyan/pos11v-sub000/internal/domain/catalog"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// GormBatchRepository implements catalog.BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.StockBatch, error) {
	var batch catalog.StockBatch
	if err := sessionFrom(ctx, r.db).
		First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByIDForUpdate finds a batch and takes a row lock so concurrent
// sales and returns serialize their quantity updates.
func (r *GormBatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.StockBatch, error) {
	var batch catalog.StockBatch
	if err := sessionFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindReturnedStockBatch finds the synthetic returned-stock batch of a
// product, locked for update.
func (r *GormBatchRepository) FindReturnedStockBatch(ctx context.Context, productID uuid.UUID) (*catalog.StockBatch, error) {
	var batch catalog.StockBatch
	if err := sessionFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND batch_number = ?", productID, catalog.ReturnedStockBatchNumber).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// Save persists a batch
func (r *GormBatchRepository) Save(ctx context.Context, batch *catalog.StockBatch) error {
	return sessionFrom(ctx, r.db).Save(batch).Error
}

// Create inserts a new batch
func (r *GormBatchRepository) Create(ctx context.Context, batch *catalog.StockBatch) error {
	return sessionFrom(ctx, r.db).Create(batch).Error
}
