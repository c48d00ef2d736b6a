package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/walldriyan/pos11v-sub000/internal/domain/catalog"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product with its batches
func (r *GormProductRepository) FindByID(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := scoped(sessionFrom(ctx, r.db), scope).
		Preload("Batches").
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads a set of products keyed by ID. Missing IDs are simply
// absent from the map; callers decide whether that is an error.
func (r *GormProductRepository) FindByIDs(ctx context.Context, scope shared.TenantScope, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*catalog.Product{}, nil
	}

	var products []catalog.Product
	if err := scoped(sessionFrom(ctx, r.db), scope).
		Preload("Batches").
		Where("id IN ?", ids).
		Find(&products).Error; err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]*catalog.Product, len(products))
	for idx := range products {
		result[products[idx].ID] = &products[idx]
	}
	return result, nil
}

// Save persists a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return sessionFrom(ctx, r.db).Save(product).Error
}
