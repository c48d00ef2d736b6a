package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// ProductRepository provides access to products and their batches
type ProductRepository interface {
	FindByID(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, scope shared.TenantScope, ids []uuid.UUID) (map[uuid.UUID]*Product, error)
	Save(ctx context.Context, product *Product) error
}

// BatchRepository provides access to stock batches. FindByIDForUpdate must
// acquire a row lock so racing sales/returns cannot lose updates.
type BatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockBatch, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*StockBatch, error)
	FindReturnedStockBatch(ctx context.Context, productID uuid.UUID) (*StockBatch, error)
	Save(ctx context.Context, batch *StockBatch) error
	Create(ctx context.Context, batch *StockBatch) error
}
