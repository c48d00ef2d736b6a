package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walldriyan/pos11v-sub000/internal/domain/catalog"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

func batchRows(id, productID uuid.UUID, batchNumber, quantity string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "product_id", "batch_number", "quantity", "cost_price", "selling_price"}).
		AddRow(id, productID, batchNumber, quantity, "80", "100")
}

func TestGormBatchRepository_FindByID(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormBatchRepository(gormDB)

	batchID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "stock_batches" WHERE id = \$1`).
		WithArgs(batchID, 1).
		WillReturnRows(batchRows(batchID, productID, "B-001", "10"))

	batch, err := repo.FindByID(context.Background(), batchID)

	require.NoError(t, err)
	assert.Equal(t, batchID, batch.ID)
	assert.Equal(t, "B-001", batch.BatchNumber)
	assert.True(t, batch.Quantity.Equal(decimal.RequireFromString("10")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBatchRepository_FindByID_NotFound(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormBatchRepository(gormDB)

	batchID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "stock_batches"`).
		WithArgs(batchID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), batchID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormBatchRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormBatchRepository(gormDB)

	batchID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "stock_batches" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs(batchID, 1).
		WillReturnRows(batchRows(batchID, productID, "B-001", "10"))

	batch, err := repo.FindByIDForUpdate(context.Background(), batchID)

	require.NoError(t, err)
	assert.Equal(t, batchID, batch.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBatchRepository_FindReturnedStockBatch(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormBatchRepository(gormDB)

	batchID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "stock_batches" WHERE product_id = \$1 AND batch_number = \$2 .*FOR UPDATE`).
		WithArgs(productID, catalog.ReturnedStockBatchNumber, 1).
		WillReturnRows(batchRows(batchID, productID, catalog.ReturnedStockBatchNumber, "3"))

	batch, err := repo.FindReturnedStockBatch(context.Background(), productID)

	require.NoError(t, err)
	assert.True(t, batch.IsReturnedStock())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBatchRepository_FindReturnedStockBatch_NotFound(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormBatchRepository(gormDB)

	productID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "stock_batches"`).
		WithArgs(productID, catalog.ReturnedStockBatchNumber, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindReturnedStockBatch(context.Background(), productID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
