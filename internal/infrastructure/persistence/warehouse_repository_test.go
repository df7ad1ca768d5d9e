package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormWarehouseRepository_FindByID_SQL(t *testing.T) {
	t.Run("finds existing warehouse", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormWarehouseRepository(db)

		warehouseID, lotID := uuid.New(), uuid.New()
		rows := sqlmock.NewRows([]string{"id", "name", "is_fba", "lot_stock_id"}).
			AddRow(warehouseID, "FBA EU", true, lotID)

		mock.ExpectQuery(`SELECT \* FROM "warehouses" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(warehouseID, 1).
			WillReturnRows(rows)

		wh, err := repo.FindByID(context.Background(), warehouseID)
		require.NoError(t, err)
		assert.Equal(t, warehouseID, wh.ID)
		assert.True(t, wh.IsFBA)
		assert.Equal(t, lotID, wh.LotStockID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps not found", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormWarehouseRepository(db)

		warehouseID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "warehouses" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(warehouseID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		wh, err := repo.FindByID(context.Background(), warehouseID)
		assert.Nil(t, wh)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockMoveRepository_Exists_SQL(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormStockMoveRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "stock_moves" WHERE product_id = \$1 .* AND fulfillment_center_id IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), stockMoveKeyWithoutCenter())
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
