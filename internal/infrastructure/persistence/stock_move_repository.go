package persistence

import (
	"context"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/domain/stock"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockMoveRepository implements stock.MoveRepository using GORM
type GormStockMoveRepository struct {
	db *gorm.DB
}

// NewGormStockMoveRepository creates a new GormStockMoveRepository
func NewGormStockMoveRepository(db *gorm.DB) *GormStockMoveRepository {
	return &GormStockMoveRepository{db: db}
}

// Exists checks for a move with the same natural key
func (r *GormStockMoveRepository) Exists(ctx context.Context, key stock.MoveKey) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.StockMoveModel{}).
		Where("product_id = ?", key.ProductID).
		Where("quantity = ?", key.Quantity.Abs()).
		Where("adjusted_date = ?", key.AdjustedDate).
		Where("transaction_item_id = ?", key.TransactionItemID).
		Where("reason_code_id = ?", key.ReasonCodeID).
		Where("source_location_id = ?", key.SourceLocationID).
		Where("dest_location_id = ?", key.DestLocationID)
	if key.FulfillmentCenterID != nil {
		query = query.Where("fulfillment_center_id = ?", *key.FulfillmentCenterID)
	} else {
		query = query.Where("fulfillment_center_id IS NULL")
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create stores a new move
func (r *GormStockMoveRepository) Create(ctx context.Context, m *stock.StockMove) error {
	return r.db.WithContext(ctx).Create(models.StockMoveModelFromDomain(m)).Error
}

// Save updates the state and done quantity of a move
func (r *GormStockMoveRepository) Save(ctx context.Context, m *stock.StockMove) error {
	result := r.db.WithContext(ctx).Model(&models.StockMoveModel{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"state":         m.State,
			"quantity_done": m.QuantityDone,
			"done_at":       m.DoneAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByReport lists the moves generated from a report
func (r *GormStockMoveRepository) FindByReport(ctx context.Context, reportID uuid.UUID) ([]stock.StockMove, error) {
	var rows []models.StockMoveModel
	if err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	moves := make([]stock.StockMove, len(rows))
	for i := range rows {
		moves[i] = *rows[i].ToDomain()
	}
	return moves, nil
}

var _ stock.MoveRepository = (*GormStockMoveRepository)(nil)
