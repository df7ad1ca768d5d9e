package persistence

import (
	"context"

	"github.com/erp/marketsync/internal/domain/stock"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAdjustmentRepository implements stock.AdjustmentRepository using GORM
type GormAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormAdjustmentRepository creates a new GormAdjustmentRepository
func NewGormAdjustmentRepository(db *gorm.DB) *GormAdjustmentRepository {
	return &GormAdjustmentRepository{db: db}
}

// ExistsForLocation checks for an adjustment of the report on the location
func (r *GormAdjustmentRepository) ExistsForLocation(ctx context.Context, reportID, locationID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AdjustmentModel{}).
		Where("report_id = ? AND location_id = ?", reportID, locationID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create stores the adjustment and its lines
func (r *GormAdjustmentRepository) Create(ctx context.Context, a *stock.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(models.AdjustmentModelFromDomain(a)).Error
}

var _ stock.AdjustmentRepository = (*GormAdjustmentRepository)(nil)
