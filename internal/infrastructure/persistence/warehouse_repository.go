package persistence

import (
	"context"
	"errors"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/domain/stock"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWarehouseRepository implements stock.WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by its ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Warehouse, error) {
	var model models.WarehouseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindFBAForSeller lists the seller's FBA warehouses in creation order
func (r *GormWarehouseRepository) FindFBAForSeller(ctx context.Context, sellerID uuid.UUID) ([]stock.Warehouse, error) {
	var rows []models.WarehouseModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ? AND is_fba = ?", sellerID, true).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	warehouses := make([]stock.Warehouse, len(rows))
	for i := range rows {
		warehouses[i] = *rows[i].ToDomain()
	}
	return warehouses, nil
}

// FindFulfillmentCenter finds a fulfillment center by code within a seller
func (r *GormWarehouseRepository) FindFulfillmentCenter(ctx context.Context, code string, sellerID uuid.UUID) (*stock.FulfillmentCenter, error) {
	var model models.FulfillmentCenterModel
	if err := r.db.WithContext(ctx).
		Where("code = ? AND seller_id = ?", code, sellerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ stock.WarehouseRepository = (*GormWarehouseRepository)(nil)
