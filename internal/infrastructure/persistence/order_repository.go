package persistence

import (
	"context"

	"github.com/erp/marketsync/internal/domain/sales"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements sales.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Exists checks for an order of the instance with the reference and channel
func (r *GormOrderRepository) Exists(ctx context.Context, instanceID uuid.UUID, reference, fulfillmentBy string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("instance_id = ? AND reference = ? AND fulfillment_by = ?", instanceID, reference, fulfillmentBy).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create stores the order header and its lines
func (r *GormOrderRepository) Create(ctx context.Context, o *sales.Order) error {
	return r.db.WithContext(ctx).Create(models.OrderModelFromDomain(o)).Error
}

// FindByReport lists the orders created from a report with their lines
func (r *GormOrderRepository) FindByReport(ctx context.Context, reportID uuid.UUID) ([]sales.Order, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("report_id = ?", reportID).
		Order("created_at ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]sales.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

var _ sales.OrderRepository = (*GormOrderRepository)(nil)
