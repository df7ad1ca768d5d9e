package persistence

import (
	"context"
	"errors"

	"github.com/erp/marketsync/internal/domain/sales"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCarrierRepository implements sales.CarrierRepository using GORM
type GormCarrierRepository struct {
	db *gorm.DB
}

// NewGormCarrierRepository creates a new GormCarrierRepository
func NewGormCarrierRepository(db *gorm.DB) *GormCarrierRepository {
	return &GormCarrierRepository{db: db}
}

// FindByServiceLevel finds the carrier mapped to a marketplace service level
func (r *GormCarrierRepository) FindByServiceLevel(ctx context.Context, level string) (*sales.Carrier, error) {
	var model models.CarrierModel
	if err := r.db.WithContext(ctx).Where("service_level = ?", level).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ sales.CarrierRepository = (*GormCarrierRepository)(nil)
