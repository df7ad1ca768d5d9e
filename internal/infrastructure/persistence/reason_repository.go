package persistence

import (
	"context"

	"github.com/erp/marketsync/internal/domain/stock"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReasonRepository implements stock.ReasonRepository using GORM
type GormReasonRepository struct {
	db *gorm.DB
}

// NewGormReasonRepository creates a new GormReasonRepository
func NewGormReasonRepository(db *gorm.DB) *GormReasonRepository {
	return &GormReasonRepository{db: db}
}

// ListCodes lists every reason code
func (r *GormReasonRepository) ListCodes(ctx context.Context) ([]stock.ReasonCode, error) {
	var rows []models.ReasonCodeModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	codes := make([]stock.ReasonCode, len(rows))
	for i := range rows {
		codes[i] = rows[i].ToDomain()
	}
	return codes, nil
}

// ListGroups lists every reason group
func (r *GormReasonRepository) ListGroups(ctx context.Context) ([]stock.ReasonGroup, error) {
	var rows []models.ReasonGroupModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	groups := make([]stock.ReasonGroup, len(rows))
	for i := range rows {
		groups[i] = rows[i].ToDomain()
	}
	return groups, nil
}

// ListConfigs lists the adjustment configs of a seller
func (r *GormReasonRepository) ListConfigs(ctx context.Context, sellerID uuid.UUID) ([]stock.AdjustmentConfig, error) {
	var rows []models.AdjustmentConfigModel
	if err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).Find(&rows).Error; err != nil {
		return nil, err
	}
	configs := make([]stock.AdjustmentConfig, len(rows))
	for i := range rows {
		configs[i] = rows[i].ToDomain()
	}
	return configs, nil
}

var _ stock.ReasonRepository = (*GormReasonRepository)(nil)
