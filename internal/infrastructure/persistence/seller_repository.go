package persistence

import (
	"context"
	"errors"

	"github.com/erp/marketsync/internal/domain/seller"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSellerRepository implements seller.Repository using GORM
type GormSellerRepository struct {
	db *gorm.DB
}

// NewGormSellerRepository creates a new GormSellerRepository
func NewGormSellerRepository(db *gorm.DB) *GormSellerRepository {
	return &GormSellerRepository{db: db}
}

func (r *GormSellerRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Marketplaces", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Instances", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") })
}

// FindByID loads a seller with marketplaces and instances
func (r *GormSellerRepository) FindByID(ctx context.Context, id uuid.UUID) (*seller.Seller, error) {
	var model models.SellerModel
	if err := r.preloaded(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive lists every active seller by name
func (r *GormSellerRepository) FindActive(ctx context.Context) ([]seller.Seller, error) {
	var rows []models.SellerModel
	if err := r.preloaded(ctx).Where("active = ?", true).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	sellers := make([]seller.Seller, len(rows))
	for i := range rows {
		sellers[i] = *rows[i].ToDomain()
	}
	return sellers, nil
}

// Save creates the seller with its children, or updates the header and sync stamps
func (r *GormSellerRepository) Save(ctx context.Context, s *seller.Seller) error {
	db := r.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.SellerModel{}).Where("id = ?", s.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return db.Create(models.SellerModelFromDomain(s)).Error
	}

	s.Touch()
	model := &models.SellerModel{}
	model.FromDomain(s)
	return db.Model(&models.SellerModel{}).
		Where("id = ?", s.ID).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(model).Error
}

var _ seller.Repository = (*GormSellerRepository)(nil)
