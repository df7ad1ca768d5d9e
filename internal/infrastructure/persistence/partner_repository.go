package persistence

import (
	"context"
	"errors"

	"github.com/erp/marketsync/internal/domain/sales"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPartnerRepository implements sales.PartnerRepository using GORM
type GormPartnerRepository struct {
	db *gorm.DB
}

// NewGormPartnerRepository creates a new GormPartnerRepository
func NewGormPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

func (r *GormPartnerRepository) first(query *gorm.DB) (*sales.Partner, error) {
	var model models.PartnerModel
	if err := query.Order("created_at ASC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds the oldest partner with the email
func (r *GormPartnerRepository) FindByEmail(ctx context.Context, email string) (*sales.Partner, error) {
	return r.first(r.db.WithContext(ctx).Where("email = ?", email))
}

// FindByNameAndPlace finds a private partner by name, city, state and country
func (r *GormPartnerRepository) FindByNameAndPlace(ctx context.Context, name, city, stateCode, countryCode string) (*sales.Partner, error) {
	return r.first(r.db.WithContext(ctx).
		Where("name = ? AND city = ?", name, city).
		Where("state_code = ? AND country_code = ?", stateCode, countryCode).
		Where("is_company = ?", false))
}

// FindDelivery finds a delivery address equal to the fingerprint
func (r *GormPartnerRepository) FindDelivery(ctx context.Context, fp sales.Fingerprint) (*sales.Partner, error) {
	a := fp.Address
	return r.first(r.db.WithContext(ctx).
		Where("name = ? AND type = ?", fp.Name, sales.PartnerTypeDelivery).
		Where("street = ? AND street2 = ? AND zip = ?", a.Street, a.Street2, a.Zip).
		Where("city = ? AND state_code = ? AND country_code = ?", a.City, a.StateCode, a.CountryCode))
}

// Create stores a new partner
func (r *GormPartnerRepository) Create(ctx context.Context, p *sales.Partner) error {
	return r.db.WithContext(ctx).Create(models.PartnerModelFromDomain(p)).Error
}

var _ sales.PartnerRepository = (*GormPartnerRepository)(nil)
