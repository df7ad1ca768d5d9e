package persistence

import (
	"context"
	"errors"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/domain/stock"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements stock.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindProductByCode finds the first product with the default code
func (r *GormProductRepository) FindProductByCode(ctx context.Context, code string) (*stock.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("default_code = ?", code).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormProductRepository) listingQuery(ctx context.Context, q stock.ListingQuery) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.ListingModel{})
	if q.SellerSKU != "" {
		query = query.Where("seller_sku = ?", q.SellerSKU)
	}
	if q.ASIN != "" {
		query = query.Where("asin = ?", q.ASIN)
	}
	if q.FulfillmentBy != "" {
		query = query.Where("fulfillment_by = ?", q.FulfillmentBy)
	}
	if len(q.InstanceIDs) > 0 {
		query = query.Where("instance_id IN ?", q.InstanceIDs)
	}
	return query.Order("created_at ASC")
}

// FindListing finds the first listing matching the query
func (r *GormProductRepository) FindListing(ctx context.Context, q stock.ListingQuery) (*stock.MarketplaceProduct, error) {
	var model models.ListingModel
	if err := r.listingQuery(ctx, q).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListListings lists every listing matching the query
func (r *GormProductRepository) ListListings(ctx context.Context, q stock.ListingQuery) ([]stock.MarketplaceProduct, error) {
	var rows []models.ListingModel
	if err := r.listingQuery(ctx, q).Find(&rows).Error; err != nil {
		return nil, err
	}
	listings := make([]stock.MarketplaceProduct, len(rows))
	for i := range rows {
		listings[i] = *rows[i].ToDomain()
	}
	return listings, nil
}

// CreateProduct stores a new product
func (r *GormProductRepository) CreateProduct(ctx context.Context, p *stock.Product) error {
	return r.db.WithContext(ctx).Create(models.ProductModelFromDomain(p)).Error
}

// CreateListing stores a new marketplace product
func (r *GormProductRepository) CreateListing(ctx context.Context, m *stock.MarketplaceProduct) error {
	return r.db.WithContext(ctx).Create(models.ListingModelFromDomain(m)).Error
}

// SaveListing updates a marketplace product
func (r *GormProductRepository) SaveListing(ctx context.Context, m *stock.MarketplaceProduct) error {
	result := r.db.WithContext(ctx).Model(&models.ListingModel{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"name":                    m.Name,
			"seller_sku":              m.SellerSKU,
			"asin":                    m.ASIN,
			"fulfillment_channel_sku": m.FulfillmentChannelSKU,
			"fulfillment_by":          m.FulfillmentBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ stock.ProductRepository = (*GormProductRepository)(nil)
