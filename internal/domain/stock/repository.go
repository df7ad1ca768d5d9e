package stock

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines persistence for products and marketplace listings.
// Lookups return shared.ErrNotFound when nothing matches.
type ProductRepository interface {
	FindProductByCode(ctx context.Context, code string) (*Product, error)
	FindListing(ctx context.Context, q ListingQuery) (*MarketplaceProduct, error)
	ListListings(ctx context.Context, q ListingQuery) ([]MarketplaceProduct, error)
	CreateProduct(ctx context.Context, p *Product) error
	CreateListing(ctx context.Context, m *MarketplaceProduct) error
	SaveListing(ctx context.Context, m *MarketplaceProduct) error
}

// WarehouseRepository defines lookups for warehouses and fulfillment centers
type WarehouseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	// FindFBAForSeller lists the seller's FBA warehouses in creation order
	FindFBAForSeller(ctx context.Context, sellerID uuid.UUID) ([]Warehouse, error)
	FindFulfillmentCenter(ctx context.Context, code string, sellerID uuid.UUID) (*FulfillmentCenter, error)
}

// MoveRepository persists stock moves
type MoveRepository interface {
	// Exists checks for a move with the same natural key
	Exists(ctx context.Context, key MoveKey) (bool, error)
	Create(ctx context.Context, m *StockMove) error
	Save(ctx context.Context, m *StockMove) error
	FindByReport(ctx context.Context, reportID uuid.UUID) ([]StockMove, error)
}

// AdjustmentRepository persists inventory adjustments
type AdjustmentRepository interface {
	ExistsForLocation(ctx context.Context, reportID, locationID uuid.UUID) (bool, error)
	Create(ctx context.Context, a *InventoryAdjustment) error
}

// ReasonRepository loads reason codes, groups and seller configs
type ReasonRepository interface {
	ListCodes(ctx context.Context) ([]ReasonCode, error)
	ListGroups(ctx context.Context) ([]ReasonGroup, error)
	ListConfigs(ctx context.Context, sellerID uuid.UUID) ([]AdjustmentConfig, error)
}
