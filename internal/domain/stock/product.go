package stock

import (
	"time"

	"github.com/google/uuid"
)

// FulfillmentBy is the fulfillment channel of a marketplace listing
type FulfillmentBy string

const (
	FulfillmentFBA FulfillmentBy = "FBA"
	FulfillmentFBM FulfillmentBy = "FBM"
)

// Product is a local catalog product
type Product struct {
	ID          uuid.UUID
	Name        string
	DefaultCode string
	Description string
	CreatedAt   time.Time
}

// NewProduct creates a storable product for a marketplace sku
func NewProduct(name, code string) *Product {
	return &Product{
		ID:          uuid.New(),
		Name:        name,
		DefaultCode: code,
		Description: name,
		CreatedAt:   time.Now(),
	}
}

// MarketplaceProduct links a local product to a marketplace listing
type MarketplaceProduct struct {
	ID                    uuid.UUID
	ProductID             uuid.UUID
	InstanceID            uuid.UUID
	Name                  string
	SellerSKU             string
	ASIN                  string
	FulfillmentChannelSKU string
	FulfillmentBy         FulfillmentBy
	CreatedAt             time.Time
}

// NewMarketplaceProduct creates a listing for product on instance
func NewMarketplaceProduct(p *Product, instanceID uuid.UUID, by FulfillmentBy) *MarketplaceProduct {
	return &MarketplaceProduct{
		ID:            uuid.New(),
		ProductID:     p.ID,
		InstanceID:    instanceID,
		Name:          p.Name,
		SellerSKU:     p.DefaultCode,
		FulfillmentBy: by,
		CreatedAt:     time.Now(),
	}
}

// BackfillChannelSKU sets the fulfillment channel sku when empty and
// reports whether anything changed
func (m *MarketplaceProduct) BackfillChannelSKU(fnsku string) bool {
	if m.FulfillmentChannelSKU != "" || fnsku == "" {
		return false
	}
	m.FulfillmentChannelSKU = fnsku
	return true
}

// ListingQuery searches marketplace products. Empty fields are ignored;
// InstanceIDs restricts the instances when non-empty.
type ListingQuery struct {
	SellerSKU     string
	ASIN          string
	FulfillmentBy FulfillmentBy
	InstanceIDs   []uuid.UUID
}
