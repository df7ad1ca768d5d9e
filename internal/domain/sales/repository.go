package sales

import (
	"context"

	"github.com/google/uuid"
)

// PartnerRepository defines partner lookups and creation.
// Lookups return shared.ErrNotFound when nothing matches.
type PartnerRepository interface {
	FindByEmail(ctx context.Context, email string) (*Partner, error)
	// FindByNameAndPlace matches non-company partners by name, city, state and country
	FindByNameAndPlace(ctx context.Context, name, city, stateCode, countryCode string) (*Partner, error)
	FindDelivery(ctx context.Context, fp Fingerprint) (*Partner, error)
	Create(ctx context.Context, p *Partner) error
}

// OrderRepository persists marketplace sales orders
type OrderRepository interface {
	// Exists checks for an order of the instance with the reference and fulfillment channel
	Exists(ctx context.Context, instanceID uuid.UUID, reference, fulfillmentBy string) (bool, error)
	// Create stores the header and its lines
	Create(ctx context.Context, o *Order) error
	FindByReport(ctx context.Context, reportID uuid.UUID) ([]Order, error)
}

// CarrierRepository resolves carriers
type CarrierRepository interface {
	FindByServiceLevel(ctx context.Context, level string) (*Carrier, error)
}
