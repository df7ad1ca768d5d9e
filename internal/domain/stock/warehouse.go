package stock

import (
	"github.com/google/uuid"
)

// Disposition tags the condition of an inventory line
type Disposition string

const (
	DispositionSellable   Disposition = "SELLABLE"
	DispositionUnsellable Disposition = "UNSELLABLE"
)

// IsSellable reports whether stock belongs in the sellable location
func (d Disposition) IsSellable() bool {
	return d == DispositionSellable
}

// Location is a stock location
type Location struct {
	ID          uuid.UUID
	Name        string
	WarehouseID *uuid.UUID
}

// Warehouse groups a sellable stock location and an optional unsellable one
type Warehouse struct {
	ID                   uuid.UUID
	Name                 string
	SellerID             *uuid.UUID
	IsFBA                bool
	LotStockID           uuid.UUID
	UnsellableLocationID *uuid.UUID
}

// HasUnsellable reports whether an unsellable location is configured
func (w *Warehouse) HasUnsellable() bool {
	return w.UnsellableLocationID != nil && *w.UnsellableLocationID != uuid.Nil
}

// LocationFor returns the location matching a disposition. The bool is
// false when an unsellable location is needed but not configured.
func (w *Warehouse) LocationFor(d Disposition) (uuid.UUID, bool) {
	if d.IsSellable() {
		return w.LotStockID, true
	}
	if !w.HasUnsellable() {
		return uuid.Nil, false
	}
	return *w.UnsellableLocationID, true
}

// FulfillmentCenter is a marketplace fulfillment center mapped to a local warehouse
type FulfillmentCenter struct {
	ID          uuid.UUID
	Code        string
	SellerID    uuid.UUID
	WarehouseID *uuid.UUID
}
