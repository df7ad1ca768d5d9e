package sales

import (
	"time"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineKind distinguishes product lines from derived charge lines
type LineKind string

const (
	LineKindProduct      LineKind = "product"
	LineKindShipping     LineKind = "shipping"
	LineKindPromotion    LineKind = "promotion_discount"
	LineKindShipDiscount LineKind = "ship_discount"
)

// OrderLine is one line of a marketplace sales order
type OrderLine struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	Name        string
	Kind        LineKind
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxAmount   decimal.Decimal
	OrderItemID string
}

// Order is a sales order materialized from a marketplace report
type Order struct {
	ID                uuid.UUID
	Name              string
	Reference         string
	SellerID          uuid.UUID
	InstanceID        uuid.UUID
	FulfillmentBy     string
	ReportID          uuid.UUID
	InvoicePartnerID  uuid.UUID
	DeliveryPartnerID uuid.UUID
	PurchaseDate      string
	IsBusiness        bool
	IsPrime           bool
	ShipServiceLevel  string
	CarrierID         *uuid.UUID
	Lines             []OrderLine
	CreatedAt         time.Time
}

// NewOrder creates an order header
func NewOrder(name, reference string, sellerID, instanceID, reportID uuid.UUID, fulfillmentBy string) (*Order, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_REFERENCE", "Order reference cannot be empty")
	}
	if name == "" {
		name = reference
	}
	return &Order{
		ID:            uuid.New(),
		Name:          name,
		Reference:     reference,
		SellerID:      sellerID,
		InstanceID:    instanceID,
		FulfillmentBy: fulfillmentBy,
		ReportID:      reportID,
		CreatedAt:     time.Now(),
	}, nil
}

// AddLine appends a line. Product lines with the same order item id are
// added only once.
func (o *Order) AddLine(line OrderLine) bool {
	if line.Kind == LineKindProduct && line.OrderItemID != "" {
		for _, existing := range o.Lines {
			if existing.Kind == LineKindProduct && existing.OrderItemID == line.OrderItemID {
				return false
			}
		}
	}
	line.ID = uuid.New()
	line.OrderID = o.ID
	o.Lines = append(o.Lines, line)
	return true
}

// Total returns the sum of quantity times unit price over every line
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Quantity.Mul(l.UnitPrice))
	}
	return total
}

// Carrier is a delivery carrier selectable by marketplace service level
type Carrier struct {
	ID           uuid.UUID
	Name         string
	ServiceLevel string
}
