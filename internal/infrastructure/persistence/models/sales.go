package models

import (
	"time"

	"github.com/erp/marketsync/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartnerModel is a customer or one of its addresses
type PartnerModel struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key"`
	ParentID    *uuid.UUID        `gorm:"type:uuid;index"`
	Name        string            `gorm:"type:varchar(255);not null;index"`
	Type        sales.PartnerType `gorm:"type:varchar(20);not null;default:'contact'"`
	Email       string            `gorm:"type:varchar(255);index"`
	Phone       string            `gorm:"type:varchar(64)"`
	VAT         string            `gorm:"column:vat;type:varchar(64)"`
	Lang        string            `gorm:"type:varchar(10)"`
	IsCompany   bool              `gorm:"not null;default:false"`
	Street      string            `gorm:"type:varchar(255)"`
	Street2     string            `gorm:"column:street2;type:varchar(255)"`
	Zip         string            `gorm:"type:varchar(20)"`
	City        string            `gorm:"type:varchar(100)"`
	StateCode   string            `gorm:"type:varchar(20)"`
	CountryCode string            `gorm:"type:varchar(2)"`
	CreatedAt   time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PartnerModel) TableName() string {
	return "partners"
}

// ToDomain converts the row to a domain Partner
func (m *PartnerModel) ToDomain() *sales.Partner {
	return &sales.Partner{
		ID:        m.ID,
		ParentID:  m.ParentID,
		Name:      m.Name,
		Type:      m.Type,
		Email:     m.Email,
		Phone:     m.Phone,
		VAT:       m.VAT,
		Lang:      m.Lang,
		IsCompany: m.IsCompany,
		Address: sales.Address{
			Street:      m.Street,
			Street2:     m.Street2,
			Zip:         m.Zip,
			City:        m.City,
			StateCode:   m.StateCode,
			CountryCode: m.CountryCode,
		},
		CreatedAt: m.CreatedAt,
	}
}

// PartnerModelFromDomain creates a row from a domain Partner
func PartnerModelFromDomain(p *sales.Partner) *PartnerModel {
	return &PartnerModel{
		ID:          p.ID,
		ParentID:    p.ParentID,
		Name:        p.Name,
		Type:        p.Type,
		Email:       p.Email,
		Phone:       p.Phone,
		VAT:         p.VAT,
		Lang:        p.Lang,
		IsCompany:   p.IsCompany,
		Street:      p.Address.Street,
		Street2:     p.Address.Street2,
		Zip:         p.Address.Zip,
		City:        p.Address.City,
		StateCode:   p.Address.StateCode,
		CountryCode: p.Address.CountryCode,
		CreatedAt:   p.CreatedAt,
	}
}

// CarrierModel is a delivery carrier
type CarrierModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Name         string    `gorm:"type:varchar(100);not null"`
	ServiceLevel string    `gorm:"type:varchar(64);index"`
}

// TableName returns the table name for GORM
func (CarrierModel) TableName() string {
	return "carriers"
}

// ToDomain converts the row to a domain Carrier
func (m *CarrierModel) ToDomain() *sales.Carrier {
	return &sales.Carrier{ID: m.ID, Name: m.Name, ServiceLevel: m.ServiceLevel}
}

// OrderModel is a marketplace sales order header
type OrderModel struct {
	ID                uuid.UUID        `gorm:"type:uuid;primary_key"`
	Name              string           `gorm:"type:varchar(64);not null"`
	Reference         string           `gorm:"type:varchar(64);not null;index:idx_order_ref,priority:2"`
	SellerID          uuid.UUID        `gorm:"type:uuid;not null"`
	InstanceID        uuid.UUID        `gorm:"type:uuid;not null;index:idx_order_ref,priority:1"`
	FulfillmentBy     string           `gorm:"type:varchar(3);not null;index:idx_order_ref,priority:3"`
	ReportID          uuid.UUID        `gorm:"type:uuid;index"`
	InvoicePartnerID  uuid.UUID        `gorm:"type:uuid;not null"`
	DeliveryPartnerID uuid.UUID        `gorm:"type:uuid;not null"`
	PurchaseDate      string           `gorm:"type:varchar(40)"`
	IsBusiness        bool             `gorm:"not null;default:false"`
	IsPrime           bool             `gorm:"not null;default:false"`
	ShipServiceLevel  string           `gorm:"type:varchar(64)"`
	CarrierID         *uuid.UUID       `gorm:"type:uuid"`
	CreatedAt         time.Time        `gorm:"not null"`
	Lines             []OrderLineModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the row and its lines to a domain Order
func (m *OrderModel) ToDomain() *sales.Order {
	o := &sales.Order{
		ID:                m.ID,
		Name:              m.Name,
		Reference:         m.Reference,
		SellerID:          m.SellerID,
		InstanceID:        m.InstanceID,
		FulfillmentBy:     m.FulfillmentBy,
		ReportID:          m.ReportID,
		InvoicePartnerID:  m.InvoicePartnerID,
		DeliveryPartnerID: m.DeliveryPartnerID,
		PurchaseDate:      m.PurchaseDate,
		IsBusiness:        m.IsBusiness,
		IsPrime:           m.IsPrime,
		ShipServiceLevel:  m.ShipServiceLevel,
		CarrierID:         m.CarrierID,
		CreatedAt:         m.CreatedAt,
	}
	for _, l := range m.Lines {
		o.Lines = append(o.Lines, sales.OrderLine{
			ID:          l.ID,
			OrderID:     l.OrderID,
			ProductID:   l.ProductID,
			Name:        l.Name,
			Kind:        l.Kind,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxAmount:   l.TaxAmount,
			OrderItemID: l.OrderItemID,
		})
	}
	return o
}

// OrderModelFromDomain creates a header row with its lines
func OrderModelFromDomain(o *sales.Order) *OrderModel {
	m := &OrderModel{
		ID:                o.ID,
		Name:              o.Name,
		Reference:         o.Reference,
		SellerID:          o.SellerID,
		InstanceID:        o.InstanceID,
		FulfillmentBy:     o.FulfillmentBy,
		ReportID:          o.ReportID,
		InvoicePartnerID:  o.InvoicePartnerID,
		DeliveryPartnerID: o.DeliveryPartnerID,
		PurchaseDate:      o.PurchaseDate,
		IsBusiness:        o.IsBusiness,
		IsPrime:           o.IsPrime,
		ShipServiceLevel:  o.ShipServiceLevel,
		CarrierID:         o.CarrierID,
		CreatedAt:         o.CreatedAt,
	}
	for _, l := range o.Lines {
		m.Lines = append(m.Lines, OrderLineModel{
			ID:          l.ID,
			OrderID:     o.ID,
			ProductID:   l.ProductID,
			Name:        l.Name,
			Kind:        l.Kind,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxAmount:   l.TaxAmount,
			OrderItemID: l.OrderItemID,
		})
	}
	return m
}

// OrderLineModel is one sales order line
type OrderLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid"`
	Name        string          `gorm:"type:varchar(255)"`
	Kind        sales.LineKind  `gorm:"type:varchar(30);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OrderItemID string          `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "sales_order_lines"
}
