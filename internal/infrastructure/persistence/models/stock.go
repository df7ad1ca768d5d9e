package models

import (
	"time"

	"github.com/erp/marketsync/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is a local catalog product
type ProductModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Name        string    `gorm:"type:varchar(255);not null"`
	DefaultCode string    `gorm:"type:varchar(100);index"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the row to a domain Product
func (m *ProductModel) ToDomain() *stock.Product {
	return &stock.Product{
		ID:          m.ID,
		Name:        m.Name,
		DefaultCode: m.DefaultCode,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// ProductModelFromDomain creates a row from a domain Product
func ProductModelFromDomain(p *stock.Product) *ProductModel {
	return &ProductModel{
		ID:          p.ID,
		Name:        p.Name,
		DefaultCode: p.DefaultCode,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

// ListingModel is a marketplace product
type ListingModel struct {
	ID                    uuid.UUID           `gorm:"type:uuid;primary_key"`
	ProductID             uuid.UUID           `gorm:"type:uuid;not null;index"`
	InstanceID            uuid.UUID           `gorm:"type:uuid;not null;index:idx_listing_lookup,priority:1"`
	Name                  string              `gorm:"type:varchar(255)"`
	SellerSKU             string              `gorm:"column:seller_sku;type:varchar(100);index:idx_listing_lookup,priority:2"`
	ASIN                  string              `gorm:"column:asin;type:varchar(40);index"`
	FulfillmentChannelSKU string              `gorm:"column:fulfillment_channel_sku;type:varchar(100)"`
	FulfillmentBy         stock.FulfillmentBy `gorm:"type:varchar(3);not null;index:idx_listing_lookup,priority:3"`
	CreatedAt             time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ListingModel) TableName() string {
	return "marketplace_products"
}

// ToDomain converts the row to a domain MarketplaceProduct
func (m *ListingModel) ToDomain() *stock.MarketplaceProduct {
	return &stock.MarketplaceProduct{
		ID:                    m.ID,
		ProductID:             m.ProductID,
		InstanceID:            m.InstanceID,
		Name:                  m.Name,
		SellerSKU:             m.SellerSKU,
		ASIN:                  m.ASIN,
		FulfillmentChannelSKU: m.FulfillmentChannelSKU,
		FulfillmentBy:         m.FulfillmentBy,
		CreatedAt:             m.CreatedAt,
	}
}

// ListingModelFromDomain creates a row from a domain MarketplaceProduct
func ListingModelFromDomain(p *stock.MarketplaceProduct) *ListingModel {
	return &ListingModel{
		ID:                    p.ID,
		ProductID:             p.ProductID,
		InstanceID:            p.InstanceID,
		Name:                  p.Name,
		SellerSKU:             p.SellerSKU,
		ASIN:                  p.ASIN,
		FulfillmentChannelSKU: p.FulfillmentChannelSKU,
		FulfillmentBy:         p.FulfillmentBy,
		CreatedAt:             p.CreatedAt,
	}
}

// WarehouseModel is a stock warehouse
type WarehouseModel struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name                 string     `gorm:"type:varchar(200);not null"`
	SellerID             *uuid.UUID `gorm:"type:uuid;index"`
	IsFBA                bool       `gorm:"column:is_fba;not null;default:false"`
	LotStockID           uuid.UUID  `gorm:"type:uuid;not null"`
	UnsellableLocationID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt            time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// ToDomain converts the row to a domain Warehouse
func (m *WarehouseModel) ToDomain() *stock.Warehouse {
	return &stock.Warehouse{
		ID:                   m.ID,
		Name:                 m.Name,
		SellerID:             m.SellerID,
		IsFBA:                m.IsFBA,
		LotStockID:           m.LotStockID,
		UnsellableLocationID: m.UnsellableLocationID,
	}
}

// FulfillmentCenterModel maps a marketplace fulfillment center to a warehouse
type FulfillmentCenterModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	Code        string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_fc_code_seller,priority:1"`
	SellerID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_fc_code_seller,priority:2"`
	WarehouseID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (FulfillmentCenterModel) TableName() string {
	return "fulfillment_centers"
}

// ToDomain converts the row to a domain FulfillmentCenter
func (m *FulfillmentCenterModel) ToDomain() *stock.FulfillmentCenter {
	return &stock.FulfillmentCenter{ID: m.ID, Code: m.Code, SellerID: m.SellerID, WarehouseID: m.WarehouseID}
}

// StockMoveModel is a stock movement
type StockMoveModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key"`
	Name                string          `gorm:"type:varchar(255)"`
	Origin              string          `gorm:"type:varchar(64);index"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_move_key,priority:1"`
	Quantity            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityDone        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	State               stock.MoveState `gorm:"type:varchar(20);not null"`
	SourceLocationID    uuid.UUID       `gorm:"type:uuid;not null"`
	DestLocationID      uuid.UUID       `gorm:"type:uuid;not null"`
	AdjustedDate        time.Time       `gorm:"index:idx_move_key,priority:2"`
	TransactionItemID   string          `gorm:"type:varchar(64);index:idx_move_key,priority:3"`
	FulfillmentCenterID *uuid.UUID      `gorm:"type:uuid"`
	ReasonCodeID        uuid.UUID       `gorm:"type:uuid;not null"`
	CodeDescription     string          `gorm:"type:varchar(255)"`
	ReportID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedAt           time.Time       `gorm:"not null"`
	DoneAt              *time.Time
}

// TableName returns the table name for GORM
func (StockMoveModel) TableName() string {
	return "stock_moves"
}

// ToDomain converts the row to a domain StockMove
func (m *StockMoveModel) ToDomain() *stock.StockMove {
	return &stock.StockMove{
		ID:                  m.ID,
		Name:                m.Name,
		Origin:              m.Origin,
		ProductID:           m.ProductID,
		Quantity:            m.Quantity,
		QuantityDone:        m.QuantityDone,
		State:               m.State,
		SourceLocationID:    m.SourceLocationID,
		DestLocationID:      m.DestLocationID,
		AdjustedDate:        m.AdjustedDate,
		TransactionItemID:   m.TransactionItemID,
		FulfillmentCenterID: m.FulfillmentCenterID,
		ReasonCodeID:        m.ReasonCodeID,
		CodeDescription:     m.CodeDescription,
		ReportID:            m.ReportID,
		CreatedAt:           m.CreatedAt,
		DoneAt:              m.DoneAt,
	}
}

// StockMoveModelFromDomain creates a row from a domain StockMove
func StockMoveModelFromDomain(s *stock.StockMove) *StockMoveModel {
	return &StockMoveModel{
		ID:                  s.ID,
		Name:                s.Name,
		Origin:              s.Origin,
		ProductID:           s.ProductID,
		Quantity:            s.Quantity,
		QuantityDone:        s.QuantityDone,
		State:               s.State,
		SourceLocationID:    s.SourceLocationID,
		DestLocationID:      s.DestLocationID,
		AdjustedDate:        s.AdjustedDate,
		TransactionItemID:   s.TransactionItemID,
		FulfillmentCenterID: s.FulfillmentCenterID,
		ReasonCodeID:        s.ReasonCodeID,
		CodeDescription:     s.CodeDescription,
		ReportID:            s.ReportID,
		CreatedAt:           s.CreatedAt,
		DoneAt:              s.DoneAt,
	}
}

// AdjustmentModel is an inventory adjustment header
type AdjustmentModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	Name       string    `gorm:"type:varchar(255)"`
	ReportID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_adjustment_report_location,priority:1"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_adjustment_report_location,priority:2"`
	Applied    bool      `gorm:"not null;default:false"`
	AppliedAt  *time.Time
	CreatedAt  time.Time             `gorm:"not null"`
	Lines      []AdjustmentLineModel `gorm:"foreignKey:AdjustmentID"`
}

// TableName returns the table name for GORM
func (AdjustmentModel) TableName() string {
	return "inventory_adjustments"
}

// AdjustmentModelFromDomain creates a header row with its lines
func AdjustmentModelFromDomain(a *stock.InventoryAdjustment) *AdjustmentModel {
	m := &AdjustmentModel{
		ID:         a.ID,
		Name:       a.Name,
		ReportID:   a.ReportID,
		LocationID: a.LocationID,
		Applied:    a.Applied,
		AppliedAt:  a.AppliedAt,
		CreatedAt:  a.CreatedAt,
	}
	for _, l := range a.Lines {
		m.Lines = append(m.Lines, AdjustmentLineModel{
			ID:           uuid.New(),
			AdjustmentID: a.ID,
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
		})
	}
	return m
}

// AdjustmentLineModel is one counted product of an adjustment
type AdjustmentLineModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	AdjustmentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (AdjustmentLineModel) TableName() string {
	return "inventory_adjustment_lines"
}

// ReasonGroupModel is a reason code group
type ReasonGroupModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	Name          string    `gorm:"type:varchar(100);not null"`
	IsCounterpart bool      `gorm:"not null;default:false"`
	IsDamaged     bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ReasonGroupModel) TableName() string {
	return "reason_groups"
}

// ToDomain converts the row to a domain ReasonGroup
func (m *ReasonGroupModel) ToDomain() stock.ReasonGroup {
	return stock.ReasonGroup{ID: m.ID, Name: m.Name, IsCounterpart: m.IsCounterpart, IsDamaged: m.IsDamaged}
}

// ReasonCodeModel is a marketplace adjustment reason code
type ReasonCodeModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name          string     `gorm:"type:varchar(20);not null;index"`
	Description   string     `gorm:"type:varchar(255)"`
	GroupID       *uuid.UUID `gorm:"type:uuid"`
	CounterpartID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ReasonCodeModel) TableName() string {
	return "reason_codes"
}

// ToDomain converts the row to a domain ReasonCode
func (m *ReasonCodeModel) ToDomain() stock.ReasonCode {
	return stock.ReasonCode{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		GroupID:       m.GroupID,
		CounterpartID: m.CounterpartID,
	}
}

// AdjustmentConfigModel is the per-seller setup of a reason group
type AdjustmentConfigModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key"`
	SellerID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	GroupID         uuid.UUID  `gorm:"type:uuid;not null"`
	LocationID      *uuid.UUID `gorm:"type:uuid"`
	SendEmail       bool       `gorm:"not null;default:false"`
	TemplateSubject string     `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (AdjustmentConfigModel) TableName() string {
	return "adjustment_configs"
}

// ToDomain converts the row to a domain AdjustmentConfig
func (m *AdjustmentConfigModel) ToDomain() stock.AdjustmentConfig {
	return stock.AdjustmentConfig{
		ID:              m.ID,
		SellerID:        m.SellerID,
		GroupID:         m.GroupID,
		LocationID:      m.LocationID,
		SendEmail:       m.SendEmail,
		TemplateSubject: m.TemplateSubject,
	}
}
