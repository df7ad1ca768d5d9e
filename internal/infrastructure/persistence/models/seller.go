package models

import (
	"time"

	"github.com/erp/marketsync/internal/domain/seller"
	"github.com/google/uuid"
)

// SellerModel is the persistence model for the Seller aggregate
type SellerModel struct {
	BaseModel
	Name                      string         `gorm:"type:varchar(200);not null"`
	Active                    bool           `gorm:"not null;default:true;index"`
	MerchantID                string         `gorm:"type:varchar(64);not null"`
	AuthToken                 string         `gorm:"type:varchar(255)"`
	MarketplaceCode           string         `gorm:"type:varchar(10)"`
	Program                   seller.Program `gorm:"type:varchar(20)"`
	USProgram                 string         `gorm:"type:varchar(20)"`
	IsEuropean                bool           `gorm:"not null;default:false"`
	UsesOtherSoftwareForFBA   bool           `gorm:"not null;default:false"`
	IncludeReservedQty        bool           `gorm:"not null;default:false"`
	AutoApplyInventory        bool           `gorm:"not null;default:false"`
	CreateNewProduct          bool           `gorm:"not null;default:false"`
	VCSEnabled                bool           `gorm:"column:vcs_enabled;not null;default:false"`
	OrderPrefix               string         `gorm:"type:varchar(20)"`
	ShippingProductID         *uuid.UUID     `gorm:"type:uuid"`
	PromotionProductID        *uuid.UUID     `gorm:"type:uuid"`
	ShipDiscountProductID     *uuid.UUID     `gorm:"type:uuid"`
	InventoryLastSyncAt       *time.Time
	StockAdjustmentLastSyncAt *time.Time
	LiveInventoryReportDays   int                `gorm:"not null;default:3"`
	StockAdjustmentReportDays int                `gorm:"not null;default:3"`
	Marketplaces              []MarketplaceModel `gorm:"foreignKey:SellerID"`
	Instances                 []InstanceModel    `gorm:"foreignKey:SellerID"`
}

// TableName returns the table name for GORM
func (SellerModel) TableName() string {
	return "sellers"
}

// ToDomain converts the persistence model to a domain Seller
func (m *SellerModel) ToDomain() *seller.Seller {
	s := &seller.Seller{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Active:     m.Active,
		Credentials: seller.Credentials{
			MerchantID:      m.MerchantID,
			AuthToken:       m.AuthToken,
			MarketplaceCode: m.MarketplaceCode,
		},
		Program:                   m.Program,
		USProgram:                 m.USProgram,
		IsEuropean:                m.IsEuropean,
		UsesOtherSoftwareForFBA:   m.UsesOtherSoftwareForFBA,
		IncludeReservedQty:        m.IncludeReservedQty,
		AutoApplyInventory:        m.AutoApplyInventory,
		CreateNewProduct:          m.CreateNewProduct,
		VCSEnabled:                m.VCSEnabled,
		OrderPrefix:               m.OrderPrefix,
		ShippingProductID:         m.ShippingProductID,
		PromotionProductID:        m.PromotionProductID,
		ShipDiscountProductID:     m.ShipDiscountProductID,
		InventoryLastSyncAt:       m.InventoryLastSyncAt,
		StockAdjustmentLastSyncAt: m.StockAdjustmentLastSyncAt,
		LiveInventoryReportDays:   m.LiveInventoryReportDays,
		StockAdjustmentReportDays: m.StockAdjustmentReportDays,
	}
	for i := range m.Marketplaces {
		s.Marketplaces = append(s.Marketplaces, m.Marketplaces[i].ToDomain())
	}
	for i := range m.Instances {
		s.Instances = append(s.Instances, m.Instances[i].ToDomain())
	}
	return s
}

// FromDomain populates the header fields from a domain Seller.
// Marketplaces and instances are written by their own rows.
func (m *SellerModel) FromDomain(s *seller.Seller) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Name = s.Name
	m.Active = s.Active
	m.MerchantID = s.Credentials.MerchantID
	m.AuthToken = s.Credentials.AuthToken
	m.MarketplaceCode = s.Credentials.MarketplaceCode
	m.Program = s.Program
	m.USProgram = s.USProgram
	m.IsEuropean = s.IsEuropean
	m.UsesOtherSoftwareForFBA = s.UsesOtherSoftwareForFBA
	m.IncludeReservedQty = s.IncludeReservedQty
	m.AutoApplyInventory = s.AutoApplyInventory
	m.CreateNewProduct = s.CreateNewProduct
	m.VCSEnabled = s.VCSEnabled
	m.OrderPrefix = s.OrderPrefix
	m.ShippingProductID = s.ShippingProductID
	m.PromotionProductID = s.PromotionProductID
	m.ShipDiscountProductID = s.ShipDiscountProductID
	m.InventoryLastSyncAt = s.InventoryLastSyncAt
	m.StockAdjustmentLastSyncAt = s.StockAdjustmentLastSyncAt
	m.LiveInventoryReportDays = s.LiveInventoryReportDays
	m.StockAdjustmentReportDays = s.StockAdjustmentReportDays
}

// SellerModelFromDomain creates a persistence model from a domain Seller
func SellerModelFromDomain(s *seller.Seller) *SellerModel {
	m := &SellerModel{}
	m.FromDomain(s)
	for _, mp := range s.Marketplaces {
		m.Marketplaces = append(m.Marketplaces, MarketplaceModel{
			ID: mp.ID, SellerID: s.ID, Name: mp.Name, MarketplaceID: mp.MarketplaceID,
		})
	}
	for _, inst := range s.Instances {
		im := InstanceModel{}
		im.FromDomain(s.ID, inst)
		m.Instances = append(m.Instances, im)
	}
	return m
}

// MarketplaceModel is a sales channel of a seller
type MarketplaceModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	SellerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"type:varchar(100);not null"`
	MarketplaceID string    `gorm:"type:varchar(32);not null"`
}

// TableName returns the table name for GORM
func (MarketplaceModel) TableName() string {
	return "seller_marketplaces"
}

// ToDomain converts the row to a domain Marketplace
func (m *MarketplaceModel) ToDomain() seller.Marketplace {
	return seller.Marketplace{ID: m.ID, SellerID: m.SellerID, Name: m.Name, MarketplaceID: m.MarketplaceID}
}

// InstanceModel binds a seller marketplace to local settings
type InstanceModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key"`
	SellerID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name             string     `gorm:"type:varchar(100);not null"`
	MarketplaceID    string     `gorm:"type:varchar(32);not null"`
	MarketplaceRefID uuid.UUID  `gorm:"type:uuid"`
	FBAWarehouseID   *uuid.UUID `gorm:"column:fba_warehouse_id;type:uuid"`
	TaxPriceIncluded bool       `gorm:"not null;default:false"`
	HasTax           bool       `gorm:"not null;default:false"`
	Lang             string     `gorm:"type:varchar(10)"`
}

// TableName returns the table name for GORM
func (InstanceModel) TableName() string {
	return "seller_instances"
}

// ToDomain converts the row to a domain Instance
func (m *InstanceModel) ToDomain() seller.Instance {
	return seller.Instance{
		ID:               m.ID,
		SellerID:         m.SellerID,
		Name:             m.Name,
		MarketplaceID:    m.MarketplaceID,
		MarketplaceRefID: m.MarketplaceRefID,
		FBAWarehouseID:   m.FBAWarehouseID,
		TaxPriceIncluded: m.TaxPriceIncluded,
		HasTax:           m.HasTax,
		Lang:             m.Lang,
	}
}

// FromDomain populates the row from a domain Instance
func (m *InstanceModel) FromDomain(sellerID uuid.UUID, inst seller.Instance) {
	m.ID = inst.ID
	m.SellerID = sellerID
	m.Name = inst.Name
	m.MarketplaceID = inst.MarketplaceID
	m.MarketplaceRefID = inst.MarketplaceRefID
	m.FBAWarehouseID = inst.FBAWarehouseID
	m.TaxPriceIncluded = inst.TaxPriceIncluded
	m.HasTax = inst.HasTax
	m.Lang = inst.Lang
}
