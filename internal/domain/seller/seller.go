package seller

import (
	"time"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
)

// Program is the seller's regional inventory-pooling configuration
type Program string

const (
	ProgramNone   Program = ""
	ProgramPanEU  Program = "pan_eu"
	ProgramCEP    Program = "cep"
	ProgramEFN    Program = "efn"
	ProgramMCI    Program = "mci"
	ProgramEFNMCI Program = "efn+mci"
)

// IsValid checks if the program is a known classification
func (p Program) IsValid() bool {
	switch p {
	case ProgramNone, ProgramPanEU, ProgramCEP, ProgramEFN, ProgramMCI, ProgramEFNMCI:
		return true
	}
	return false
}

// US fulfillment programs
const (
	USProgramNone = ""
	USProgramNARF = "narf"
)

// ExcludedPoolMarketplace is left out of pooled European requests
const ExcludedPoolMarketplace = "A1F83G8C2ARO7P"

const (
	defaultLiveInventoryReportDays   = 3
	defaultStockAdjustmentReportDays = 3
)

// Credentials identify the seller towards the marketplace gateway.
// They are passed explicitly on every gateway call.
type Credentials struct {
	MerchantID      string
	AuthToken       string
	MarketplaceCode string
}

// Seller is a marketplace seller account together with its sync settings
type Seller struct {
	shared.BaseEntity
	Name        string
	Active      bool
	Credentials Credentials

	Program    Program
	USProgram  string
	IsEuropean bool

	// UsesOtherSoftwareForFBA means another tool already requests the live
	// inventory report; this system only lists and picks it up.
	UsesOtherSoftwareForFBA bool
	IncludeReservedQty      bool
	AutoApplyInventory      bool
	CreateNewProduct        bool
	VCSEnabled              bool
	OrderPrefix             string

	ShippingProductID     *uuid.UUID
	PromotionProductID    *uuid.UUID
	ShipDiscountProductID *uuid.UUID

	InventoryLastSyncAt       *time.Time
	StockAdjustmentLastSyncAt *time.Time
	LiveInventoryReportDays   int
	StockAdjustmentReportDays int

	Marketplaces []Marketplace
	Instances    []Instance
}

// Marketplace is a sales channel the seller is registered on
type Marketplace struct {
	ID            uuid.UUID
	SellerID      uuid.UUID
	Name          string // sales channel name as printed in reports, e.g. "Amazon.de"
	MarketplaceID string
}

// Instance binds one marketplace of a seller to local warehouse and tax settings
type Instance struct {
	ID               uuid.UUID
	SellerID         uuid.UUID
	Name             string
	MarketplaceID    string
	MarketplaceRefID uuid.UUID
	FBAWarehouseID   *uuid.UUID
	TaxPriceIncluded bool
	HasTax           bool
	Lang             string
}

// NewSeller creates a seller with default report windows
func NewSeller(name string, creds Credentials) (*Seller, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_SELLER_NAME", "Seller name cannot be empty")
	}
	if creds.MerchantID == "" {
		return nil, shared.NewDomainError("INVALID_MERCHANT_ID", "Merchant ID cannot be empty")
	}
	return &Seller{
		BaseEntity:                shared.NewBaseEntity(),
		Name:                      name,
		Active:                    true,
		Credentials:               creds,
		LiveInventoryReportDays:   defaultLiveInventoryReportDays,
		StockAdjustmentReportDays: defaultStockAdjustmentReportDays,
	}, nil
}

// IsNARF reports enrolment in the North America remote fulfillment program
func (s *Seller) IsNARF() bool {
	return s.USProgram == USProgramNARF
}

// IsPooledEU reports pan_eu or cep membership
func (s *Seller) IsPooledEU() bool {
	return s.Program == ProgramPanEU || s.Program == ProgramCEP
}

// MarketplaceIDs returns the marketplace ids of every instance
func (s *Seller) MarketplaceIDs() []string {
	ids := make([]string, 0, len(s.Instances))
	for _, inst := range s.Instances {
		ids = append(ids, inst.MarketplaceID)
	}
	return ids
}

// PooledMarketplaceIDs returns the ids a seller-wide live inventory
// request covers; pooled European programs skip ExcludedPoolMarketplace
func (s *Seller) PooledMarketplaceIDs() []string {
	if !s.IsPooledEU() {
		return s.MarketplaceIDs()
	}
	ids := make([]string, 0, len(s.Instances))
	for _, inst := range s.Instances {
		if inst.MarketplaceID == ExcludedPoolMarketplace {
			continue
		}
		ids = append(ids, inst.MarketplaceID)
	}
	return ids
}

// Instance finds an instance by id
func (s *Seller) Instance(id uuid.UUID) (*Instance, bool) {
	for i := range s.Instances {
		if s.Instances[i].ID == id {
			return &s.Instances[i], true
		}
	}
	return nil, false
}

// InstanceForSalesChannel resolves the instance selling on the named channel
func (s *Seller) InstanceForSalesChannel(channel string) (*Instance, bool) {
	for _, m := range s.Marketplaces {
		if m.Name != channel {
			continue
		}
		for i := range s.Instances {
			if s.Instances[i].MarketplaceRefID == m.ID || s.Instances[i].MarketplaceID == m.MarketplaceID {
				return &s.Instances[i], true
			}
		}
	}
	return nil, false
}

func reportDays(days, fallback int) time.Duration {
	if days <= 0 {
		days = fallback
	}
	return time.Duration(days) * 24 * time.Hour
}

// LiveInventoryWindow returns the request window for a live inventory report
func (s *Seller) LiveInventoryWindow(now time.Time) (time.Time, time.Time) {
	base := now
	if s.InventoryLastSyncAt != nil {
		base = *s.InventoryLastSyncAt
	}
	return base.Add(-reportDays(s.LiveInventoryReportDays, defaultLiveInventoryReportDays)), now
}

// StockAdjustmentWindow returns the request window for a stock adjustment report
func (s *Seller) StockAdjustmentWindow(now time.Time) (time.Time, time.Time) {
	var base time.Time
	if s.StockAdjustmentLastSyncAt != nil {
		base = s.StockAdjustmentLastSyncAt.Add(-10 * time.Hour)
	} else {
		base = now.AddDate(0, 0, -30)
	}
	return base.Add(-reportDays(s.StockAdjustmentReportDays, defaultStockAdjustmentReportDays)), now
}

// MarkInventorySynced stamps the live inventory sync time
func (s *Seller) MarkInventorySynced(at time.Time) {
	s.InventoryLastSyncAt = &at
	s.Touch()
}

// MarkStockAdjustmentSynced stamps the stock adjustment sync time
func (s *Seller) MarkStockAdjustmentSynced(at time.Time) {
	s.StockAdjustmentLastSyncAt = &at
	s.Touch()
}
