package models

import (
	"time"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// All lists every model, in dependency order, for schema bootstrapping in tests
func All() []any {
	return []any{
		&SellerModel{}, &MarketplaceModel{}, &InstanceModel{},
		&ReportModel{}, &ReportSequenceModel{}, &AuditJobModel{}, &AuditLineModel{}, &ReportMessageModel{},
		&ProductModel{}, &ListingModel{}, &WarehouseModel{}, &FulfillmentCenterModel{},
		&StockMoveModel{}, &AdjustmentModel{}, &AdjustmentLineModel{},
		&ReasonGroupModel{}, &ReasonCodeModel{}, &AdjustmentConfigModel{},
		&PartnerModel{}, &CarrierModel{}, &OrderModel{}, &OrderLineModel{},
	}
}
