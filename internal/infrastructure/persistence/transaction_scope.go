package persistence

import (
	"context"

	appreport "github.com/erp/marketsync/internal/application/report"
	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/sales"
	"github.com/erp/marketsync/internal/domain/seller"
	"github.com/erp/marketsync/internal/domain/stock"
	"gorm.io/gorm"
)

// GormTransactionScope implements appreport.TransactionScope using GORM transactions.
// If the function returns an error, the transaction is rolled back.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within one database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appreport.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// NewRepositories returns every repository bound to db (or a transaction)
func NewRepositories(db *gorm.DB) appreport.Repositories {
	return &gormRepositories{db: db}
}

type gormRepositories struct {
	db *gorm.DB
}

func (r *gormRepositories) Reports() report.Repository {
	return NewGormReportRepository(r.db)
}

func (r *gormRepositories) Sellers() seller.Repository {
	return NewGormSellerRepository(r.db)
}

func (r *gormRepositories) Products() stock.ProductRepository {
	return NewGormProductRepository(r.db)
}

func (r *gormRepositories) Warehouses() stock.WarehouseRepository {
	return NewGormWarehouseRepository(r.db)
}

func (r *gormRepositories) Moves() stock.MoveRepository {
	return NewGormStockMoveRepository(r.db)
}

func (r *gormRepositories) Adjustments() stock.AdjustmentRepository {
	return NewGormAdjustmentRepository(r.db)
}

func (r *gormRepositories) Reasons() stock.ReasonRepository {
	return NewGormReasonRepository(r.db)
}

func (r *gormRepositories) Partners() sales.PartnerRepository {
	return NewGormPartnerRepository(r.db)
}

func (r *gormRepositories) Orders() sales.OrderRepository {
	return NewGormOrderRepository(r.db)
}

func (r *gormRepositories) Carriers() sales.CarrierRepository {
	return NewGormCarrierRepository(r.db)
}

var _ appreport.TransactionScope = (*GormTransactionScope)(nil)
