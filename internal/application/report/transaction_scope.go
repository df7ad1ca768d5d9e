package report

import (
	"context"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/sales"
	"github.com/erp/marketsync/internal/domain/seller"
	"github.com/erp/marketsync/internal/domain/stock"
)

// TransactionScope runs reconciliation effects atomically.
// If fn returns an error, every effect written through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every store a reconciliation pass touches.
// Inside TransactionScope.Execute all of them share one transaction.
type Repositories interface {
	Reports() report.Repository
	Sellers() seller.Repository
	Products() stock.ProductRepository
	Warehouses() stock.WarehouseRepository
	Moves() stock.MoveRepository
	Adjustments() stock.AdjustmentRepository
	Reasons() stock.ReasonRepository
	Partners() sales.PartnerRepository
	Orders() sales.OrderRepository
	Carriers() sales.CarrierRepository
}
