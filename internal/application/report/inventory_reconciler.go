package report

import (
	"context"
	"fmt"

	"github.com/erp/marketsync/internal/domain/stock"
	"github.com/erp/marketsync/internal/infrastructure/tsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const inventoryClosingLine = "Inventory adjustment process has been completed open log to view products which are not processed due to any reason."

// inventoryTotals holds the per product quantities of one live inventory file
type inventoryTotals struct {
	sellable   map[uuid.UUID]decimal.Decimal
	unsellable map[uuid.UUID]decimal.Decimal
}

// reconcileInventory turns a live inventory snapshot into at most one
// inventory adjustment per location, then backfills fulfillment skus.
func (s *Service) reconcileInventory(ctx context.Context, run *reconcileRun) error {
	return s.scope.Execute(ctx, func(repos Repositories) error {
		totals, err := aggregateInventory(ctx, repos.Products(), run)
		if err != nil {
			return err
		}

		wh, err := s.inventoryWarehouse(ctx, repos.Warehouses(), run)
		if err != nil {
			return err
		}
		if wh == nil {
			run.pass.mismatch("Mismatch: FBA warehouse not found for seller %s", run.seller.Name)
		} else if err := applyInventoryTotals(ctx, repos.Adjustments(), run, wh, totals); err != nil {
			return err
		}

		if run.pass.Lines() > 0 {
			run.pass.info(inventoryClosingLine)
		}
		return backfillChannelSKUs(ctx, repos.Products(), run.payload)
	})
}

func aggregateInventory(ctx context.Context, products stock.ProductRepository, run *reconcileRun) (*inventoryTotals, error) {
	totals := &inventoryTotals{
		sellable:   make(map[uuid.UUID]decimal.Decimal),
		unsellable: make(map[uuid.UUID]decimal.Decimal),
	}
	instanceIDs := inventoryInstances(run)

	err := run.payload.Each(func(row tsv.Row) error {
		sku := row.FirstOf(tsv.ColSKU, tsv.ColSellerSKU)
		if row.Get(tsv.ColListingExists) == "" || sku == "" {
			return nil
		}
		productID, found, err := resolveInventoryProduct(ctx, products, instanceIDs, sku, row.Get(tsv.ColASIN))
		if err != nil {
			return err
		}
		if !found {
			run.pass.mismatch("Product not found for seller sku %s", sku)
			return nil
		}

		qty := row.DecimalOrZero(tsv.ColFulfillableQuantity)
		if run.seller.IncludeReservedQty {
			qty = qty.Add(row.DecimalOrZero(tsv.ColReservedQuantity))
		}
		totals.sellable[productID] = totals.sellable[productID].Add(qty)
		totals.unsellable[productID] = totals.unsellable[productID].Add(row.DecimalOrZero(tsv.ColUnsellableQuantity))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate inventory: %w", err)
	}
	return totals, nil
}

// inventoryInstances limits product lookups to the report instance, or to
// every instance of the seller
func inventoryInstances(run *reconcileRun) []uuid.UUID {
	if run.report.InstanceID != nil {
		return []uuid.UUID{*run.report.InstanceID}
	}
	ids := make([]uuid.UUID, 0, len(run.seller.Instances))
	for _, inst := range run.seller.Instances {
		ids = append(ids, inst.ID)
	}
	return ids
}

// resolveInventoryProduct tries seller sku, then asin (both FBA listings on
// the instances), then the internal product code
func resolveInventoryProduct(ctx context.Context, products stock.ProductRepository, instanceIDs []uuid.UUID, sku, asin string) (uuid.UUID, bool, error) {
	queries := []stock.ListingQuery{
		{SellerSKU: sku, FulfillmentBy: stock.FulfillmentFBA, InstanceIDs: instanceIDs},
	}
	if asin != "" {
		queries = append(queries, stock.ListingQuery{ASIN: asin, FulfillmentBy: stock.FulfillmentFBA, InstanceIDs: instanceIDs})
	}
	for _, q := range queries {
		listing, err := products.FindListing(ctx, q)
		if err == nil {
			return listing.ProductID, true, nil
		}
		if !isNotFound(err) {
			return uuid.Nil, false, fmt.Errorf("find listing: %w", err)
		}
	}

	p, err := products.FindProductByCode(ctx, sku)
	if err == nil {
		return p.ID, true, nil
	}
	if isNotFound(err) {
		return uuid.Nil, false, nil
	}
	return uuid.Nil, false, fmt.Errorf("find product by code: %w", err)
}

// inventoryWarehouse returns the instance FBA warehouse for an instance
// report and the first FBA warehouse of the seller otherwise. A nil
// warehouse means none is configured.
func (s *Service) inventoryWarehouse(ctx context.Context, warehouses stock.WarehouseRepository, run *reconcileRun) (*stock.Warehouse, error) {
	if run.report.InstanceID != nil {
		inst, ok := run.seller.Instance(*run.report.InstanceID)
		if !ok || inst.FBAWarehouseID == nil {
			return nil, nil
		}
		wh, err := warehouses.FindByID(ctx, *inst.FBAWarehouseID)
		if isNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("find instance warehouse: %w", err)
		}
		return wh, nil
	}
	list, err := warehouses.FindFBAForSeller(ctx, run.seller.ID)
	if err != nil {
		return nil, fmt.Errorf("find seller warehouses: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func applyInventoryTotals(ctx context.Context, adjustments stock.AdjustmentRepository, run *reconcileRun, wh *stock.Warehouse, totals *inventoryTotals) error {
	if len(totals.sellable) > 0 {
		if err := createAdjustment(ctx, adjustments, run, wh.LotStockID, totals.sellable); err != nil {
			return err
		}
	}
	if !wh.HasUnsellable() {
		run.pass.mismatch("unsellable location not found for warehouse %s.", wh.Name)
		return nil
	}
	if len(totals.unsellable) > 0 {
		return createAdjustment(ctx, adjustments, run, *wh.UnsellableLocationID, totals.unsellable)
	}
	return nil
}

// createAdjustment applies a count once per report and location
func createAdjustment(ctx context.Context, adjustments stock.AdjustmentRepository, run *reconcileRun, locationID uuid.UUID, totals map[uuid.UUID]decimal.Decimal) error {
	exists, err := adjustments.ExistsForLocation(ctx, run.report.ID, locationID)
	if err != nil {
		return fmt.Errorf("check inventory adjustment: %w", err)
	}
	if exists {
		return nil
	}
	adj := stock.NewInventoryAdjustment(run.report.Name, run.report.ID, locationID, totals)
	if run.seller.AutoApplyInventory {
		adj.Apply(run.now)
	}
	if err := adjustments.Create(ctx, adj); err != nil {
		return fmt.Errorf("create inventory adjustment: %w", err)
	}
	return nil
}

// backfillChannelSKUs rereads the file and sets the fnsku on FBA listings
// that have none
func backfillChannelSKUs(ctx context.Context, products stock.ProductRepository, payload *tsv.Payload) error {
	seen := make(map[string]struct{})
	err := payload.Each(func(row tsv.Row) error {
		sku, fnsku := row.Get(tsv.ColSKU), row.Get(tsv.ColFNSKU)
		if sku == "" || fnsku == "" {
			return nil
		}
		if _, done := seen[sku]; done {
			return nil
		}
		seen[sku] = struct{}{}

		listings, err := products.ListListings(ctx, stock.ListingQuery{SellerSKU: sku, FulfillmentBy: stock.FulfillmentFBA})
		if err != nil {
			return err
		}
		for i := range listings {
			if !listings[i].BackfillChannelSKU(fnsku) {
				continue
			}
			if err := products.SaveListing(ctx, &listings[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("backfill fulfillment channel sku: %w", err)
	}
	return nil
}
