package report

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/sales"
	"github.com/erp/marketsync/internal/domain/seller"
	"github.com/erp/marketsync/internal/domain/stock"
	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/infrastructure/tsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	orderLookupBatch    = 50
	orderCheckpointSize = 10

	remoteStatusUnshipped = "Unshipped"
	fulfillmentFBM        = string(stock.FulfillmentFBM)
	amazonBuyerName       = "Amazon"
	unitPricePlaces       = 4
)

// pendingOrder is the rows of one order reference on one instance
type pendingOrder struct {
	reference string
	instance  *seller.Instance
	remote    report.RemoteOrder
	rows      []tsv.Row
}

// reconcileUnshippedOrders materializes unshipped merchant fulfilled orders
// as sales orders, committing every few orders
func (s *Service) reconcileUnshippedOrders(ctx context.Context, run *reconcileRun) error {
	if len(run.seller.Instances) == 0 {
		return &report.ConfigurationError{Field: "instances", Message: fmt.Sprintf("No instance is configured for seller %s", run.seller.Name)}
	}
	rows, err := run.payload.All()
	if err != nil {
		return fmt.Errorf("read order lines: %w", err)
	}
	remote, err := s.unshippedRemoteOrders(ctx, run, rows)
	if err != nil {
		return err
	}
	orders := groupOrderRows(run, rows, remote)

	for start := 0; start < len(orders); start += orderCheckpointSize {
		end := min(start+orderCheckpointSize, len(orders))
		chunk := orders[start:end]
		err := s.scope.Execute(ctx, func(repos Repositories) error {
			for _, po := range chunk {
				if err := s.materializeOrder(ctx, repos, run, po); err != nil {
					return fmt.Errorf("order %s: %w", po.reference, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if err := run.pass.flush(ctx, s.audit); err != nil {
			return err
		}
		logger.L(ctx).Debug("order checkpoint committed", zap.Int("orders", end))
	}
	return nil
}

// unshippedRemoteOrders checks the order ids of the file in batches and
// keeps the ones that are still unshipped
func (s *Service) unshippedRemoteOrders(ctx context.Context, run *reconcileRun, rows []tsv.Row) (map[string]report.RemoteOrder, error) {
	var ids []string
	seen := make(map[string]struct{})
	for _, row := range rows {
		id := row.Get(tsv.ColOrderID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	marketplaces := run.seller.MarketplaceIDs()
	out := make(map[string]report.RemoteOrder, len(ids))
	for start := 0; start < len(ids); start += orderLookupBatch {
		batch := ids[start:min(start+orderLookupBatch, len(ids))]
		found, err := s.gateway.GetOrders(ctx, run.seller.Credentials, marketplaces, batch)
		if err != nil {
			if run.mode == Interactive {
				return nil, err
			}
			run.pass.mismatch("Order lookup failed for %s: %s", strings.Join(batch, ", "), remoteReason(err))
			continue
		}
		for _, o := range found {
			if o.Status == remoteStatusUnshipped {
				out[o.OrderID] = o
			}
		}
	}
	return out, nil
}

// groupOrderRows groups rows by order reference and instance, in file order
func groupOrderRows(run *reconcileRun, rows []tsv.Row, remote map[string]report.RemoteOrder) []*pendingOrder {
	var orders []*pendingOrder
	type groupKey struct {
		ref      string
		instance uuid.UUID
	}
	index := make(map[groupKey]*pendingOrder)

	for _, row := range rows {
		ref := row.Get(tsv.ColOrderID)
		if ref == "" || row.Get(tsv.ColSKU) == "" {
			continue
		}
		ro, ok := remote[ref]
		if !ok {
			continue
		}
		channel := row.Get(tsv.ColSalesChannel)
		inst, ok := run.seller.InstanceForSalesChannel(channel)
		if !ok {
			run.pass.mismatch("Marketplace not found for sales channel %s || Order %s", channel, ref)
			continue
		}
		key := groupKey{ref: ref, instance: inst.ID}
		po, ok := index[key]
		if !ok {
			po = &pendingOrder{reference: ref, instance: inst, remote: ro}
			index[key] = po
			orders = append(orders, po)
		}
		po.rows = append(po.rows, row)
	}
	return orders
}

func (s *Service) materializeOrder(ctx context.Context, repos Repositories, run *reconcileRun, po *pendingOrder) error {
	exists, err := repos.Orders().Exists(ctx, po.instance.ID, po.reference, fulfillmentFBM)
	if err != nil {
		return fmt.Errorf("check order: %w", err)
	}
	if exists {
		return nil
	}

	products := make(map[string]uuid.UUID, len(po.rows))
	for _, row := range po.rows {
		sku := row.Get(tsv.ColSKU)
		if _, ok := products[sku]; ok {
			continue
		}
		id, ok, err := resolveOrderProduct(ctx, repos.Products(), run, po.instance.ID, row)
		if err != nil {
			return err
		}
		if !ok {
			run.pass.mismatch("Order skipped due to product is not available. || Order %s || SKU %s", po.reference, sku)
			return nil
		}
		products[sku] = id
	}

	first := po.rows[0]
	invoice, delivery, err := resolveOrderPartners(ctx, repos.Partners(), run, po, first)
	if err != nil {
		return err
	}
	if invoice == nil {
		run.pass.mismatch("Order skipped due to buyer name is not available. || Order %s", po.reference)
		return nil
	}

	order, err := sales.NewOrder(run.seller.OrderPrefix+po.reference, po.reference, run.seller.ID, po.instance.ID, run.report.ID, fulfillmentFBM)
	if err != nil {
		return err
	}
	order.InvoicePartnerID = invoice.ID
	order.DeliveryPartnerID = delivery.ID
	order.PurchaseDate = first.Get(tsv.ColPurchaseDate)
	order.IsBusiness = po.remote.IsBusinessOrder
	order.IsPrime = po.remote.IsPrime
	order.ShipServiceLevel = first.Get(tsv.ColShipServiceLevel)
	if level := order.ShipServiceLevel; level != "" {
		carrier, err := repos.Carriers().FindByServiceLevel(ctx, level)
		switch {
		case err == nil:
			order.CarrierID = &carrier.ID
		case !isNotFound(err):
			return fmt.Errorf("find carrier: %w", err)
		}
	}

	taxIncluded := !(run.seller.VCSEnabled || (po.instance.HasTax && !po.instance.TaxPriceIncluded))
	for _, row := range po.rows {
		addOrderLines(order, run.seller, row, products[row.Get(tsv.ColSKU)], taxIncluded)
	}
	if err := repos.Orders().Create(ctx, order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// resolveOrderProduct finds the FBM listing by sku on the instance, then the
// product by code (adding the listing), then creates both when allowed
func resolveOrderProduct(ctx context.Context, products stock.ProductRepository, run *reconcileRun, instanceID uuid.UUID, row tsv.Row) (uuid.UUID, bool, error) {
	sku := row.Get(tsv.ColSKU)
	listing, err := products.FindListing(ctx, stock.ListingQuery{
		SellerSKU:     sku,
		FulfillmentBy: stock.FulfillmentFBM,
		InstanceIDs:   []uuid.UUID{instanceID},
	})
	if err == nil {
		return listing.ProductID, true, nil
	}
	if !isNotFound(err) {
		return uuid.Nil, false, fmt.Errorf("find listing: %w", err)
	}

	p, err := products.FindProductByCode(ctx, sku)
	switch {
	case err == nil:
	case !isNotFound(err):
		return uuid.Nil, false, fmt.Errorf("find product by code: %w", err)
	case !run.seller.CreateNewProduct:
		return uuid.Nil, false, nil
	default:
		run.pass.info("Product is not available in marketplace listings and products, so it'll be created in both. || SKU %s", sku)
		name := row.Get(tsv.ColProductName)
		if name == "" {
			name = sku
		}
		p = stock.NewProduct(name, sku)
		if err := products.CreateProduct(ctx, p); err != nil {
			return uuid.Nil, false, fmt.Errorf("create product: %w", err)
		}
	}

	mp := stock.NewMarketplaceProduct(p, instanceID, stock.FulfillmentFBM)
	mp.SellerSKU = sku
	if err := products.CreateListing(ctx, mp); err != nil {
		return uuid.Nil, false, fmt.Errorf("create listing: %w", err)
	}
	return p.ID, true, nil
}

func shippingAddress(row tsv.Row) sales.Address {
	street2 := strings.TrimSpace(strings.Join([]string{row.Get(tsv.ColShipAddress2), row.Get(tsv.ColShipAddress3)}, " "))
	return sales.Address{
		Street:      row.Get(tsv.ColShipAddress1),
		Street2:     street2,
		Zip:         row.Get(tsv.ColShipPostalCode),
		City:        row.Get(tsv.ColShipCity),
		StateCode:   row.Get(tsv.ColShipState),
		CountryCode: row.Get(tsv.ColShipCountry),
	}
}

// orderVAT picks the tax registration of the buyer and prefixes the
// country code when the number lacks one
func orderVAT(row tsv.Row, remote report.RemoteOrder) string {
	vat := row.Get(tsv.ColVATNumber)
	country := row.Get(tsv.ColVATCountry)
	if vat == "" {
		vat, country = remote.VATNumber, remote.VATCountry
	}
	if vat == "" {
		vat = row.Get(tsv.ColBuyerTaxID)
	}
	if vat == "" {
		return ""
	}
	if country == "" {
		country = row.Get(tsv.ColShipCountry)
	}
	if len(vat) >= 2 && unicode.IsLetter(rune(vat[0])) && unicode.IsLetter(rune(vat[1])) {
		return vat
	}
	return country + vat
}

func resolveOrderPartners(ctx context.Context, partners sales.PartnerRepository, run *reconcileRun, po *pendingOrder, row tsv.Row) (*sales.Partner, *sales.Partner, error) {
	addr := shippingAddress(row)
	buyer := row.Get(tsv.ColBuyerName)
	email := row.Get(tsv.ColBuyerEmail)

	var (
		found *sales.Partner
		err   error
	)
	switch {
	case email == "" && buyer == amazonBuyerName:
		found, err = partners.FindByNameAndPlace(ctx, buyer, addr.City, addr.StateCode, addr.CountryCode)
	case email != "":
		found, err = partners.FindByEmail(ctx, email)
	}
	if err != nil && !isNotFound(err) {
		return nil, nil, fmt.Errorf("find partner: %w", err)
	}
	if isNotFound(err) {
		found = nil
	}

	fill := func(p *sales.Partner) {
		p.Email = email
		p.Phone = row.Get(tsv.ColBuyerPhone)
		p.VAT = orderVAT(row, po.remote)
		p.Lang = po.instance.Lang
	}

	if found == nil && buyer == "" {
		return nil, nil, nil
	}

	// a known partner under another name gets a child invoice address
	invoice := found
	if invoice == nil || (buyer != "" && invoice.Name != buyer) {
		var parentID *uuid.UUID
		if found != nil {
			parentID = &found.ID
		}
		invoice, err = sales.NewPartner(buyer, sales.PartnerTypeInvoice, parentID, addr)
		if err != nil {
			return nil, nil, err
		}
		fill(invoice)
		if err := partners.Create(ctx, invoice); err != nil {
			return nil, nil, fmt.Errorf("create invoice partner: %w", err)
		}
	}

	recipient := row.Get(tsv.ColRecipientName)
	if recipient == "" {
		recipient = invoice.Name
	}
	if invoice.MatchesDelivery(recipient, addr) {
		return invoice, invoice, nil
	}
	delivery, err := partners.FindDelivery(ctx, sales.Fingerprint{Name: recipient, Address: addr})
	if err == nil {
		return invoice, delivery, nil
	}
	if !isNotFound(err) {
		return nil, nil, fmt.Errorf("find delivery partner: %w", err)
	}
	parentID := invoice.ID
	if invoice.ParentID != nil {
		parentID = *invoice.ParentID
	}
	delivery, err = sales.NewPartner(recipient, sales.PartnerTypeDelivery, &parentID, addr)
	if err != nil {
		return nil, nil, err
	}
	fill(delivery)
	delivery.Phone = row.FirstOf(tsv.ColShipPhone, tsv.ColBuyerPhone)
	if err := partners.Create(ctx, delivery); err != nil {
		return nil, nil, fmt.Errorf("create delivery partner: %w", err)
	}
	return invoice, delivery, nil
}

// addOrderLines adds the product line of a row and its derived charge lines
func addOrderLines(order *sales.Order, sel *seller.Seller, row tsv.Row, productID uuid.UUID, taxIncluded bool) {
	qty := row.DecimalOrZero(tsv.ColQuantityPurchased)
	if !qty.IsPositive() {
		qty = decimal.NewFromInt(1)
	}
	itemPrice := row.DecimalOrZero(tsv.ColItemPrice)
	itemTax := row.DecimalOrZero(tsv.ColItemTax)
	if taxIncluded {
		itemPrice = itemPrice.Add(itemTax)
	}
	itemID := row.Get(tsv.ColOrderItemID)
	order.AddLine(sales.OrderLine{
		ProductID:   productID,
		Name:        row.Get(tsv.ColProductName),
		Kind:        sales.LineKindProduct,
		Quantity:    qty,
		UnitPrice:   itemPrice.Div(qty).Round(unitPricePlaces),
		TaxAmount:   itemTax,
		OrderItemID: itemID,
	})

	one := decimal.NewFromInt(1)
	shipping := row.DecimalOrZero(tsv.ColShippingPrice)
	if shipping.IsPositive() && sel.ShippingProductID != nil {
		if taxIncluded {
			shipping = shipping.Add(row.DecimalOrZero(tsv.ColShippingTax))
		}
		order.AddLine(sales.OrderLine{
			ProductID:   *sel.ShippingProductID,
			Name:        "Shipping charge",
			Kind:        sales.LineKindShipping,
			Quantity:    one,
			UnitPrice:   shipping,
			TaxAmount:   row.DecimalOrZero(tsv.ColShippingTax),
			OrderItemID: itemID,
		})
	}
	if promo := row.DecimalOrZero(tsv.ColItemPromotionDiscount).Abs(); promo.IsPositive() && sel.PromotionProductID != nil {
		order.AddLine(sales.OrderLine{
			ProductID:   *sel.PromotionProductID,
			Name:        "Promotion discount",
			Kind:        sales.LineKindPromotion,
			Quantity:    one,
			UnitPrice:   promo.Neg(),
			OrderItemID: itemID,
		})
	}
	if promo := row.DecimalOrZero(tsv.ColShipPromotionDiscount).Abs(); promo.IsPositive() && sel.ShipDiscountProductID != nil {
		order.AddLine(sales.OrderLine{
			ProductID:   *sel.ShipDiscountProductID,
			Name:        "Shipping discount",
			Kind:        sales.LineKindShipDiscount,
			Quantity:    one,
			UnitPrice:   promo.Neg(),
			OrderItemID: itemID,
		})
	}
}
