package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/stock"
	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/infrastructure/tsv"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	unprocessedLinesFile = "inv_unprocessed_lines.csv"
	// adjustmentCheckpointSize is how many lines or pairs one transaction covers
	adjustmentCheckpointSize = 10
)

// adjustmentGroup is the rows of one seller config, in file order
type adjustmentGroup struct {
	config stock.AdjustmentConfig
	group  stock.ReasonGroup
	rows   []tsv.Row
}

// reversed returns the rows last line first
func (g *adjustmentGroup) reversed() []tsv.Row {
	out := make([]tsv.Row, len(g.rows))
	for i, row := range g.rows {
		out[len(g.rows)-1-i] = row
	}
	return out
}

// centerTarget is a fulfillment center with the warehouse it maps to
type centerTarget struct {
	center    *stock.FulfillmentCenter
	warehouse *stock.Warehouse
}

// adjustmentPass carries the lookups shared by every group of one file
type adjustmentPass struct {
	run     *reconcileRun
	repos   Repositories
	catalog *stock.ReasonCatalog
	centers map[string]*centerTarget
}

// reconcileStockAdjustment routes each adjustment line through its reason
// code group and turns it into stock moves, or mails it when the group is
// configured for e-mail only.
func (s *Service) reconcileStockAdjustment(ctx context.Context, run *reconcileRun) error {
	catalog, err := s.loadReasonCatalog(ctx, run.seller.ID)
	if err != nil {
		return err
	}
	groups, err := groupAdjustmentRows(run, catalog)
	if err != nil {
		return err
	}

	var movable []*adjustmentGroup
	for _, g := range groups {
		if g.config.SendEmail {
			if err := s.mailUnprocessedLines(ctx, run, g); err != nil {
				return err
			}
			continue
		}
		movable = append(movable, g)
	}
	if len(movable) == 0 {
		return nil
	}

	pass := &adjustmentPass{run: run, catalog: catalog, centers: make(map[string]*centerTarget)}
	units := pass.units(movable)
	for start := 0; start < len(units); start += adjustmentCheckpointSize {
		end := min(start+adjustmentCheckpointSize, len(units))
		chunk := units[start:end]
		err := s.scope.Execute(ctx, func(repos Repositories) error {
			pass.repos = repos
			for _, apply := range chunk {
				if err := apply(ctx); err != nil {
					return err
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
		logger.L(ctx).Debug("adjustment checkpoint committed", zap.Int("units", end), zap.Int("total", len(units)))
	}
	return nil
}

// adjustmentUnit applies one plain line or one counterpart pair
type adjustmentUnit func(ctx context.Context) error

// units lists the work of every movable group in processing order. Pairing
// happens here, before any transaction is opened.
func (p *adjustmentPass) units(groups []*adjustmentGroup) []adjustmentUnit {
	var out []adjustmentUnit
	for _, g := range groups {
		if g.group.IsCounterpart {
			for _, pair := range p.pairCounterparts(g) {
				out = append(out, func(ctx context.Context) error {
					return p.applyPair(ctx, g, pair)
				})
			}
			continue
		}
		for _, line := range g.reversed() {
			out = append(out, func(ctx context.Context) error {
				return p.applyLine(ctx, g, line)
			})
		}
	}
	return out
}

func (s *Service) loadReasonCatalog(ctx context.Context, sellerID uuid.UUID) (*stock.ReasonCatalog, error) {
	reasons := s.repos.Reasons()
	codes, err := reasons.ListCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reason codes: %w", err)
	}
	groups, err := reasons.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reason groups: %w", err)
	}
	configs, err := reasons.ListConfigs(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list adjustment configs: %w", err)
	}
	return stock.NewReasonCatalog(codes, groups, configs), nil
}

// groupAdjustmentRows assigns every row to the config of its reason code
// group. Rows that cannot be routed become mismatch lines.
func groupAdjustmentRows(run *reconcileRun, catalog *stock.ReasonCatalog) ([]*adjustmentGroup, error) {
	var ordered []*adjustmentGroup
	byConfig := make(map[uuid.UUID]*adjustmentGroup)

	err := run.payload.Each(func(row tsv.Row) error {
		reason := row.Get(tsv.ColReason)
		if reason == "" {
			return nil
		}
		codes := catalog.CodesNamed(reason)
		switch {
		case len(codes) == 0:
			run.pass.mismatch("Code %s configuration not found for processing", reason)
			return nil
		case len(codes) > 1:
			run.pass.mismatch("Multiple Code %s configuration found for processing", reason)
			return nil
		}
		code := codes[0]
		cfg, ok := catalog.ConfigFor(*code.GroupID)
		if !ok {
			run.pass.mismatch("Seller wise code %s configuration not found for processing", code.Name)
			return nil
		}
		group, _ := catalog.Group(cfg.GroupID)
		if !cfg.SendEmail && !cfg.HasLocation() && !group.IsDamaged {
			run.pass.mismatch("Location not configured for stock adjustment config ERP Id %s || group name %s", cfg.ID, group.Name)
			return nil
		}

		g, ok := byConfig[cfg.ID]
		if !ok {
			g = &adjustmentGroup{config: cfg, group: group}
			byConfig[cfg.ID] = g
			ordered = append(ordered, g)
		}
		g.rows = append(g.rows, row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("group adjustment lines: %w", err)
	}
	return ordered, nil
}

// mailUnprocessedLines stores the rows of an e-mail group as a tab
// separated attachment and posts it on the report
func (s *Service) mailUnprocessedLines(ctx context.Context, run *reconcileRun, g *adjustmentGroup) error {
	body, err := tsv.Encode(run.payload.Header(), g.reversed())
	if err != nil {
		return fmt.Errorf("encode unprocessed lines: %w", err)
	}
	name := fmt.Sprintf("%s/attachments/%d-%s/%s", run.report.Name, run.now.Unix(), g.config.ID, unprocessedLinesFile)
	key, err := s.payloads.Put(ctx, name, body, payloadContentType)
	if err != nil {
		return fmt.Errorf("store unprocessed lines: %w", err)
	}
	if g.config.TemplateSubject == "" {
		return nil
	}
	s.post(ctx, run.report, report.Message{
		Subject:        g.config.TemplateSubject,
		Body:           fmt.Sprintf("%d unprocessed adjustment lines for group %s", len(g.rows), g.group.Name),
		AttachmentKeys: []string{key},
	})
	return nil
}

// counterpartPair is a line and the line that offsets it
type counterpartPair struct {
	line    tsv.Row
	partner tsv.Row
}

// pairCounterparts matches each line with the first unconsumed line that
// carries its counterpart code, the same absolute quantity, date, skus
// and fulfillment center. A transaction item is consumed at most once.
func (p *adjustmentPass) pairCounterparts(g *adjustmentGroup) []counterpartPair {
	lines := g.reversed()
	consumed := make(map[string]struct{})
	used := func(row tsv.Row) bool {
		id := row.Get(tsv.ColTransactionItemID)
		_, ok := consumed[id]
		return id != "" && ok
	}
	var pairs []counterpartPair

	for i, line := range lines {
		if used(line) {
			continue
		}
		reason := line.Get(tsv.ColReason)
		code, ok := p.catalog.CodeInGroup(reason, g.group.ID)
		if !ok {
			continue
		}
		counterpart, ok := p.catalog.Counterpart(code)
		if !ok {
			continue
		}
		qty := line.DecimalOrZero(tsv.ColQuantity).Abs()

		for j, candidate := range lines {
			if i == j {
				continue
			}
			if used(candidate) {
				continue
			}
			if candidate.Get(tsv.ColReason) != counterpart ||
				!candidate.DecimalOrZero(tsv.ColQuantity).Abs().Equal(qty) ||
				!sameAdjustmentEvent(line, candidate) {
				continue
			}
			consumed[candidate.Get(tsv.ColTransactionItemID)] = struct{}{}
			consumed[line.Get(tsv.ColTransactionItemID)] = struct{}{}
			pairs = append(pairs, counterpartPair{line: line, partner: candidate})

			if p.run.logPairs {
				p.run.pass.info("Counter Part Combination line || sku : %s || adjustment-date %s || fulfillment-center-id %s || quantity %s || Code %s - Disposition %s & %s - Disposition %s",
					line.Get(tsv.ColSKU), line.Get(tsv.ColAdjustedDate), line.Get(tsv.ColFulfillmentCenterID),
					line.Get(tsv.ColQuantity), reason, line.Get(tsv.ColDisposition),
					candidate.Get(tsv.ColReason), candidate.Get(tsv.ColDisposition))
			}
			break
		}
	}
	return pairs
}

func sameAdjustmentEvent(a, b tsv.Row) bool {
	for _, col := range []string{tsv.ColAdjustedDate, tsv.ColFNSKU, tsv.ColSKU, tsv.ColFulfillmentCenterID} {
		if a.Get(col) != b.Get(col) {
			return false
		}
	}
	return true
}

func (p *adjustmentPass) applyPair(ctx context.Context, g *adjustmentGroup, pair counterpartPair) error {
	product, err := p.findProduct(ctx, pair.line)
	if err != nil || product == nil {
		return err
	}
	centerCode := pair.partner.Get(tsv.ColFulfillmentCenterID)
	target, err := p.center(ctx, centerCode)
	if err != nil {
		return err
	}
	if target.warehouse == nil {
		p.run.pass.mismatch("Mismatch: Warehouse not found for fulfillment center %s || Product %s", centerCode, pair.line.Get(tsv.ColSKU))
		return nil
	}
	wh := target.warehouse
	dest, destOK := wh.LocationFor(stock.Disposition(pair.partner.Get(tsv.ColDisposition)))
	src, srcOK := wh.LocationFor(stock.Disposition(pair.line.Get(tsv.ColDisposition)))
	if !destOK || !srcOK {
		p.run.pass.mismatch("Mismatch: Unsellable location not found for Warehouse %s || Product %s", wh.Name, pair.line.Get(tsv.ColSKU))
		return nil
	}

	code, ok := p.catalog.CodeInGroup(pair.partner.Get(tsv.ColReason), g.group.ID)
	if !ok {
		return nil
	}
	key, err := moveKey(product.ID, pair.partner, target.center, code, src, dest)
	if err != nil {
		p.run.pass.mismatch("Mismatch: %v || Product %s", err, pair.line.Get(tsv.ColSKU))
		return nil
	}
	duplicate := fmt.Sprintf("Line already processed for Product %s || Code %s-%s",
		product.Name, pair.partner.Get(tsv.ColReason), pair.line.Get(tsv.ColReason))
	return p.applyMove(ctx, key, product.Name, code, duplicate)
}

func (p *adjustmentPass) applyLine(ctx context.Context, g *adjustmentGroup, line tsv.Row) error {
	product, err := p.findProduct(ctx, line)
	if err != nil || product == nil {
		return err
	}
	centerCode := line.Get(tsv.ColFulfillmentCenterID)
	target, err := p.center(ctx, centerCode)
	if err != nil {
		return err
	}
	if target.warehouse == nil {
		p.run.pass.mismatch("Mismatch: Warehouse not found for fulfillment center %s || Product %s", centerCode, line.Get(tsv.ColSKU))
		return nil
	}
	wh := target.warehouse
	stockLoc, ok := wh.LocationFor(stock.Disposition(line.Get(tsv.ColDisposition)))
	if !ok {
		p.run.pass.mismatch("Mismatch: Unsellable location not found for Warehouse %s", wh.Name)
		return nil
	}
	if !g.config.HasLocation() {
		p.run.pass.mismatch("Location not configured for stock adjustment config ERP Id %s || group name %s", g.config.ID, g.group.Name)
		return nil
	}

	code, ok := p.catalog.CodeInGroup(line.Get(tsv.ColReason), g.group.ID)
	if !ok {
		return nil
	}
	src, dest := *g.config.LocationID, stockLoc
	if line.DecimalOrZero(tsv.ColQuantity).IsNegative() {
		src, dest = stockLoc, *g.config.LocationID
	}
	key, err := moveKey(product.ID, line, target.center, code, src, dest)
	if err != nil {
		p.run.pass.mismatch("Mismatch: %v || Product %s", err, line.Get(tsv.ColSKU))
		return nil
	}
	duplicate := fmt.Sprintf("Line already processed for Product %s || Code %s", product.Name, line.Get(tsv.ColReason))
	return p.applyMove(ctx, key, product.Name, code, duplicate)
}

func moveKey(productID uuid.UUID, line tsv.Row, center *stock.FulfillmentCenter, code stock.ReasonCode, src, dest uuid.UUID) (stock.MoveKey, error) {
	adjusted, err := parseAdjustedDate(line.Get(tsv.ColAdjustedDate))
	if err != nil {
		return stock.MoveKey{}, err
	}
	key := stock.MoveKey{
		ProductID:         productID,
		Quantity:          line.DecimalOrZero(tsv.ColQuantity).Abs(),
		AdjustedDate:      adjusted,
		TransactionItemID: line.Get(tsv.ColTransactionItemID),
		ReasonCodeID:      code.ID,
		SourceLocationID:  src,
		DestLocationID:    dest,
	}
	if center != nil {
		id := center.ID
		key.FulfillmentCenterID = &id
	}
	return key, nil
}

// applyMove creates and completes a move unless one with the same key exists
func (p *adjustmentPass) applyMove(ctx context.Context, key stock.MoveKey, name string, code stock.ReasonCode, duplicate string) error {
	moves := p.repos.Moves()
	exists, err := moves.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check stock move: %w", err)
	}
	if exists {
		p.run.pass.info("%s", duplicate)
		return nil
	}
	move, err := stock.NewStockMove(key, name, p.run.report.Name, code.Description, p.run.report.ID)
	if err != nil {
		return err
	}
	if err := moves.Create(ctx, move); err != nil {
		return fmt.Errorf("create stock move: %w", err)
	}
	if err := move.Advance(p.run.now); err != nil {
		return err
	}
	if err := moves.Save(ctx, move); err != nil {
		return fmt.Errorf("complete stock move: %w", err)
	}
	return nil
}

// findProduct looks up the FBA listing by sku, then by fnsku as asin
func (p *adjustmentPass) findProduct(ctx context.Context, line tsv.Row) (*stock.Product, error) {
	sku, asin := line.Get(tsv.ColSKU), line.Get(tsv.ColFNSKU)
	products := p.repos.Products()

	queries := []stock.ListingQuery{{SellerSKU: sku, FulfillmentBy: stock.FulfillmentFBA}}
	if asin != "" {
		queries = append(queries, stock.ListingQuery{ASIN: asin, FulfillmentBy: stock.FulfillmentFBA})
	}
	for _, q := range queries {
		if q.SellerSKU == "" && q.ASIN == "" {
			continue
		}
		listing, err := products.FindListing(ctx, q)
		if isNotFound(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find listing: %w", err)
		}
		return &stock.Product{ID: listing.ProductID, Name: listingName(listing, sku)}, nil
	}
	p.run.pass.mismatch("Product  not found for SKU %s & ASIN %s", sku, asin)
	return nil, nil
}

func listingName(m *stock.MarketplaceProduct, fallback string) string {
	if name := strings.TrimSpace(m.Name); name != "" {
		return name
	}
	return fallback
}

// center resolves a fulfillment center code of the seller, once per pass
func (p *adjustmentPass) center(ctx context.Context, code string) (*centerTarget, error) {
	if t, ok := p.centers[code]; ok {
		return t, nil
	}
	t := &centerTarget{}
	warehouses := p.repos.Warehouses()
	fc, err := warehouses.FindFulfillmentCenter(ctx, code, p.run.seller.ID)
	switch {
	case isNotFound(err):
	case err != nil:
		return nil, fmt.Errorf("find fulfillment center: %w", err)
	default:
		t.center = fc
		if fc.WarehouseID != nil {
			wh, err := warehouses.FindByID(ctx, *fc.WarehouseID)
			if err != nil && !isNotFound(err) {
				return nil, fmt.Errorf("find fulfillment center warehouse: %w", err)
			}
			t.warehouse = wh
		}
	}
	p.centers[code] = t
	return t, nil
}
