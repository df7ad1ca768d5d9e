package report

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/sales"
	"github.com/erp/marketsync/internal/domain/seller"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/domain/stock"
	"github.com/erp/marketsync/internal/infrastructure/lease"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockGateway is a mock implementation of report.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) RequestReport(ctx context.Context, creds seller.Credentials, req report.Request) (report.StatusUpdate, error) {
	args := m.Called(ctx, creds, req)
	return args.Get(0).(report.StatusUpdate), args.Error(1)
}

func (m *MockGateway) PollStatus(ctx context.Context, creds seller.Credentials, ids []string) ([]report.StatusUpdate, error) {
	args := m.Called(ctx, creds, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.StatusUpdate), args.Error(1)
}

func (m *MockGateway) ListReports(ctx context.Context, creds seller.Credentials, ids []string) ([]report.StatusUpdate, error) {
	args := m.Called(ctx, creds, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.StatusUpdate), args.Error(1)
}

func (m *MockGateway) ListReportsByMarketplaces(ctx context.Context, creds seller.Credentials, q report.ListingQuery) ([]report.ReportListing, error) {
	args := m.Called(ctx, creds, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ReportListing), args.Error(1)
}

func (m *MockGateway) FetchReportBody(ctx context.Context, creds seller.Credentials, reportID, kind string) ([]byte, error) {
	args := m.Called(ctx, creds, reportID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockGateway) Decode(ctx context.Context, reportID string, body []byte, kind string) ([]byte, error) {
	args := m.Called(ctx, reportID, body, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockGateway) GetOrders(ctx context.Context, creds seller.Credentials, marketplaceIDs, orderIDs []string) ([]report.RemoteOrder, error) {
	args := m.Called(ctx, creds, marketplaceIDs, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.RemoteOrder), args.Error(1)
}

// memStore keeps every repository in memory
type memStore struct {
	mu sync.Mutex

	reports  map[uuid.UUID]report.Report
	seq      map[report.Type]int64
	sellers  map[uuid.UUID]seller.Seller
	products []stock.Product
	listings []stock.MarketplaceProduct

	warehouses map[uuid.UUID]stock.Warehouse
	centers    []stock.FulfillmentCenter
	moves      []stock.StockMove
	adjusts    []stock.InventoryAdjustment

	codes   []stock.ReasonCode
	groups  []stock.ReasonGroup
	configs []stock.AdjustmentConfig

	// failMove, when set, is consulted before a stock move is created
	failMove func(m *stock.StockMove) error

	partners []sales.Partner
	orders   []sales.Order
	carriers []sales.Carrier
}

func newMemStore() *memStore {
	return &memStore{
		reports:    make(map[uuid.UUID]report.Report),
		seq:        make(map[report.Type]int64),
		sellers:    make(map[uuid.UUID]seller.Seller),
		warehouses: make(map[uuid.UUID]stock.Warehouse),
	}
}

func (s *memStore) Reports() report.Repository            { return memReports{s} }
func (s *memStore) Sellers() seller.Repository            { return memSellers{s} }
func (s *memStore) Products() stock.ProductRepository     { return memProducts{s} }
func (s *memStore) Warehouses() stock.WarehouseRepository { return memWarehouses{s} }
func (s *memStore) Moves() stock.MoveRepository           { return memMoves{s} }
func (s *memStore) Adjustments() stock.AdjustmentRepository {
	return memAdjustments{s}
}
func (s *memStore) Reasons() stock.ReasonRepository   { return memReasons{s} }
func (s *memStore) Partners() sales.PartnerRepository { return memPartners{s} }
func (s *memStore) Orders() sales.OrderRepository     { return memOrders{s} }
func (s *memStore) Carriers() sales.CarrierRepository { return memCarriers{s} }

// memScope runs fn against the store; a failed call drops the stock moves
// it created, other writes stay
type memScope struct {
	store    *memStore
	calls    int
	failures int
}

func (m *memScope) Execute(ctx context.Context, fn func(repos Repositories) error) error {
	m.calls++
	m.store.mu.Lock()
	committed := len(m.store.moves)
	m.store.mu.Unlock()
	if err := fn(m.store); err != nil {
		m.failures++
		m.store.mu.Lock()
		m.store.moves = m.store.moves[:committed]
		m.store.mu.Unlock()
		return err
	}
	return nil
}

type memReports struct{ s *memStore }

func (r memReports) FindByID(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.reports[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &rep, nil
}

func (r memReports) Find(ctx context.Context, f report.Filter) ([]report.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []report.Report
	for _, rep := range r.s.reports {
		if f.Type != "" && rep.Type != f.Type {
			continue
		}
		if f.SellerID != uuid.Nil && rep.SellerID != f.SellerID {
			continue
		}
		if f.WithReportID && rep.ReportID == "" {
			continue
		}
		if len(f.States) > 0 && !containsState(f.States, rep.State) {
			continue
		}
		out = append(out, rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func containsState(states []report.State, s report.State) bool {
	for _, st := range states {
		if st == s {
			return true
		}
	}
	return false
}

func (r memReports) ExistsByRemoteID(ctx context.Context, t report.Type, requestID, reportID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rep := range r.s.reports {
		if rep.Type != t {
			continue
		}
		if (requestID != "" && rep.RequestID == requestID) || (reportID != "" && rep.ReportID == reportID) {
			return true, nil
		}
	}
	return false, nil
}

func (r memReports) NextSequence(ctx context.Context, t report.Type) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq[t]++
	return r.s.seq[t], nil
}

func (r memReports) Save(ctx context.Context, rep *report.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if stored, ok := r.s.reports[rep.ID]; ok {
		if stored.Version != rep.Version {
			return shared.ErrConcurrencyConflict
		}
		rep.Version++
	}
	r.s.reports[rep.ID] = *rep
	return nil
}

func (r memReports) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reports[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.s.reports, id)
	return nil
}

type memSellers struct{ s *memStore }

func (r memSellers) FindByID(ctx context.Context, id uuid.UUID) (*seller.Seller, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sel, ok := r.s.sellers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &sel, nil
}

func (r memSellers) FindActive(ctx context.Context) ([]seller.Seller, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []seller.Seller
	for _, sel := range r.s.sellers {
		if sel.Active {
			out = append(out, sel)
		}
	}
	return out, nil
}

func (r memSellers) Save(ctx context.Context, sel *seller.Seller) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sellers[sel.ID] = *sel
	return nil
}

type memProducts struct{ s *memStore }

func (r memProducts) FindProductByCode(ctx context.Context, code string) (*stock.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.DefaultCode == code {
			return &p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func listingMatches(m stock.MarketplaceProduct, q stock.ListingQuery) bool {
	if q.SellerSKU != "" && m.SellerSKU != q.SellerSKU {
		return false
	}
	if q.ASIN != "" && m.ASIN != q.ASIN {
		return false
	}
	if q.FulfillmentBy != "" && m.FulfillmentBy != q.FulfillmentBy {
		return false
	}
	if len(q.InstanceIDs) == 0 {
		return true
	}
	for _, id := range q.InstanceIDs {
		if m.InstanceID == id {
			return true
		}
	}
	return false
}

func (r memProducts) FindListing(ctx context.Context, q stock.ListingQuery) (*stock.MarketplaceProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.listings {
		if listingMatches(m, q) {
			return &m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memProducts) ListListings(ctx context.Context, q stock.ListingQuery) ([]stock.MarketplaceProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []stock.MarketplaceProduct
	for _, m := range r.s.listings {
		if listingMatches(m, q) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memProducts) CreateProduct(ctx context.Context, p *stock.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products = append(r.s.products, *p)
	return nil
}

func (r memProducts) CreateListing(ctx context.Context, m *stock.MarketplaceProduct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.listings = append(r.s.listings, *m)
	return nil
}

func (r memProducts) SaveListing(ctx context.Context, m *stock.MarketplaceProduct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.listings {
		if r.s.listings[i].ID == m.ID {
			r.s.listings[i] = *m
			return nil
		}
	}
	return shared.ErrNotFound
}

type memWarehouses struct{ s *memStore }

func (r memWarehouses) FindByID(ctx context.Context, id uuid.UUID) (*stock.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wh, ok := r.s.warehouses[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &wh, nil
}

func (r memWarehouses) FindFBAForSeller(ctx context.Context, sellerID uuid.UUID) ([]stock.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []stock.Warehouse
	for _, wh := range r.s.warehouses {
		if wh.IsFBA && wh.SellerID != nil && *wh.SellerID == sellerID {
			out = append(out, wh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memWarehouses) FindFulfillmentCenter(ctx context.Context, code string, sellerID uuid.UUID) (*stock.FulfillmentCenter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, fc := range r.s.centers {
		if fc.Code == code && fc.SellerID == sellerID {
			return &fc, nil
		}
	}
	return nil, shared.ErrNotFound
}

type memMoves struct{ s *memStore }

func sameFC(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r memMoves) Exists(ctx context.Context, key stock.MoveKey) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.moves {
		if m.ProductID == key.ProductID &&
			m.Quantity.Equal(key.Quantity.Abs()) &&
			m.AdjustedDate.Equal(key.AdjustedDate) &&
			m.TransactionItemID == key.TransactionItemID &&
			sameFC(m.FulfillmentCenterID, key.FulfillmentCenterID) &&
			m.ReasonCodeID == key.ReasonCodeID &&
			m.SourceLocationID == key.SourceLocationID &&
			m.DestLocationID == key.DestLocationID {
			return true, nil
		}
	}
	return false, nil
}

func (r memMoves) Create(ctx context.Context, m *stock.StockMove) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failMove != nil {
		if err := r.s.failMove(m); err != nil {
			return err
		}
	}
	r.s.moves = append(r.s.moves, *m)
	return nil
}

func (r memMoves) Save(ctx context.Context, m *stock.StockMove) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.moves {
		if r.s.moves[i].ID == m.ID {
			r.s.moves[i] = *m
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r memMoves) FindByReport(ctx context.Context, reportID uuid.UUID) ([]stock.StockMove, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []stock.StockMove
	for _, m := range r.s.moves {
		if m.ReportID == reportID {
			out = append(out, m)
		}
	}
	return out, nil
}

type memAdjustments struct{ s *memStore }

func (r memAdjustments) ExistsForLocation(ctx context.Context, reportID, locationID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.adjusts {
		if a.ReportID == reportID && a.LocationID == locationID {
			return true, nil
		}
	}
	return false, nil
}

func (r memAdjustments) Create(ctx context.Context, a *stock.InventoryAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.adjusts = append(r.s.adjusts, *a)
	return nil
}

type memReasons struct{ s *memStore }

func (r memReasons) ListCodes(ctx context.Context) ([]stock.ReasonCode, error) {
	return r.s.codes, nil
}

func (r memReasons) ListGroups(ctx context.Context) ([]stock.ReasonGroup, error) {
	return r.s.groups, nil
}

func (r memReasons) ListConfigs(ctx context.Context, sellerID uuid.UUID) ([]stock.AdjustmentConfig, error) {
	var out []stock.AdjustmentConfig
	for _, c := range r.s.configs {
		if c.SellerID == sellerID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memPartners struct{ s *memStore }

func (r memPartners) FindByEmail(ctx context.Context, email string) (*sales.Partner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.partners {
		if p.Email == email && !p.IsCompany {
			return &p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memPartners) FindByNameAndPlace(ctx context.Context, name, city, stateCode, countryCode string) (*sales.Partner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.partners {
		if p.Name == name && p.Address.City == city && p.Address.StateCode == stateCode && p.Address.CountryCode == countryCode {
			return &p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memPartners) FindDelivery(ctx context.Context, fp sales.Fingerprint) (*sales.Partner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.partners {
		if p.MatchesDelivery(fp.Name, fp.Address) {
			return &p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memPartners) Create(ctx context.Context, p *sales.Partner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.partners = append(r.s.partners, *p)
	return nil
}

type memOrders struct{ s *memStore }

func (r memOrders) Exists(ctx context.Context, instanceID uuid.UUID, reference, fulfillmentBy string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.InstanceID == instanceID && o.Reference == reference && o.FulfillmentBy == fulfillmentBy {
			return true, nil
		}
	}
	return false, nil
}

func (r memOrders) Create(ctx context.Context, o *sales.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders = append(r.s.orders, *o)
	return nil
}

func (r memOrders) FindByReport(ctx context.Context, reportID uuid.UUID) ([]sales.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []sales.Order
	for _, o := range r.s.orders {
		if o.ReportID == reportID {
			out = append(out, o)
		}
	}
	return out, nil
}

type memCarriers struct{ s *memStore }

func (r memCarriers) FindByServiceLevel(ctx context.Context, level string) (*sales.Carrier, error) {
	for _, c := range r.s.carriers {
		if c.ServiceLevel == level {
			return &c, nil
		}
	}
	return nil, shared.ErrNotFound
}

// memPayloads is a write-once payload store
type memPayloads struct {
	mu     sync.Mutex
	bodies map[string][]byte
}

func newMemPayloads() *memPayloads {
	return &memPayloads{bodies: make(map[string][]byte)}
}

func (p *memPayloads) Put(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.bodies[name]; ok {
		return "", fmt.Errorf("object %s exists", name)
	}
	p.bodies[name] = append([]byte(nil), body...)
	return name, nil
}

func (p *memPayloads) Get(ctx context.Context, key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	body, ok := p.bodies[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return body, nil
}

// memAudit keeps audit lines and posted messages
type memAudit struct {
	mu       sync.Mutex
	lines    map[uuid.UUID][]report.LogEntry
	messages map[uuid.UUID][]report.Message
	deleted  int
}

func newMemAudit() *memAudit {
	return &memAudit{
		lines:    make(map[uuid.UUID][]report.LogEntry),
		messages: make(map[uuid.UUID][]report.Message),
	}
}

func (a *memAudit) AppendLogLine(ctx context.Context, ref report.AuditRef, msg string, mismatch bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lines[ref.ReportID] = append(a.lines[ref.ReportID], report.LogEntry{ID: uuid.New(), Message: msg, Mismatch: mismatch})
	return nil
}

func (a *memAudit) DeleteAllIfEmpty(ctx context.Context, ref report.AuditRef) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.lines[ref.ReportID]) == 0 {
		delete(a.lines, ref.ReportID)
		a.deleted++
	}
	return nil
}

func (a *memAudit) Entries(ctx context.Context, ref report.AuditRef) ([]report.LogEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]report.LogEntry(nil), a.lines[ref.ReportID]...), nil
}

func (a *memAudit) Post(ctx context.Context, ref report.AuditRef, msg report.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages[ref.ReportID] = append(a.messages[ref.ReportID], msg)
	return nil
}

func (a *memAudit) messagesFor(id uuid.UUID) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, m := range a.messages[id] {
		out = append(out, m.Body)
	}
	return out
}

func (a *memAudit) mismatchCount(id uuid.UUID) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, e := range a.lines[id] {
		if e.Mismatch {
			n++
		}
	}
	return n
}

type fixture struct {
	store    *memStore
	scope    *memScope
	gateway  *MockGateway
	payloads *memPayloads
	audit    *memAudit
	leaser   *lease.MemoryLeaser
	svc      *Service
}

func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{
		store:    store,
		scope:    &memScope{store: store},
		gateway:  new(MockGateway),
		payloads: newMemPayloads(),
		audit:    newMemAudit(),
		leaser:   lease.NewMemoryLeaser(),
	}
	f.svc = NewService(f.scope, store, f.gateway, f.payloads, f.audit, f.audit, f.leaser, zap.NewNop())
	return f
}
