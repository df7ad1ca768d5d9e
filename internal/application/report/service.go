package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/seller"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/infrastructure/telemetry"
	"github.com/erp/marketsync/internal/infrastructure/tsv"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	// DefaultLeaseTTL bounds how long one reconciliation pass may hold its lease
	DefaultLeaseTTL = 30 * time.Minute

	payloadContentType = "text/tab-separated-values"
)

// Mode decides how failures surface. Interactive calls return the first
// error; unattended passes record it on the report and move on.
type Mode int

const (
	Interactive Mode = iota
	Unattended
)

func (m Mode) String() string {
	if m == Unattended {
		return "unattended"
	}
	return "interactive"
}

// auditedError marks a failure that already has an audit line
type auditedError struct {
	err error
}

func (e *auditedError) Error() string { return e.err.Error() }
func (e *auditedError) Unwrap() error { return e.err }

// reconcileRun is the state shared by the steps of one reconciliation pass
type reconcileRun struct {
	report  *report.Report
	seller  *seller.Seller
	payload *tsv.Payload
	pass    *auditPass
	mode    Mode
	now     time.Time
	// logPairs is false on re-runs of a partially processed report
	logPairs bool
}

type reconcileFunc func(ctx context.Context, run *reconcileRun) error

// Service drives the report lifecycle: create, request, poll, fetch and
// reconcile, plus the scheduled auto-import and auto-process entry points.
type Service struct {
	scope    TransactionScope
	repos    Repositories
	gateway  report.Gateway
	payloads report.PayloadStore
	audit    report.AuditSink
	messages report.MessagePoster
	leaser   report.Leaser
	leaseTTL time.Duration
	logger   *zap.Logger
	metrics  *telemetry.SyncMetrics
	now      func() time.Time
}

// NewService creates a new report Service. repos serves reads outside of
// transactions; writes go through scope.
func NewService(
	scope TransactionScope,
	repos Repositories,
	gateway report.Gateway,
	payloads report.PayloadStore,
	audit report.AuditSink,
	messages report.MessagePoster,
	leaser report.Leaser,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		scope:    scope,
		repos:    repos,
		gateway:  gateway,
		payloads: payloads,
		audit:    audit,
		messages: messages,
		leaser:   leaser,
		leaseTTL: DefaultLeaseTTL,
		logger:   log,
		now:      time.Now,
	}
}

// SetMetrics sets the reconciliation metrics (optional)
func (s *Service) SetMetrics(m *telemetry.SyncMetrics) {
	s.metrics = m
}

// SetLeaseTTL overrides the lease TTL
func (s *Service) SetLeaseTTL(ttl time.Duration) {
	if ttl > 0 {
		s.leaseTTL = ttl
	}
}

// SetClock overrides the time source, mainly for tests
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) reconcilerFor(t report.Type) (reconcileFunc, bool) {
	switch t {
	case report.TypeLiveInventory:
		return s.reconcileInventory, true
	case report.TypeStockAdjustment:
		return s.reconcileStockAdjustment, true
	case report.TypeUnshippedOrders:
		return s.reconcileUnshippedOrders, true
	}
	return nil, false
}

// Create stores a draft report
func (s *Service) Create(ctx context.Context, t report.Type, req CreateReportRequest) (*report.Report, error) {
	if !t.IsValid() {
		return nil, &report.ConfigurationError{Field: "type", Message: fmt.Sprintf("unknown report type %q", t)}
	}
	if req.SellerID != uuid.Nil {
		sel, err := s.repos.Sellers().FindByID(ctx, req.SellerID)
		if err != nil {
			return nil, fmt.Errorf("find seller: %w", err)
		}
		if req.InstanceID != nil {
			if _, ok := sel.Instance(*req.InstanceID); !ok {
				return nil, &report.ConfigurationError{Field: "instance", Message: "Instance does not belong to the seller"}
			}
		}
	}
	return s.createReport(ctx, t, req.SellerID, req.InstanceID, req.DateRange())
}

func (s *Service) createReport(ctx context.Context, t report.Type, sellerID uuid.UUID, instanceID *uuid.UUID, rng report.DateRange) (*report.Report, error) {
	var rep *report.Report
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		seq, err := repos.Reports().NextSequence(ctx, t)
		if err != nil {
			return fmt.Errorf("allocate report sequence: %w", err)
		}
		rep, err = report.NewReport(t, seq, sellerID, instanceID, rng)
		if err != nil {
			return err
		}
		return repos.Reports().Save(ctx, rep)
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// Get loads a report of the given type
func (s *Service) Get(ctx context.Context, t report.Type, id uuid.UUID) (*report.Report, error) {
	rep, err := s.repos.Reports().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep.Type != t {
		return nil, shared.ErrNotFound
	}
	return rep, nil
}

// Request submits a draft report to the marketplace
func (s *Service) Request(ctx context.Context, t report.Type, id uuid.UUID) (*report.Report, error) {
	rep, err := s.Get(ctx, t, id)
	if err != nil {
		return nil, err
	}
	if err := s.requestReport(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *Service) requestReport(ctx context.Context, rep *report.Report) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "request", reportAttrs(rep)...)
	defer span.End()

	now := s.now()
	rng, hasWindow, err := rep.PrepareRequest(now)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	sel, err := s.repos.Sellers().FindByID(ctx, rep.SellerID)
	if err != nil {
		return fmt.Errorf("find seller: %w", err)
	}

	def := rep.Type.Definition()
	req := report.Request{
		ReportType:     def.RemoteType,
		MarketplaceIDs: requestMarketplaceIDs(sel, rep),
		Options:        def.ExtraOptions,
	}
	if hasWindow {
		req.Window = &rng
		rep.DateRange = rng
	}
	update, err := s.gateway.RequestReport(ctx, sel.Credentials, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if update.Status == "" {
		update.Status = report.StateSubmitted
	}
	rep.MarkRequested(now)
	if err := rep.ApplyStatus(update); err != nil {
		return err
	}
	if err := s.repos.Reports().Save(ctx, rep); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	logger.L(ctx).Info("report requested",
		zap.String("report", rep.Name),
		zap.String("request_id", rep.RequestID),
		zap.String("state", rep.State.String()))
	return nil
}

// requestMarketplaceIDs picks the marketplaces a request covers. Live
// inventory requests are scoped to the report instance or the pooled set.
func requestMarketplaceIDs(sel *seller.Seller, rep *report.Report) []string {
	if rep.Type != report.TypeLiveInventory || rep.Type.Definition().AllMarketplaces {
		return sel.MarketplaceIDs()
	}
	if rep.InstanceID != nil {
		if inst, ok := sel.Instance(*rep.InstanceID); ok {
			return []string{inst.MarketplaceID}
		}
	}
	return sel.PooledMarketplaceIDs()
}

// Refresh polls the remote status of one report
func (s *Service) Refresh(ctx context.Context, t report.Type, id uuid.UUID) (*report.Report, error) {
	rep, err := s.Get(ctx, t, id)
	if err != nil {
		return nil, err
	}
	if rep.State.IsProcessed() {
		return nil, report.ErrImmutable
	}
	if rep.RequestID == "" {
		return nil, &report.ConfigurationError{Field: "request_id", Message: "Report has not been requested yet"}
	}
	sel, err := s.repos.Sellers().FindByID(ctx, rep.SellerID)
	if err != nil {
		return nil, fmt.Errorf("find seller: %w", err)
	}
	if err := s.pollReports(ctx, sel, []*report.Report{rep}); err != nil {
		return nil, err
	}
	return rep, nil
}

// pollReports applies status updates to every report, listing generated
// report ids for done jobs that do not carry one yet
func (s *Service) pollReports(ctx context.Context, sel *seller.Seller, reps []*report.Report) error {
	byRequest := make(map[string]*report.Report, len(reps))
	ids := make([]string, 0, len(reps))
	for _, rep := range reps {
		if rep.RequestID == "" {
			continue
		}
		byRequest[rep.RequestID] = rep
		ids = append(ids, rep.RequestID)
	}
	if len(ids) == 0 {
		return nil
	}

	updates, err := s.gateway.PollStatus(ctx, sel.Credentials, ids)
	if err != nil {
		return err
	}
	changed := applyUpdates(byRequest, updates)

	var listIDs []string
	for _, id := range ids {
		if byRequest[id].NeedsReportList() {
			listIDs = append(listIDs, id)
		}
	}
	if len(listIDs) > 0 {
		listed, err := s.gateway.ListReports(ctx, sel.Credentials, listIDs)
		if err != nil {
			return err
		}
		for id := range applyUpdates(byRequest, listed) {
			changed[id] = struct{}{}
		}
	}

	for _, id := range ids {
		if _, ok := changed[id]; !ok {
			continue
		}
		if err := s.repos.Reports().Save(ctx, byRequest[id]); err != nil {
			return fmt.Errorf("save report %s: %w", byRequest[id].Name, err)
		}
	}
	return nil
}

func applyUpdates(byRequest map[string]*report.Report, updates []report.StatusUpdate) map[string]struct{} {
	changed := make(map[string]struct{})
	for _, u := range updates {
		rep, ok := byRequest[u.RequestID]
		if !ok {
			continue
		}
		if err := rep.ApplyStatus(u); err != nil {
			continue
		}
		changed[u.RequestID] = struct{}{}
	}
	return changed
}

// Fetch downloads the generated body of a report once
func (s *Service) Fetch(ctx context.Context, t report.Type, id uuid.UUID) (*report.Report, error) {
	rep, err := s.Get(ctx, t, id)
	if err != nil {
		return nil, err
	}
	sel, err := s.repos.Sellers().FindByID(ctx, rep.SellerID)
	if err != nil {
		return nil, fmt.Errorf("find seller: %w", err)
	}
	if err := s.fetchReport(ctx, sel, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *Service) fetchReport(ctx context.Context, sel *seller.Seller, rep *report.Report) error {
	if rep.HasPayload() {
		return nil
	}
	if rep.ReportID == "" {
		return &report.ConfigurationError{Field: "report_id", Message: "Report is not generated yet"}
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "fetch", reportAttrs(rep)...)
	defer span.End()

	def := rep.Type.Definition()
	body, err := s.gateway.FetchReportBody(ctx, sel.Credentials, rep.ReportID, def.DecodeKind)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	now := s.now()
	name := fmt.Sprintf("%s/%s-%s.tsv", rep.Name, rep.ReportID, now.UTC().Format("20060102T150405"))
	key, err := s.payloads.Put(ctx, name, body, payloadContentType)
	if err != nil {
		return fmt.Errorf("store report payload: %w", err)
	}
	rep.AttachPayload(key, now)

	err = s.scope.Execute(ctx, func(repos Repositories) error {
		if err := repos.Reports().Save(ctx, rep); err != nil {
			return err
		}
		if rep.Type != report.TypeStockAdjustment {
			return nil
		}
		sel.MarkStockAdjustmentSynced(now)
		return repos.Sellers().Save(ctx, sel)
	})
	if err != nil {
		return fmt.Errorf("save fetched report: %w", err)
	}
	s.post(ctx, rep, report.Message{Body: "Report downloaded", AttachmentKeys: []string{key}})
	return nil
}

// Process reconciles a fetched report. The lease for the report type and
// seller is held for the whole pass.
func (s *Service) Process(ctx context.Context, t report.Type, id uuid.UUID) (*report.Report, error) {
	rep, err := s.Get(ctx, t, id)
	if err != nil {
		return nil, err
	}
	lease, err := s.leaser.Acquire(ctx, report.LeaseKey(t, rep.SellerID), s.leaseTTL)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, lease)

	if err := s.processReport(ctx, rep, Interactive); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *Service) processReport(ctx context.Context, rep *report.Report, mode Mode) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "process", reportAttrs(rep)...)
	defer span.End()
	ctx, log := logger.WithReport(ctx, rep.ID.String(), rep.SellerID.String())

	if err := rep.BeginReconcile(); err != nil {
		return err
	}
	reconcile, ok := s.reconcilerFor(rep.Type)
	if !ok {
		return &report.ConfigurationError{Field: "type", Message: fmt.Sprintf("no reconciler for %s", rep.Type)}
	}
	sel, err := s.repos.Sellers().FindByID(ctx, rep.SellerID)
	if err != nil {
		return fmt.Errorf("find seller: %w", err)
	}
	body, err := s.payloads.Get(ctx, rep.PayloadKey)
	if err != nil {
		return fmt.Errorf("load report payload: %w", err)
	}

	start := time.Now()
	run := &reconcileRun{
		report:   rep,
		seller:   sel,
		pass:     newAuditPass(rep.Ref()),
		mode:     mode,
		now:      s.now(),
		logPairs: rep.State != report.StatePartiallyProcessed,
	}
	err = s.runReconcile(ctx, run, body, reconcile)
	if closeErr := run.pass.close(ctx, s.audit); closeErr != nil {
		log.Error("failed to write audit lines", zap.Error(closeErr))
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	rep.Complete(run.pass.HasMismatch(), run.now)
	if err := s.repos.Reports().Save(ctx, rep); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	note := "Report processed"
	if rep.State == report.StatePartiallyProcessed {
		note = "Report partially processed, open the log to view unresolved lines"
	}
	s.post(ctx, rep, report.Message{Body: note})

	elapsed := time.Since(start)
	s.metrics.RecordPass(ctx, rep.Type.String(), rep.State.String(), run.pass.Lines(), run.pass.Mismatches(), elapsed)
	log.Info("reconciliation pass finished",
		zap.String("report", rep.Name),
		zap.String("type", rep.Type.String()),
		zap.String("mode", mode.String()),
		zap.String("state", rep.State.String()),
		zap.Int("lines", run.pass.Lines()),
		zap.Int("mismatches", run.pass.Mismatches()),
		zap.Duration("elapsed", elapsed))
	return nil
}

func (s *Service) runReconcile(ctx context.Context, run *reconcileRun, body []byte, reconcile reconcileFunc) error {
	rep := run.report
	def := rep.Type.Definition()
	if def.NeedsDecode() {
		decoded, err := s.gateway.Decode(ctx, rep.ReportID, body, def.DecodeKind)
		if err == nil {
			decoded, err = tsv.DecodeText(decoded)
		}
		if err != nil {
			run.pass.mismatch("Error found in Decryption of Data %s", remoteReason(err))
			return &auditedError{err: fmt.Errorf("decode report body: %w", err)}
		}
		body = decoded
	}

	payload, err := tsv.NewPayload(body)
	if errors.Is(err, tsv.ErrEmptyPayload) || errors.Is(err, tsv.ErrMissingHeader) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("parse report payload: %w", err)
	}
	run.payload = payload
	return reconcile(ctx, run)
}

// Delete removes a report that was never reconciled
func (s *Service) Delete(ctx context.Context, t report.Type, id uuid.UUID) error {
	rep, err := s.Get(ctx, t, id)
	if err != nil {
		return err
	}
	if err := rep.CanDelete(); err != nil {
		return err
	}
	return s.repos.Reports().Delete(ctx, rep.ID)
}

// Logs lists the audit lines of a report
func (s *Service) Logs(ctx context.Context, t report.Type, id uuid.UUID) ([]report.LogEntry, error) {
	rep, err := s.Get(ctx, t, id)
	if err != nil {
		return nil, err
	}
	return s.audit.Entries(ctx, rep.Ref())
}

// ImportLogs lists the import failures recorded for a seller and type
func (s *Service) ImportLogs(ctx context.Context, t report.Type, sellerID uuid.UUID) ([]report.LogEntry, error) {
	if _, err := s.repos.Sellers().FindByID(ctx, sellerID); err != nil {
		return nil, fmt.Errorf("find seller: %w", err)
	}
	return s.audit.Entries(ctx, report.ImportLogRef(t, sellerID))
}

func (s *Service) post(ctx context.Context, rep *report.Report, msg report.Message) {
	if s.messages == nil {
		return
	}
	if err := s.messages.Post(ctx, rep.Ref(), msg); err != nil {
		logger.L(ctx).Warn("failed to post report message", zap.String("report", rep.Name), zap.Error(err))
	}
}

func (s *Service) release(ctx context.Context, lease report.Lease) {
	if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("failed to release lease", zap.Error(err))
	}
}

// recordFailure keeps an unattended failure inside the report boundary
func (s *Service) recordFailure(ctx context.Context, rep *report.Report, err error) {
	logger.L(ctx).Warn("report step failed",
		zap.String("report", rep.Name),
		zap.String("type", rep.Type.String()),
		zap.Error(err))
	var audited *auditedError
	if errors.As(err, &audited) {
		return
	}
	if appendErr := s.audit.AppendLogLine(ctx, rep.Ref(), err.Error(), true); appendErr != nil {
		logger.L(ctx).Error("failed to record report failure", zap.String("report", rep.Name), zap.Error(appendErr))
	}
}

func remoteReason(err error) string {
	var remote *report.RemoteError
	if errors.As(err, &remote) {
		return remote.Reason
	}
	return err.Error()
}

func reportAttrs(rep *report.Report) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(telemetry.SpanAttrReportID, rep.ID.String()),
		attribute.String(telemetry.SpanAttrReportName, rep.Name),
		attribute.String(telemetry.SpanAttrReportType, rep.Type.String()),
		attribute.String(telemetry.SpanAttrSellerID, rep.SellerID.String()),
		attribute.String(telemetry.SpanAttrState, rep.State.String()),
	}
}
