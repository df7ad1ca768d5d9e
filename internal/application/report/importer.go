package report

import (
	"context"
	"fmt"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/seller"
	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AutoImport creates and requests the reports one scheduled import of the
// type needs for a seller. Request failures are written to the report log.
func (s *Service) AutoImport(ctx context.Context, t report.Type, req AutoImportRequest) (*ImportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "auto_import",
		attribute.String(telemetry.SpanAttrReportType, t.String()),
		attribute.String(telemetry.SpanAttrSellerID, req.SellerID.String()))
	defer span.End()

	sel, err := s.repos.Sellers().FindByID(ctx, req.SellerID)
	if err != nil {
		return nil, fmt.Errorf("find seller: %w", err)
	}
	if req.InstanceID != nil {
		if _, ok := sel.Instance(*req.InstanceID); !ok {
			return nil, &report.ConfigurationError{Field: "instance", Message: "Instance does not belong to the seller"}
		}
	}

	result := &ImportResult{Created: []uuid.UUID{}}
	switch t {
	case report.TypeLiveInventory:
		err = s.importLiveInventory(ctx, sel, req.InstanceID, result)
	case report.TypeStockAdjustment:
		err = s.importStockAdjustment(ctx, sel, result)
	case report.TypeUnshippedOrders:
		err = s.createAndRequest(ctx, t, sel.ID, nil, report.DateRange{}, result)
	default:
		err = &report.ConfigurationError{Field: "type", Message: fmt.Sprintf("unknown report type %q", t)}
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordImport(ctx, t.String(), len(result.Created))
	logger.L(ctx).Info("auto import finished",
		zap.String("type", t.String()),
		zap.String("seller_id", sel.ID.String()),
		zap.String("policy", result.Policy),
		zap.Int("created", len(result.Created)),
		zap.Int("failed", result.Failed))
	return result, nil
}

// createAndRequest stores a draft and submits it. A failed request stays on
// the report as an audit line.
func (s *Service) createAndRequest(ctx context.Context, t report.Type, sellerID uuid.UUID, instanceID *uuid.UUID, rng report.DateRange, result *ImportResult) error {
	rep, err := s.createReport(ctx, t, sellerID, instanceID, rng)
	if err != nil {
		return err
	}
	result.Created = append(result.Created, rep.ID)
	if err := s.requestReport(ctx, rep); err != nil {
		s.recordFailure(ctx, rep, err)
		result.Failed++
	}
	return nil
}

func (s *Service) importLiveInventory(ctx context.Context, sel *seller.Seller, instanceID *uuid.UUID, result *ImportResult) error {
	rule := seller.ResolveFanout(sel)
	result.Policy = string(rule.Policy)
	now := s.now()
	start, end := sel.LiveInventoryWindow(now)
	window := report.DateRange{Start: start, End: end}

	switch rule.Policy {
	case seller.FanoutListing:
		return s.importListedInventory(ctx, sel, instanceID, window, result)
	case seller.FanoutPerSeller:
		return s.createAndRequest(ctx, report.TypeLiveInventory, sel.ID, instanceID, report.DateRange{}, result)
	case seller.FanoutPerSellerWindowed:
		return s.createAndRequest(ctx, report.TypeLiveInventory, sel.ID, nil, window, result)
	case seller.FanoutPerInstance, seller.FanoutPerInstanceWindowed:
		var rng report.DateRange
		if rule.Policy == seller.FanoutPerInstanceWindowed {
			rng = window
		}
		for _, id := range importInstances(sel, instanceID) {
			if err := s.createAndRequest(ctx, report.TypeLiveInventory, sel.ID, &id, rng, result); err != nil {
				return err
			}
		}
		return nil
	}
	logger.L(ctx).Warn("no live inventory fan-out rule matches seller",
		zap.String("seller_id", sel.ID.String()),
		zap.String("program", string(sel.Program)),
		zap.String("us_program", sel.USProgram),
		zap.Bool("european", sel.IsEuropean))
	return nil
}

func importInstances(sel *seller.Seller, instanceID *uuid.UUID) []uuid.UUID {
	if instanceID != nil {
		return []uuid.UUID{*instanceID}
	}
	ids := make([]uuid.UUID, 0, len(sel.Instances))
	for _, inst := range sel.Instances {
		ids = append(ids, inst.ID)
	}
	return ids
}

// importListedInventory picks up the latest done report another tool
// requested instead of requesting one
func (s *Service) importListedInventory(ctx context.Context, sel *seller.Seller, instanceID *uuid.UUID, window report.DateRange, result *ImportResult) error {
	now := s.now()
	if sel.UsesYesterdayWindow() {
		window = report.YesterdayRange(now)
	}

	var marketplaces []string
	if instanceID != nil {
		inst, _ := sel.Instance(*instanceID)
		marketplaces = []string{inst.MarketplaceID}
	} else {
		for _, id := range sel.MarketplaceIDs() {
			if id == seller.ExcludedPoolMarketplace && sel.ExcludesPoolMarketplaceOnListing() {
				continue
			}
			marketplaces = append(marketplaces, id)
		}
	}

	listings, err := s.gateway.ListReportsByMarketplaces(ctx, sel.Credentials, report.ListingQuery{
		ReportType:     report.TypeLiveInventory.Definition().RemoteType,
		MarketplaceIDs: marketplaces,
		Window:         window,
	})
	if err != nil {
		s.recordImportFailure(ctx, report.TypeLiveInventory, sel.ID, err)
		result.Failed++
		return nil
	}
	latest, ok := report.LatestDone(listings)
	if !ok {
		return nil
	}
	exists, err := s.repos.Reports().ExistsByRemoteID(ctx, report.TypeLiveInventory, latest.RequestID, latest.ReportID)
	if err != nil {
		return fmt.Errorf("check listed report: %w", err)
	}
	if exists {
		return nil
	}

	var rep *report.Report
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		seq, err := repos.Reports().NextSequence(ctx, report.TypeLiveInventory)
		if err != nil {
			return fmt.Errorf("allocate report sequence: %w", err)
		}
		rep, err = report.NewListedReport(report.TypeLiveInventory, seq, sel.ID, instanceID, latest)
		if err != nil {
			return err
		}
		if err := repos.Reports().Save(ctx, rep); err != nil {
			return err
		}
		sel.MarkInventorySynced(window.End)
		return repos.Sellers().Save(ctx, sel)
	})
	if err != nil {
		return err
	}
	result.Created = append(result.Created, rep.ID)
	return nil
}

// recordImportFailure writes a failed import step to the seller's import log
func (s *Service) recordImportFailure(ctx context.Context, t report.Type, sellerID uuid.UUID, err error) {
	logger.L(ctx).Warn("import step failed",
		zap.String("type", t.String()),
		zap.String("seller_id", sellerID.String()),
		zap.Error(err))
	if appendErr := s.audit.AppendLogLine(ctx, report.ImportLogRef(t, sellerID), err.Error(), true); appendErr != nil {
		logger.L(ctx).Error("failed to record import failure", zap.String("seller_id", sellerID.String()), zap.Error(appendErr))
	}
}

func (s *Service) importStockAdjustment(ctx context.Context, sel *seller.Seller, result *ImportResult) error {
	start, end := sel.StockAdjustmentWindow(s.now())
	if err := s.createAndRequest(ctx, report.TypeStockAdjustment, sel.ID, nil, report.DateRange{Start: start, End: end}, result); err != nil {
		return err
	}
	sel.MarkStockAdjustmentSynced(end)
	if err := s.repos.Sellers().Save(ctx, sel); err != nil {
		return fmt.Errorf("save seller: %w", err)
	}
	return nil
}

// AutoProcess polls, fetches and reconciles the open reports of a seller in
// unattended mode. The lease for the type and seller is held throughout.
func (s *Service) AutoProcess(ctx context.Context, t report.Type, sellerID uuid.UUID) (*ProcessResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "auto_process",
		attribute.String(telemetry.SpanAttrReportType, t.String()),
		attribute.String(telemetry.SpanAttrSellerID, sellerID.String()))
	defer span.End()

	sel, err := s.repos.Sellers().FindByID(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("find seller: %w", err)
	}
	lease, err := s.leaser.Acquire(ctx, report.LeaseKey(t, sellerID), s.leaseTTL)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, lease)

	result := &ProcessResult{}
	reports := s.repos.Reports()

	polling, err := reports.Find(ctx, report.Filter{
		Type:     t,
		SellerID: sellerID,
		States:   []report.State{report.StateSubmitted, report.StateInProgress},
	})
	if err != nil {
		return nil, fmt.Errorf("find polling reports: %w", err)
	}
	if len(polling) > 0 {
		reps := make([]*report.Report, len(polling))
		for i := range polling {
			reps[i] = &polling[i]
		}
		if err := s.pollReports(ctx, sel, reps); err != nil {
			logger.L(ctx).Warn("failed to poll report status", zap.String("seller_id", sellerID.String()), zap.Error(err))
			for _, rep := range reps {
				s.recordFailure(ctx, rep, err)
			}
			result.Failed += len(reps)
		} else {
			result.Polled = len(reps)
		}
	}

	ready, err := reports.Find(ctx, report.Filter{
		Type:         t,
		SellerID:     sellerID,
		States:       []report.State{report.StateDone, report.StateSubmitted, report.StateInProgress},
		WithReportID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("find ready reports: %w", err)
	}
	for i := range ready {
		rep := &ready[i]
		if !rep.HasPayload() {
			if err := s.fetchReport(ctx, sel, rep); err != nil {
				s.recordFailure(ctx, rep, err)
				result.Failed++
				continue
			}
			result.Fetched++
		}
		if err := s.processReport(ctx, rep, Unattended); err != nil {
			s.recordFailure(ctx, rep, err)
			result.Failed++
			continue
		}
		result.Processed++
	}

	logger.L(ctx).Info("auto process finished",
		zap.String("type", t.String()),
		zap.String("seller_id", sellerID.String()),
		zap.Int("polled", result.Polled),
		zap.Int("fetched", result.Fetched),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed))
	return result, nil
}
