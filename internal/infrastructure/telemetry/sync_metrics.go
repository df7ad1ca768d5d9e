package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics records marketplace gateway traffic and reconciliation outcomes.
// A nil *SyncMetrics records nothing.
type SyncMetrics struct {
	gatewayCalls    *Counter
	gatewayDuration *Histogram
	passes          *Counter
	passDuration    *Histogram
	lines           *Counter
	mismatches      *Counter
	imported        *Counter
}

// NewSyncMetrics creates the instruments on meter
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	m := &SyncMetrics{}
	var err error

	if m.gatewayCalls, err = NewCounter(meter, "gateway_calls_total",
		"Marketplace gateway calls by operation and outcome", "{call}"); err != nil {
		return nil, err
	}
	if m.gatewayDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "gateway_call_duration_seconds",
		Description: "Marketplace gateway call latency in seconds",
		Unit:        "s",
		Boundaries:  GatewayDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.passes, err = NewCounter(meter, "reconcile_passes_total",
		"Reconciliation passes by report type and resulting state", "{pass}"); err != nil {
		return nil, err
	}
	if m.passDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "reconcile_pass_duration_seconds",
		Description: "Reconciliation pass latency in seconds",
		Unit:        "s",
		Boundaries:  PassDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.lines, err = NewCounter(meter, "reconcile_audit_lines_total",
		"Audit log lines written by reconciliation", "{line}"); err != nil {
		return nil, err
	}
	if m.mismatches, err = NewCounter(meter, "reconcile_mismatches_total",
		"Audit log lines flagged as mismatches", "{line}"); err != nil {
		return nil, err
	}
	if m.imported, err = NewCounter(meter, "reports_imported_total",
		"Reports created by the scheduled importer", "{report}"); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveCall records one gateway call
func (m *SyncMetrics) ObserveCall(ctx context.Context, op string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.gatewayCalls.Inc(ctx, AttrOperation.String(op), AttrOutcome.String(outcome))
	m.gatewayDuration.RecordDuration(ctx, elapsed, AttrOperation.String(op))
}

// RecordPass records a finished reconciliation pass
func (m *SyncMetrics) RecordPass(ctx context.Context, reportType, state string, lines, mismatches int, elapsed time.Duration) {
	if m == nil {
		return
	}
	typ := AttrReportType.String(reportType)
	m.passes.Inc(ctx, typ, AttrState.String(state))
	m.passDuration.RecordDuration(ctx, elapsed, typ)
	m.lines.Add(ctx, int64(lines), typ)
	m.mismatches.Add(ctx, int64(mismatches), typ)
}

// RecordImport records reports created by one importer run
func (m *SyncMetrics) RecordImport(ctx context.Context, reportType string, created int) {
	if m == nil || created == 0 {
		return
	}
	m.imported.Add(ctx, int64(created), AttrReportType.String(reportType))
}
