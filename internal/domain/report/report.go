package report

import (
	"fmt"
	"time"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
)

// Report is the aggregate root for one remote report job and its reconciliation.
// It owns its audit log and its write-once payload.
type Report struct {
	shared.BaseEntity
	Type        Type
	Name        string
	SellerID    uuid.UUID
	InstanceID  *uuid.UUID
	RequestID   string
	ReportID    string
	State       State
	DateRange   DateRange
	RequestedAt *time.Time
	PayloadKey  string
	FetchedAt   *time.Time
	ProcessedAt *time.Time
	Version     int
}

// NewReport creates a draft report. A report without seller can be stored
// but not requested.
func NewReport(t Type, seq int64, sellerID uuid.UUID, instanceID *uuid.UUID, rng DateRange) (*Report, error) {
	if !t.IsValid() {
		return nil, &ConfigurationError{Field: "type", Message: fmt.Sprintf("unknown report type %q", t)}
	}
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	return &Report{
		BaseEntity: shared.NewBaseEntity(),
		Type:       t,
		Name:       t.FormatName(seq),
		SellerID:   sellerID,
		InstanceID: instanceID,
		State:      StateDraft,
		DateRange:  rng,
		Version:    1,
	}, nil
}

// NewListedReport creates a report for a job another tool already requested
func NewListedReport(t Type, seq int64, sellerID uuid.UUID, instanceID *uuid.UUID, l ReportListing) (*Report, error) {
	r, err := NewReport(t, seq, sellerID, instanceID, DateRange{Start: l.Start, End: l.End})
	if err != nil {
		return nil, err
	}
	r.RequestID = l.RequestID
	r.ReportID = l.ReportID
	if l.Status.IsRemoteStatus() {
		r.State = l.Status
	} else {
		r.State = StateDone
	}
	if !l.SubmittedAt.IsZero() {
		at := l.SubmittedAt
		r.RequestedAt = &at
	}
	return r, nil
}

// Ref returns the audit reference of this report
func (r *Report) Ref() AuditRef {
	return AuditRef{Type: r.Type, ReportID: r.ID}
}

// HasSeller reports whether an owning seller is set
func (r *Report) HasSeller() bool {
	return r.SellerID != uuid.Nil
}

// HasPayload reports whether the body was fetched
func (r *Report) HasPayload() bool {
	return r.PayloadKey != ""
}

// PrepareRequest checks that the report may be requested and returns the
// window to send. The bool is false when no window was given at all.
func (r *Report) PrepareRequest(now time.Time) (DateRange, bool, error) {
	if r.State.IsProcessed() {
		return DateRange{}, false, ErrImmutable
	}
	if !r.HasSeller() {
		return DateRange{}, false, &ConfigurationError{Field: "seller", Message: "Please select Seller"}
	}
	if r.State != StateDraft {
		return DateRange{}, false, fmt.Errorf("%w: cannot request from %s", ErrInvalidTransition, r.State)
	}
	if !r.DateRange.IsSet() {
		return DateRange{}, false, nil
	}
	rng, err := r.DateRange.Resolve(now)
	if err != nil {
		return DateRange{}, false, err
	}
	return rng, true, nil
}

// MarkRequested records the submission time
func (r *Report) MarkRequested(at time.Time) {
	r.RequestedAt = &at
	r.Touch()
}

// ApplyStatus applies a gateway status response. The request id is only
// written when none is set yet; an empty status leaves the state alone.
func (r *Report) ApplyStatus(u StatusUpdate) error {
	if u.Status != "" && u.Status != r.State {
		if !r.State.CanTransitionTo(u.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.State, u.Status)
		}
	}
	if r.RequestID == "" && u.RequestID != "" {
		r.RequestID = u.RequestID
	}
	if u.Status != "" {
		r.State = u.Status
	}
	if u.ReportID != "" {
		r.ReportID = u.ReportID
	}
	r.Touch()
	return nil
}

// NeedsReportList reports a done job whose generated report id is still unknown
func (r *Report) NeedsReportList() bool {
	return r.State == StateDone && r.ReportID == ""
}

// AttachPayload stores the payload key once. It returns false when a
// payload is already attached.
func (r *Report) AttachPayload(key string, at time.Time) bool {
	if r.HasPayload() {
		return false
	}
	r.PayloadKey = key
	r.FetchedAt = &at
	r.Touch()
	return true
}

// BeginReconcile checks that a reconciliation pass may start
func (r *Report) BeginReconcile() error {
	if !r.HasSeller() {
		return &ConfigurationError{Field: "seller", Message: "Seller is not defined for processing report"}
	}
	if !r.HasPayload() {
		return ErrPayloadMissing
	}
	if !r.State.CanReconcile() {
		return fmt.Errorf("%w: cannot reconcile from %s", ErrInvalidTransition, r.State)
	}
	if r.State.IsPolling() && r.ReportID == "" {
		return fmt.Errorf("%w: no report generated yet", ErrInvalidTransition)
	}
	return nil
}

// Complete closes a reconciliation pass. A processed report stays processed.
func (r *Report) Complete(hadMismatch bool, at time.Time) {
	switch {
	case r.State == StateProcessed:
	case hadMismatch:
		r.State = StatePartiallyProcessed
	default:
		r.State = StateProcessed
	}
	r.ProcessedAt = &at
	r.Touch()
}

// CanDelete rejects removal of processed reports
func (r *Report) CanDelete() error {
	if r.State.IsProcessed() {
		return ErrImmutable
	}
	return nil
}
