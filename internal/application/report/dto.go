package report

import (
	"time"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/google/uuid"
)

// CreateReportRequest represents a request to create a draft report
type CreateReportRequest struct {
	SellerID   uuid.UUID  `json:"seller_id" binding:"required"`
	InstanceID *uuid.UUID `json:"instance_id"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
}

// DateRange converts the optional bounds
func (r CreateReportRequest) DateRange() report.DateRange {
	var rng report.DateRange
	if r.StartDate != nil {
		rng.Start = *r.StartDate
	}
	if r.EndDate != nil {
		rng.End = *r.EndDate
	}
	return rng
}

// ReportResponse represents a report in API responses
type ReportResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	SellerID    uuid.UUID  `json:"seller_id"`
	InstanceID  *uuid.UUID `json:"instance_id,omitempty"`
	RequestID   string     `json:"request_id"`
	ReportID    string     `json:"report_id"`
	State       string     `json:"state"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	HasPayload  bool       `json:"has_payload"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	FetchedAt   *time.Time `json:"fetched_at,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// ToReportResponse converts a domain report
func ToReportResponse(r *report.Report) ReportResponse {
	resp := ReportResponse{
		ID:          r.ID,
		Type:        r.Type.String(),
		Name:        r.Name,
		SellerID:    r.SellerID,
		InstanceID:  r.InstanceID,
		RequestID:   r.RequestID,
		ReportID:    r.ReportID,
		State:       r.State.String(),
		HasPayload:  r.HasPayload(),
		RequestedAt: r.RequestedAt,
		FetchedAt:   r.FetchedAt,
		ProcessedAt: r.ProcessedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Version:     r.Version,
	}
	if !r.DateRange.Start.IsZero() {
		start := r.DateRange.Start
		resp.StartDate = &start
	}
	if !r.DateRange.End.IsZero() {
		end := r.DateRange.End
		resp.EndDate = &end
	}
	return resp
}

// LogEntryResponse represents one audit line
type LogEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Mismatch  bool      `json:"mismatch"`
	CreatedAt time.Time `json:"created_at"`
}

// ToLogEntryResponses converts audit lines
func ToLogEntryResponses(entries []report.LogEntry) []LogEntryResponse {
	out := make([]LogEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LogEntryResponse{ID: e.ID, Message: e.Message, Mismatch: e.Mismatch, CreatedAt: e.CreatedAt}
	}
	return out
}

// AutoImportRequest selects the seller (and optionally one instance) to import for
type AutoImportRequest struct {
	SellerID   uuid.UUID  `json:"seller_id" binding:"required"`
	InstanceID *uuid.UUID `json:"instance_id"`
}

// AutoProcessRequest selects the seller to process reports for
type AutoProcessRequest struct {
	SellerID uuid.UUID `json:"seller_id" binding:"required"`
}

// ImportResult summarizes an auto-import run
type ImportResult struct {
	Policy  string      `json:"policy,omitempty"`
	Created []uuid.UUID `json:"created"`
	Failed  int         `json:"failed"`
}

// ProcessResult summarizes an auto-process run
type ProcessResult struct {
	Polled    int `json:"polled"`
	Fetched   int `json:"fetched"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}
