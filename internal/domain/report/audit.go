package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditRef addresses the audit log of one report
type AuditRef struct {
	Type     Type
	ReportID uuid.UUID
}

// ImportLogRef addresses the import log of a seller for one report type.
// Import steps that fail before any report exists write their lines here.
func ImportLogRef(t Type, sellerID uuid.UUID) AuditRef {
	return AuditRef{Type: t, ReportID: sellerID}
}

// LogEntry is one audit line
type LogEntry struct {
	ID        uuid.UUID
	Ref       AuditRef
	Message   string
	Mismatch  bool
	CreatedAt time.Time
}

// AuditSink records mismatch and error lines per report. Lines are append-only.
type AuditSink interface {
	// AppendLogLine appends a line, creating the log on first use
	AppendLogLine(ctx context.Context, ref AuditRef, message string, mismatch bool) error
	// DeleteAllIfEmpty drops the log when it holds no lines
	DeleteAllIfEmpty(ctx context.Context, ref AuditRef) error
	// Entries lists lines oldest first
	Entries(ctx context.Context, ref AuditRef) ([]LogEntry, error)
}

// Message is a note posted on a report, optionally with stored attachments
type Message struct {
	Subject        string
	Body           string
	AttachmentKeys []string
}

// MessagePoster posts operator-facing notes on a report
type MessagePoster interface {
	Post(ctx context.Context, ref AuditRef, msg Message) error
}
