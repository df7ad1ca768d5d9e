package models

import (
	"strings"
	"time"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/google/uuid"
)

// ReportModel is the persistence model for the Report aggregate
type ReportModel struct {
	BaseModel
	Version     int          `gorm:"not null;default:1"`
	Type        report.Type  `gorm:"type:varchar(40);not null;index:idx_report_type_state,priority:1"`
	Name        string       `gorm:"type:varchar(64);not null"`
	SellerID    *uuid.UUID   `gorm:"type:uuid;index"`
	InstanceID  *uuid.UUID   `gorm:"type:uuid"`
	RequestID   string       `gorm:"type:varchar(64);index"`
	ReportID    string       `gorm:"type:varchar(64);index"`
	State       report.State `gorm:"type:varchar(30);not null;default:'draft';index:idx_report_type_state,priority:2"`
	StartDate   *time.Time
	EndDate     *time.Time
	RequestedAt *time.Time
	PayloadKey  string `gorm:"type:varchar(512)"`
	FetchedAt   *time.Time
	ProcessedAt *time.Time
}

// TableName returns the table name for GORM
func (ReportModel) TableName() string {
	return "reports"
}

// ToDomain converts the persistence model to a domain Report
func (m *ReportModel) ToDomain() *report.Report {
	r := &report.Report{
		BaseEntity:  m.BaseModel.ToDomain(),
		Type:        m.Type,
		Name:        m.Name,
		InstanceID:  m.InstanceID,
		RequestID:   m.RequestID,
		ReportID:    m.ReportID,
		State:       m.State,
		RequestedAt: m.RequestedAt,
		PayloadKey:  m.PayloadKey,
		FetchedAt:   m.FetchedAt,
		ProcessedAt: m.ProcessedAt,
		Version:     m.Version,
	}
	if m.SellerID != nil {
		r.SellerID = *m.SellerID
	}
	if m.StartDate != nil {
		r.DateRange.Start = *m.StartDate
	}
	if m.EndDate != nil {
		r.DateRange.End = *m.EndDate
	}
	return r
}

// FromDomain populates the persistence model from a domain Report
func (m *ReportModel) FromDomain(r *report.Report) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Version = r.Version
	m.Type = r.Type
	m.Name = r.Name
	m.SellerID = nil
	if r.SellerID != uuid.Nil {
		id := r.SellerID
		m.SellerID = &id
	}
	m.InstanceID = r.InstanceID
	m.RequestID = r.RequestID
	m.ReportID = r.ReportID
	m.State = r.State
	m.StartDate = optionalTime(r.DateRange.Start)
	m.EndDate = optionalTime(r.DateRange.End)
	m.RequestedAt = r.RequestedAt
	m.PayloadKey = r.PayloadKey
	m.FetchedAt = r.FetchedAt
	m.ProcessedAt = r.ProcessedAt
}

// ReportModelFromDomain creates a persistence model from a domain Report
func ReportModelFromDomain(r *report.Report) *ReportModel {
	m := &ReportModel{}
	m.FromDomain(r)
	return m
}

// ReportSequenceModel holds the last issued name sequence per report type
type ReportSequenceModel struct {
	Type  report.Type `gorm:"type:varchar(40);primaryKey"`
	Value int64       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ReportSequenceModel) TableName() string {
	return "report_sequences"
}

// AuditJobModel is the audit log header of one report
type AuditJobModel struct {
	ID         uuid.UUID   `gorm:"type:uuid;primary_key"`
	ReportType report.Type `gorm:"type:varchar(40);not null;uniqueIndex:idx_audit_job_ref,priority:1"`
	ReportID   uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_audit_job_ref,priority:2"`
	CreatedAt  time.Time   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditJobModel) TableName() string {
	return "audit_jobs"
}

// AuditLineModel is one audit log line
type AuditLineModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_line_job,priority:1"`
	Position  int       `gorm:"not null;index:idx_audit_line_job,priority:2"`
	Message   string    `gorm:"type:text;not null"`
	Mismatch  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditLineModel) TableName() string {
	return "audit_lines"
}

// ToDomain converts the line to a domain LogEntry
func (m *AuditLineModel) ToDomain(ref report.AuditRef) report.LogEntry {
	return report.LogEntry{
		ID:        m.ID,
		Ref:       ref,
		Message:   m.Message,
		Mismatch:  m.Mismatch,
		CreatedAt: m.CreatedAt,
	}
}

// ReportMessageModel is a note posted on a report
type ReportMessageModel struct {
	ID             uuid.UUID   `gorm:"type:uuid;primary_key"`
	ReportType     report.Type `gorm:"type:varchar(40);not null;index:idx_report_message_ref,priority:1"`
	ReportID       uuid.UUID   `gorm:"type:uuid;not null;index:idx_report_message_ref,priority:2"`
	Subject        string      `gorm:"type:varchar(255)"`
	Body           string      `gorm:"type:text"`
	AttachmentKeys string      `gorm:"type:text"`
	CreatedAt      time.Time   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReportMessageModel) TableName() string {
	return "report_messages"
}

// NewReportMessageModel builds a message row for a report
func NewReportMessageModel(ref report.AuditRef, msg report.Message, at time.Time) *ReportMessageModel {
	return &ReportMessageModel{
		ID:             uuid.New(),
		ReportType:     ref.Type,
		ReportID:       ref.ReportID,
		Subject:        msg.Subject,
		Body:           msg.Body,
		AttachmentKeys: strings.Join(msg.AttachmentKeys, "\n"),
		CreatedAt:      at,
	}
}

// ToDomain converts the row to a domain Message
func (m *ReportMessageModel) ToDomain() report.Message {
	msg := report.Message{Subject: m.Subject, Body: m.Body}
	if m.AttachmentKeys != "" {
		msg.AttachmentKeys = strings.Split(m.AttachmentKeys, "\n")
	}
	return msg
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
