package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditSink implements report.AuditSink using GORM.
// It writes through its own handle so lines survive a rolled back pass.
type GormAuditSink struct {
	db *gorm.DB
}

// NewGormAuditSink creates a new GormAuditSink
func NewGormAuditSink(db *gorm.DB) *GormAuditSink {
	return &GormAuditSink{db: db}
}

// AppendLogLine appends a line, creating the job on first use
func (s *GormAuditSink) AppendLogLine(ctx context.Context, ref report.AuditRef, message string, mismatch bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := findOrCreateJob(tx, ref)
		if err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.AuditLineModel{}).Where("job_id = ?", job.ID).Count(&count).Error; err != nil {
			return err
		}
		return tx.Create(&models.AuditLineModel{
			ID:        uuid.New(),
			JobID:     job.ID,
			Position:  int(count) + 1,
			Message:   message,
			Mismatch:  mismatch,
			CreatedAt: time.Now(),
		}).Error
	})
}

// DeleteAllIfEmpty removes the job when it holds no lines
func (s *GormAuditSink) DeleteAllIfEmpty(ctx context.Context, ref report.AuditRef) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := findJob(tx, ref)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		var count int64
		if err := tx.Model(&models.AuditLineModel{}).Where("job_id = ?", job.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Delete(&models.AuditJobModel{}, "id = ?", job.ID).Error
	})
}

// Entries lists the lines of a report, oldest first
func (s *GormAuditSink) Entries(ctx context.Context, ref report.AuditRef) ([]report.LogEntry, error) {
	db := s.db.WithContext(ctx)
	job, err := findJob(db, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []report.LogEntry{}, nil
		}
		return nil, err
	}
	var lines []models.AuditLineModel
	if err := db.Where("job_id = ?", job.ID).Order("position ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	entries := make([]report.LogEntry, len(lines))
	for i := range lines {
		entries[i] = lines[i].ToDomain(ref)
	}
	return entries, nil
}

func findJob(db *gorm.DB, ref report.AuditRef) (*models.AuditJobModel, error) {
	var job models.AuditJobModel
	if err := db.Where("report_type = ? AND report_id = ?", ref.Type, ref.ReportID).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func findOrCreateJob(db *gorm.DB, ref report.AuditRef) (*models.AuditJobModel, error) {
	job, err := findJob(db, ref)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	job = &models.AuditJobModel{
		ID:         uuid.New(),
		ReportType: ref.Type,
		ReportID:   ref.ReportID,
		CreatedAt:  time.Now(),
	}
	if err := db.Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// GormMessagePoster implements report.MessagePoster using GORM
type GormMessagePoster struct {
	db *gorm.DB
}

// NewGormMessagePoster creates a new GormMessagePoster
func NewGormMessagePoster(db *gorm.DB) *GormMessagePoster {
	return &GormMessagePoster{db: db}
}

// Post stores a message on the report
func (p *GormMessagePoster) Post(ctx context.Context, ref report.AuditRef, msg report.Message) error {
	return p.db.WithContext(ctx).Create(models.NewReportMessageModel(ref, msg, time.Now())).Error
}

// Messages lists the messages of a report, oldest first
func (p *GormMessagePoster) Messages(ctx context.Context, ref report.AuditRef) ([]report.Message, error) {
	var rows []models.ReportMessageModel
	if err := p.db.WithContext(ctx).
		Where("report_type = ? AND report_id = ?", ref.Type, ref.ReportID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	msgs := make([]report.Message, len(rows))
	for i := range rows {
		msgs[i] = rows[i].ToDomain()
	}
	return msgs, nil
}

var (
	_ report.AuditSink     = (*GormAuditSink)(nil)
	_ report.MessagePoster = (*GormMessagePoster)(nil)
)
