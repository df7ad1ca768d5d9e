package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReportRepository implements report.Repository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// FindByID finds a report by its ID
func (r *GormReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	var model models.ReportModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Find lists reports matching the filter, oldest first
func (r *GormReportRepository) Find(ctx context.Context, f report.Filter) ([]report.Report, error) {
	query := r.db.WithContext(ctx).Model(&models.ReportModel{})
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.SellerID != uuid.Nil {
		query = query.Where("seller_id = ?", f.SellerID)
	}
	if len(f.States) > 0 {
		query = query.Where("state IN ?", f.States)
	}
	if f.WithReportID {
		query = query.Where("report_id <> ''")
	}

	var rows []models.ReportModel
	if err := query.Order("created_at ASC").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	reports := make([]report.Report, len(rows))
	for i := range rows {
		reports[i] = *rows[i].ToDomain()
	}
	return reports, nil
}

// ExistsByRemoteID checks for a report of the type carrying either remote id
func (r *GormReportRepository) ExistsByRemoteID(ctx context.Context, t report.Type, requestID, reportID string) (bool, error) {
	if requestID == "" && reportID == "" {
		return false, nil
	}
	query := r.db.WithContext(ctx).Model(&models.ReportModel{}).Where("type = ?", t)
	switch {
	case requestID != "" && reportID != "":
		query = query.Where("request_id = ? OR report_id = ?", requestID, reportID)
	case requestID != "":
		query = query.Where("request_id = ?", requestID)
	default:
		query = query.Where("report_id = ?", reportID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextSequence allocates the next name sequence for the type
func (r *GormReportRepository) NextSequence(ctx context.Context, t report.Type) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ReportSequenceModel{Type: t, Value: 0}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ReportSequenceModel{}).
			Where("type = ?", t).
			Update("value", gorm.Expr("value + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.ReportSequenceModel{}).
			Where("type = ?", t).
			Select("value").
			Scan(&next).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Save creates the report or updates it with a version check
func (r *GormReportRepository) Save(ctx context.Context, rep *report.Report) error {
	db := r.db.WithContext(ctx)

	var exists int64
	if err := db.Model(&models.ReportModel{}).Where("id = ?", rep.ID).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		if rep.Version == 0 {
			rep.Version = 1
		}
		return db.Create(models.ReportModelFromDomain(rep)).Error
	}

	current := rep.Version
	rep.Version++
	rep.UpdatedAt = time.Now()
	model := models.ReportModelFromDomain(rep)

	result := db.Model(&models.ReportModel{}).
		Where("id = ? AND version = ?", rep.ID, current).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		rep.Version = current
		return result.Error
	}
	if result.RowsAffected == 0 {
		rep.Version = current
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a report together with its audit log and messages
func (r *GormReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var jobIDs []uuid.UUID
		if err := tx.Model(&models.AuditJobModel{}).Where("report_id = ?", id).Pluck("id", &jobIDs).Error; err != nil {
			return err
		}
		if len(jobIDs) > 0 {
			if err := tx.Where("job_id IN ?", jobIDs).Delete(&models.AuditLineModel{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", jobIDs).Delete(&models.AuditJobModel{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("report_id = ?", id).Delete(&models.ReportMessageModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.ReportModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ report.Repository = (*GormReportRepository)(nil)
