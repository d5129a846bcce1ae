package services

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/pdf-extractor-api/model"
	"gorm.io/gorm"
)

// ExtractionLogService persists audit entries for extraction requests
type ExtractionLogService struct {
	db *gorm.DB
}

var _ JobRecorder = (*ExtractionLogService)(nil)

// NewExtractionLogService creates a new extraction log service
func NewExtractionLogService(db *gorm.DB) *ExtractionLogService {
	return &ExtractionLogService{db: db}
}

// Record stores job. Audit failures never fail the request.
func (s *ExtractionLogService) Record(ctx context.Context, job *model.ExtractionJob) {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		log.Warnf("Extraction log: failed to record job %s: %v", job.ID, err)
	}
}

// Recent returns the latest jobs, newest first
func (s *ExtractionLogService) Recent(ctx context.Context, limit int) ([]model.ExtractionJob, error) {
	var jobs []model.ExtractionJob
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// PurgeBefore permanently deletes jobs created before cutoff
func (s *ExtractionLogService) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&model.ExtractionJob{})
	return result.RowsAffected, result.Error
}
