package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prasetya/candidate-evaluator/internal/apperrors"
	"prasetya/candidate-evaluator/internal/models"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.EvaluationJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.EvaluationJob, error)
	// UpdateStatus transitions the job and merges any extra columns
	// (result fields, error_message). finished_at is stamped only on
	// the transition to completed.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus, fields map[string]interface{}) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.EvaluationJob) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("%w: failed to create evaluation job: %v", apperrors.ErrPersistence, err)
	}
	return nil
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.EvaluationJob, error) {
	var job models.EvaluationJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job %s", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to find job: %v", apperrors.ErrPersistence, err)
	}
	return &job, nil
}

func (r *jobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus, fields map[string]interface{}) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == models.StatusCompleted {
		updates["finished_at"] = time.Now()
	}
	for k, v := range fields {
		updates[k] = v
	}

	result := r.db.WithContext(ctx).Model(&models.EvaluationJob{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("%w: failed to update job status: %v", apperrors.ErrPersistence, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: job %s", apperrors.ErrNotFound, id)
	}

	return nil
}
