package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"prasetya/candidate-evaluator/internal/apperrors"
	"prasetya/candidate-evaluator/internal/models"
)

// EvaluationRepository appends audit rows for completed scoring stages.
// Records are insert-only; nothing in the serving path reads them back.
type EvaluationRepository interface {
	Create(ctx context.Context, record *models.EvaluationRecord) error
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(ctx context.Context, record *models.EvaluationRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("%w: failed to create evaluation record: %v", apperrors.ErrPersistence, err)
	}
	return nil
}
