package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// EvaluationJob is one end-to-end evaluation request. The row is
// created already in the processing state (there is no separate
// "queued" write) and mutated only by status-transition updates.
// Result columns are populated iff Status is completed.
type EvaluationJob struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CVDocumentID      uuid.UUID `gorm:"type:uuid;not null" json:"cv_document_id"`
	ProjectDocumentID uuid.UUID `gorm:"type:uuid;not null" json:"project_document_id"`
	JobTitle          string    `gorm:"type:text;not null" json:"job_title"`
	Status            JobStatus `gorm:"type:text;not null" json:"status"`

	CVMatchRate              *float64 `gorm:"type:decimal(4,2)" json:"cv_match_rate,omitempty"`
	CVFeedback               *string  `gorm:"type:text" json:"cv_feedback,omitempty"`
	CVCalculationDetail      *string  `gorm:"type:text" json:"cv_calculation_detail,omitempty"`
	ProjectScore             *float64 `gorm:"type:decimal(4,2)" json:"project_score,omitempty"`
	ProjectFeedback          *string  `gorm:"type:text" json:"project_feedback,omitempty"`
	ProjectCalculationDetail *string  `gorm:"type:text" json:"project_calculation_detail,omitempty"`
	OverallSummary           *string  `gorm:"type:text" json:"overall_summary,omitempty"`
	ErrorMessage             *string  `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	FinishedAt *time.Time `gorm:"type:timestamp" json:"finished_at,omitempty"`

	CVDocument      Document `gorm:"foreignKey:CVDocumentID" json:"-"`
	ProjectDocument Document `gorm:"foreignKey:ProjectDocumentID" json:"-"`
}

func (EvaluationJob) TableName() string {
	return "evaluation_jobs"
}
