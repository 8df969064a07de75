package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EvaluationTypeCV      = "cv"
	EvaluationTypeProject = "project"
	EvaluationTypeOverall = "overall"
)

// EvaluationRecord is an append-only audit row capturing the raw
// structured output of one completed scoring stage. Up to three rows
// exist per job: cv, project and overall. The existence of a row
// implies its stage ran to completion.
type EvaluationRecord struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	JobID      uuid.UUID  `gorm:"type:uuid;not null" json:"job_id"`
	Type       string     `gorm:"type:text;not null" json:"type"`
	Status     string     `gorm:"type:text;not null" json:"status"`
	Result     JSONRaw    `gorm:"type:jsonb" json:"result"`
	DocumentID *uuid.UUID `gorm:"type:uuid" json:"document_id,omitempty"`
	FinishedAt time.Time  `gorm:"type:timestamp" json:"finished_at"`
	CreatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (EvaluationRecord) TableName() string {
	return "evaluations"
}
