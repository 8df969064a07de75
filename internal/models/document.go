package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocumentTypeCV      = "cv"
	DocumentTypeProject = "project"
)

// Document is one uploaded binary artifact. Rows are created on upload
// and never mutated; the blob itself lives at StoragePath.
type Document struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FileName    string    `gorm:"type:text" json:"file_name"`
	FileType    string    `gorm:"type:text;not null" json:"file_type"`
	StoragePath string    `gorm:"type:text;not null" json:"storage_path"`
	FileSize    int64     `gorm:"not null" json:"file_size"`
	MimeType    string    `gorm:"type:text" json:"mime_type"`
	Metadata    JSONMap   `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Document) TableName() string {
	return "uploaded_documents"
}
