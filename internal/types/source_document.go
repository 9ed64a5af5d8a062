package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ExtractionPending   = "pending"
	ExtractionExtracted = "extracted"
	ExtractionFailed    = "failed"
)

// SourceDocument is an uploaded input (tax return, bank statement, rent roll).
// ExtractedData is written once by the extraction feed and consumed read-only
// by the analysis engine and the document generator.
type SourceDocument struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	OriginalName     string         `gorm:"column:original_name;not null" json:"original_name"`
	MimeType         string         `gorm:"column:mime_type" json:"mime_type"`
	StorageKey       string         `gorm:"column:storage_key;not null" json:"storage_key"`
	ExtractionStatus string         `gorm:"column:extraction_status;not null;default:pending" json:"extraction_status"`
	ExtractedData    datatypes.JSON `gorm:"type:jsonb;column:extracted_data" json:"extracted_data,omitempty"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SourceDocument) TableName() string { return "source_document" }
