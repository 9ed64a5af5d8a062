package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DocStatusDraft        = "draft"
	DocStatusReviewed     = "reviewed"
	DocStatusFailed       = "failed"
	DocStatusFlagged      = "flagged"
	DocStatusRegenerating = "regenerating"
)

const (
	CompliancePending = "pending"
	CompliancePassed  = "passed"
	ComplianceFlagged = "flagged"
)

const (
	VerificationPassed = "passed"
	VerificationFailed = "failed"
)

// GeneratedDocument is one versioned artifact. Versions for a given
// (project, doc_type) are contiguous starting at 1; the highest version is the
// current artifact and older versions are retained for audit.
type GeneratedDocument struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID          uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_generated_document_version,priority:1" json:"project_id"`
	DocType            string         `gorm:"column:doc_type;not null;uniqueIndex:ux_generated_document_version,priority:2" json:"doc_type"`
	Version            int            `gorm:"column:version;not null;uniqueIndex:ux_generated_document_version,priority:3" json:"version"`
	StorageKey         string         `gorm:"column:storage_key;not null" json:"storage_key"`
	Status             string         `gorm:"column:status;not null" json:"status"` // draft|reviewed|failed|flagged|regenerating
	ComplianceStatus   string         `gorm:"column:compliance_status;not null;index" json:"compliance_status"` // pending|passed|flagged
	ComplianceIssues   datatypes.JSON `gorm:"type:jsonb;column:compliance_issues" json:"compliance_issues,omitempty"`
	VerificationStatus string         `gorm:"column:verification_status" json:"verification_status"` // passed|failed
	VerificationIssues datatypes.JSON `gorm:"type:jsonb;column:verification_issues" json:"verification_issues,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (GeneratedDocument) TableName() string { return "generated_document" }
