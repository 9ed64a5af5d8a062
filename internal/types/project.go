package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ModuleLending     = "lending"
	ModuleMA          = "ma"
	ModuleSyndication = "syndication"
	ModuleCapital     = "capital"
	ModuleCompliance  = "compliance"
)

const (
	ProjectStatusCreated          = "CREATED"
	ProjectStatusGeneratingDocs   = "GENERATING_DOCS"
	ProjectStatusComplianceReview = "COMPLIANCE_REVIEW"
	ProjectStatusComplete         = "COMPLETE"
	ProjectStatusNeedsReview      = "NEEDS_REVIEW"
	ProjectStatusError            = "ERROR"
)

type Project struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"org_id"`
	Name             string         `gorm:"column:name;not null" json:"name"`
	Module           string         `gorm:"column:module;not null;index" json:"module"` // lending|ma|syndication|capital|compliance
	Status           string         `gorm:"column:status;not null;index" json:"status"`
	ErrorMessage     string         `gorm:"column:error_message" json:"error_message,omitempty"`
	ErrorStep        string         `gorm:"column:error_step" json:"error_step,omitempty"`
	CounterpartyName string         `gorm:"column:counterparty_name" json:"counterparty_name"`
	ApprovedAmount   float64        `gorm:"column:approved_amount" json:"approved_amount"`
	InterestRate     float64        `gorm:"column:interest_rate" json:"interest_rate"` // annual, as a fraction (0.0725)
	TermMonths       int            `gorm:"column:term_months" json:"term_months"`
	Fees             datatypes.JSON `gorm:"type:jsonb;column:fees" json:"fees,omitempty"`           // []FeeItem
	Covenants        datatypes.JSON `gorm:"type:jsonb;column:covenants" json:"covenants,omitempty"` // []Covenant
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "project" }

type FeeItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type Covenant struct {
	Name      string   `json:"name"`
	Threshold *float64 `json:"threshold,omitempty"`
	IsPercent bool     `json:"is_percent,omitempty"`
}
