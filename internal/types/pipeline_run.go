package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusQueued    = "queued"
	RunStatusStarted   = "started"
	RunStatusCompleted = "completed"
	RunStatusSkipped   = "skipped"
	RunStatusFailed    = "failed"
)

// PipelineRun records one accepted trigger. The (project_id, triggered_at)
// pair is the idempotency key: inserting a duplicate affects zero rows and the
// trigger is reported as a no-op.
type PipelineRun struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_pipeline_run_trigger,priority:1" json:"project_id"`
	TriggeredAt time.Time  `gorm:"column:triggered_at;not null;uniqueIndex:ux_pipeline_run_trigger,priority:2" json:"triggered_at"`
	Status      string     `gorm:"column:status;not null;index" json:"status"` // queued|started|completed|skipped|failed
	Error       string     `gorm:"column:error" json:"error,omitempty"`
	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (PipelineRun) TableName() string { return "pipeline_run" }
