package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/draftdeck/draftdeck-backend/internal/logger"
)

const (
	PipelineEventDocGenerated = "DocumentGenerated"
	PipelineEventDocFailed    = "DocumentFailed"
	PipelineEventCompleted    = "PipelineCompleted"
	PipelineEventFailed       = "PipelineFailed"
)

// PipelineNotifier publishes pipeline progress so dashboards can follow a run
// without polling. Events are fire-and-forget: a publish failure is logged
// and never affects the run itself.
type PipelineNotifier interface {
	Publish(projectID uuid.UUID, event string, data map[string]any)
}

type pipelineNotifier struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewPipelineNotifier(baseLog *logger.Logger, rdb *goredis.Client) PipelineNotifier {
	return &pipelineNotifier{
		log: baseLog.With("service", "PipelineNotifier"),
		rdb: rdb,
	}
}

type pipelineEvent struct {
	ProjectID string         `json:"project_id"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
	At        time.Time      `json:"at"`
}

func (n *pipelineNotifier) Publish(projectID uuid.UUID, event string, data map[string]any) {
	if n == nil || n.rdb == nil || projectID == uuid.Nil {
		return
	}
	raw, err := json.Marshal(pipelineEvent{
		ProjectID: projectID.String(),
		Event:     event,
		Data:      data,
		At:        time.Now(),
	})
	if err != nil {
		n.log.Warn("failed to encode pipeline event", "event", event, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := n.rdb.Publish(ctx, "pipeline:"+projectID.String(), raw).Err(); err != nil {
		n.log.Warn("failed to publish pipeline event", "event", event, "error", err)
	}
}
