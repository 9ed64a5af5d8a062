package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/draftdeck/draftdeck-backend/internal/logger"
	"github.com/draftdeck/draftdeck-backend/internal/services"
)

type PipelineHandler struct {
	log      *logger.Logger
	pipeline services.PipelineService
}

func NewPipelineHandler(log *logger.Logger, pipeline services.PipelineService) *PipelineHandler {
	return &PipelineHandler{
		log:      log.With("handler", "PipelineHandler"),
		pipeline: pipeline,
	}
}

type triggerRequest struct {
	// TriggeredAt is the idempotency component: replays of the same trigger
	// carry the same timestamp. Omitted means "now".
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
}

// POST /api/projects/:id/pipeline/trigger
func (h *PipelineHandler) Trigger(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req triggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}
	triggeredAt := time.Now()
	if req.TriggeredAt != nil {
		triggeredAt = *req.TriggeredAt
	}
	result, err := h.pipeline.Trigger(c.Request.Context(), id, triggeredAt)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// POST /api/projects/:id/pipeline/retry
func (h *PipelineHandler) Retry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	result, err := h.pipeline.Retry(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// GET /api/projects/:id/pipeline/status
func (h *PipelineHandler) GetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	status, err := h.pipeline.GetStatus(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, status)
}

// GET /api/projects/:id/documents
func (h *PipelineHandler) GetDocuments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	current, history, err := h.pipeline.GetDocuments(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"current": current,
		"history": history,
	})
}
