package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/draftdeck/draftdeck-backend/internal/logger"
	"github.com/draftdeck/draftdeck-backend/internal/services"
)

type RatesHandler struct {
	log   *logger.Logger
	rates services.RateCacheService
}

func NewRatesHandler(log *logger.Logger, rates services.RateCacheService) *RatesHandler {
	return &RatesHandler{
		log:   log.With("handler", "RatesHandler"),
		rates: rates,
	}
}

// GET /api/rates
func (h *RatesHandler) Get(c *gin.Context) {
	rates, err := h.rates.GetRates(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"rates": rates})
}

// POST /api/rates/refresh
func (h *RatesHandler) Refresh(c *gin.Context) {
	rates, err := h.rates.Refresh(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"rates": rates})
}
