// Package predict exposes the synchronous scoring endpoint used outside a
// session context (e.g. scoring a pasted transcript).
package predict

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulsedesk/backend/internal/scoring"
	"github.com/pulsedesk/backend/pkg/response"
)

// Request is the body for POST /predict.
type Request struct {
	Transcript string `json:"transcript" binding:"required"`
}

// Handler handles synchronous scoring requests.
type Handler struct {
	scorer *scoring.Service
	logger *zap.Logger
}

// NewHandler creates a predict handler.
func NewHandler(scorer *scoring.Service, logger *zap.Logger) *Handler {
	return &Handler{scorer: scorer, logger: logger}
}

// Predict handles POST /predict. The response is the flat score shape
// consumed by dashboard tooling: label, prob_detractor, sentiment,
// explanation.
func (h *Handler) Predict(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	result, err := h.scorer.Score(c.Request.Context(), req.Transcript)
	if err != nil {
		h.logger.Error("predict", zap.Error(err))
		response.Internal(c, "scoring failed")
		return
	}
	c.JSON(http.StatusOK, result)
}
