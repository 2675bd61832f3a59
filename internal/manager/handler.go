package manager

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulsedesk/backend/internal/chat"
	"github.com/pulsedesk/backend/internal/middleware"
	"github.com/pulsedesk/backend/internal/models"
	"github.com/pulsedesk/backend/pkg/queue"
	"github.com/pulsedesk/backend/pkg/response"
)

// summaryWindow is the reporting lookback for GET /manager/summary.
const summaryWindow = 90 * 24 * time.Hour

// NPSRecordRequest is the body for POST /manager/nps.
type NPSRecordRequest struct {
	ChatID     string `json:"chat_id"`
	Transcript string `json:"transcript"`
	Score      *int   `json:"nps_score" binding:"required"`
	Segment    string `json:"segment"`
	Lang       string `json:"lang"`
	AgentLogin string `json:"agent_login"`
}

// Handler handles manager reporting endpoints.
type Handler struct {
	repo     *Repository
	chatRepo *chat.Repository
	queue    *queue.Queue
	logger   *zap.Logger
}

// NewHandler creates a manager handler. q may be nil when no job queue is
// configured; retrain requests then return 503.
func NewHandler(repo *Repository, chatRepo *chat.Repository, q *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, chatRepo: chatRepo, queue: q, logger: logger}
}

// Summary handles GET /manager/summary.
func (h *Handler) Summary(c *gin.Context) {
	since := time.Now().Add(-summaryWindow)
	summary, err := h.repo.Summary(c.Request.Context(), since)
	if err != nil {
		h.logger.Error("manager summary", zap.Error(err))
		response.Internal(c, "failed to build summary")
		return
	}
	response.OK(c, summary)
}

// SessionMessages handles GET /manager/sessions/:id/messages.
func (h *Handler) SessionMessages(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		response.BadRequest(c, "missing session id")
		return
	}
	messages, err := h.chatRepo.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		response.Internal(c, "failed to list messages")
		return
	}
	response.OK(c, gin.H{"session_id": sessionID, "messages": messages})
}

// ImportRecord handles POST /manager/nps (survey response import).
func (h *Handler) ImportRecord(c *gin.Context) {
	var req NPSRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if *req.Score < 0 || *req.Score > 10 {
		response.BadRequest(c, "nps_score must be between 0 and 10")
		return
	}
	rec := &models.NPSRecord{
		ChatID:     req.ChatID,
		Transcript: req.Transcript,
		Score:      *req.Score,
		Segment:    req.Segment,
		Lang:       req.Lang,
		AgentLogin: req.AgentLogin,
	}
	if err := h.repo.InsertRecord(c.Request.Context(), rec); err != nil {
		response.Internal(c, "failed to store record")
		return
	}
	response.Created(c, rec)
}

// Retrain handles POST /manager/retrain: enqueues a retraining job picked up
// by the worker. The serving model stays unchanged until the next restart.
func (h *Handler) Retrain(c *gin.Context) {
	if h.queue == nil {
		response.ServiceUnavailable(c, "retraining queue not configured")
		return
	}
	userID, _ := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	payload := queue.RetrainPayload{RequestedBy: userID, Reason: c.Query("reason")}
	if err := h.queue.EnqueueRetrain(c.Request.Context(), payload); err != nil {
		h.logger.Error("enqueue retrain", zap.Error(err))
		response.Internal(c, "failed to enqueue retrain job")
		return
	}
	response.OK(c, gin.H{"status": "queued"})
}
