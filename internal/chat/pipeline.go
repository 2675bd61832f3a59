package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pulsedesk/backend/internal/models"
	"github.com/pulsedesk/backend/internal/recommend"
	"github.com/pulsedesk/backend/internal/scoring"
)

// Risk thresholds for proactive surfaces.
const (
	// AlertRiskThreshold is the detractor probability at or above which an
	// alert is broadcast.
	AlertRiskThreshold = 0.6
	// RecommendRiskThreshold is the detractor probability at or above which a
	// customer message triggers a suggested response.
	RecommendRiskThreshold = 0.7
)

// Outbound event types.
const (
	eventMessage        = "message"
	eventAlert          = "alert"
	eventRecommendation = "ai_recommendation"
)

// controlRequestAlternative marks an inbound control item asking for a
// different suggested response.
const controlRequestAlternative = "request_alternative"

const (
	alertTitle = "Detractor Risk"
	alertBody  = "Conversation trending negative. Consider empathy, clarify resolution steps."

	// alternativeInput restates the customer's dissatisfaction so the rule
	// table picks the empathy branch; the response is then overridden to
	// signal a differentiated follow-up.
	alternativeInput     = "The customer is still frustrated and dissatisfied with the previous suggestion"
	alternativeResponse  = "Let me try a different approach. I'd like to connect you with a senior specialist who can take a closer look at this right away."
	alternativeSentiment = -0.5
)

// Store is the persistence collaborator consumed by the pipeline.
type Store interface {
	// EnsureSession makes the session row exist; idempotent.
	EnsureSession(ctx context.Context, id string) error
	// AppendMessage durably appends msg, filling in its assigned ID and
	// timestamp. IDs are strictly increasing per session.
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
}

// Scorer computes sentiment and detractor risk for a message text.
type Scorer interface {
	Score(ctx context.Context, text string) (scoring.Result, error)
}

// Broadcaster fans a payload out to every viewer of a session.
type Broadcaster interface {
	Broadcast(sessionID string, payload interface{})
}

// inboundItem is the decoded form of one item on a session's inbound stream.
type inboundItem struct {
	Type        string  `json:"type"`
	Sender      string  `json:"sender"`
	Content     string  `json:"content"`
	CurrentRisk float64 `json:"currentRisk"`
}

type messagePayload struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sentiment float64   `json:"sentiment"`
	Risk      float64   `json:"risk"`
}

type messageEvent struct {
	Type    string         `json:"type"`
	Message messagePayload `json:"message"`
}

type alertEvent struct {
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Risk      float64 `json:"risk"`
	Sentiment float64 `json:"sentiment"`
}

type recommendationEvent struct {
	Type string `json:"type"`
	recommend.Recommendation
}

// Pipeline orchestrates one inbound item end-to-end: decode, score, persist,
// broadcast, and conditionally alert and recommend. Items of one session are
// processed strictly in arrival order; sessions are independent.
type Pipeline struct {
	store  Store
	scorer Scorer
	hub    Broadcaster
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPipeline creates a conversation pipeline.
func NewPipeline(store Store, scorer Scorer, hub Broadcaster, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		store:  store,
		scorer: scorer,
		hub:    hub,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Handle processes one inbound item for a session. Scoring precedes
// persistence, and persistence precedes broadcast, so a viewer observing the
// broadcast can read the same message with identical scores from the store.
func (p *Pipeline) Handle(ctx context.Context, sessionID string, raw []byte) error {
	lock := p.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	item := decodeInbound(raw)

	if item.Type == controlRequestAlternative {
		p.handleAlternative(sessionID, item)
		return nil
	}

	result, err := p.scorer.Score(ctx, item.Content)
	if err != nil {
		return fmt.Errorf("score message: %w", err)
	}

	msg := &models.ChatMessage{
		SessionID:      sessionID,
		Sender:         item.Sender,
		Content:        item.Content,
		SentimentScore: result.Sentiment,
		DetractorRisk:  result.ProbDetractor,
	}
	if err := p.store.AppendMessage(ctx, msg); err != nil {
		return fmt.Errorf("persist message: %w", err)
	}

	p.hub.Broadcast(sessionID, messageEvent{
		Type: eventMessage,
		Message: messagePayload{
			ID:        msg.ID,
			Sender:    msg.Sender,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
			Sentiment: result.Sentiment,
			Risk:      result.ProbDetractor,
		},
	})

	if result.ProbDetractor >= AlertRiskThreshold {
		p.hub.Broadcast(sessionID, alertEvent{
			Type:      eventAlert,
			Title:     alertTitle,
			Message:   alertBody,
			Risk:      result.ProbDetractor,
			Sentiment: result.Sentiment,
		})
	}

	if item.Sender == models.SenderCustomer && result.ProbDetractor >= RecommendRiskThreshold {
		rec := recommend.Recommend(item.Content, result.ProbDetractor, result.Sentiment)
		p.hub.Broadcast(sessionID, recommendationEvent{Type: eventRecommendation, Recommendation: rec})
		p.logger.Debug("recommendation surfaced",
			zap.String("session_id", sessionID),
			zap.String("reasoning", rec.Reasoning),
			zap.Float64("risk", result.ProbDetractor))
	}
	return nil
}

// handleAlternative answers a request_alternative control item with a fresh
// recommendation. Nothing is persisted.
func (p *Pipeline) handleAlternative(sessionID string, item inboundItem) {
	risk := item.CurrentRisk
	if risk <= 0 {
		risk = RecommendRiskThreshold
	}
	rec := recommend.Recommend(alternativeInput, risk, alternativeSentiment)
	rec.SuggestedResponse = alternativeResponse
	p.hub.Broadcast(sessionID, recommendationEvent{Type: eventRecommendation, Recommendation: rec})
}

// decodeInbound parses raw as a structured item. Unparseable payloads are
// never rejected: the raw bytes become customer message content.
func decodeInbound(raw []byte) inboundItem {
	var item inboundItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return inboundItem{Sender: models.SenderCustomer, Content: string(raw)}
	}
	if item.Sender == "" {
		item.Sender = models.SenderCustomer
	}
	return item
}

func (p *Pipeline) sessionLock(sessionID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[sessionID] = lock
	}
	return lock
}
