package models

import "time"

// Sender roles on a chat message.
const (
	SenderAgent    = "agent"
	SenderCustomer = "customer"
	SenderSystem   = "system"
)

// ChatSession represents one customer-service conversation. The ID is an
// opaque string chosen by the client (e.g. "demo-x7k2pq").
type ChatSession struct {
	ID         string     `json:"id"`
	CustomerID *string    `json:"customer_id,omitempty"`
	AgentID    *string    `json:"agent_id,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// ChatMessage is one message in a session, immutable once persisted.
// ID and Timestamp are assigned by the store; SentimentScore and
// DetractorRisk are computed before the message is persisted.
type ChatMessage struct {
	ID             int64     `json:"id"`
	SessionID      string    `json:"session_id"`
	Sender         string    `json:"sender"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	SentimentScore float64   `json:"sentiment_score"`
	DetractorRisk  float64   `json:"detractor_risk"`
}
