package chat

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsedesk/backend/internal/models"
)

// Repository is the PostgreSQL-backed persistence store for chat sessions and
// messages. It implements the pipeline's Store interface.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a chat repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSession creates the session row if it does not exist.
func (r *Repository) EnsureSession(ctx context.Context, id string) error {
	const query = `INSERT INTO chat_sessions (id, started_at) VALUES ($1, NOW())
		ON CONFLICT (id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// AppendMessage inserts the message and fills in its assigned ID and
// timestamp. The BIGSERIAL id makes identifiers strictly increasing per
// session.
func (r *Repository) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	const query = `INSERT INTO chat_messages (session_id, sender, content, sentiment_score, detractor_risk)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, timestamp`
	return r.pool.QueryRow(ctx, query,
		msg.SessionID, msg.Sender, msg.Content, msg.SentimentScore, msg.DetractorRisk).
		Scan(&msg.ID, &msg.Timestamp)
}

// ListBySession returns a session's messages in arrival order.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	const query = `SELECT id, session_id, sender, content, timestamp, sentiment_score, detractor_risk
		FROM chat_messages WHERE session_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Content, &m.Timestamp, &m.SentimentScore, &m.DetractorRisk); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
