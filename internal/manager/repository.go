package manager

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsedesk/backend/internal/models"
	"github.com/pulsedesk/backend/internal/scoring"
)

// Totals is the NPS band breakdown for the reporting window.
type Totals struct {
	Total      int `json:"total"`
	Detractors int `json:"detractors"`
	Passives   int `json:"passives"`
	Promoters  int `json:"promoters"`
}

// DayCount is the number of survey responses on one day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// RecentChat is a session ordered by last message activity.
type RecentChat struct {
	SessionID     string    `json:"sessionId"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

// Summary is the manager dashboard payload.
type Summary struct {
	Totals      Totals       `json:"totals"`
	ByDay       []DayCount   `json:"by_day"`
	RecentChats []RecentChat `json:"recent_chats"`
}

// Repository runs the reporting aggregates over nps_records and chat history.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a manager repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Summary aggregates NPS totals and per-day counts since the given time,
// plus the ten most recently active chat sessions.
func (r *Repository) Summary(ctx context.Context, since time.Time) (*Summary, error) {
	const totalsQuery = `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN nps_score <= $2 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN nps_score BETWEEN $2 + 1 AND $3 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN nps_score > $3 THEN 1 ELSE 0 END), 0)
		FROM nps_records WHERE date_time >= $1`

	var s Summary
	err := r.pool.QueryRow(ctx, totalsQuery, since, models.DetractorMaxScore, models.PassiveMaxScore).
		Scan(&s.Totals.Total, &s.Totals.Detractors, &s.Totals.Passives, &s.Totals.Promoters)
	if err != nil {
		return nil, err
	}

	const byDayQuery = `SELECT DATE(date_time)::TEXT, COUNT(*)
		FROM nps_records WHERE date_time >= $1
		GROUP BY DATE(date_time) ORDER BY DATE(date_time)`
	rows, err := r.pool.Query(ctx, byDayQuery, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d DayCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, err
		}
		s.ByDay = append(s.ByDay, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const recentQuery = `SELECT s.id, MAX(m.timestamp)
		FROM chat_sessions s JOIN chat_messages m ON m.session_id = s.id
		GROUP BY s.id ORDER BY MAX(m.timestamp) DESC LIMIT 10`
	recent, err := r.pool.Query(ctx, recentQuery)
	if err != nil {
		return nil, err
	}
	defer recent.Close()
	for recent.Next() {
		var rc RecentChat
		if err := recent.Scan(&rc.SessionID, &rc.LastMessageAt); err != nil {
			return nil, err
		}
		s.RecentChats = append(s.RecentChats, rc)
	}
	return &s, recent.Err()
}

// InsertRecord stores one imported survey response.
func (r *Repository) InsertRecord(ctx context.Context, rec *models.NPSRecord) error {
	const query = `INSERT INTO nps_records (date_time, chat_id, transcript, nps_score, segment, lang, agent_login)
		VALUES (COALESCE($1, NOW()), $2, $3, $4, $5, $6, $7)
		RETURNING id, date_time`
	var at *time.Time
	if !rec.DateTime.IsZero() {
		at = &rec.DateTime
	}
	return r.pool.QueryRow(ctx, query,
		at, rec.ChatID, rec.Transcript, rec.Score, rec.Segment, rec.Lang, rec.AgentLogin).
		Scan(&rec.ID, &rec.DateTime)
}

// TrainingExamples returns labeled examples for classifier retraining from
// all survey responses that carry a transcript.
func (r *Repository) TrainingExamples(ctx context.Context) ([]scoring.Example, error) {
	const query = `SELECT transcript, nps_score FROM nps_records
		WHERE transcript IS NOT NULL AND transcript <> ''`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var examples []scoring.Example
	for rows.Next() {
		var text string
		var score int
		if err := rows.Scan(&text, &score); err != nil {
			return nil, err
		}
		examples = append(examples, scoring.Example{Text: text, Label: scoring.LabelForScore(score)})
	}
	return examples, rows.Err()
}
