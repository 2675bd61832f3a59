package models

import "time"

// NPS score bands. Detractors are the risk class the scoring model predicts.
const (
	DetractorMaxScore = 6
	PassiveMaxScore   = 8
)

// NPSRecord is one historical survey response with its chat transcript,
// imported from surveys and used as classifier training data.
type NPSRecord struct {
	ID         int64     `json:"id"`
	DateTime   time.Time `json:"date_time"`
	ChatID     string    `json:"chat_id"`
	Transcript string    `json:"transcript"`
	Score      int       `json:"nps_score"`
	Segment    string    `json:"segment,omitempty"`
	Lang       string    `json:"lang,omitempty"`
	AgentLogin string    `json:"agent_login,omitempty"`
}

// IsDetractor reports whether the record's score falls in the detractor band.
func (r *NPSRecord) IsDetractor() bool {
	return r.Score <= DetractorMaxScore
}
