package chat

import (
	"context"
	"testing"
	"time"

	"github.com/pulsedesk/backend/internal/models"
	"github.com/pulsedesk/backend/internal/scoring"
)

type fakeStore struct {
	messages []models.ChatMessage
	nextID   int64
}

func (s *fakeStore) EnsureSession(ctx context.Context, id string) error { return nil }

func (s *fakeStore) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	s.nextID++
	msg.ID = s.nextID
	msg.Timestamp = time.Now().UTC()
	s.messages = append(s.messages, *msg)
	return nil
}

type fakeScorer struct {
	risk      float64
	sentiment float64
	err       error
}

func (f *fakeScorer) Score(ctx context.Context, text string) (scoring.Result, error) {
	if f.err != nil {
		return scoring.Result{}, f.err
	}
	label := scoring.LabelNonDetractor
	if f.risk >= scoring.DetractorLabelThreshold {
		label = scoring.LabelDetractor
	}
	return scoring.Result{Label: label, ProbDetractor: f.risk, Sentiment: f.sentiment}, nil
}

type captureHub struct {
	events []interface{}
}

func (h *captureHub) Broadcast(sessionID string, payload interface{}) {
	h.events = append(h.events, payload)
}

func (h *captureHub) messages() []messageEvent {
	var out []messageEvent
	for _, e := range h.events {
		if m, ok := e.(messageEvent); ok {
			out = append(out, m)
		}
	}
	return out
}

func (h *captureHub) alerts() []alertEvent {
	var out []alertEvent
	for _, e := range h.events {
		if a, ok := e.(alertEvent); ok {
			out = append(out, a)
		}
	}
	return out
}

func (h *captureHub) recommendations() []recommendationEvent {
	var out []recommendationEvent
	for _, e := range h.events {
		if r, ok := e.(recommendationEvent); ok {
			out = append(out, r)
		}
	}
	return out
}

func TestHandlePersistsThenBroadcastsScoredMessage(t *testing.T) {
	store := &fakeStore{}
	hub := &captureHub{}
	p := NewPipeline(store, &fakeScorer{risk: 0.3, sentiment: -0.2}, hub, nil)

	raw := []byte(`{"sender":"customer","content":"where is my order"}`)
	if err := p.Handle(context.Background(), "s1", raw); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(store.messages) != 1 {
		t.Fatalf("persisted %d messages, want 1", len(store.messages))
	}
	saved := store.messages[0]
	if saved.Content != "where is my order" || saved.Sender != models.SenderCustomer {
		t.Fatalf("persisted message = %+v", saved)
	}
	if saved.DetractorRisk != 0.3 || saved.SentimentScore != -0.2 {
		t.Fatalf("persisted scores = risk %v sentiment %v", saved.DetractorRisk, saved.SentimentScore)
	}

	msgs := hub.messages()
	if len(msgs) != 1 {
		t.Fatalf("broadcast %d message events, want 1", len(msgs))
	}
	if msgs[0].Message.ID != saved.ID || msgs[0].Message.Risk != saved.DetractorRisk {
		t.Fatalf("broadcast message %+v does not match persisted %+v", msgs[0].Message, saved)
	}
	if len(hub.alerts()) != 0 || len(hub.recommendations()) != 0 {
		t.Fatalf("low-risk message produced alerts or recommendations: %+v", hub.events)
	}
}

func TestAlertAtThreshold(t *testing.T) {
	cases := []struct {
		risk  float64
		wants int
	}{
		{0.59, 0},
		{0.60, 1},
		{0.85, 1},
	}
	for _, tc := range cases {
		hub := &captureHub{}
		p := NewPipeline(&fakeStore{}, &fakeScorer{risk: tc.risk}, hub, nil)
		raw := []byte(`{"sender":"agent","content":"let me check"}`)
		if err := p.Handle(context.Background(), "s1", raw); err != nil {
			t.Fatalf("risk %v: %v", tc.risk, err)
		}
		if got := len(hub.alerts()); got != tc.wants {
			t.Fatalf("risk %v: %d alerts, want %d", tc.risk, got, tc.wants)
		}
	}
}

func TestRecommendationRequiresCustomerSenderAndRisk(t *testing.T) {
	cases := []struct {
		name   string
		sender string
		risk   float64
		wants  int
	}{
		{"customer high risk", "customer", 0.7, 1},
		{"customer below threshold", "customer", 0.65, 0},
		{"agent high risk", "agent", 0.9, 0},
	}
	for _, tc := range cases {
		hub := &captureHub{}
		p := NewPipeline(&fakeStore{}, &fakeScorer{risk: tc.risk, sentiment: -0.4}, hub, nil)
		raw := []byte(`{"sender":"` + tc.sender + `","content":"I am angry about this"}`)
		if err := p.Handle(context.Background(), "s1", raw); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		recs := hub.recommendations()
		if len(recs) != tc.wants {
			t.Fatalf("%s: %d recommendations, want %d", tc.name, len(recs), tc.wants)
		}
		if tc.wants == 1 {
			rec := recs[0]
			if rec.Type != eventRecommendation {
				t.Fatalf("%s: type = %q", tc.name, rec.Type)
			}
			if rec.Risk != tc.risk || rec.Sentiment != -0.4 {
				t.Fatalf("%s: recommendation carries risk %v sentiment %v", tc.name, rec.Risk, rec.Sentiment)
			}
		}
	}
}

func TestRequestAlternativeBroadcastsWithoutPersisting(t *testing.T) {
	store := &fakeStore{}
	hub := &captureHub{}
	p := NewPipeline(store, &fakeScorer{risk: 0.9}, hub, nil)

	raw := []byte(`{"type":"request_alternative","currentRisk":0.82}`)
	if err := p.Handle(context.Background(), "s1", raw); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(store.messages) != 0 {
		t.Fatalf("control item persisted %d messages", len(store.messages))
	}
	if len(hub.events) != 1 {
		t.Fatalf("control item broadcast %d events, want 1", len(hub.events))
	}
	recs := hub.recommendations()
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	if recs[0].Risk != 0.82 {
		t.Fatalf("recommendation risk = %v, want supplied 0.82", recs[0].Risk)
	}
	if recs[0].SuggestedResponse != alternativeResponse {
		t.Fatalf("alternative response = %q", recs[0].SuggestedResponse)
	}
}

func TestRequestAlternativeDefaultsRisk(t *testing.T) {
	hub := &captureHub{}
	p := NewPipeline(&fakeStore{}, &fakeScorer{}, hub, nil)

	if err := p.Handle(context.Background(), "s1", []byte(`{"type":"request_alternative"}`)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	recs := hub.recommendations()
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	if recs[0].Risk != RecommendRiskThreshold {
		t.Fatalf("default risk = %v, want %v", recs[0].Risk, RecommendRiskThreshold)
	}
}

func TestMalformedPayloadBecomesCustomerMessage(t *testing.T) {
	store := &fakeStore{}
	hub := &captureHub{}
	p := NewPipeline(store, &fakeScorer{risk: 0.1}, hub, nil)

	if err := p.Handle(context.Background(), "s1", []byte("just plain text")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(store.messages) != 1 {
		t.Fatalf("persisted %d messages, want 1", len(store.messages))
	}
	saved := store.messages[0]
	if saved.Sender != models.SenderCustomer || saved.Content != "just plain text" {
		t.Fatalf("persisted message = %+v", saved)
	}
}

func TestMissingSenderDefaultsToCustomer(t *testing.T) {
	store := &fakeStore{}
	p := NewPipeline(store, &fakeScorer{}, &captureHub{}, nil)

	if err := p.Handle(context.Background(), "s1", []byte(`{"content":"hello"}`)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if store.messages[0].Sender != models.SenderCustomer {
		t.Fatalf("sender = %q, want customer", store.messages[0].Sender)
	}
}

func TestMessageIDsIncreasePerSession(t *testing.T) {
	store := &fakeStore{}
	hub := &captureHub{}
	p := NewPipeline(store, &fakeScorer{}, hub, nil)

	for _, content := range []string{"one", "two", "three"} {
		raw := []byte(`{"sender":"customer","content":"` + content + `"}`)
		if err := p.Handle(context.Background(), "s1", raw); err != nil {
			t.Fatalf("Handle %q: %v", content, err)
		}
	}
	msgs := hub.messages()
	if len(msgs) != 3 {
		t.Fatalf("broadcast %d message events, want 3", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Message.ID <= msgs[i-1].Message.ID {
			t.Fatalf("message ids not increasing: %d then %d", msgs[i-1].Message.ID, msgs[i].Message.ID)
		}
	}
}

func TestScoreFailureStopsPipeline(t *testing.T) {
	store := &fakeStore{}
	hub := &captureHub{}
	p := NewPipeline(store, &fakeScorer{err: context.DeadlineExceeded}, hub, nil)

	err := p.Handle(context.Background(), "s1", []byte(`{"sender":"customer","content":"hi"}`))
	if err == nil {
		t.Fatal("expected error from failed scoring")
	}
	if len(store.messages) != 0 || len(hub.events) != 0 {
		t.Fatalf("failed scoring still persisted %d / broadcast %d", len(store.messages), len(hub.events))
	}
}
