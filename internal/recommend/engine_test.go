package recommend

import (
	"testing"
)

func TestRecommendReasoningByKeyword(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"I am so angry about this", "frustration detected"},
		{"This whole process makes me FRUSTRATED", "frustration detected"},
		{"I want a refund immediately", "refund/financial concern"},
		{"You took my money and sent nothing", "refund/financial concern"},
		{"Shipping is so slow this month", "delay reported"},
		{"There is a delay on my order again", "delay reported"},
		{"The screen is broken out of the box", "product/service malfunction"},
		{"The export button is not working", "product/service malfunction"},
		{"Can someone explain my invoice?", "general concern"},
	}
	for _, tc := range cases {
		got := Recommend(tc.text, 0.8, -0.3)
		if got.Reasoning != tc.want {
			t.Errorf("Recommend(%q).Reasoning = %q, want %q", tc.text, got.Reasoning, tc.want)
		}
		if got.SuggestedResponse == "" {
			t.Errorf("Recommend(%q) has empty suggested response", tc.text)
		}
	}
}

func TestRecommendRuleOrderBreaksTies(t *testing.T) {
	// Frustration outranks refund even when the refund keyword comes first in
	// the text.
	got := Recommend("I want a refund, I am frustrated with all of this", 0.9, -0.6)
	if got.Reasoning != "frustration detected" {
		t.Fatalf("Reasoning = %q, want frustration to win", got.Reasoning)
	}

	// Refund outranks delay.
	got = Recommend("The refund is slow to arrive", 0.8, -0.4)
	if got.Reasoning != "refund/financial concern" {
		t.Fatalf("Reasoning = %q, want refund to win", got.Reasoning)
	}
}

func TestRecommendCarriesScoresAndIdentity(t *testing.T) {
	got := Recommend("hello there", 0.73, -0.21)
	if got.Risk != 0.73 || got.Sentiment != -0.21 {
		t.Fatalf("risk/sentiment = %v/%v, want 0.73/-0.21", got.Risk, got.Sentiment)
	}
	if got.ID == "" {
		t.Fatal("recommendation has no id")
	}
	if got.Timestamp.IsZero() {
		t.Fatal("recommendation has no timestamp")
	}

	other := Recommend("hello there", 0.73, -0.21)
	if other.ID == got.ID {
		t.Fatal("recommendation ids are not unique")
	}
}
