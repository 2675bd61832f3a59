// Package recommend maps a customer message and its risk score to a suggested
// agent reply via an ordered keyword rule table.
package recommend

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Recommendation is a suggested reply surfaced to the agent. It is broadcast
// to session viewers but not durably stored.
type Recommendation struct {
	ID                string    `json:"id"`
	SuggestedResponse string    `json:"suggestedResponse"`
	Risk              float64   `json:"risk"`
	Sentiment         float64   `json:"sentiment"`
	Reasoning         string    `json:"reasoning"`
	Timestamp         time.Time `json:"timestamp"`
}

// rule matches any of its keywords case-insensitively as substrings.
type rule struct {
	keywords  []string
	response  string
	reasoning string
}

// rules is evaluated in order; the first match wins, so earlier concerns take
// priority over later ones regardless of where keywords appear in the text.
var rules = []rule{
	{
		keywords:  []string{"angry", "frustrated"},
		response:  "I completely understand your frustration, and I'm sorry for the trouble this has caused. Let me personally make sure we get this resolved for you right away.",
		reasoning: "frustration detected",
	},
	{
		keywords:  []string{"refund", "money"},
		response:  "I understand your concern about the charge. Let me walk you through our refund process and check what options are available for your case.",
		reasoning: "refund/financial concern",
	},
	{
		keywords:  []string{"slow", "delay"},
		response:  "I'm sorry about the delay. Let me check the current status for you right now and see how we can speed things up.",
		reasoning: "delay reported",
	},
	{
		keywords:  []string{"broken", "not working"},
		response:  "I'm sorry it isn't working as expected. Let's go through a few quick troubleshooting steps together to get this fixed.",
		reasoning: "product/service malfunction",
	},
}

const (
	genericResponse  = "Thank you for explaining the situation. Could you share a few more details so I can find the best way to help?"
	genericReasoning = "general concern"
)

// Recommend evaluates the rule table against text and returns a
// recommendation carrying the supplied risk and sentiment.
func Recommend(text string, risk, sentiment float64) Recommendation {
	lowered := strings.ToLower(text)
	response, reasoning := genericResponse, genericReasoning
	for _, r := range rules {
		if r.matches(lowered) {
			response, reasoning = r.response, r.reasoning
			break
		}
	}
	return Recommendation{
		ID:                uuid.New().String(),
		SuggestedResponse: response,
		Risk:              risk,
		Sentiment:         sentiment,
		Reasoning:         reasoning,
		Timestamp:         time.Now().UTC(),
	}
}

func (r rule) matches(lowered string) bool {
	for _, kw := range r.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
