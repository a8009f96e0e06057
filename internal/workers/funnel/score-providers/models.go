// internal/workers/funnel/score-providers/models.go
package scoreproviders

import "provider-funnel/internal/models"

type Input struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
	Category  string `json:"category"`
	// Answers overrides the stored answer set when present.
	Answers models.AnswerSet `json:"answers,omitempty"`
}

type Output struct {
	Category   string                  `json:"category"`
	Answers    models.AnswerSet        `json:"answers"`
	Results    []models.ScoredProvider `json:"results"`
	MatchCount int                     `json:"matchCount"`
	NoMatches  bool                    `json:"noMatches"`
}

const inputSchema = `{
	"type": "object",
	"required": ["category"],
	"anyOf": [
		{"required": ["sessionId"]},
		{"required": ["answers"]}
	],
	"properties": {
		"sessionId": {"type": "string", "minLength": 1},
		"userId": {"type": "string"},
		"category": {"type": "string", "minLength": 1},
		"answers": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	}
}`
