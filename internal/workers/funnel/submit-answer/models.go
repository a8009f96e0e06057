// internal/workers/funnel/submit-answer/models.go
package submitanswer

import "provider-funnel/internal/funnel"

type Input struct {
	SessionID  string `json:"sessionId"`
	UserID     string `json:"userId,omitempty"`
	Category   string `json:"category"`
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
}

type Output struct {
	funnel.Variables
}

const inputSchema = `{
	"type": "object",
	"required": ["sessionId", "category", "questionId", "value"],
	"properties": {
		"sessionId": {"type": "string", "minLength": 1},
		"userId": {"type": "string"},
		"category": {"type": "string", "minLength": 1},
		"questionId": {"type": "string", "minLength": 1},
		"value": {"type": "string", "minLength": 1}
	}
}`
