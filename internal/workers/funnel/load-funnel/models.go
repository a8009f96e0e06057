// internal/workers/funnel/load-funnel/models.go
package loadfunnel

import "provider-funnel/internal/funnel"

type Input struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
	Category  string `json:"category"`
}

type Output struct {
	funnel.Variables
}

const inputSchema = `{
	"type": "object",
	"required": ["sessionId", "category"],
	"properties": {
		"sessionId": {"type": "string", "minLength": 1},
		"userId": {"type": "string"},
		"category": {"type": "string", "minLength": 1}
	}
}`
