package funnel

import (
	"provider-funnel/internal/funnel/controller"
	"provider-funnel/internal/models"
)

// Variables is the flat view of a snapshot handed to process instances.
type Variables struct {
	Category        string           `json:"category"`
	FunnelState     string           `json:"funnelState"`
	FunnelComplete  bool             `json:"funnelComplete"`
	QuestionIndex   int              `json:"questionIndex"`
	CurrentQuestion *models.Question `json:"currentQuestion,omitempty"`
	Answers         models.AnswerSet `json:"answers"`
	Answered        int              `json:"answered"`
	Total           int              `json:"total"`
}

func VariablesFrom(s controller.Snapshot) Variables {
	return Variables{
		Category:        s.Category.ID,
		FunnelState:     s.State.String(),
		FunnelComplete:  s.State == controller.Complete,
		QuestionIndex:   s.Index,
		CurrentQuestion: s.Current,
		Answers:         s.Answers,
		Answered:        s.Answered,
		Total:           s.Total,
	}
}

// CompletionMessage is the payload published when a funnel completes.
type CompletionMessage struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
	Variables
}
