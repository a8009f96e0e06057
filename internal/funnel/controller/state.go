package controller

import (
	"fmt"

	"provider-funnel/internal/models"
)

// State is the position of a funnel walk.
type State int

const (
	NotStarted State = iota
	InProgress
	Complete
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case InProgress:
		return "in-progress"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "not-started":
		*s = NotStarted
	case "in-progress":
		*s = InProgress
	case "complete":
		*s = Complete
	default:
		return fmt.Errorf("unknown funnel state %q", text)
	}
	return nil
}

// Snapshot is a read-only copy of the controller state handed to callers and
// observers. Mutating it has no effect on the controller.
type Snapshot struct {
	Category models.Category `json:"category"`
	State    State           `json:"state"`
	// Index is the position of Current in Questions, or -1 when complete.
	Index     int               `json:"index"`
	Current   *models.Question  `json:"current,omitempty"`
	Questions []models.Question `json:"questions"`
	Answers   models.AnswerSet  `json:"answers"`
	Answered  int               `json:"answered"`
	Total     int               `json:"total"`
}
