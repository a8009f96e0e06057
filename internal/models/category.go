// internal/models/category.go
package models

// Category is a business vertical with its own funnel and scoring rules.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Option is one selectable answer of a single-choice question.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Predicate decides whether a question belongs to the sequence, given the
// answers recorded before it.
type Predicate func(answers AnswerSet) bool

// Question is a single funnel step.
type Question struct {
	ID      string    `json:"id"`
	Prompt  string    `json:"prompt"`
	Options []Option  `json:"options"`
	When    Predicate `json:"-"`
}

// Clone returns a copy of q that shares no option storage with it.
func (q Question) Clone() Question {
	q.Options = append([]Option(nil), q.Options...)
	return q
}

// Option returns the option with the given value.
func (q Question) Option(value string) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// HasOption reports whether value is one of the question's option values.
func (q Question) HasOption(value string) bool {
	_, ok := q.Option(value)
	return ok
}

// Applies evaluates the dependency predicate. Questions without one are always asked.
func (q Question) Applies(answers AnswerSet) bool {
	if q.When == nil {
		return true
	}
	return q.When(answers)
}
