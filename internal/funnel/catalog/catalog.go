// Package catalog holds the per-category question definitions of the funnel.
//
// A catalog is not a fixed form: the active sequence is recomputed from the
// answers given so far, so answering a gating question can add or remove
// follow-ups further down.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"provider-funnel/internal/models"
)

var ErrUnknownCategory = errors.New("UNKNOWN_CATEGORY")

// Catalog produces the ordered question sequence for one category.
type Catalog interface {
	Category() models.Category
	// Questions is pure and deterministic for a given answer set.
	Questions(answers models.AnswerSet) []models.Question
	// Closure lists every question ID produced for any reachable answer combination.
	Closure() map[string]struct{}
}

// static is a catalog declared as an ordered list of questions with optional
// dependency predicates.
type static struct {
	category  models.Category
	questions []models.Question

	closureOnce sync.Once
	closure     map[string]struct{}
}

// New builds a catalog from an ordered question list.
func New(category models.Category, questions ...models.Question) Catalog {
	return &static{category: category, questions: questions}
}

func (c *static) Category() models.Category {
	return c.category
}

func (c *static) Questions(answers models.AnswerSet) []models.Question {
	out := make([]models.Question, 0, len(c.questions))
	for _, q := range c.questions {
		if q.Applies(answers) {
			out = append(out, q)
		}
	}
	return out
}

func (c *static) Closure() map[string]struct{} {
	c.closureOnce.Do(func() {
		c.closure = explore(c)
	})
	return c.closure
}

// explore walks every option branch from the empty answer set and records
// each question that shows up in some sequence.
func explore(c Catalog) map[string]struct{} {
	seen := make(map[string]struct{})
	var walk func(answers models.AnswerSet)
	walk = func(answers models.AnswerSet) {
		questions := c.Questions(answers)
		for _, q := range questions {
			seen[q.ID] = struct{}{}
		}
		next, _, ok := firstGap(questions, answers)
		if !ok {
			return
		}
		for _, opt := range next.Options {
			branch := answers.Clone()
			branch[next.ID] = opt.Value
			walk(branch)
		}
	}
	walk(models.AnswerSet{})
	return seen
}

// NextUnanswered returns the first question in the current sequence without an
// answer, its index, and false when the answer set is complete.
func NextUnanswered(c Catalog, answers models.AnswerSet) (models.Question, int, bool) {
	return firstGap(c.Questions(answers), answers)
}

// Complete reports whether every question currently produced has an answer.
func Complete(c Catalog, answers models.AnswerSet) bool {
	_, _, open := NextUnanswered(c, answers)
	return !open
}

// Reasons an answer set is rejected by Validate.
const (
	ReasonRetiredQuestion  = "retired-question"
	ReasonInactiveQuestion = "inactive-question"
	ReasonUnknownOption    = "unknown-option"
)

// InvalidAnswer names the first answer the catalog would never have recorded.
type InvalidAnswer struct {
	QuestionID string
	Value      string
	Reason     string
}

func (e *InvalidAnswer) Error() string {
	return fmt.Sprintf("%s: %s=%q", e.Reason, e.QuestionID, e.Value)
}

// Validate checks that answers could have been produced by walking c: every
// key belongs to the closure, is part of the sequence computed from answers
// and holds one of its question's options. Answers are checked in key order.
// It does not check completeness.
func Validate(c Catalog, answers models.AnswerSet) *InvalidAnswer {
	closure := c.Closure()
	sequence := c.Questions(answers)
	for _, id := range answers.Keys() {
		bad := &InvalidAnswer{QuestionID: id, Value: answers[id]}
		if _, ok := closure[id]; !ok {
			bad.Reason = ReasonRetiredQuestion
			return bad
		}
		idx := IndexOf(sequence, id)
		if idx < 0 {
			bad.Reason = ReasonInactiveQuestion
			return bad
		}
		if !sequence[idx].HasOption(answers[id]) {
			bad.Reason = ReasonUnknownOption
			return bad
		}
	}
	return nil
}

// IndexOf returns the position of id in questions or -1.
func IndexOf(questions []models.Question, id string) int {
	for i, q := range questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func firstGap(questions []models.Question, answers models.AnswerSet) (models.Question, int, bool) {
	for i, q := range questions {
		if !answers.Has(q.ID) {
			return q, i, true
		}
	}
	return models.Question{}, -1, false
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Catalog{}
)

// Register makes a catalog available under its category ID. Registering the
// same ID twice replaces the earlier catalog.
func Register(c Catalog) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c.Category().ID] = c
}

// Get selects the catalog for a category identifier.
func Get(categoryID string) (Catalog, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[categoryID]
	if !ok {
		return nil, ErrUnknownCategory
	}
	return c, nil
}

// Categories lists the registered categories ordered by ID.
func Categories() []models.Category {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]models.Category, 0, len(registry))
	for _, c := range registry {
		out = append(out, c.Category())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// answered builds a predicate that holds when questionID was answered with one of values.
func answered(questionID string, values ...string) models.Predicate {
	return func(a models.AnswerSet) bool {
		for _, v := range values {
			if a.Is(questionID, v) {
				return true
			}
		}
		return false
	}
}
