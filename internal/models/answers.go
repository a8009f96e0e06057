// internal/models/answers.go
package models

import "sort"

// AnswerSet maps question ID to the chosen option value for one category.
type AnswerSet map[string]string

// Clone returns an independent copy. A nil set clones to an empty one.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Has reports whether questionID has a recorded answer.
func (a AnswerSet) Has(questionID string) bool {
	_, ok := a[questionID]
	return ok
}

// Is reports whether questionID was answered with value.
func (a AnswerSet) Is(questionID, value string) bool {
	v, ok := a[questionID]
	return ok && v == value
}

// Keys returns the answered question IDs in lexical order.
func (a AnswerSet) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether both sets hold the same answers.
func (a AnswerSet) Equal(other AnswerSet) bool {
	if len(a) != len(other) {
		return false
	}
	for k, v := range a {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
