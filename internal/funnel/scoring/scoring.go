// Package scoring ranks a category's providers against a completed answer set.
//
// Score is a pure function of its inputs: the same category, answers and
// provider slice always produce the same ordered result.
package scoring

import (
	"errors"
	"fmt"
	"sort"

	"provider-funnel/internal/funnel/catalog"
	"provider-funnel/internal/models"
)

var (
	ErrInvalidAnswers    = errors.New("INVALID_ANSWER")
	ErrIncompleteAnswers = errors.New("ANSWERS_INCOMPLETE")
	ErrCategoryMismatch  = errors.New("CATEGORY_MISMATCH")
)

// Score filters providers by the category's hard constraints, scores the
// survivors on soft preferences and orders them.
//
// Ordering: score descending, then featured first, then rated first, then
// input order.
func Score(categoryID string, answers models.AnswerSet, providers []models.Provider) ([]models.ScoredProvider, error) {
	cat, err := catalog.Get(categoryID)
	if err != nil {
		return nil, err
	}
	if bad := catalog.Validate(cat, answers); bad != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAnswers, bad)
	}
	if !catalog.Complete(cat, answers) {
		return nil, fmt.Errorf("%w: %s", ErrIncompleteAnswers, categoryID)
	}
	cfg, err := ConfigFor(categoryID)
	if err != nil {
		return nil, err
	}
	for _, p := range providers {
		if p.Category != categoryID {
			return nil, fmt.Errorf("%w: provider %s belongs to %q", ErrCategoryMismatch, p.ID, p.Category)
		}
	}

	type ranked struct {
		models.ScoredProvider
		index int
	}
	survivors := make([]ranked, 0, len(providers))
	for i, p := range providers {
		if !cfg.Admits(answers, p) {
			continue
		}
		survivors = append(survivors, ranked{
			ScoredProvider: models.ScoredProvider{Provider: p, Score: cfg.Match(answers, p)},
			index:          i,
		})
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		a, b := survivors[i], survivors[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Provider.Featured != b.Provider.Featured {
			return a.Provider.Featured
		}
		if a.Provider.HasRating() != b.Provider.HasRating() {
			return a.Provider.HasRating()
		}
		return a.index < b.index
	})

	out := make([]models.ScoredProvider, len(survivors))
	for i, r := range survivors {
		out[i] = r.ScoredProvider
	}
	return out, nil
}
