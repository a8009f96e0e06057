// Package funnel ties the funnel components to the shared error model used by
// the job workers and the HTTP API.
package funnel

import (
	stderrors "errors"

	"provider-funnel/internal/common/errors"
	"provider-funnel/internal/funnel/catalog"
	"provider-funnel/internal/funnel/controller"
	"provider-funnel/internal/funnel/scoring"
)

// Error describes the context a domain error occurred in.
type Error struct {
	Category   string
	QuestionID string
	Value      string
}

// Standardize maps catalog, controller and scoring errors to StandardErrors.
// Anything else is returned as an internal error.
func (c Error) Standardize(err error) *errors.StandardError {
	if err == nil {
		return nil
	}
	var std *errors.StandardError
	if stderrors.As(err, &std) {
		return std
	}

	switch {
	case stderrors.Is(err, catalog.ErrUnknownCategory):
		return errors.NewUnknownCategoryError(c.Category, err)
	case stderrors.Is(err, controller.ErrInvalidOption):
		return errors.NewInvalidAnswerError(c.QuestionID, c.Value, err)
	case stderrors.Is(err, controller.ErrQuestionNotActive):
		return errors.NewQuestionNotActiveError(c.QuestionID, err)
	case stderrors.Is(err, controller.ErrOutOfOrder):
		return errors.NewAnswerOutOfOrderError(c.QuestionID, err)
	case stderrors.Is(err, scoring.ErrInvalidAnswers):
		questionID, value := c.QuestionID, c.Value
		var bad *catalog.InvalidAnswer
		if stderrors.As(err, &bad) {
			questionID, value = bad.QuestionID, bad.Value
		}
		return errors.NewInvalidAnswerError(questionID, value, err)
	case stderrors.Is(err, scoring.ErrIncompleteAnswers):
		return errors.NewAnswersIncompleteError(c.Category, err)
	case stderrors.Is(err, scoring.ErrCategoryMismatch):
		return errors.NewCategoryMismatchError(err.Error(), err)
	}
	return errors.NewInternalError(err)
}
