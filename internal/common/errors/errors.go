// Package errors provides standardized error handling for the funnel workers and API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnknownCategory     ErrorCode = "UNKNOWN_CATEGORY"
	ErrCodeInvalidAnswer       ErrorCode = "INVALID_ANSWER"
	ErrCodeQuestionNotActive   ErrorCode = "QUESTION_NOT_ACTIVE"
	ErrCodeAnswerOutOfOrder    ErrorCode = "ANSWER_OUT_OF_ORDER"
	ErrCodeAnswersIncomplete   ErrorCode = "ANSWERS_INCOMPLETE"
	ErrCodeCategoryMismatch    ErrorCode = "CATEGORY_MISMATCH"
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrCodeSlotUnavailable     ErrorCode = "SLOT_UNAVAILABLE"
	ErrCodeProviderFetchFailed ErrorCode = "PROVIDER_FETCH_FAILED"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeEngineUnavailable   ErrorCode = "ENGINE_UNAVAILABLE"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewUnknownCategoryError creates a non-retryable error for an unregistered category.
func NewUnknownCategoryError(categoryID string, cause error) *StandardError {
	return newError(ErrCodeUnknownCategory, "Unknown category", fmt.Sprintf("category: %s", categoryID), false, cause)
}

// NewInvalidAnswerError is returned when a value is not one of the question's options.
func NewInvalidAnswerError(questionID, value string, cause error) *StandardError {
	return newError(ErrCodeInvalidAnswer, "Answer is not a valid option",
		fmt.Sprintf("questionId: %s, value: %s", questionID, value), false, cause)
}

// NewQuestionNotActiveError is returned for answers to questions outside the current sequence.
func NewQuestionNotActiveError(questionID string, cause error) *StandardError {
	return newError(ErrCodeQuestionNotActive, "Question is not part of the current funnel",
		fmt.Sprintf("questionId: %s", questionID), false, cause)
}

// NewAnswerOutOfOrderError is returned when an answer skips an earlier open question.
func NewAnswerOutOfOrderError(questionID string, cause error) *StandardError {
	return newError(ErrCodeAnswerOutOfOrder, "An earlier question is still unanswered",
		fmt.Sprintf("questionId: %s", questionID), false, cause)
}

// NewAnswersIncompleteError is returned when scoring is requested before the funnel is complete.
func NewAnswersIncompleteError(categoryID string, cause error) *StandardError {
	return newError(ErrCodeAnswersIncomplete, "Funnel is not complete",
		fmt.Sprintf("category: %s", categoryID), false, cause)
}

// NewCategoryMismatchError is returned when a provider outside the category reaches scoring.
func NewCategoryMismatchError(details string, cause error) *StandardError {
	return newError(ErrCodeCategoryMismatch, "Provider does not belong to category", details, false, cause)
}

// NewInvalidInputError creates a non-retryable input validation error.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

// NewSlotUnavailableError creates a retryable answer slot error.
func NewSlotUnavailableError(err error) *StandardError {
	return newError(ErrCodeSlotUnavailable, "Answer slot unavailable", err.Error(), true, err)
}

// NewProviderFetchFailedError creates a retryable provider supply error.
func NewProviderFetchFailedError(categoryID string, err error) *StandardError {
	return newError(ErrCodeProviderFetchFailed, "Failed to load providers",
		fmt.Sprintf("category: %s, error: %s", categoryID, err.Error()), true, err)
}

// NewUnauthorizedError creates a non-retryable authentication error.
func NewUnauthorizedError(details string) *StandardError {
	return newError(ErrCodeUnauthorized, "Authentication failed", details, false, nil)
}

// NewEngineUnavailableError creates a retryable workflow engine error.
func NewEngineUnavailableError(operation string, err error) *StandardError {
	return newError(ErrCodeEngineUnavailable, "Workflow engine unavailable",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 4. Error Conversion
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSlotUnavailable, ErrCodeProviderFetchFailed, ErrCodeEngineUnavailable:
		return 3
	default:
		return 0 // Business errors: no retry
	}
}

// GetErrorCategory groups codes for logging.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeUnknownCategory, ErrCodeInvalidAnswer, ErrCodeQuestionNotActive,
		ErrCodeAnswerOutOfOrder, ErrCodeInvalidInput:
		return "validation"
	case ErrCodeAnswersIncomplete, ErrCodeCategoryMismatch:
		return "contract"
	case ErrCodeSlotUnavailable, ErrCodeProviderFetchFailed, ErrCodeEngineUnavailable:
		return "infrastructure"
	case ErrCodeUnauthorized:
		return "auth"
	default:
		return "internal"
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}
	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: stdErr.Metadata,
	}
}

// HTTPStatus maps a code to the status returned by the funnel API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeUnknownCategory:
		return http.StatusNotFound
	case ErrCodeInvalidAnswer, ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeQuestionNotActive, ErrCodeAnswerOutOfOrder, ErrCodeAnswersIncomplete:
		return http.StatusConflict
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeSlotUnavailable, ErrCodeProviderFetchFailed, ErrCodeEngineUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Normalize returns err as a StandardError, wrapping unknown errors as internal.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}
