// internal/workers/funnel/submit-answer/activity.go
package submitanswer

import (
	"provider-funnel/internal/common/errors"
	"provider-funnel/pkg/registry"
)

// Activity describes this worker in the activity registry.
func Activity() registry.Activity {
	return registry.Activity{
		ID:          "submit-answer",
		DisplayName: "Submit funnel answer",
		Description: "Records one answer and returns the next question or completion.",
		Category:    "funnel",
		Version:     registry.Version,
		TaskType:    TaskType,
		InputSchema: registry.MustSchema(inputSchema),
		ErrorCodes: []string{
			string(errors.ErrCodeInvalidInput),
			string(errors.ErrCodeUnknownCategory),
			string(errors.ErrCodeInvalidAnswer),
			string(errors.ErrCodeQuestionNotActive),
			string(errors.ErrCodeAnswerOutOfOrder),
		},
		Timeout: LoadConfig().Timeout.String(),
		Retries: 0,
	}
}
