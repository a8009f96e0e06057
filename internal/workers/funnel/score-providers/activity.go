// internal/workers/funnel/score-providers/activity.go
package scoreproviders

import (
	"provider-funnel/internal/common/errors"
	"provider-funnel/pkg/registry"
)

// Activity describes this worker in the activity registry.
func Activity() registry.Activity {
	return registry.Activity{
		ID:          "score-providers",
		DisplayName: "Score providers",
		Description: "Ranks the category providers against a complete answer set.",
		Category:    "funnel",
		Version:     registry.Version,
		TaskType:    TaskType,
		InputSchema: registry.MustSchema(inputSchema),
		ErrorCodes: []string{
			string(errors.ErrCodeInvalidInput),
			string(errors.ErrCodeUnknownCategory),
			string(errors.ErrCodeInvalidAnswer),
			string(errors.ErrCodeAnswersIncomplete),
			string(errors.ErrCodeCategoryMismatch),
			string(errors.ErrCodeProviderFetchFailed),
		},
		Timeout: LoadConfig().Timeout.String(),
		Retries: errors.GetRetryCount(errors.ErrCodeProviderFetchFailed),
	}
}
