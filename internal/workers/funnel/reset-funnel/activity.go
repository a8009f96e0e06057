// internal/workers/funnel/reset-funnel/activity.go
package resetfunnel

import (
	"provider-funnel/internal/common/errors"
	"provider-funnel/pkg/registry"
)

// Activity describes this worker in the activity registry.
func Activity() registry.Activity {
	return registry.Activity{
		ID:          "reset-funnel",
		DisplayName: "Reset funnel",
		Description: "Discards every saved answer for the category.",
		Category:    "funnel",
		Version:     registry.Version,
		TaskType:    TaskType,
		InputSchema: registry.MustSchema(inputSchema),
		ErrorCodes: []string{
			string(errors.ErrCodeInvalidInput),
			string(errors.ErrCodeUnknownCategory),
		},
		Timeout: LoadConfig().Timeout.String(),
		Retries: 0,
	}
}
