// internal/workers/funnel/load-funnel/activity.go
package loadfunnel

import (
	"provider-funnel/internal/common/errors"
	"provider-funnel/pkg/registry"
)

// Activity describes this worker in the activity registry.
func Activity() registry.Activity {
	return registry.Activity{
		ID:          "load-funnel",
		DisplayName: "Load funnel",
		Description: "Restores the saved answers for a session and reports the current question.",
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
