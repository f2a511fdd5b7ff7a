package preflight

import (
	"context"

	"mewai/internal/config"
	"mewai/internal/notifications"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config, service HealthChecker, notifier notifications.Service) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// State directory (always checked)
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	results = append(results, CheckService(ctx, cfg.Service.BaseURL, service))

	if cfg.History.Enabled {
		results = append(results, CheckHistory(ctx, cfg))
	}

	if cfg.Notifications.NtfyTopic != "" {
		results = append(results, CheckNotifications(ctx, notifier))
	}

	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
