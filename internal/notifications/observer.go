package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mewai/internal/logging"
	"mewai/internal/tracker"
)

// Observer forwards terminal tracker transitions to a Service. Each tracker
// generation notifies at most once.
type Observer struct {
	svc       Service
	completed bool
	errors    bool
	timeout   time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	notified map[uint64]struct{}
}

// NewObserver constructs an observer. completed and errors select which
// outcomes are announced.
func NewObserver(svc Service, completed, errors bool, logger *slog.Logger) *Observer {
	return &Observer{
		svc:       svc,
		completed: completed,
		errors:    errors,
		timeout:   15 * time.Second,
		logger:    logging.NewComponentLogger(logger, "notifications"),
		notified:  make(map[uint64]struct{}),
	}
}

// Observe implements tracker.Observer.
func (o *Observer) Observe(state tracker.State) {
	if o == nil || o.svc == nil || !state.Lifecycle.IsTerminal() {
		return
	}
	if state.Lifecycle == tracker.LifecycleCompleted && !o.completed {
		return
	}
	if state.Lifecycle == tracker.LifecycleError && !o.errors {
		return
	}

	o.mu.Lock()
	if _, seen := o.notified[state.Generation]; seen {
		o.mu.Unlock()
		return
	}
	o.notified[state.Generation] = struct{}{}
	o.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	var err error
	if state.Lifecycle == tracker.LifecycleCompleted {
		err = o.svc.NotifyJobCompleted(ctx, state.JobID, state.Topic, state.UpdatedAt.Sub(state.StartedAt))
	} else {
		err = o.svc.NotifyJobFailed(ctx, state.JobID, state.Topic, state.ErrorMessage)
	}
	if err != nil {
		o.logger.Warn("notification failed",
			logging.String(logging.FieldJobID, state.JobID),
			logging.String(logging.FieldEventType, "notification_failed"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.Error(err),
		)
	}
}
