package history

import (
	"context"
	"log/slog"
	"sync"

	"mewai/internal/generation"
	"mewai/internal/logging"
	"mewai/internal/tracker"
)

// Recorder archives tracker transitions. Writes that fail are logged and do
// not affect tracking.
type Recorder struct {
	store    *Store
	logger   *slog.Logger
	mu       sync.Mutex
	settings *generation.Settings
	lastErr  error
}

// NewRecorder constructs a recorder writing to store.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logging.NewComponentLogger(logger, "history")}
}

// SetSettings attaches the settings of the job being started so they are
// archived with it.
func (r *Recorder) SetSettings(settings generation.Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := settings.Clone()
	r.settings = &copied
}

// Observe implements tracker.Observer. States without a job id (the starting
// lifecycle, or a start that failed before an id existed) are skipped.
func (r *Recorder) Observe(state tracker.State) {
	if r == nil || r.store == nil || state.JobID == "" {
		return
	}
	r.mu.Lock()
	settings := r.settings
	r.mu.Unlock()

	if err := r.store.Save(context.Background(), RecordFromState(state, settings)); err != nil {
		r.mu.Lock()
		r.lastErr = err
		r.mu.Unlock()
		r.logger.Warn("history write failed",
			logging.String(logging.FieldJobID, state.JobID),
			logging.String(logging.FieldEventType, "history_write_failed"),
			logging.String(logging.FieldErrorHint, "check state directory permissions"),
			logging.Error(err),
		)
	}
}

// Err returns the most recent write failure, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}
