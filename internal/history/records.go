package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mewai/internal/generation"
	"mewai/internal/stages"
	"mewai/internal/tracker"
)

// Record is one archived job.
type Record struct {
	JobID        string               `json:"job_id"`
	Topic        string               `json:"topic"`
	Settings     *generation.Settings `json:"settings,omitempty"`
	Lifecycle    tracker.Lifecycle    `json:"lifecycle"`
	RemoteStatus generation.Status    `json:"remote_status,omitempty"`
	Progress     int                  `json:"progress"`
	ActiveStage  string               `json:"active_stage,omitempty"`
	ErrorMessage string               `json:"error_message,omitempty"`
	ErrorKind    string               `json:"error_kind,omitempty"`
	Result       *generation.Result   `json:"result,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	FinishedAt   *time.Time           `json:"finished_at,omitempty"`
}

// Finished reports whether the job reached a terminal lifecycle.
func (r *Record) Finished() bool {
	return r != nil && r.Lifecycle.IsTerminal()
}

// RecordFromState converts a tracker state into a record. settings may be nil
// when the job was attached rather than started locally.
func RecordFromState(state tracker.State, settings *generation.Settings) Record {
	rec := Record{
		JobID:        state.JobID,
		Topic:        state.Topic,
		Lifecycle:    state.Lifecycle,
		RemoteStatus: state.RemoteStatus,
		Progress:     state.Progress,
		ErrorMessage: state.ErrorMessage,
		ErrorKind:    state.ErrorKind,
		Result:       state.Result.Clone(),
		CreatedAt:    state.StartedAt,
		UpdatedAt:    state.UpdatedAt,
	}
	if settings != nil {
		copied := settings.Clone()
		rec.Settings = &copied
		if rec.Topic == "" {
			rec.Topic = copied.Topic
		}
	}
	if active, ok := stages.Active(state.Stages); ok {
		rec.ActiveStage = active.ID
	}
	if state.Lifecycle.IsTerminal() {
		finished := state.UpdatedAt
		rec.FinishedAt = &finished
	}
	return rec
}

// Save inserts the record or updates the existing row for its job id. The
// original creation time and any stored settings or result are preserved when
// the update omits them.
func (s *Store) Save(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.JobID) == "" {
		return errors.New("save history: job id required")
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}

	settingsJSON, err := marshalNullable(rec.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	var resultJSON any
	if rec.Result != nil {
		resultJSON, err = marshalNullable(rec.Result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
	}

	if _, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (
            job_id, topic, settings_json, lifecycle, remote_status, progress, active_stage,
            error_message, error_kind, result_json, created_at, updated_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(job_id) DO UPDATE SET
            topic = COALESCE(excluded.topic, jobs.topic),
            settings_json = COALESCE(excluded.settings_json, jobs.settings_json),
            lifecycle = excluded.lifecycle,
            remote_status = excluded.remote_status,
            progress = excluded.progress,
            active_stage = excluded.active_stage,
            error_message = excluded.error_message,
            error_kind = excluded.error_kind,
            result_json = COALESCE(excluded.result_json, jobs.result_json),
            updated_at = excluded.updated_at,
            finished_at = excluded.finished_at`,
		rec.JobID,
		nullableString(rec.Topic),
		settingsJSON,
		string(rec.Lifecycle),
		nullableString(string(rec.RemoteStatus)),
		rec.Progress,
		nullableString(rec.ActiveStage),
		nullableString(rec.ErrorMessage),
		nullableString(rec.ErrorKind),
		resultJSON,
		rec.CreatedAt.UTC().Format(timeLayout),
		rec.UpdatedAt.UTC().Format(timeLayout),
		nullableTime(rec.FinishedAt),
	); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Get fetches a record by job id. It returns nil, nil when absent.
func (s *Store) Get(ctx context.Context, jobID string) (*Record, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+recordColumns+` FROM jobs WHERE job_id = ?`, jobID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return rec, nil
}

// ListOptions filters List.
type ListOptions struct {
	Limit      int
	Lifecycles []tracker.Lifecycle
}

// List returns records ordered by most recent update first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM jobs`
	args := make([]any, 0, len(opts.Lifecycles)+1)
	if len(opts.Lifecycles) > 0 {
		placeholders := make([]string, len(opts.Lifecycles))
		for i, lc := range opts.Lifecycles {
			placeholders[i] = "?"
			args = append(args, string(lc))
		}
		query += ` WHERE lifecycle IN (` + strings.Join(placeholders, ",") + `)`
	}
	query += ` ORDER BY updated_at DESC, job_id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}

// Stats summarizes the archive by lifecycle.
type Stats struct {
	Total     int
	Completed int
	Failed    int
	Active    int
}

// Stats counts records per lifecycle.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT lifecycle, COUNT(*) FROM jobs GROUP BY lifecycle`)
	if err != nil {
		return Stats{}, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var (
			lifecycle string
			count     int
		)
		if err := rows.Scan(&lifecycle, &count); err != nil {
			return Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += count
		switch tracker.Lifecycle(lifecycle) {
		case tracker.LifecycleCompleted:
			stats.Completed += count
		case tracker.LifecycleError:
			stats.Failed += count
		case tracker.LifecycleStarting, tracker.LifecyclePolling:
			stats.Active += count
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

// Remove deletes one record and reports whether it existed.
func (s *Store) Remove(ctx context.Context, jobID string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE job_id = ?`, jobID)
	if err != nil {
		return false, fmt.Errorf("remove history: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear deletes all records.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	return s.clearWhere(ctx, ``)
}

// ClearFinished deletes records for jobs that reached a terminal lifecycle.
func (s *Store) ClearFinished(ctx context.Context) (int64, error) {
	return s.clearWhere(ctx, ` WHERE lifecycle IN (?, ?)`, string(tracker.LifecycleCompleted), string(tracker.LifecycleError))
}

func (s *Store) clearWhere(ctx context.Context, where string, args ...any) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

func marshalNullable(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return string(data), nil
}
