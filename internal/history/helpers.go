package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mewai/internal/generation"
	"mewai/internal/tracker"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const recordColumns = "job_id, topic, settings_json, lifecycle, remote_status, progress, active_stage, error_message, error_kind, result_json, created_at, updated_at, finished_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		jobID        string
		topic        sql.NullString
		settingsJSON sql.NullString
		lifecycle    string
		remoteStatus sql.NullString
		progress     int
		activeStage  sql.NullString
		errorMessage sql.NullString
		errorKind    sql.NullString
		resultJSON   sql.NullString
		createdRaw   string
		updatedRaw   string
		finishedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&jobID,
		&topic,
		&settingsJSON,
		&lifecycle,
		&remoteStatus,
		&progress,
		&activeStage,
		&errorMessage,
		&errorKind,
		&resultJSON,
		&createdRaw,
		&updatedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	rec := &Record{
		JobID:        jobID,
		Topic:        topic.String,
		Lifecycle:    tracker.Lifecycle(lifecycle),
		RemoteStatus: generation.Status(remoteStatus.String),
		Progress:     progress,
		ActiveStage:  activeStage.String,
		ErrorMessage: errorMessage.String,
		ErrorKind:    errorKind.String,
		CreatedAt:    parseTime(createdRaw),
		UpdatedAt:    parseTime(updatedRaw),
	}
	if settingsJSON.Valid && strings.TrimSpace(settingsJSON.String) != "" {
		var settings generation.Settings
		if err := json.Unmarshal([]byte(settingsJSON.String), &settings); err != nil {
			return nil, fmt.Errorf("decode settings for %s: %w", jobID, err)
		}
		rec.Settings = &settings
	}
	if resultJSON.Valid && strings.TrimSpace(resultJSON.String) != "" {
		var result generation.Result
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, fmt.Errorf("decode result for %s: %w", jobID, err)
		}
		rec.Result = &result
	}
	if finishedRaw.Valid && finishedRaw.String != "" {
		finished := parseTime(finishedRaw.String)
		rec.FinishedAt = &finished
	}
	return rec, nil
}

func parseTime(raw string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return value.UTC().Format(timeLayout)
}
