// Package generation holds the data model shared by the generation client,
// the stage mapper, the polling engine, and the job tracker: job settings,
// the handle returned when a job starts, coarse remote status, per-poll
// snapshots, and the opaque result payload.
package generation
