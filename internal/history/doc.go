// Package history keeps a local SQLite archive of tracked generation jobs.
//
// The archive is a consumer of tracker output: Recorder turns tracker state
// transitions into upserts keyed by remote job id, and the CLI lists recent
// jobs, shows stored results, and clears old entries. The tracking core never
// reads from it.
//
// The schema lives in schema.sql and is versioned by schemaVersion; bump the
// version when the table layout changes.
package history
