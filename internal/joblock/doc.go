// Package joblock serializes local tracking of a generation job.
//
// Each job id maps to an advisory flock file under the state directory's lock
// folder. A second CLI process that tries to watch the same id gets
// services.ErrAlreadyRunning instead of polling in parallel.
package joblock
