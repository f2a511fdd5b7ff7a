// Package notifications sends ntfy push messages when a tracked generation
// job finishes.
//
// NewService returns a noop implementation when no topic is configured, so
// callers can notify unconditionally. Observer adapts a Service into a
// tracker observer that fires once per finished job.
package notifications
