// Package logging assembles structured slog loggers and formatting helpers used
// across MewAI components.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so tracker and client code can tag log
// lines with job IDs and correlation IDs. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
