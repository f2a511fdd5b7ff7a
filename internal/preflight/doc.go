// Package preflight provides readiness checks for the generation service,
// the local state directory, and the optional integrations MewAI depends on.
//
// The CLI "mewai doctor" command runs RunAll and renders each Result.
// "mewai generate" calls CheckService before starting a job so an
// unreachable service fails fast instead of after the first poll.
//
// Each check is gated by its config toggle; disabled features are skipped.
package preflight
