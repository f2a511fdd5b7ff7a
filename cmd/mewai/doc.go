// Package main hosts the MewAI CLI entrypoint and command graph.
//
// The Cobra-based command tree submits generation jobs, follows their
// progress through the job tracker, renders finished content, and surfaces
// the local job history. It centralizes configuration resolution, client
// construction, and structured logging setup so subcommands can focus on
// user experience instead of wiring.
//
// Keep this package lean: tracking semantics live in internal/tracker and
// friends; commands here only compose them and render their output.
package main
