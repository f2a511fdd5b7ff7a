// Package services defines shared utilities consumed by the generation client,
// the polling engine, and the job tracker.
//
// Key responsibilities:
//   - Context helpers that stamp remote job IDs and request correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so every failure can be
//     classified (Kind) and rendered for users (UserMessage) the same way.
//
// Use these helpers when adding new integration code so error handling and
// observability stay uniform across the client.
package services
