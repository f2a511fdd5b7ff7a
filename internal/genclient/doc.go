// Package genclient talks to the remote generation service over HTTP.
//
// Client is stateless between calls: Start creates a job, Status fetches one
// snapshot, Health probes the service. Every request carries an X-Request-ID
// correlation header and is bounded by the configured timeout. Failures are
// tagged with services markers:
//
//   - ErrTransport for network failures, timeouts, 5xx, malformed bodies, and
//     any 4xx other than a rejected Start or an unknown job id
//   - ErrValidation when the service rejects the Start payload (4xx)
//   - ErrNotFound when Status is asked about an unknown job id
//
// Nothing is retried here; callers decide whether to start again.
package genclient
