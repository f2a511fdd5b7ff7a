// Package poller owns the repeating status fetch for one remote job.
//
// Engine.Start launches one goroutine per job id. Each tick issues a single
// Status request and waits for it before the next tick is considered, so
// requests for one id never overlap and callbacks arrive strictly in poll
// order. Ticks that elapse while a request is outstanding are dropped, not
// queued.
//
// Polling ends on the first terminal snapshot (OnTerminal fires once), on the
// first fetch error (OnFatalError fires once; nothing is retried), or when the
// returned Handle is cancelled. After cancellation no callback fires.
package poller
