// Package devserver simulates the remote generation service for local
// development and tests.
//
// The server exposes the same HTTP contract the client consumes:
//
//	POST /api/generation/start   submit settings, returns {id, status, message}
//	GET  /api/generation/{id}    job snapshot, 404 {"detail": ...} when unknown
//	GET  /api/health             {"status": "ok"}
//
// Job progress is derived from the time elapsed since submission: pending,
// then in_progress at 10, then 20/40/60/80 per step, then completed at 100
// with a canned result. Topics containing "fail" end in error with
// "simulated failure" reported under the "error" key, the way the backend
// reports exceptions. Progression is computed on read, so no goroutines run
// per job.
package devserver
