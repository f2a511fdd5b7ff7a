// Package tracker combines job start, status polling, and terminal detection
// into one observable lifecycle:
//
//	idle -> starting -> polling -> completed
//	           |           \
//	           +-----------> error
//
// Tracker holds the single TrackerState for the job it is following. Only the
// tracker's own start path and its polling callbacks mutate it; consumers read
// copies through State, Wait, or registered observers.
//
// Each Start or Attach begins a new generation. Callbacks from a polling loop
// that belongs to an older generation, or that arrive after Close, are
// dropped, so a superseded job can never overwrite the current state.
package tracker
