package stages

import (
	"fmt"

	"mewai/internal/generation"
)

// Status is the state of one client-side stage.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// DefaultCount is the number of stages in the default plan.
const DefaultCount = 4

var defaultPlan = []Definition{
	{ID: "writer", Label: "Writing content"},
	{ID: "reviewer", Label: "Reviewing and editing"},
	{ID: "formatter", Label: "Formatting for platforms"},
	{ID: "images", Label: "Generating images"},
}

// Definition names one stage.
type Definition struct {
	ID    string
	Label string
}

// State is one stage's derived status at a given ordinal.
type State struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Ordinal int    `json:"ordinal"`
	Status  Status `json:"status"`
}

// Plan returns the stage definitions for count stages. The default count
// uses the named pipeline; other counts use numbered placeholders.
func Plan(count int) []Definition {
	if count == DefaultCount {
		return append([]Definition(nil), defaultPlan...)
	}
	plan := make([]Definition, 0, max(count, 0))
	for i := range count {
		plan = append(plan, Definition{
			ID:    fmt.Sprintf("stage-%d", i+1),
			Label: fmt.Sprintf("Stage %d", i+1),
		})
	}
	return plan
}

// Initial returns count stages, all pending.
func Initial(count int) []State {
	plan := Plan(count)
	out := make([]State, len(plan))
	for i, def := range plan {
		out[i] = State{ID: def.ID, Label: def.Label, Ordinal: i, Status: StatusPending}
	}
	return out
}

// Map derives count stage states from snapshot and merges them with previous.
// previous may be nil or of a different length; mismatched entries are ignored.
// Non-positive counts yield an empty slice.
func Map(snapshot generation.Snapshot, previous []State, count int) []State {
	if count <= 0 {
		return []State{}
	}
	progress := snapshot.ClampedProgress()
	out := Initial(count)

	for i := range out {
		// Integer comparison keeps band edges exact: p >= (i+1)*100/n.
		switch {
		case progress*count >= (i+1)*100:
			out[i].Status = StatusCompleted
		case progress*count >= i*100:
			out[i].Status = StatusInProgress
		}
	}

	switch snapshot.Status {
	case generation.StatusCompleted:
		for i := range out {
			out[i].Status = StatusCompleted
		}
	case generation.StatusError:
		markError(out, previous)
	}

	if len(previous) == count {
		for i := range out {
			out[i].Status = merge(previous[i].Status, out[i].Status)
		}
	}
	return out
}

// markError flags the stage that was running when the job failed: the
// in-progress stage, else the first stage not already completed.
func markError(out, previous []State) {
	completed := func(i int) bool {
		if out[i].Status == StatusCompleted {
			return true
		}
		return len(previous) == len(out) && previous[i].Status == StatusCompleted
	}
	for i := range out {
		if out[i].Status == StatusInProgress && !completed(i) {
			out[i].Status = StatusError
			return
		}
	}
	for i := range out {
		if !completed(i) {
			out[i].Status = StatusError
			return
		}
	}
}

func merge(prev, next Status) Status {
	if prev == StatusError || next == StatusError {
		return StatusError
	}
	if rank(prev) > rank(next) {
		return prev
	}
	return next
}

func rank(s Status) int {
	switch s {
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	default:
		return 0
	}
}

// Active returns the first stage that is in progress or errored, if any.
func Active(states []State) (State, bool) {
	for _, s := range states {
		if s.Status == StatusInProgress || s.Status == StatusError {
			return s, true
		}
	}
	return State{}, false
}

// Clone returns a copy of states.
func Clone(states []State) []State {
	if states == nil {
		return nil
	}
	return append([]State(nil), states...)
}
