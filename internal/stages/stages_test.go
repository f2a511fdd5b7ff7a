package stages_test

import (
	"testing"

	"mewai/internal/generation"
	"mewai/internal/stages"
)

func snapshot(status generation.Status, progress int) generation.Snapshot {
	return generation.Snapshot{ID: "job1", Status: status, Progress: progress}
}

func statuses(states []stages.State) []stages.Status {
	out := make([]stages.Status, len(states))
	for i, s := range states {
		out[i] = s.Status
	}
	return out
}

func assertStatuses(t *testing.T, got []stages.State, want ...stages.Status) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d stages, got %d (%v)", len(want), len(got), statuses(got))
	}
	for i := range want {
		if got[i].Status != want[i] {
			t.Fatalf("stage %d: got %s, want %s (all: %v)", i, got[i].Status, want[i], statuses(got))
		}
	}
}

const (
	pending    = stages.StatusPending
	inProgress = stages.StatusInProgress
	completed  = stages.StatusCompleted
	failed     = stages.StatusError
)

func TestMapProgressBands(t *testing.T) {
	tests := []struct {
		name     string
		progress int
		want     []stages.Status
	}{
		{"zero", 0, []stages.Status{inProgress, pending, pending, pending}},
		{"quarter", 25, []stages.Status{completed, inProgress, pending, pending}},
		{"just below half", 49, []stages.Status{completed, inProgress, pending, pending}},
		{"half", 50, []stages.Status{completed, completed, inProgress, pending}},
		{"eighty", 80, []stages.Status{completed, completed, completed, inProgress}},
		{"full", 100, []stages.Status{completed, completed, completed, completed}},
		{"over range clamps", 130, []stages.Status{completed, completed, completed, completed}},
		{"negative clamps", -10, []stages.Status{inProgress, pending, pending, pending}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stages.Map(snapshot(generation.StatusInProgress, tt.progress), nil, 4)
			assertStatuses(t, got, tt.want...)
		})
	}
}

func TestMapCompletedForcesAll(t *testing.T) {
	got := stages.Map(snapshot(generation.StatusCompleted, 10), nil, 4)
	assertStatuses(t, got, completed, completed, completed, completed)
}

func TestMapErrorMarksActiveStage(t *testing.T) {
	got := stages.Map(snapshot(generation.StatusError, 60), nil, 4)
	assertStatuses(t, got, completed, completed, failed, pending)
}

func TestMapErrorWithoutActiveStageMarksFirstIncomplete(t *testing.T) {
	previous := stages.Map(snapshot(generation.StatusInProgress, 50), nil, 4)
	// Progress regressed in the error snapshot; previously completed stages stay completed.
	got := stages.Map(snapshot(generation.StatusError, 0), previous, 4)
	assertStatuses(t, got, completed, completed, failed, pending)
}

func TestMapErrorIsSticky(t *testing.T) {
	previous := stages.Map(snapshot(generation.StatusError, 30), nil, 4)
	got := stages.Map(snapshot(generation.StatusInProgress, 90), previous, 4)
	assertStatuses(t, got, completed, failed, completed, inProgress)
}

func TestMapNeverMovesBackward(t *testing.T) {
	previous := stages.Map(snapshot(generation.StatusInProgress, 75), nil, 4)
	got := stages.Map(snapshot(generation.StatusInProgress, 10), previous, 4)
	assertStatuses(t, got, completed, completed, completed, inProgress)
}

func TestMapPropertiesAcrossCounts(t *testing.T) {
	for n := 1; n <= 7; n++ {
		for p := 0; p <= 100; p++ {
			got := stages.Map(snapshot(generation.StatusInProgress, p), nil, n)
			if len(got) != n {
				t.Fatalf("n=%d p=%d: expected %d stages, got %d", n, p, n, len(got))
			}
			for i, s := range got {
				if s.Ordinal != i {
					t.Fatalf("n=%d p=%d: stage %d has ordinal %d", n, p, i, s.Ordinal)
				}
				wantCompleted := float64(p) >= float64((i+1)*100)/float64(n)
				if (s.Status == completed) != wantCompleted {
					t.Fatalf("n=%d p=%d stage %d: status %s, want completed=%v", n, p, i, s.Status, wantCompleted)
				}
			}
		}
	}
}

func TestMapMonotonicAcrossSequence(t *testing.T) {
	for n := 1; n <= 6; n++ {
		var prev []stages.State
		for p := 0; p <= 100; p += 7 {
			next := stages.Map(snapshot(generation.StatusInProgress, p), prev, n)
			for i := range prev {
				if prev[i].Status == completed && next[i].Status != completed {
					t.Fatalf("n=%d p=%d: stage %d regressed from completed to %s", n, p, i, next[i].Status)
				}
			}
			prev = next
		}
	}
}

func TestMapIgnoresMismatchedPrevious(t *testing.T) {
	previous := stages.Map(snapshot(generation.StatusCompleted, 100), nil, 3)
	got := stages.Map(snapshot(generation.StatusInProgress, 0), previous, 4)
	assertStatuses(t, got, inProgress, pending, pending, pending)
}

func TestMapNonPositiveCount(t *testing.T) {
	if got := stages.Map(snapshot(generation.StatusInProgress, 50), nil, 0); len(got) != 0 {
		t.Fatalf("expected no stages, got %d", len(got))
	}
}

func TestPlanNames(t *testing.T) {
	plan := stages.Plan(stages.DefaultCount)
	want := []string{"writer", "reviewer", "formatter", "images"}
	for i, def := range plan {
		if def.ID != want[i] {
			t.Fatalf("stage %d: got %q want %q", i, def.ID, want[i])
		}
	}
	other := stages.Plan(2)
	if len(other) != 2 || other[0].ID != "stage-1" || other[1].ID != "stage-2" {
		t.Fatalf("unexpected generic plan %+v", other)
	}
}

func TestActive(t *testing.T) {
	states := stages.Map(snapshot(generation.StatusInProgress, 30), nil, 4)
	active, ok := stages.Active(states)
	if !ok || active.ID != "reviewer" {
		t.Fatalf("unexpected active stage %+v ok=%v", active, ok)
	}
	if _, ok := stages.Active(stages.Map(snapshot(generation.StatusCompleted, 100), nil, 4)); ok {
		t.Fatal("expected no active stage when all completed")
	}
}
