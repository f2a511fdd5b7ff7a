package devserver_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"mewai/internal/devserver"
	"mewai/internal/genclient"
	"mewai/internal/generation"
	"mewai/internal/services"
	"mewai/internal/stages"
	"mewai/internal/tracker"
)

func runJob(t *testing.T, topic string) (tracker.State, []tracker.State, error) {
	t.Helper()
	srv := httptest.NewServer(devserver.New(devserver.WithStep(20 * time.Millisecond)).Handler())
	t.Cleanup(srv.Close)

	client, err := genclient.New(srv.URL, genclient.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("genclient.New: %v", err)
	}

	var (
		mu   sync.Mutex
		seen []tracker.State
	)
	tr := tracker.New(client,
		tracker.WithPollInterval(5*time.Millisecond),
		tracker.WithObserver(func(s tracker.State) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		}),
	)
	t.Cleanup(tr.Close)

	settings := generation.NewSettings(topic, []string{"blog", "linkedin"}, "technical", "short", false)
	if err := tr.Start(context.Background(), settings); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	final, waitErr := tr.Wait(ctx)

	mu.Lock()
	defer mu.Unlock()
	return final, append([]tracker.State(nil), seen...), waitErr
}

func TestTrackerCompletesAgainstDevServer(t *testing.T) {
	final, seen, err := runJob(t, "Observability in Go")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if final.Lifecycle != tracker.LifecycleCompleted {
		t.Fatalf("expected completed, got %s", final.Lifecycle)
	}
	if final.Result == nil || final.Result.Blog() == "" || final.Result.SocialMedia.LinkedIn == "" {
		t.Fatalf("expected blog and linkedin content, got %+v", final.Result)
	}
	for _, st := range final.Stages {
		if st.Status != stages.StatusCompleted {
			t.Fatalf("expected all stages completed, got %+v", final.Stages)
		}
	}

	lastProgress := -1
	for _, s := range seen {
		if s.Progress < lastProgress {
			t.Fatalf("progress went backwards: %d after %d", s.Progress, lastProgress)
		}
		lastProgress = s.Progress
	}
	if seen[len(seen)-1].Lifecycle != tracker.LifecycleCompleted {
		t.Fatalf("expected observers to see the completed state last, got %s", seen[len(seen)-1].Lifecycle)
	}
}

func TestTrackerReportsSimulatedFailure(t *testing.T) {
	final, _, err := runJob(t, "fail on purpose")
	if !errors.Is(err, services.ErrRemoteJob) {
		t.Fatalf("expected ErrRemoteJob, got %v", err)
	}
	if final.Lifecycle != tracker.LifecycleError {
		t.Fatalf("expected error lifecycle, got %s", final.Lifecycle)
	}
	if final.ErrorMessage != devserver.FailureMessage {
		t.Fatalf("unexpected error message %q", final.ErrorMessage)
	}
	var sawError bool
	for _, st := range final.Stages {
		if st.Status == stages.StatusError {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("expected a stage in error, got %+v", final.Stages)
	}
}
