package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mewai/internal/genclient"
	"mewai/internal/notifications"
	"mewai/internal/services"
	"mewai/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

type stubHealth struct{ err error }

func (s stubHealth) Health(context.Context) error { return s.err }

func TestCheckService(t *testing.T) {
	tests := []struct {
		name   string
		client HealthChecker
		passed bool
		detail string
	}{
		{name: "healthy", client: stubHealth{}, passed: true, detail: "reachable"},
		{name: "nil client", client: nil, detail: "not configured"},
		{name: "timeout", client: stubHealth{err: context.DeadlineExceeded}, detail: "timed out"},
		{
			name:   "transport",
			client: stubHealth{err: services.Wrap(services.ErrTransport, "genclient", "health", "connect", errors.New("refused"))},
			detail: "unreachable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckService(context.Background(), "http://svc", tt.client)
			if result.Passed != tt.passed {
				t.Fatalf("passed = %v, want %v (%s)", result.Passed, tt.passed, result.Detail)
			}
			if !strings.Contains(result.Detail, tt.detail) {
				t.Fatalf("detail %q missing %q", result.Detail, tt.detail)
			}
		})
	}
}

func TestCheckServiceAgainstHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client, err := genclient.New(srv.URL, genclient.WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("genclient.New: %v", err)
	}
	result := CheckService(context.Background(), client.BaseURL(), client)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestRunAllSkipsDisabledFeatures(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg, stubHealth{}, notifications.NewService(cfg))
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	if Failed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}
}

func TestRunAllIncludesHistoryAndNotifications(t *testing.T) {
	var pushes int
	ntfy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pushes++
		w.WriteHeader(http.StatusOK)
	}))
	defer ntfy.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(ntfy.URL))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg, stubHealth{err: errors.New("down")}, notifications.NewService(cfg))
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d: %+v", len(results), results)
	}
	if !Failed(results) {
		t.Fatal("expected service failure to be reported")
	}
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
		if r.Name != "Generation service" && !r.Passed {
			t.Fatalf("unexpected failure %+v", r)
		}
	}
	if got := strings.Join(names, ","); got != "State directory,Generation service,History database,Notifications" {
		t.Fatalf("unexpected check order %q", got)
	}
	if pushes != 1 {
		t.Fatalf("expected 1 test push, got %d", pushes)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil, nil); results != nil {
		t.Fatalf("expected nil, got %+v", results)
	}
}
