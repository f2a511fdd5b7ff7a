package joblock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mewai/internal/services"
)

func TestAcquireAndRelease(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "locks")

	lock, err := Acquire(dir, "job-1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if lock.JobID() != "job-1" {
		t.Fatalf("unexpected job id %q", lock.JobID())
	}
	if _, err := os.Stat(lock.Path()); err != nil {
		t.Fatalf("expected lock file: %v", err)
	}

	held, err := Held(dir, "job-1")
	if err != nil {
		t.Fatalf("Held: %v", err)
	}
	if !held {
		t.Fatal("expected lock to be reported as held")
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if _, err := os.Stat(lock.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed, stat err=%v", err)
	}

	again, err := Acquire(dir, "job-1")
	if err != nil {
		t.Fatalf("re-Acquire after release: %v", err)
	}
	_ = again.Release()
}

func TestAcquireRejectsSecondHolder(t *testing.T) {
	dir := t.TempDir()
	first, err := Acquire(dir, "job-2")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer first.Release()

	_, err = Acquire(dir, "job-2")
	if !errors.Is(err, services.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	other, err := Acquire(dir, "job-3")
	if err != nil {
		t.Fatalf("expected distinct id to lock, got %v", err)
	}
	_ = other.Release()
}

func TestAcquireRequiresJobID(t *testing.T) {
	_, err := Acquire(t.TempDir(), "  ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestHeldWithoutLockFile(t *testing.T) {
	held, err := Held(t.TempDir(), "missing")
	if err != nil {
		t.Fatalf("Held: %v", err)
	}
	if held {
		t.Fatal("expected unheld lock")
	}
}

func TestPathSanitizesJobID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{id: "abc-123", want: "abc-123.lock"},
		{id: "../etc/passwd", want: ".._etc_passwd.lock"},
		{id: "a b/c", want: "a_b_c.lock"},
		{id: "..", want: "job.lock"},
	}
	for _, tt := range tests {
		if got := filepath.Base(Path("/locks", tt.id)); got != tt.want {
			t.Fatalf("Path(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
