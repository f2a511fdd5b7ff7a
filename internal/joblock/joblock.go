package joblock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"mewai/internal/services"
)

const lockSuffix = ".lock"

// Lock is a held per-job lock.
type Lock struct {
	jobID string
	path  string
	lock  *flock.Flock
}

// Acquire takes the lock for jobID inside dir without blocking.
func Acquire(dir, jobID string) (*Lock, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, services.Wrap(services.ErrValidation, "joblock", "acquire", "job id is required", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := Path(dir, jobID)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrAlreadyRunning, "joblock", "acquire",
			fmt.Sprintf("job %s is already being tracked by another process", jobID), nil)
	}
	return &Lock{jobID: jobID, path: path, lock: fl}, nil
}

// Path returns the lock file used for jobID.
func Path(dir, jobID string) string {
	return filepath.Join(dir, sanitize(jobID)+lockSuffix)
}

// Held reports whether another holder currently owns the lock for jobID.
func Held(dir, jobID string) (bool, error) {
	fl := flock.New(Path(dir, jobID))
	ok, err := fl.TryLock()
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("probe lock: %w", err)
	}
	if ok {
		_ = fl.Unlock()
		return false, nil
	}
	return true, nil
}

// JobID returns the locked job id.
func (l *Lock) JobID() string {
	if l == nil {
		return ""
	}
	return l.jobID
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks and removes the lock file. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if !l.lock.Locked() {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	_ = os.Remove(l.path)
	return nil
}

func sanitize(jobID string) string {
	var b strings.Builder
	b.Grow(len(jobID))
	for _, r := range jobID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" || strings.Trim(out, ".") == "" {
		return "job"
	}
	return out
}
