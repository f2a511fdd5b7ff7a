package main

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"mewai/internal/joblock"
	"mewai/internal/logging"
	"mewai/internal/stages"
	"mewai/internal/tracker"
)

// progressPrinter renders tracker transitions as one line per visible change.
type progressPrinter struct {
	out      io.Writer
	colorize bool

	mu          sync.Mutex
	started     bool
	lastLine    string
	lastJobID   string
	lastStageID string
}

func newProgressPrinter(out io.Writer, colorize bool) *progressPrinter {
	return &progressPrinter{out: out, colorize: colorize}
}

func (p *progressPrinter) Observe(state tracker.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if state.JobID != "" && state.JobID != p.lastJobID {
		p.lastJobID = state.JobID
		fmt.Fprintln(p.out, renderStatusLine("Job", statusInfo, state.JobID, p.colorize))
	}
	if state.Lifecycle == tracker.LifecycleStarting && !p.started {
		p.started = true
		fmt.Fprintln(p.out, renderStatusLine("Submitting", statusInfo, state.Topic, p.colorize))
		return
	}
	if state.Lifecycle == tracker.LifecycleIdle {
		return
	}

	if active, ok := stages.Active(state.Stages); ok && active.ID != p.lastStageID && state.Lifecycle == tracker.LifecyclePolling {
		p.lastStageID = active.ID
		fmt.Fprintln(p.out, renderStatusLine("Stage", statusWarn, active.Label, p.colorize))
	}

	line := renderProgressLine(state)
	if line == p.lastLine {
		return
	}
	p.lastLine = line
	if p.colorize {
		line = statusKindColor(lifecycleKind(state.Lifecycle)) + line + ansiReset
	}
	fmt.Fprintln(p.out, statusIndent+line)
}

// lockObserver takes the per-job lock as soon as the tracker learns the job id.
type lockObserver struct {
	dir    string
	logger *slog.Logger

	mu     sync.Mutex
	lock   *joblock.Lock
	failed string
}

func newLockObserver(dir string, logger *slog.Logger) *lockObserver {
	return &lockObserver{dir: dir, logger: logger}
}

func (l *lockObserver) Observe(state tracker.State) {
	if state.JobID == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if (l.lock != nil && l.lock.JobID() == state.JobID) || l.failed == state.JobID {
		return
	}
	lock, err := joblock.Acquire(l.dir, state.JobID)
	if err != nil {
		l.failed = state.JobID
		logging.WarnWithContext(l.logger, "job lock unavailable", "job_lock_failed",
			logging.String(logging.FieldJobID, state.JobID),
			logging.String(logging.FieldErrorHint, "another mewai process may be watching this job"),
			logging.Error(err),
		)
		return
	}
	if l.lock != nil {
		_ = l.lock.Release()
	}
	l.lock = lock
}

// adopt records a lock acquired before tracking began.
func (l *lockObserver) adopt(lock *joblock.Lock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lock = lock
}

func (l *lockObserver) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lock != nil {
		_ = l.lock.Release()
		l.lock = nil
	}
}
