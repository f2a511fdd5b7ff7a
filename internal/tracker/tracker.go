package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"mewai/internal/generation"
	"mewai/internal/logging"
	"mewai/internal/poller"
	"mewai/internal/services"
	"mewai/internal/stages"
)

var (
	// ErrClosed is returned by operations on a closed tracker.
	ErrClosed = errors.New("tracker closed")
	// ErrIdle is returned by Wait when no job has been started.
	ErrIdle = errors.New("no job tracked")
)

// Client is the remote job client the tracker drives.
type Client interface {
	Start(ctx context.Context, settings generation.Settings) (generation.Handle, error)
	Status(ctx context.Context, id string) (generation.Snapshot, error)
}

// Observer receives a copy of the state after every transition. Copies are
// delivered in transition order, one observer call at a time, without any
// tracker lock held.
type Observer func(State)

// Tracker follows one remote job at a time.
type Tracker struct {
	client     Client
	engine     *poller.Engine
	stageCount int
	logger     *slog.Logger
	now        func() time.Time

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu         sync.Mutex
	observers  []Observer
	pending    []notification
	delivering bool
	closeDone  chan struct{}
	state      State
	generation uint64
	handle     *poller.Handle
	done       chan struct{}
	finished   bool
	err        error
	closed     bool
	sampler    *logging.ProgressSampler
}

// Option customizes the tracker.
type Option func(*config)

type config struct {
	stageCount int
	logger     *slog.Logger
	observers  []Observer
	pollOpts   []poller.Option
	now        func() time.Time
}

// WithStageCount sets the number of client-side stages.
func WithStageCount(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.stageCount = n
		}
	}
}

// WithPollInterval sets the status polling cadence.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollOpts = append(c.pollOpts, poller.WithInterval(d))
	}
}

// WithImmediateFirstPoll polls as soon as a job is started or attached.
func WithImmediateFirstPoll(enabled bool) Option {
	return func(c *config) {
		c.pollOpts = append(c.pollOpts, poller.WithImmediateFirstPoll(enabled))
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithObserver registers an observer.
func WithObserver(obs Observer) Option {
	return func(c *config) {
		if obs != nil {
			c.observers = append(c.observers, obs)
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// New constructs an idle tracker.
func New(client Client, opts ...Option) *Tracker {
	cfg := config{stageCount: stages.DefaultCount, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := logging.NewComponentLogger(cfg.logger, "tracker")
	pollOpts := append([]poller.Option{poller.WithLogger(cfg.logger)}, cfg.pollOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		client:     client,
		engine:     poller.New(client, pollOpts...),
		stageCount: cfg.stageCount,
		logger:     logger,
		now:        cfg.now,
		baseCtx:    ctx,
		baseCancel: cancel,
		observers:  cfg.observers,
		state: State{
			Lifecycle: LifecycleIdle,
			Stages:    stages.Initial(cfg.stageCount),
		},
		sampler: logging.NewProgressSampler(0),
	}
}

// Subscribe registers an observer after construction.
func (t *Tracker) Subscribe(obs Observer) {
	if obs == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, obs)
}

// State returns a copy of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// Start submits settings and begins polling the created job. It fails with
// services.ErrAlreadyRunning while another job is starting or polling. Any
// other failure moves the tracker to the error lifecycle and is returned.
func (t *Tracker) Start(ctx context.Context, settings generation.Settings) error {
	settings = settings.Clone()

	t.mu.Lock()
	if err := t.beginLocked(settings.Topic); err != nil {
		t.mu.Unlock()
		return err
	}
	gen := t.generation
	t.transitionLocked(LifecycleStarting)
	t.logger.Info("starting generation job", logging.String("topic", settings.Topic), logging.Any("platforms", settings.Platforms))

	if err := settings.Validate(); err != nil {
		t.failLocked(err)
		t.unlockAndNotify()
		return err
	}
	t.unlockAndNotify()

	handle, err := t.client.Start(ctx, settings)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if gen != t.generation {
		t.mu.Unlock()
		return fmt.Errorf("tracker: start superseded: %w", context.Canceled)
	}
	if err != nil {
		t.failLocked(err)
		t.unlockAndNotify()
		return err
	}
	if handle.Message != "" {
		t.state.Message = handle.Message
	}
	t.state.RemoteStatus = handle.Status
	t.beginPollingLocked(handle.ID)
	t.unlockAndNotify()
	return nil
}

// Attach begins polling a job that was started elsewhere. The starting
// lifecycle is skipped.
func (t *Tracker) Attach(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return services.Wrap(services.ErrValidation, "tracker", "attach", "job id required", nil)
	}
	t.mu.Lock()
	if err := t.beginLocked(""); err != nil {
		t.mu.Unlock()
		return err
	}
	t.logger.Info("attaching to generation job", logging.String(logging.FieldJobID, id))
	t.beginPollingLocked(id)
	t.unlockAndNotify()
	return nil
}

// Wait blocks until the current job reaches a terminal lifecycle or ctx ends.
// It returns the final state and, for the error lifecycle, the cause.
func (t *Tracker) Wait(ctx context.Context) (State, error) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done == nil {
		return t.State(), ErrIdle
	}
	select {
	case <-done:
	case <-ctx.Done():
		return t.State(), ctx.Err()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone(), t.err
}

// Close cancels any active polling and releases waiters. Callbacks that are
// still in flight are ignored. Close is idempotent.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.generation++
	if t.handle != nil {
		t.handle.Cancel()
		t.handle = nil
	}
	t.baseCancel()
	if !t.finished && t.done != nil {
		t.finished = true
		t.err = ErrClosed
		close(t.done)
	}
	t.logger.Debug("tracker closed")
}

// beginLocked opens a new generation and resets the state.
func (t *Tracker) beginLocked(topic string) error {
	if t.closed {
		return ErrClosed
	}
	if t.state.Lifecycle.IsActive() {
		return services.Wrap(services.ErrAlreadyRunning, "tracker", "start",
			fmt.Sprintf("job %s is %s", displayID(t.state.JobID), t.state.Lifecycle), nil)
	}
	t.generation++
	if t.handle != nil {
		t.handle.Cancel()
		t.handle = nil
	}
	now := t.now()
	t.state = State{
		Lifecycle:  LifecycleIdle,
		Topic:      topic,
		Stages:     stages.Initial(t.stageCount),
		Generation: t.generation,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	t.done = make(chan struct{})
	t.finished = false
	t.err = nil
	t.sampler.Reset()
	return nil
}

func (t *Tracker) beginPollingLocked(id string) {
	gen := t.generation
	t.transitionLocked(LifecyclePolling)
	t.state.JobID = id
	t.handle = t.engine.Start(t.baseCtx, id, poller.Callbacks{
		OnSnapshot:   func(s generation.Snapshot) { t.onSnapshot(gen, s) },
		OnTerminal:   func(s generation.Snapshot) { t.onTerminal(gen, s) },
		OnFatalError: func(err error) { t.onFatalError(gen, err) },
	})
	t.logger.Info("polling generation job", logging.String(logging.FieldJobID, id))
}

// current locks mu and reports whether gen is still the live generation. On
// false the lock is released.
func (t *Tracker) current(gen uint64) bool {
	t.mu.Lock()
	if t.closed || gen != t.generation || t.state.Lifecycle != LifecyclePolling {
		t.mu.Unlock()
		return false
	}
	return true
}

func (t *Tracker) onSnapshot(gen uint64, s generation.Snapshot) {
	if !t.current(gen) {
		return
	}
	mapped := s
	if s.Status == generation.StatusCompleted && s.Result.IsEmpty() {
		// Reported as completed but nothing was delivered: the stages
		// fail where the job stood before this snapshot.
		mapped.Status = generation.StatusError
		mapped.Progress = t.state.Progress
	} else {
		t.state.Progress = max(t.state.Progress, s.ClampedProgress())
		mapped.Progress = t.state.Progress
	}
	t.state.RemoteStatus = s.Status
	t.state.Stages = stages.Map(mapped, t.state.Stages, t.stageCount)
	if s.Message != "" {
		t.state.Message = s.Message
	}
	if t.state.Topic == "" && s.Topic != "" {
		t.state.Topic = s.Topic
	}
	t.state.UpdatedAt = t.now()

	stage := ""
	if active, ok := stages.Active(t.state.Stages); ok {
		stage = active.ID
	}
	if t.sampler.ShouldLog(t.state.Progress, stage) {
		t.logger.Info("generation progress",
			logging.String(logging.FieldJobID, t.state.JobID),
			logging.Int(logging.FieldProgress, t.state.Progress),
			logging.String(logging.FieldStage, stage),
			logging.String("status", string(s.Status)),
		)
	}
	t.unlockAndNotify()
}

func (t *Tracker) onTerminal(gen uint64, s generation.Snapshot) {
	if !t.current(gen) {
		return
	}
	switch {
	case s.Status == generation.StatusCompleted && s.Result.IsEmpty():
		t.failLocked(services.Wrap(services.ErrMissingResult, "tracker", "complete",
			fmt.Sprintf("job %s completed without content", s.ID), nil))
	case s.Status == generation.StatusCompleted:
		t.state.Result = s.Result.Clone()
		t.state.Stages = stages.Map(s, t.state.Stages, t.stageCount)
		t.transitionLocked(LifecycleCompleted)
		t.finishLocked(nil)
		t.logger.Info("generation completed",
			logging.String(logging.FieldJobID, t.state.JobID),
			logging.Duration("elapsed", t.state.UpdatedAt.Sub(t.state.StartedAt)),
		)
	default:
		t.failLocked(&services.RemoteJobError{JobID: s.ID, Message: s.Message})
	}
	t.unlockAndNotify()
}

func (t *Tracker) onFatalError(gen uint64, err error) {
	if !t.current(gen) {
		return
	}
	t.failLocked(err)
	t.unlockAndNotify()
}

// failLocked moves the state to error and records err as the terminal cause.
func (t *Tracker) failLocked(err error) {
	if t.state.Lifecycle == LifecyclePolling {
		t.state.Stages = stages.Map(generation.Snapshot{Status: generation.StatusError, Progress: t.state.Progress}, t.state.Stages, t.stageCount)
	}
	t.state.ErrorMessage = services.UserMessage(err)
	t.state.ErrorKind = services.Kind(err)
	t.transitionLocked(LifecycleError)
	t.finishLocked(err)
	logging.WarnWithContext(t.logger, "generation failed", "job_failed",
		logging.String(logging.FieldJobID, t.state.JobID),
		logging.String(logging.FieldErrorKind, t.state.ErrorKind),
		logging.String(logging.FieldErrorHint, errorHint(err)),
		logging.Error(err),
	)
}

func (t *Tracker) transitionLocked(to Lifecycle) {
	from := t.state.Lifecycle
	if from != to && !isValidTransition(from, to) {
		t.logger.Debug("unexpected lifecycle transition",
			logging.String("from", string(from)),
			logging.String("to", string(to)),
		)
	}
	t.state.Lifecycle = to
	t.state.UpdatedAt = t.now()
}

// finishLocked records the terminal cause. The done channel is closed once
// observers have seen the terminal state.
func (t *Tracker) finishLocked(err error) {
	t.handle = nil
	if t.finished {
		return
	}
	t.finished = true
	t.err = err
	t.closeDone = t.done
}

type notification struct {
	state State
	done  chan struct{}
}

// unlockAndNotify queues a copy of the state for observers and releases mu.
// Whichever goroutine finds the queue idle drains it, so delivery order
// matches mutation order even when callbacks race.
func (t *Tracker) unlockAndNotify() {
	done := t.closeDone
	t.closeDone = nil
	if len(t.observers) == 0 {
		t.mu.Unlock()
		if done != nil {
			close(done)
		}
		return
	}
	t.pending = append(t.pending, notification{state: t.state.Clone(), done: done})
	if t.delivering {
		t.mu.Unlock()
		return
	}
	t.delivering = true
	for len(t.pending) > 0 {
		batch := t.pending
		t.pending = nil
		observers := t.observers
		t.mu.Unlock()
		for _, n := range batch {
			for _, obs := range observers {
				obs(n.state)
			}
			if n.done != nil {
				close(n.done)
			}
		}
		t.mu.Lock()
	}
	t.delivering = false
	t.mu.Unlock()
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, services.ErrTransport):
		return "check that the generation service is reachable, then start a new job"
	case errors.Is(err, services.ErrNotFound):
		return "the service no longer knows this job id; start a new job"
	case errors.Is(err, services.ErrValidation):
		return "correct the job settings and start again"
	case errors.Is(err, services.ErrMissingResult):
		return "the service reported completion without content; start a new job"
	default:
		return "inspect the service logs for the failed job"
	}
}

func displayID(id string) string {
	if id == "" {
		return "(pending)"
	}
	return id
}
