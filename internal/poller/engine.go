package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"mewai/internal/generation"
	"mewai/internal/logging"
	"mewai/internal/services"
)

// DefaultInterval is the cadence used when none is configured.
const DefaultInterval = 2 * time.Second

// Fetcher retrieves one status snapshot.
type Fetcher interface {
	Status(ctx context.Context, id string) (generation.Snapshot, error)
}

// Callbacks receive polling events. Nil callbacks are skipped. Callbacks run
// on the engine goroutine and may call Handle.Cancel, but must not call
// Handle.Stop.
type Callbacks struct {
	OnSnapshot   func(generation.Snapshot)
	OnTerminal   func(generation.Snapshot)
	OnFatalError func(error)
}

// Engine starts polling loops against a Fetcher.
type Engine struct {
	fetcher   Fetcher
	interval  time.Duration
	immediate bool
	logger    *slog.Logger
}

// Option customizes the engine.
type Option func(*Engine)

// WithInterval sets the poll cadence. Non-positive values keep the default.
func WithInterval(interval time.Duration) Option {
	return func(e *Engine) {
		if interval > 0 {
			e.interval = interval
		}
	}
}

// WithImmediateFirstPoll issues the first request right away instead of
// waiting one interval.
func WithImmediateFirstPoll(enabled bool) Option {
	return func(e *Engine) {
		e.immediate = enabled
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New constructs an engine.
func New(fetcher Fetcher, opts ...Option) *Engine {
	e := &Engine{fetcher: fetcher, interval: DefaultInterval}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "poller")
	return e
}

// Interval returns the configured cadence.
func (e *Engine) Interval() time.Duration {
	return e.interval
}

// Handle controls one polling loop.
type Handle struct {
	id        string
	cancel    context.CancelFunc
	cancelled atomic.Bool
	once      sync.Once
	done      chan struct{}
	polls     atomic.Int64
}

// Start begins polling id until a terminal snapshot, a fetch error, ctx
// cancellation, or Handle.Cancel.
func (e *Engine) Start(ctx context.Context, id string, cb Callbacks) *Handle {
	ctx, cancel := context.WithCancel(services.WithJobID(ctx, id))
	h := &Handle{id: id, cancel: cancel, done: make(chan struct{})}
	go e.run(ctx, h, cb)
	return h
}

func (e *Engine) run(ctx context.Context, h *Handle, cb Callbacks) {
	defer close(h.done)
	defer h.cancel()

	logger := logging.WithContext(ctx, e.logger)
	logger.Debug("polling started", logging.Duration("interval", e.interval))

	if e.immediate && e.poll(ctx, h, cb, logger) {
		return
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("polling cancelled", logging.Int64("polls", h.polls.Load()))
			return
		case <-ticker.C:
			if e.poll(ctx, h, cb, logger) {
				return
			}
			// Drop any tick that fired while the request was outstanding.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

// poll performs one fetch and dispatches callbacks. It reports whether the
// loop should stop.
func (e *Engine) poll(ctx context.Context, h *Handle, cb Callbacks, logger *slog.Logger) bool {
	if h.stopped(ctx) {
		return true
	}
	h.polls.Add(1)
	snapshot, err := e.fetcher.Status(ctx, h.id)
	if h.stopped(ctx) {
		return true
	}
	if err != nil {
		logging.WarnWithContext(logger, "status poll failed", "poll_failed",
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, "check service availability and start a new job"),
			logging.Error(err),
		)
		if cb.OnFatalError != nil {
			cb.OnFatalError(err)
		}
		return true
	}

	if cb.OnSnapshot != nil {
		cb.OnSnapshot(snapshot)
	}
	if !snapshot.Status.IsTerminal() {
		return false
	}
	if h.stopped(ctx) {
		return true
	}
	logger.Debug("terminal snapshot", logging.String("status", string(snapshot.Status)), logging.Int64("polls", h.polls.Load()))
	if cb.OnTerminal != nil {
		cb.OnTerminal(snapshot)
	}
	return true
}

func (h *Handle) stopped(ctx context.Context) bool {
	return h.cancelled.Load() || ctx.Err() != nil
}

// ID returns the polled job id.
func (h *Handle) ID() string {
	if h == nil {
		return ""
	}
	return h.id
}

// Cancel stops future ticks and drops the result of an in-flight request
// that has not yet been dispatched. A callback already running on the
// polling goroutine may still complete; use Stop to wait until no callback
// can fire. Cancel does not block and is safe to call repeatedly, after
// natural termination, or from inside a callback.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.cancelled.Store(true)
		h.cancel()
	})
}

// Done is closed when the polling goroutine exits.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Stop cancels polling and waits for the goroutine to exit. Once it returns
// no further callback will run. Calling Stop from inside a callback deadlocks.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.Cancel()
	<-h.done
}

// Cancelled reports whether Cancel was called.
func (h *Handle) Cancelled() bool {
	return h != nil && h.cancelled.Load()
}

// Polls returns the number of status requests issued so far.
func (h *Handle) Polls() int64 {
	if h == nil {
		return 0
	}
	return h.polls.Load()
}
