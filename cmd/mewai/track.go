package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mewai/internal/history"
	"mewai/internal/logging"
	"mewai/internal/notifications"
	"mewai/internal/services"
	"mewai/internal/tracker"
)

// trackSession wires a tracker with the CLI observers: job lock, progress
// output, history archive, and notifications.
type trackSession struct {
	tracker  *tracker.Tracker
	recorder *history.Recorder
	locks    *lockObserver
}

func (c *commandContext) newTrackSession(cmd *cobra.Command, quiet bool) (*trackSession, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := c.client()
	if err != nil {
		return nil, err
	}
	logger := c.log()

	session := &trackSession{locks: newLockObserver(cfg.LockDir(), logger)}
	opts := []tracker.Option{
		tracker.WithStageCount(cfg.Polling.StageCount),
		tracker.WithPollInterval(cfg.PollInterval()),
		tracker.WithLogger(logger),
		tracker.WithObserver(session.locks.Observe),
	}
	if !quiet {
		out := cmd.OutOrStdout()
		opts = append(opts, tracker.WithObserver(newProgressPrinter(out, shouldColorize(out)).Observe))
	}

	store, err := c.historyStore()
	switch {
	case err == nil:
		session.recorder = history.NewRecorder(store, logger)
		opts = append(opts, tracker.WithObserver(session.recorder.Observe))
	case errors.Is(err, errHistoryDisabled):
	default:
		logging.WarnWithContext(logger, "job history unavailable", "history_unavailable",
			logging.String(logging.FieldErrorHint, "check paths.state_dir permissions or disable [history]"),
			logging.Error(err),
		)
	}

	if cfg.Notifications.NtfyTopic != "" {
		notify := notifications.NewObserver(c.notifier(), cfg.Notifications.Completed, cfg.Notifications.Errors, logger)
		opts = append(opts, tracker.WithObserver(notify.Observe))
	}

	session.tracker = tracker.New(client, opts...)
	return session, nil
}

func (s *trackSession) close() {
	s.tracker.Close()
	s.locks.Release()
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// wait blocks for the terminal state. An interrupt leaves the remote job
// running and prints how to resume following it.
func (s *trackSession) wait(cmd *cobra.Command) (tracker.State, error) {
	ctx, stop := signalContext(cmd)
	defer stop()

	final, err := s.tracker.Wait(ctx)
	if err != nil && ctx.Err() != nil {
		if final.JobID != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Stopped watching; resume with `mewai watch %s`\n", final.JobID)
		}
		return final, context.Canceled
	}
	return final, err
}

// finishTracking renders the terminal state of a tracked job.
func finishTracking(cmd *cobra.Command, final tracker.State, waitErr error, jsonOut bool) error {
	if errors.Is(waitErr, context.Canceled) {
		return waitErr
	}
	if jsonOut {
		if err := writeJSON(cmd, final); err != nil {
			return err
		}
	} else if final.Lifecycle == tracker.LifecycleCompleted {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		if err := renderResult(out, final.Result, shouldColorize(out)); err != nil {
			return err
		}
	}
	if waitErr != nil {
		return fmt.Errorf("generation failed: %s", services.UserMessage(waitErr))
	}
	return nil
}
