package main

import (
	"strings"

	"github.com/spf13/cobra"

	"mewai/internal/joblock"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Follow an existing generation job until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			id := strings.TrimSpace(args[0])

			lock, err := joblock.Acquire(cfg.LockDir(), id)
			if err != nil {
				return err
			}

			session, err := ctx.newTrackSession(cmd, jsonOut)
			if err != nil {
				_ = lock.Release()
				return err
			}
			session.locks.adopt(lock)
			defer ctx.close()
			defer session.close()

			if err := session.tracker.Attach(id); err != nil {
				return err
			}
			final, waitErr := session.wait(cmd)
			return finishTracking(cmd, final, waitErr, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the final tracker state as JSON")
	return cmd
}
