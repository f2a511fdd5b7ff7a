package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mewai/internal/generation"
	"mewai/internal/logging"
	"mewai/internal/services"
)

func newResultCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "result <job-id>",
		Short: "Show the generated content of a finished job",
		Long: `Fetch a job and print its blog post, social media posts, and image links.

When the service no longer knows the job, the local history archive is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			result, err := lookupResult(cmd, ctx, id)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			return renderResult(out, result, shouldColorize(out))
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the result payload as JSON")
	return cmd
}

func lookupResult(cmd *cobra.Command, ctx *commandContext, id string) (*generation.Result, error) {
	client, err := ctx.client()
	if err != nil {
		return nil, err
	}
	requestCtx, stop := signalContext(cmd)
	defer stop()

	snapshot, err := client.Status(requestCtx, id)
	switch {
	case err == nil:
		if snapshot.Status != generation.StatusCompleted || snapshot.Result.IsEmpty() {
			return nil, errNoResult
		}
		return snapshot.Result, nil
	case errors.Is(err, services.ErrNotFound):
		result, archived := archivedResult(ctx, id)
		if archived {
			return result, nil
		}
		return nil, errNoResult
	default:
		return nil, fmt.Errorf("fetch result: %w", err)
	}
}

func archivedResult(ctx *commandContext, id string) (*generation.Result, bool) {
	store, err := ctx.historyStore()
	if err != nil {
		return nil, false
	}
	defer ctx.close()

	rec, err := store.Get(context.Background(), id)
	if err != nil {
		ctx.log().Warn("history lookup failed", logging.String(logging.FieldJobID, id), logging.Error(err))
		return nil, false
	}
	if rec == nil || rec.Result.IsEmpty() {
		return nil, false
	}
	return rec.Result, true
}
