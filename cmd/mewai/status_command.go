package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mewai/internal/generation"
	"mewai/internal/stages"
)

type statusView struct {
	Snapshot generation.Snapshot `json:"snapshot"`
	Stages   []stages.State      `json:"stages"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Fetch the current status of a generation job once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			requestCtx, stop := signalContext(cmd)
			defer stop()

			snapshot, err := client.Status(requestCtx, strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("fetch status: %w", err)
			}
			view := statusView{
				Snapshot: snapshot,
				Stages:   stages.Map(snapshot, nil, cfg.Polling.StageCount),
			}
			if jsonOut {
				return writeJSON(cmd, view)
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderStatusView(view, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func renderStatusView(view statusView, colorize bool) string {
	var b strings.Builder
	snapshot := view.Snapshot
	for _, line := range renderSectionHeader("Job "+snapshot.ID, colorize) {
		b.WriteString(line + "\n")
	}
	b.WriteString(renderStatusLine("Status", remoteStatusKind(snapshot.Status), titleLabel(string(snapshot.Status)), colorize) + "\n")
	b.WriteString(renderStatusLine("Progress", statusInfo, renderProgressBar(snapshot.ClampedProgress()), colorize) + "\n")
	if topic := strings.TrimSpace(snapshot.Topic); topic != "" {
		b.WriteString(renderStatusLine("Topic", statusInfo, topic, colorize) + "\n")
	}
	if msg := strings.TrimSpace(snapshot.Message); msg != "" {
		kind := statusInfo
		if snapshot.Status == generation.StatusError {
			kind = statusError
		}
		b.WriteString(renderStatusLine("Message", kind, msg, colorize) + "\n")
	}
	if snapshot.Status == generation.StatusCompleted {
		ready := "content ready; run `mewai result " + snapshot.ID + "`"
		if snapshot.Result.IsEmpty() {
			ready = "completed without content"
		}
		b.WriteString(renderStatusLine("Result", statusOK, ready, colorize) + "\n")
	}
	b.WriteString(renderStageTable(view.Stages, colorize))
	b.WriteString("\n")
	return b.String()
}

func remoteStatusKind(status generation.Status) statusKind {
	switch status {
	case generation.StatusCompleted:
		return statusOK
	case generation.StatusError:
		return statusError
	case generation.StatusInProgress:
		return statusWarn
	default:
		return statusInfo
	}
}
