package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mewai/internal/history"
	"mewai/internal/tracker"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect the local history of tracked jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsRemoveCommand(ctx))
	jobsCmd.AddCommand(newJobsClearCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var statuses []string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			lifecycles, err := parseLifecycles(statuses)
			if err != nil {
				return err
			}
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			records, err := store.List(cmd.Context(), history.ListOptions{Limit: limit, Lifecycles: lifecycles})
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, records)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No jobs recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderJobsTable(records, time.Now()))

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d total, %d completed, %d failed, %d active\n", stats.Total, stats.Completed, stats.Failed, stats.Active)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show (0 for all)")
	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by lifecycle: starting, polling, completed, error")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one archived job, including its content when finished",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			id := strings.TrimSpace(args[0])
			rec, err := store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("job %s not found in history", id)
			}
			if jsonOut {
				return writeJSON(cmd, rec)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprint(out, renderRecordDetail(rec, colorize))
			if !rec.Result.IsEmpty() {
				fmt.Fprintln(out)
				return renderResult(out, rec.Result, colorize)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newJobsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <job-id>",
		Aliases: []string{"rm"},
		Short:   "Remove one job from the history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			id := strings.TrimSpace(args[0])
			removed, err := store.Remove(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("job %s not found in history", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed job %s\n", id)
			return nil
		},
	}
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove finished jobs from the history",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			var removed int64
			if all {
				removed, err = store.Clear(cmd.Context())
			} else {
				removed, err = store.ClearFinished(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Also remove jobs that never finished")
	return cmd
}

func parseLifecycles(values []string) ([]tracker.Lifecycle, error) {
	var out []tracker.Lifecycle
	for _, raw := range values {
		value := tracker.Lifecycle(strings.ToLower(strings.TrimSpace(raw)))
		switch value {
		case "":
			continue
		case tracker.LifecycleStarting, tracker.LifecyclePolling, tracker.LifecycleCompleted, tracker.LifecycleError:
			out = append(out, value)
		default:
			return nil, fmt.Errorf("unknown status %q", raw)
		}
	}
	return out, nil
}

func renderJobsTable(records []*history.Record, now time.Time) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.JobID,
			truncate(rec.Topic, 40),
			titleLabel(string(rec.Lifecycle)),
			strconv.Itoa(rec.Progress) + "%",
			rec.ActiveStage,
			formatAge(now, rec.UpdatedAt),
		})
	}
	return renderTable([]column{
		{header: "ID"},
		{header: "Topic"},
		{header: "Status"},
		{header: "Progress", right: true},
		{header: "Stage", maxWidth: 24},
		{header: "Updated", right: true},
	}, rows)
}

func renderRecordDetail(rec *history.Record, colorize bool) string {
	var b strings.Builder
	for _, line := range renderSectionHeader("Job "+rec.JobID, colorize) {
		b.WriteString(line + "\n")
	}
	b.WriteString(renderStatusLine("Status", lifecycleKind(rec.Lifecycle), titleLabel(string(rec.Lifecycle)), colorize) + "\n")
	b.WriteString(renderStatusLine("Progress", statusInfo, renderProgressBar(rec.Progress), colorize) + "\n")
	if rec.Topic != "" {
		b.WriteString(renderStatusLine("Topic", statusInfo, rec.Topic, colorize) + "\n")
	}
	if rec.Settings != nil {
		platforms := make([]string, 0, len(rec.Settings.Platforms))
		for _, p := range rec.Settings.Platforms {
			platforms = append(platforms, platformLabel(p))
		}
		b.WriteString(renderStatusLine("Platforms", statusInfo, strings.Join(platforms, ", "), colorize) + "\n")
		b.WriteString(renderStatusLine("Tone / length", statusInfo, fmt.Sprintf("%s / %s", rec.Settings.Tone, rec.Settings.Length), colorize) + "\n")
		b.WriteString(renderStatusLine("Images", statusInfo, yesNo(rec.Settings.GenerateImages), colorize) + "\n")
	}
	if rec.ErrorMessage != "" {
		b.WriteString(renderStatusLine("Error", statusError, fmt.Sprintf("%s (%s)", rec.ErrorMessage, rec.ErrorKind), colorize) + "\n")
	}
	if !rec.CreatedAt.IsZero() {
		b.WriteString(renderStatusLine("Started", statusInfo, rec.CreatedAt.Local().Format(time.DateTime), colorize) + "\n")
	}
	if rec.FinishedAt != nil {
		b.WriteString(renderStatusLine("Finished", statusInfo, rec.FinishedAt.Local().Format(time.DateTime), colorize) + "\n")
	}
	return b.String()
}

func truncate(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-1]) + "…"
}

func formatAge(now, then time.Time) string {
	if then.IsZero() {
		return "-"
	}
	age := now.Sub(then)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}
