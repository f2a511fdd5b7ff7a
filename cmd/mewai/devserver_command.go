package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mewai/internal/devserver"
)

func newDevServerCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var step time.Duration

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a simulated generation service for local development",
		Long: `Serve the generation API with canned progress and content.

Jobs advance one phase per step: pending, 10%, 20/40/60/80%, completed.
Topics containing "fail" finish with a simulated error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(bind) == "" {
				bind = cfg.DevServer.Bind
			}
			var extra []devserver.Option
			if cmd.Flags().Changed("step") {
				extra = append(extra, devserver.WithStep(step))
			}
			server := devserver.NewFromConfig(cfg, ctx.log(), extra...)

			runCtx, stop := signalContext(cmd)
			defer stop()

			addr, err := server.Start(runCtx, bind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Simulated generation service listening on http://%s (Ctrl+C to stop)\n", addr)
			<-runCtx.Done()
			server.Stop()
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped after %d job(s)\n", server.JobCount())
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from [devserver] bind)")
	cmd.Flags().DurationVar(&step, "step", devserver.DefaultStep, "Time spent in each simulated phase (default from [devserver] step_seconds)")
	return cmd
}
