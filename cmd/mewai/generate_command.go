package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mewai/internal/generation"
)

type generateOptions struct {
	topic     string
	platforms []string
	tone      string
	length    string
	images    bool
	noImages  bool
	jsonOut   bool
	detach    bool
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate [topic...]",
		Short: "Submit a generation job and follow it to completion",
		Long: `Submit a topic to the generation service, show stage progress while the
job runs, and print the generated content when it completes.

Unset flags fall back to the [defaults] section of the configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.settings(ctx, cmd, args)
			if err != nil {
				return err
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			session, err := ctx.newTrackSession(cmd, opts.jsonOut)
			if err != nil {
				return err
			}
			defer ctx.close()
			defer session.close()
			if session.recorder != nil {
				session.recorder.SetSettings(settings)
			}

			startCtx, stop := signalContext(cmd)
			err = session.tracker.Start(startCtx, settings)
			stop()
			if err != nil {
				return fmt.Errorf("start generation: %w", err)
			}

			if opts.detach {
				state := session.tracker.State()
				if opts.jsonOut {
					return writeJSON(cmd, state)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Started job %s; follow it with `mewai watch %s`\n", state.JobID, state.JobID)
				return nil
			}

			final, waitErr := session.wait(cmd)
			return finishTracking(cmd, final, waitErr, opts.jsonOut)
		},
	}

	cmd.Flags().StringVarP(&opts.topic, "topic", "t", "", "Topic to write about (alternatively pass it as arguments)")
	cmd.Flags().StringSliceVarP(&opts.platforms, "platform", "p", nil, "Target platform (repeatable): blog, instagram, twitter, linkedin")
	cmd.Flags().StringVar(&opts.tone, "tone", "", "Tone: formal, casual, technical")
	cmd.Flags().StringVar(&opts.length, "length", "", "Length: short, medium, long")
	cmd.Flags().BoolVar(&opts.images, "images", false, "Generate images")
	cmd.Flags().BoolVar(&opts.noImages, "no-images", false, "Skip image generation")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Output the final tracker state as JSON")
	cmd.Flags().BoolVar(&opts.detach, "detach", false, "Return after the job is accepted instead of following it")
	cmd.MarkFlagsMutuallyExclusive("images", "no-images")
	return cmd
}

func (o generateOptions) settings(ctx *commandContext, cmd *cobra.Command, args []string) (generation.Settings, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return generation.Settings{}, err
	}

	topic := strings.TrimSpace(o.topic)
	if positional := strings.TrimSpace(strings.Join(args, " ")); positional != "" {
		if topic != "" {
			return generation.Settings{}, errors.New("provide the topic either with --topic or as arguments, not both")
		}
		topic = positional
	}

	platforms := cfg.Defaults.Platforms
	if len(o.platforms) > 0 {
		platforms = o.platforms
	}
	tone := cfg.Defaults.Tone
	if cmd.Flags().Changed("tone") {
		tone = o.tone
	}
	length := cfg.Defaults.Length
	if cmd.Flags().Changed("length") {
		length = o.length
	}
	images := cfg.Defaults.GenerateImages
	switch {
	case o.images:
		images = true
	case o.noImages:
		images = false
	}

	return generation.NewSettings(topic, platforms, tone, length, images), nil
}
