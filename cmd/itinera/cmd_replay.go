package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leofalp/itinera/core/extract"
	"github.com/leofalp/itinera/core/session"
	"github.com/leofalp/itinera/core/session/middleware"
	"github.com/leofalp/itinera/internal/utils"
)

type replayFlags struct {
	require     []string
	maxAttempts int
	backoff     time.Duration
	timeout     time.Duration
	tokenRepair bool
}

func newReplayCmd(root *rootOptions) *cobra.Command {
	flags := &replayFlags{}

	cmd := &cobra.Command{
		Use:   "replay response [response...]",
		Short: "Run a retry session over recorded generator responses",
		Long: "Treats the files as the generator's successive responses: attempt N reads\n" +
			"file N, and an attempt past the last file fails like a transport error.\n" +
			"Corrective instructions for missing fields go to stderr; the final result\n" +
			"is printed to stdout.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, root, flags, args)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&flags.require, "require", nil, "Required top-level fields (repeatable or comma separated)")
	f.IntVar(&flags.maxAttempts, "max-attempts", 0, "Attempt budget for the session")
	f.DurationVar(&flags.backoff, "backoff", 0, "Pause between attempts")
	f.DurationVar(&flags.timeout, "attempt-timeout", 0, "Deadline for each generate call (0 disables)")
	f.BoolVar(&flags.tokenRepair, "token-repair", false, "Enable the tokenizer-backed repair stage")
	return cmd
}

func runReplay(cmd *cobra.Command, root *rootOptions, flags *replayFlags, args []string) error {
	cfg := root.cfg
	if cmd.Flags().Changed("max-attempts") {
		cfg.MaxAttempts = flags.maxAttempts
	}
	if cmd.Flags().Changed("backoff") {
		cfg.Backoff = flags.backoff
	}
	if cmd.Flags().Changed("attempt-timeout") {
		cfg.AttemptTimeout = flags.timeout
	}
	if cmd.Flags().Changed("token-repair") {
		cfg.TokenRepair = flags.tokenRepair
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	required := root.requiredFields(cmd, flags.require)
	cmd.SilenceUsage = true

	stdin := stdinReader(cmd.InOrStdin())
	responses := make([]string, len(args))
	for i, name := range args {
		raw, err := readInput(stdin, name)
		if err != nil {
			return err
		}
		responses[i] = raw
	}

	calls := 0
	generate := func(context.Context) (string, error) {
		calls++
		if calls > len(responses) {
			return "", fmt.Errorf("no recorded response for attempt %d", calls)
		}
		return responses[calls-1], nil
	}
	augment := func(missing []string) {
		fmt.Fprintln(cmd.ErrOrStderr(), session.MissingFieldsInstruction(missing))
	}

	s := session.New(required,
		session.WithMaxAttempts(cfg.MaxAttempts),
		session.WithBackoff(cfg.Backoff),
		session.WithObserver(root.observer),
		session.WithMiddleware(
			middleware.NewTimeoutMiddleware(cfg.AttemptTimeout),
			middleware.NewLoggingMiddleware(root.observer.Logger(), middleware.LogLevelStandard),
		),
		session.WithExtractor(extract.New(append(cfg.ExtractOptions(), extract.WithObserver(root.observer))...)),
	)
	result, err := s.Run(cmd.Context(), generate, augment)
	fmt.Fprintln(cmd.OutOrStdout(), utils.JSONToString(result, true))
	if err != nil {
		return fmt.Errorf("session aborted after %d attempts: %w", s.Attempt(), err)
	}
	if !result.OK() {
		return fmt.Errorf("no valid document after %d attempts: %w", s.Attempt(), result.Err())
	}
	return nil
}
