package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leofalp/itinera/core/extract"
	"github.com/leofalp/itinera/internal/utils"
)

type extractFlags struct {
	require     []string
	parallel    int
	tokenRepair bool
}

// inputResult is one line of extract output.
type inputResult struct {
	Input  string         `json:"input"`
	Result extract.Result `json:"result"`
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	flags := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract [file...]",
		Short: "Extract a document from each input and print one JSON result per line",
		Long: "Reads each file (or stdin when no file or '-' is given), runs the extraction\n" +
			"pipeline and prints {\"input\": ..., \"result\": ...} per input, in input order.\n" +
			"Exits non-zero when any input fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, flags, args)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&flags.require, "require", nil, "Required top-level fields (repeatable or comma separated)")
	f.IntVar(&flags.parallel, "parallel", 0, "Maximum inputs processed concurrently")
	f.BoolVar(&flags.tokenRepair, "token-repair", false, "Enable the tokenizer-backed repair stage")
	return cmd
}

func runExtract(cmd *cobra.Command, root *rootOptions, flags *extractFlags, args []string) error {
	cfg := root.cfg
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = flags.parallel
	}
	if cmd.Flags().Changed("token-repair") {
		cfg.TokenRepair = flags.tokenRepair
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	required := root.requiredFields(cmd, flags.require)
	cmd.SilenceUsage = true

	if len(args) == 0 {
		args = []string{"-"}
	}

	extractor := extract.New(append(cfg.ExtractOptions(), extract.WithObserver(root.observer))...)
	results := make([]extract.Result, len(args))

	stdin := stdinReader(cmd.InOrStdin())
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Parallel)
	for i, name := range args {
		i, name := i, name
		g.Go(func() error {
			raw, err := readInput(stdin, name)
			if err != nil {
				return err
			}
			results[i] = extractor.Extract(ctx, raw, required...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	out := cmd.OutOrStdout()
	for i, result := range results {
		if !result.OK() {
			failed++
		}
		fmt.Fprintln(out, utils.JSONToString(inputResult{Input: args[i], Result: result}))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs did not yield a valid document", failed, len(args))
	}
	return nil
}

// stdinReader reads r once, on first use; every later call, from any
// goroutine, gets the same text. Repeating "-" therefore repeats the input.
func stdinReader(r io.Reader) func() (string, error) {
	return sync.OnceValues(func() (string, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	})
}

func readInput(stdin func() (string, error), name string) (string, error) {
	if name == "-" {
		return stdin()
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}
