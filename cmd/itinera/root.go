package main

import (
	"github.com/spf13/cobra"

	"github.com/leofalp/itinera/internal/config"
	"github.com/leofalp/itinera/providers/observability/slogobs"
)

// version is set at build time via -ldflags.
var version = "dev"

// rootOptions is shared by every subcommand; it is filled in by the
// persistent pre-run hook before any RunE executes.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg      config.Config
	observer *slogobs.Observer
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "itinera",
		Short: "Extract validated JSON documents from language-model output",
		Long: "itinera recovers a JSON object from unreliable generator text (code fences,\n" +
			"surrounding prose, trailing commas, bare keys), checks required top-level\n" +
			"fields, and replays recorded responses through a bounded retry session.",
		Version:       version,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", "", "Log format: compact or json")

	cmd.AddCommand(newExtractCmd(opts))
	cmd.AddCommand(newReplayCmd(opts))
	return cmd
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	o.cfg = cfg
	o.observer = slogobs.New(
		slogobs.WithLevel(slogobs.ParseLogLevel(cfg.Log.Level)),
		slogobs.WithFormat(slogobs.ParseFormat(cfg.Log.Format)),
		slogobs.WithOutput(cmd.ErrOrStderr()),
	)
	return nil
}

// requiredFields returns the --require flag when set, else the configured set.
func (o *rootOptions) requiredFields(cmd *cobra.Command, flagValue []string) []string {
	if cmd.Flags().Changed("require") {
		var out []string
		for _, v := range flagValue {
			out = append(out, config.SplitList(v)...)
		}
		return out
	}
	return o.cfg.Required
}
