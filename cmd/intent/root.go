package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reoring/intent/internal/config"
)

// app carries the streams and settings shared by every command.
type app struct {
	in  io.Reader
	out io.Writer
	err io.Writer

	cfg *config.Config
	log *slog.Logger

	envFile  string
	logLevel string
	output   string
	base64   bool
}

func newApp(in io.Reader, out, errw io.Writer) *app {
	cfg := config.Default()
	return &app{in: in, out: out, err: errw, cfg: cfg, log: cfg.Logger(errw)}
}

// setup loads configuration and applies flag overrides.
func (a *app) setup() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(a.logLevel)); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	if a.output != "" {
		out, err := config.ParseOutput(a.output)
		if err != nil {
			return fmt.Errorf("--output: %w", err)
		}
		cfg.Output = out
	}
	a.cfg = cfg
	a.log = cfg.Logger(a.err)
	return nil
}

func newRootCommand(a *app, version, commit, date string) *cobra.Command {
	root := &cobra.Command{
		Use:   "intent",
		Short: "Inspect, convert and merge descriptors",
		Long: `intent converts descriptors between their YAML/JSON document form, the
canonical URI form and the binary record form, and runs the merge and
filter-equivalence operations on them.

Inputs are auto-detected unless --from is given.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.err)

	pf := root.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", "", "dotenv file to load (default $INTENT_ENV_FILE or .env)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (default $INTENT_LOG_LEVEL)")
	pf.StringVarP(&a.output, "output", "o", "", "uri, yaml, json or binary (default $INTENT_OUTPUT)")
	pf.BoolVar(&a.base64, "base64", false, "wrap binary output in base64")

	root.AddCommand(
		newEncodeCommand(a),
		newDecodeCommand(a),
		newFillInCommand(a),
		newFilterCommand(a),
		newResolveCommand(a),
	)
	return root
}
