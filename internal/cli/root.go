// Package cli implements the cobra command tree for ded.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ded/internal/config"
	"github.com/hupe1980/ded/internal/logging"
	"github.com/hupe1980/ded/internal/version"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error

	// Reported is set when the command already wrote its own diagnostics
	// to stderr, so Execute must not print the error again.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if !exitErr.Reported {
				_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr)
			}

			return exitErr.Code
		}

		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return 1
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached. The root command itself is the post-renderer.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	opts := &dedupeOptions{}

	cmd := &cobra.Command{
		Use:   "ded",
		Short: "Helm dependency deduplication post-renderer",
		Long: `ded collects all pre-rendered manifests from Helm and post-renders
only those unique amongst them.

Uniqueness is determined by the values of one or more YAML keys
(default: kind and metadata.name). Every key must exist in every
supplied document; a document missing a key aborts the run and
nothing is written.

Invoke as --post-renderer during helm install/upgrade/template.`,
		Example: `  helm install my-release ./chart --post-renderer ded

  # Deduplicate by namespace instead of kind and name:
  helm template ./chart --post-renderer ded \
    --post-renderer-args --key --post-renderer-args metadata.namespace

  # Run on a file:
  ded --key kind --key metadata.name < manifests.yaml`,
		Version:       version.GetInfo().String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			logger := logging.Setup(cfg, cmd.ErrOrStderr())

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
				slog.Any("keys", cfg.Keys),
				slog.String("configFile", cfg.ConfigFile),
			)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDedupe(cmd, opts)
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .ded.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	registerKeyFlag(cmd)
	registerInputFlag(cmd, &opts.input)
	registerOutputFlag(cmd, &opts.output, "output file (default: stdout)")

	cmd.SetVersionTemplate("{{.Version}}\n")

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	cmd.AddCommand(
		newDuplicatesCommand(),
		newWatchCommand(),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd
}
