package cli

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ded/internal/config"
	"github.com/hupe1980/ded/internal/logging"
	"github.com/hupe1980/ded/internal/manifest"
	"github.com/hupe1980/ded/internal/output"
	"github.com/hupe1980/ded/internal/watch"
)

type watchOptions struct {
	dedupeOptions

	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Deduplicate a manifest file whenever it changes",
		Long: `Watch deduplicates --input into --output once, then again every
time the input file changes, for example while iterating on
"helm template ... > rendered.yaml".

Changes are debounced to avoid rapid reruns. Each run prints one
status line to stderr. A failing run leaves the previous output in
place.`,
		Example: `  ded watch --input rendered.yaml --output deduped.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
	}

	registerKeyFlag(cmd)
	registerInputFlag(cmd, &opts.input)
	registerOutputFlag(cmd, &opts.output, "output file (required)")

	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultOptions().Debounce, "quiet period before rerunning")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions) error {
	if opts.input == "" || opts.input == "-" {
		return &ExitError{Code: 2, Err: fmt.Errorf("--input is required: watch needs a file")}
	}

	if opts.output == "" || opts.output == output.Stdout {
		return &ExitError{Code: 2, Err: fmt.Errorf("--output is required: watch writes to a file")}
	}

	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)
	writer := output.NewFileWriter(opts.output, output.WithLogger(logger), output.KeepPermissions(opts.output))

	watchOpts := watch.DefaultOptions()
	watchOpts.Input = opts.input
	watchOpts.Debounce = opts.debounce
	watchOpts.Logger = logger
	watchOpts.Out = cmd.ErrOrStderr()

	runFn := func(ctx context.Context) (*watch.RunResult, error) {
		res, err := dedupeInput(ctx, nil, opts.input, cfg.Keys)
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		if err := manifest.Encode(&buf, res.Documents()); err != nil {
			return nil, err
		}

		if err := writer.Write(buf.Bytes()); err != nil {
			return nil, err
		}

		return &watch.RunResult{
			Documents:  res.Total,
			Unique:     res.Total - res.Dropped,
			Dropped:    res.Dropped,
			OutputPath: writer.Path(),
		}, nil
	}

	if err := watch.Run(ctx, watchOpts, runFn); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	return nil
}
