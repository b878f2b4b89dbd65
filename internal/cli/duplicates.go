package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hupe1980/ded/internal/config"
	"github.com/hupe1980/ded/internal/dedupe"
	"github.com/hupe1980/ded/internal/report"
)

type duplicatesOptions struct {
	input          string
	format         string
	diff           bool
	failOnConflict bool
}

func newDuplicatesCommand() *cobra.Command {
	opts := &duplicatesOptions{}

	cmd := &cobra.Command{
		Use:     "duplicates",
		Aliases: []string{"dups"},
		Short:   "Report which documents deduplication would drop",
		Long: `Duplicates reads a manifest stream like the post-renderer does but,
instead of filtering it, reports every identity that occurs more than
once: which document is kept, which are dropped, and which Helm
template rendered each of them.

A dropped document "differs" when its content (ignoring comments and
formatting) is not equal to the kept one. Use --diff to see how.

Exit codes:
  0  Report written
  1  Error
  2  Invalid arguments
  3  Conflicting duplicates found (with --fail-on-conflict)`,
		Example: `  helm template ./chart | ded duplicates --diff`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDuplicates(cmd, opts)
		},
	}

	registerKeyFlag(cmd)
	registerInputFlag(cmd, &opts.input)

	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "table", "output format: table, json, yaml")
	f.BoolVar(&opts.diff, "diff", false, "show a unified diff for every dropped document that differs")
	f.BoolVar(&opts.failOnConflict, "fail-on-conflict", false, "exit with code 3 when a dropped document differs from the kept one")

	return cmd
}

func runDuplicates(cmd *cobra.Command, opts *duplicatesOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	formatter, err := report.NewFormatter(opts.format, useColor(cmd.OutOrStdout(), cfg))
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	res, err := dedupeInput(ctx, cmd.InOrStdin(), opts.input, cfg.Keys, dedupe.WithDuplicateTracking())
	if err != nil {
		return diagnose(cmd.ErrOrStderr(), err)
	}

	rep, err := report.Build(cfg.Keys, res, report.Options{Diff: opts.diff})
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	if err := formatter.Format(cmd.OutOrStdout(), rep); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("writing report: %w", err)}
	}

	if opts.failOnConflict && rep.HasConflicts() {
		return &ExitError{
			Code: 3,
			Err:  fmt.Errorf("%d dropped document(s) differ from the kept document", rep.Conflicts),
		}
	}

	return nil
}

// useColor enables ANSI colors only for terminals and only when not
// disabled through --no-color.
func useColor(w io.Writer, cfg *config.Config) bool {
	if cfg.NoColor {
		return false
	}

	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
