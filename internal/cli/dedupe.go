package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ded/internal/config"
	"github.com/hupe1980/ded/internal/dedupe"
	"github.com/hupe1980/ded/internal/logging"
	"github.com/hupe1980/ded/internal/manifest"
	"github.com/hupe1980/ded/internal/output"
)

type dedupeOptions struct {
	input  string
	output string
}

// runDedupe reads the whole stream, and only when every document has an
// identity writes the unique documents in one piece.
func runDedupe(cmd *cobra.Command, opts *dedupeOptions) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	res, err := dedupeInput(ctx, cmd.InOrStdin(), opts.input, config.FromContext(ctx).Keys)
	if err != nil {
		return diagnose(cmd.ErrOrStderr(), err)
	}

	var buf bytes.Buffer
	if err := manifest.Encode(&buf, res.Documents()); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	if err := output.New(opts.output, cmd.OutOrStdout(), logger).Write(buf.Bytes()); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	return nil
}

// dedupeInput runs the engine over the named input ("-" reads stdin).
func dedupeInput(ctx context.Context, stdin io.Reader, input string, keys []string, opts ...dedupe.Option) (*dedupe.Result, error) {
	r, closeFn, err := openInput(stdin, input)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	opts = append([]dedupe.Option{dedupe.WithLogger(logging.FromContext(ctx))}, opts...)

	engine, err := dedupe.NewEngine(keys, opts...)
	if err != nil {
		return nil, err
	}

	return engine.Dedupe(ctx, manifest.NewReader(r))
}

func openInput(stdin io.Reader, input string) (io.Reader, func(), error) {
	if input == "" || input == "-" {
		return stdin, func() {}, nil
	}

	f, err := os.Open(input) //nolint:gosec // user-supplied input path
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}

// diagnose writes the operator-facing report for a failed run. Identity
// failures name the missing key and dump the offending document.
func diagnose(w io.Writer, err error) error {
	var docErr *dedupe.DocumentError
	if !errors.As(err, &docErr) {
		return &ExitError{Code: 1, Err: err}
	}

	var missing *dedupe.MissingKeyError
	if errors.As(err, &missing) {
		_, _ = fmt.Fprintf(w, "Supplied document does not have required key %q\n", missing.Segment)
	} else {
		_, _ = fmt.Fprintf(w, "Supplied document cannot be identified: %v\n", docErr.Err)
	}

	_, _ = fmt.Fprintln(w, "Failed document is:")

	if out, mErr := docErr.Document.Marshal(); mErr == nil {
		_, _ = w.Write(out)
	}

	return &ExitError{Code: 1, Err: err, Reported: true}
}
