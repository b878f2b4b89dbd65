// Package watch reruns deduplication whenever an input manifest file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc performs one deduplication run.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult summarises one run for the status line.
type RunResult struct {
	Documents  int
	Unique     int
	Dropped    int
	OutputPath string
}

// Options configures the watch behaviour.
type Options struct {
	// Input is the manifest file to watch.
	Input string

	// Debounce is the quiet period before triggering a rerun.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out receives one status line per run.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      io.Discard,
	}
}

// Run performs an initial run, then reruns runFn after every change to the
// input file. It blocks until ctx is cancelled or SIGINT/SIGTERM arrives.
//
// The input's directory is watched rather than the file itself so that
// editors which replace the file by renaming keep triggering reruns.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Input == "" {
		return errors.New("no input file to watch")
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	input, err := filepath.Abs(opts.Input)
	if err != nil {
		return fmt.Errorf("resolving input %q: %w", opts.Input, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(input), err)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", input, opts.Debounce)

	doRun(sigCtx, opts, runFn, "(initial)")

	debouncer := NewDebouncer(opts.Debounce, func(trigger string) {
		doRun(sigCtx, opts, runFn, trigger)
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			_, _ = fmt.Fprintln(opts.Out, "shutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event, input) {
				continue
			}

			opts.Logger.Debug("input changed", slog.String("event", event.Op.String()))
			debouncer.Trigger(filepath.Base(event.Name))

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// doRun executes a single run and prints the status line.
func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger string) {
	now := time.Now().Format("15:04:05")

	result, err := runFn(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	_, _ = fmt.Fprintf(opts.Out, "[%s] %s → OK (%d documents, %d unique, %d dropped)\n",
		now, trigger, result.Documents, result.Unique, result.Dropped)

	if result.OutputPath != "" {
		_, _ = fmt.Fprintf(opts.Out, "  wrote %s\n", result.OutputPath)
	}
}

// isRelevant keeps content changes to the watched input and ignores
// everything else in its directory.
func isRelevant(event fsnotify.Event, input string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}

	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	if name != input {
		return false
	}

	base := filepath.Base(name)

	return !strings.HasSuffix(base, "~") && !strings.HasSuffix(base, ".swp")
}
