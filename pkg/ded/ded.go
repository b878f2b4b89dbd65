// Package ded provides a public Go API for deduplicating rendered Helm
// manifests.
//
// This package exposes the ded post-renderer as a library, allowing
// programmatic use without the CLI.
//
// Basic usage:
//
//	stats, err := ded.Dedupe(ctx, os.Stdin, os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// In-process with the Helm SDK:
//
//	pr, err := ded.NewPostRenderer(ded.WithKeys("kind", "metadata.name"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	install := action.NewInstall(cfg)
//	install.PostRenderer = pr
package ded

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"helm.sh/helm/v3/pkg/postrender"

	"github.com/hupe1980/ded/internal/config"
	"github.com/hupe1980/ded/internal/dedupe"
	"github.com/hupe1980/ded/internal/logging"
	"github.com/hupe1980/ded/internal/manifest"
)

// Re-exported error types so callers can inspect failures with errors.As
// and errors.Is without importing internal packages.
type (
	// MissingKeyError reports a key-path segment absent from a document.
	MissingKeyError = dedupe.MissingKeyError

	// NotMappingError reports a key-path segment applied to a value that
	// is not a mapping.
	NotMappingError = dedupe.NotMappingError

	// DocumentError carries the document whose identity could not be built.
	DocumentError = dedupe.DocumentError

	// ParseError reports malformed YAML input.
	ParseError = manifest.ParseError
)

var (
	// ErrNoKeyPaths is returned when deduplication is configured without keys.
	ErrNoKeyPaths = dedupe.ErrNoKeyPaths

	// ErrInvalidKeyPath is returned for empty keys or keys with empty segments.
	ErrInvalidKeyPath = dedupe.ErrInvalidKeyPath
)

// Option configures deduplication.
// Use the With* functions to create Options.
type Option func(*options)

type options struct {
	keys   []string
	logger *slog.Logger
}

// WithKeys sets the dot-separated key paths that make up a document's
// identity. Without this option kind and metadata.name are used.
func WithKeys(keys ...string) Option {
	return func(o *options) {
		o.keys = append([]string(nil), keys...)
	}
}

// WithLogger sets the logger for debug output. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		keys:   config.DefaultKeys(),
		logger: logging.Discard(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Stats summarises one deduplication run.
type Stats struct {
	// Documents is the number of non-empty documents read.
	Documents int

	// Unique is the number of documents written.
	Unique int

	// Dropped is the number of documents discarded as duplicates.
	Dropped int
}

// Dedupe reads a multi-document YAML stream from r and writes the documents
// with a unique identity to w, in the order they were first seen.
//
// Nothing is written to w unless every document has all configured keys.
func Dedupe(ctx context.Context, r io.Reader, w io.Writer, opts ...Option) (*Stats, error) {
	o := newOptions(opts)

	engine, err := dedupe.NewEngine(o.keys, dedupe.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	return run(ctx, engine, r, w)
}

func run(ctx context.Context, engine *dedupe.Engine, r io.Reader, w io.Writer) (*Stats, error) {
	res, err := engine.Dedupe(ctx, manifest.NewReader(r))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := manifest.Encode(&buf, res.Documents()); err != nil {
		return nil, fmt.Errorf("encoding documents: %w", err)
	}

	if _, err := buf.WriteTo(w); err != nil {
		return nil, fmt.Errorf("writing documents: %w", err)
	}

	return &Stats{
		Documents: res.Total,
		Unique:    res.Total - res.Dropped,
		Dropped:   res.Dropped,
	}, nil
}

var _ postrender.PostRenderer = (*PostRenderer)(nil)

// PostRenderer deduplicates manifests inside a Helm SDK action, in place
// of running the ded binary through --post-renderer.
type PostRenderer struct {
	engine *dedupe.Engine
}

// NewPostRenderer validates the options and returns a PostRenderer.
func NewPostRenderer(opts ...Option) (*PostRenderer, error) {
	o := newOptions(opts)

	engine, err := dedupe.NewEngine(o.keys, dedupe.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	return &PostRenderer{engine: engine}, nil
}

// Run implements postrender.PostRenderer.
func (p *PostRenderer) Run(renderedManifests *bytes.Buffer) (*bytes.Buffer, error) {
	out := new(bytes.Buffer)

	if _, err := run(context.Background(), p.engine, renderedManifests, out); err != nil {
		return nil, fmt.Errorf("deduplicating manifests: %w", err)
	}

	return out, nil
}
