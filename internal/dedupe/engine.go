// Package dedupe removes documents that share an identity from a stream of
// manifests, keeping the first occurrence of each identity in stream order.
//
// The identity of a document is built from a list of dotted key paths (for
// example "kind" and "metadata.name"): each path is resolved against the
// document and the stringified values are joined with "-". A document on
// which any key path cannot be resolved aborts the whole run.
package dedupe

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/hupe1980/ded/internal/manifest"
)

// Source is a forward-only stream of documents. Next returns io.EOF once the
// stream is exhausted.
type Source interface {
	Next() (*manifest.Document, error)
}

// Engine deduplicates document streams by a fixed list of key paths. An
// Engine holds no per-run state and may be reused.
type Engine struct {
	paths          []KeyPath
	logger         *slog.Logger
	trackDuplicate bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDuplicateTracking makes the engine retain dropped documents so that
// Result.Groups can report them. Without it only the first document of each
// identity is kept in memory.
func WithDuplicateTracking() Option {
	return func(e *Engine) {
		e.trackDuplicate = true
	}
}

// NewEngine creates an Engine for the given dotted keys.
func NewEngine(keys []string, opts ...Option) (*Engine, error) {
	paths, err := ParseKeyPaths(keys)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		paths:  paths,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Dedupe consumes src to the end and returns the unique documents in
// first-seen order. If any document's identity cannot be built, Dedupe stops
// reading and returns a *DocumentError; no partial result is returned.
func (e *Engine) Dedupe(ctx context.Context, src Source) (*Result, error) {
	res := newResult(e.trackDuplicate)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		id, err := BuildIdentity(doc.Node, e.paths)
		if err != nil {
			return nil, &DocumentError{Document: doc, Err: err}
		}

		if first, dup := res.add(id, doc); dup {
			e.logger.Debug("dropping duplicate document",
				slog.String("identity", id),
				slog.Int("index", doc.Index),
				slog.Int("retainedIndex", first.Index),
			)
		}
	}

	e.logger.Debug("deduplication finished",
		slog.Int("documents", res.Total),
		slog.Int("unique", len(res.order)),
		slog.Int("dropped", res.Dropped),
	)

	return res, nil
}

// Result is the outcome of one Dedupe run.
type Result struct {
	// Total is the number of documents read.
	Total int

	// Dropped is the number of documents discarded as duplicates.
	Dropped int

	order   []string
	unique  map[string]*manifest.Document
	dropped map[string][]*manifest.Document
}

func newResult(trackDuplicates bool) *Result {
	r := &Result{unique: make(map[string]*manifest.Document)}
	if trackDuplicates {
		r.dropped = make(map[string][]*manifest.Document)
	}

	return r
}

// add records doc under id. It returns the retained document for id and
// whether doc was a duplicate.
func (r *Result) add(id string, doc *manifest.Document) (*manifest.Document, bool) {
	r.Total++

	if first, ok := r.unique[id]; ok {
		r.Dropped++

		if r.dropped != nil {
			r.dropped[id] = append(r.dropped[id], doc)
		}

		return first, true
	}

	r.unique[id] = doc
	r.order = append(r.order, id)

	return doc, false
}

// Documents returns the retained documents in first-seen order.
func (r *Result) Documents() []*manifest.Document {
	docs := make([]*manifest.Document, 0, len(r.order))
	for _, id := range r.order {
		docs = append(docs, r.unique[id])
	}

	return docs
}

// Identities returns the distinct identities in first-seen order.
func (r *Result) Identities() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)

	return out
}

// Group is one identity that occurred more than once.
type Group struct {
	Identity string
	Retained *manifest.Document
	Dropped  []*manifest.Document
}

// Groups returns the identities that had duplicates, in first-seen order.
// It is empty unless the engine was created with WithDuplicateTracking.
func (r *Result) Groups() []Group {
	var groups []Group

	for _, id := range r.order {
		if d := r.dropped[id]; len(d) > 0 {
			groups = append(groups, Group{Identity: id, Retained: r.unique[id], Dropped: d})
		}
	}

	return groups
}
