package dedupe

import (
	"errors"
	"fmt"

	"github.com/hupe1980/ded/internal/manifest"
)

var (
	// ErrNoKeyPaths is returned when an Engine is created without key paths.
	ErrNoKeyPaths = errors.New("at least one key path is required")

	// ErrInvalidKeyPath is returned for empty key paths or empty segments.
	ErrInvalidKeyPath = errors.New("invalid key path")
)

// MissingKeyError reports a key path segment that is absent from a document.
// Segment names the first missing segment, not the full path.
type MissingKeyError struct {
	Segment string
	Path    KeyPath
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("document does not have required key %q", e.Segment)
}

// NotMappingError reports a key path that tries to descend into a value that
// is not a mapping, such as a scalar or a sequence.
type NotMappingError struct {
	Segment string
	Path    KeyPath
	Kind    string
}

func (e *NotMappingError) Error() string {
	return fmt.Sprintf("cannot look up key %q of key path %q in a %s", e.Segment, e.Path, e.Kind)
}

// DocumentError is returned by Engine.Dedupe when a document's identity cannot
// be built. It carries the offending document for diagnostics.
type DocumentError struct {
	Document *manifest.Document
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %d: %v", e.Document.Index, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }
