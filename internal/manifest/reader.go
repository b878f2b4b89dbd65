package manifest

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/ded/internal/yamlutil"
)

// ParseError reports input that is not valid YAML.
type ParseError struct {
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing document %d: %v", e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Reader lazily decodes documents from a YAML stream.
type Reader struct {
	dec  *yaml.Decoder
	next int
	err  error
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: yaml.NewDecoder(r)}
}

// Next returns the next non-empty document, or io.EOF once the stream is
// exhausted. Documents holding only comments or a null value carry no
// resource and are skipped. A document that repeats a key within one mapping
// is malformed. After a parse error every call returns that error.
func (r *Reader) Next() (*Document, error) {
	if r.err != nil {
		return nil, r.err
	}

	for {
		var node yaml.Node

		err := r.dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			r.err = io.EOF
			return nil, io.EOF
		}

		idx := r.next
		r.next++

		if err != nil {
			r.err = &ParseError{Index: idx, Err: err}
			return nil, r.err
		}

		if yamlutil.IsNull(&node) {
			continue
		}

		// The node API keeps repeated mapping keys; decoding rejects them.
		if err := node.Decode(new(interface{})); err != nil {
			r.err = &ParseError{Index: idx, Err: err}
			return nil, r.err
		}

		return &Document{Index: idx, Node: &node}, nil
	}
}

// ReadAll drains r and returns every non-empty document.
func ReadAll(r io.Reader) ([]*Document, error) {
	mr := NewReader(r)

	var docs []*Document

	for {
		doc, err := mr.Next()
		if errors.Is(err, io.EOF) {
			return docs, nil
		}

		if err != nil {
			return nil, err
		}

		docs = append(docs, doc)
	}
}
