package manifest

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Encoder writes documents as a YAML stream, separated by "---".
type Encoder struct {
	enc   *yaml.Encoder
	count int
}

// NewEncoder creates an Encoder writing to w with two-space indentation.
func NewEncoder(w io.Writer) *Encoder {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	return &Encoder{enc: enc}
}

// Encode writes one document.
func (e *Encoder) Encode(doc *Document) error {
	if err := e.enc.Encode(doc.Node); err != nil {
		return fmt.Errorf("encoding document %d: %w", doc.Index, err)
	}

	e.count++

	return nil
}

// Close flushes the stream. An encoder that wrote nothing emits nothing.
func (e *Encoder) Close() error {
	if e.count == 0 {
		return nil
	}

	if err := e.enc.Close(); err != nil {
		return fmt.Errorf("closing YAML stream: %w", err)
	}

	return nil
}

// Encode writes docs to w as one YAML stream.
func Encode(w io.Writer, docs []*Document) error {
	enc := NewEncoder(w)

	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}

	return enc.Close()
}
