// Package manifest reads and writes multi-document YAML streams such as the
// rendered manifests Helm hands to a post-renderer.
//
// Documents are kept as gopkg.in/yaml.v3 node trees, so comments, key order
// and scalar styles survive a read/write round trip.
package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/ded/internal/k8s"
	"github.com/hupe1980/ded/internal/yamlutil"
)

// Document is one parsed unit of a YAML stream.
type Document struct {
	// Index is the zero-based position of the document in the input stream,
	// counting empty documents that were skipped.
	Index int

	// Node is the yaml.v3 DocumentNode. It must not be modified.
	Node *yaml.Node
}

// Marshal renders the document as YAML, preserving comments.
func (d *Document) Marshal() ([]byte, error) {
	return yamlutil.Encode(d.Node)
}

// Resource describes the document as a Kubernetes object. Documents whose
// root is not a mapping yield an empty Resource.
func (d *Document) Resource() *k8s.Resource {
	var obj map[string]interface{}

	if v := yamlutil.Unwrap(d.Node); v != nil && v.Kind == yaml.MappingNode {
		_ = v.Decode(&obj)
	}

	r := k8s.FromObject(obj)
	r.SourcePath = d.SourcePath()

	return r
}

// SourcePath returns the template path from Helm's "# Source:" comment, or
// empty string when the document has none.
func (d *Document) SourcePath() string {
	candidates := []string{d.Node.HeadComment}

	if v := yamlutil.Unwrap(d.Node); v != nil {
		candidates = append(candidates, v.HeadComment)

		if v.Kind == yaml.MappingNode && len(v.Content) > 0 {
			candidates = append(candidates, v.Content[0].HeadComment)
		}
	}

	for _, c := range candidates {
		if p := k8s.SourcePathFromComment(c); p != "" {
			return p
		}
	}

	return ""
}

// String returns a short label for logs and reports.
func (d *Document) String() string {
	return fmt.Sprintf("document %d (%s)", d.Index, d.Resource().QualifiedName())
}
