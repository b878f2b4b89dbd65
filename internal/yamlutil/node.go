// Package yamlutil provides shared helpers for working with gopkg.in/yaml.v3
// node trees.
package yamlutil

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// Unwrap follows document and alias indirections and returns the node that
// carries the actual value. It returns nil for an empty document.
func Unwrap(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case 0:
			return nil
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}

			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}

	return nil
}

// IsNull reports whether n (after unwrapping) holds no value: a missing node,
// an empty document or a null scalar such as "~", "null" or "".
func IsNull(n *yaml.Node) bool {
	v := Unwrap(n)
	if v == nil {
		return true
	}

	return v.Kind == yaml.ScalarNode && v.ShortTag() == "!!null"
}

// KindName returns a human-readable name for a node kind.
func KindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown node"
	}
}

// Encode renders n as YAML with two-space indentation, keeping comments and
// key order.
func Encode(n *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}

	return buf.Bytes(), nil
}

// ToJSON renders the value held by n as compact JSON with sorted keys.
// Aliases are expanded and comments dropped, so two nodes with the same
// content produce the same bytes regardless of formatting.
func ToJSON(n *yaml.Node) ([]byte, error) {
	plain, err := plainYAML(n)
	if err != nil {
		return nil, err
	}

	j, err := sigsyaml.YAMLToJSON(plain)
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}

	return bytes.TrimSpace(j), nil
}

// ToCanonicalYAML renders the value held by n as YAML with sorted keys and
// without comments or anchors.
func ToCanonicalYAML(n *yaml.Node) ([]byte, error) {
	j, err := ToJSON(n)
	if err != nil {
		return nil, err
	}

	out, err := sigsyaml.JSONToYAML(j)
	if err != nil {
		return nil, fmt.Errorf("converting to YAML: %w", err)
	}

	return out, nil
}

// plainYAML decodes n into plain Go values and re-encodes them, which expands
// aliases that may point outside of n.
func plainYAML(n *yaml.Node) ([]byte, error) {
	v := Unwrap(n)
	if v == nil {
		return []byte("null\n"), nil
	}

	var val interface{}
	if err := v.Decode(&val); err != nil {
		return nil, fmt.Errorf("decoding YAML node: %w", err)
	}

	out, err := yaml.Marshal(val)
	if err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}

	return out, nil
}
