package dedupe

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/ded/internal/yamlutil"
)

// KeyPath is a navigation route through nested mappings, one segment per
// level.
type KeyPath []string

// ParseKeyPath splits a dotted key such as "metadata.name" into segments.
func ParseKeyPath(s string) (KeyPath, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKeyPath)
	}

	segments := strings.Split(s, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("%w %q: empty segment", ErrInvalidKeyPath, s)
		}
	}

	return KeyPath(segments), nil
}

// ParseKeyPaths parses every key in order. At least one key is required.
func ParseKeyPaths(keys []string) ([]KeyPath, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeyPaths
	}

	paths := make([]KeyPath, 0, len(keys))

	for _, k := range keys {
		p, err := ParseKeyPath(k)
		if err != nil {
			return nil, err
		}

		paths = append(paths, p)
	}

	return paths, nil
}

func (p KeyPath) String() string {
	return strings.Join(p, ".")
}

// Resolve walks path through node and returns the value it names. It fails on
// the first segment that is absent (MissingKeyError) or that would have to be
// looked up in something other than a mapping (NotMappingError).
func Resolve(node *yaml.Node, path KeyPath) (*yaml.Node, error) {
	current := node

	for _, seg := range path {
		m := yamlutil.Unwrap(current)
		if m == nil || m.Kind != yaml.MappingNode {
			kind := "null value"
			if m != nil && !yamlutil.IsNull(m) {
				kind = yamlutil.KindName(m.Kind)
			}

			return nil, &NotMappingError{Segment: seg, Path: path, Kind: kind}
		}

		next, ok := lookup(m, seg)
		if !ok {
			return nil, &MissingKeyError{Segment: seg, Path: path}
		}

		current = next
	}

	return current, nil
}

// lookup finds key in mapping m. Keys written directly in m take precedence
// over keys pulled in through "<<" merge keys.
func lookup(m *yaml.Node, key string) (*yaml.Node, bool) {
	var merges []*yaml.Node

	for i := 0; i+1 < len(m.Content); i += 2 {
		k := yamlutil.Unwrap(m.Content[i])
		if k == nil || k.Kind != yaml.ScalarNode {
			continue
		}

		if k.ShortTag() == "!!merge" {
			merges = append(merges, m.Content[i+1])
			continue
		}

		if k.Value == key {
			return m.Content[i+1], true
		}
	}

	for _, src := range merges {
		v := yamlutil.Unwrap(src)
		if v == nil {
			continue
		}

		switch v.Kind {
		case yaml.MappingNode:
			if found, ok := lookup(v, key); ok {
				return found, true
			}
		case yaml.SequenceNode:
			for _, item := range v.Content {
				if im := yamlutil.Unwrap(item); im != nil && im.Kind == yaml.MappingNode {
					if found, ok := lookup(im, key); ok {
						return found, true
					}
				}
			}
		}
	}

	return nil, false
}
