// Package report explains what deduplication would drop: which identities
// occur more than once, where each occurrence came from, and whether the
// dropped copies differ from the one that is kept.
package report

import (
	"fmt"

	"github.com/hupe1980/ded/internal/dedupe"
	"github.com/hupe1980/ded/internal/manifest"
	"github.com/hupe1980/ded/internal/yamlutil"
)

// Occurrence is one document carrying a duplicated identity.
type Occurrence struct {
	Index int    `json:"index"`
	Chart string `json:"chart,omitempty"`

	// Source is the Helm template path from the "# Source:" comment.
	Source string `json:"source,omitempty"`

	// Conflicting is set on dropped occurrences whose content differs from
	// the retained document. Comments and formatting are ignored.
	Conflicting bool `json:"conflicting,omitempty"`

	// Diff is the unified diff against the retained document, populated
	// only when requested.
	Diff string `json:"diff,omitempty"`
}

// Group is an identity that occurred more than once.
type Group struct {
	Identity string       `json:"identity"`
	Resource string       `json:"resource"`
	Retained Occurrence   `json:"retained"`
	Dropped  []Occurrence `json:"dropped"`
}

// Report summarises duplicates in a manifest stream.
type Report struct {
	Keys      []string `json:"keys"`
	Documents int      `json:"documents"`
	Unique    int      `json:"unique"`
	Dropped   int      `json:"dropped"`
	Conflicts int      `json:"conflicts"`
	Groups    []Group  `json:"groups"`
}

// Options configures Build.
type Options struct {
	// Diff attaches a unified diff to every conflicting occurrence.
	Diff bool

	// Context is the number of diff context lines (default 3).
	Context int
}

// Build creates a Report from a Result produced by an engine with
// dedupe.WithDuplicateTracking.
func Build(keys []string, res *dedupe.Result, opts Options) (*Report, error) {
	if opts.Context == 0 {
		opts.Context = DefaultDiffOptions().Context
	}

	rep := &Report{
		Keys:      append([]string(nil), keys...),
		Documents: res.Total,
		Unique:    res.Total - res.Dropped,
		Dropped:   res.Dropped,
		Groups:    []Group{},
	}

	for _, g := range res.Groups() {
		group, conflicts, err := buildGroup(g, opts)
		if err != nil {
			return nil, err
		}

		rep.Conflicts += conflicts
		rep.Groups = append(rep.Groups, group)
	}

	return rep, nil
}

// HasConflicts reports whether any dropped document differs from the
// document that was kept in its place.
func (r *Report) HasConflicts() bool {
	return r.Conflicts > 0
}

func buildGroup(g dedupe.Group, opts Options) (Group, int, error) {
	retainedYAML, err := yamlutil.ToCanonicalYAML(g.Retained.Node)
	if err != nil {
		return Group{}, 0, fmt.Errorf("rendering document %d: %w", g.Retained.Index, err)
	}

	group := Group{
		Identity: g.Identity,
		Resource: g.Retained.Resource().String(),
		Retained: occurrence(g.Retained),
		Dropped:  make([]Occurrence, 0, len(g.Dropped)),
	}

	conflicts := 0

	for _, d := range g.Dropped {
		occ := occurrence(d)

		droppedYAML, err := yamlutil.ToCanonicalYAML(d.Node)
		if err != nil {
			return Group{}, 0, fmt.Errorf("rendering document %d: %w", d.Index, err)
		}

		if string(droppedYAML) != string(retainedYAML) {
			occ.Conflicting = true
			conflicts++

			if opts.Diff {
				occ.Diff, err = ComputeDiff(string(retainedYAML), string(droppedYAML), DiffOptions{
					OldLabel: fmt.Sprintf("document %d (retained)", g.Retained.Index),
					NewLabel: fmt.Sprintf("document %d (dropped)", d.Index),
					Context:  opts.Context,
				})
				if err != nil {
					return Group{}, 0, err
				}
			}
		}

		group.Dropped = append(group.Dropped, occ)
	}

	return group, conflicts, nil
}

func occurrence(d *manifest.Document) Occurrence {
	r := d.Resource()

	return Occurrence{
		Index:  d.Index,
		Chart:  r.SourceChart(),
		Source: r.SourcePath,
	}
}
