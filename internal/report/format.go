package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	sigsyaml "sigs.k8s.io/yaml"
)

// Formatter writes a Report to a writer.
type Formatter interface {
	Format(w io.Writer, r *Report) error
}

// NewFormatter returns a formatter for the given format name.
// Supported: "table" (default), "json", "yaml".
func NewFormatter(format string, color bool) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return &TableFormatter{Color: color}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "yaml":
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q: use table, json, or yaml", format)
	}
}

// TableFormatter writes one row per occurrence followed by any diffs.
type TableFormatter struct {
	Color bool
}

// Format writes the report as a human-readable table.
func (f *TableFormatter) Format(w io.Writer, r *Report) error {
	if len(r.Groups) == 0 {
		_, _ = fmt.Fprintf(w, "No duplicates found in %d document(s) (keys: %s).\n",
			r.Documents, strings.Join(r.Keys, ", "))

		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, "IDENTITY\tRESOURCE\tDOCUMENT\tSTATUS\tSOURCE")

	for _, g := range r.Groups {
		writeRow(tw, g, g.Retained, "kept")

		for _, d := range g.Dropped {
			status := "dropped"
			if d.Conflicting {
				status = "dropped (differs)"
			}

			writeRow(tw, g, d, status)
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Documents: %d, unique: %d, dropped: %d, conflicting: %d\n",
		r.Documents, r.Unique, r.Dropped, r.Conflicts)

	for _, g := range r.Groups {
		for _, d := range g.Dropped {
			if d.Diff == "" {
				continue
			}

			_, _ = fmt.Fprintln(w)
			WriteDiff(w, d.Diff, f.Color)
		}
	}

	return nil
}

func writeRow(w io.Writer, g Group, o Occurrence, status string) {
	source := o.Source
	if source == "" {
		source = "-"
	}

	_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", g.Identity, g.Resource, o.Index, status, source)
}

// JSONFormatter writes the report as indented JSON.
type JSONFormatter struct{}

// Format writes the report as JSON.
func (f *JSONFormatter) Format(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(r)
}

// YAMLFormatter writes the report as YAML.
type YAMLFormatter struct{}

// Format writes the report as YAML.
func (f *YAMLFormatter) Format(w io.Writer, r *Report) error {
	out, err := sigsyaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("serializing report: %w", err)
	}

	_, err = w.Write(out)

	return err
}
