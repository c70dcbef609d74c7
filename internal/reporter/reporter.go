package reporter

import (
	"fmt"
	"io"

	"github.com/pthm/loctally/internal/tally"
	"github.com/pthm/loctally/internal/ui"
)

// Reporter defines the interface for rendering a finished count
type Reporter interface {
	// Report writes the rendering of result
	Report(result *tally.Result) error
}

// Options controls what every reporter renders
type Options struct {
	Sort  tally.SortOrder
	Total bool
}

// Entry is one aggregation key and its line count
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Lines int    `json:"lines" yaml:"lines"`
}

// Document is the format-independent report shared by the structured
// reporters
type Document struct {
	Root     string   `json:"root" yaml:"root"`
	Mode     string   `json:"mode" yaml:"mode"`
	Counts   []Entry  `json:"counts" yaml:"counts"`
	Total    *int     `json:"total,omitempty" yaml:"total,omitempty"`
	Files    int      `json:"files" yaml:"files"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}

// BuildDocument flattens result in the requested order. The total is summed
// from the entries themselves.
func BuildDocument(result *tally.Result, opts Options) Document {
	doc := Document{
		Root:     result.Root,
		Mode:     result.Mode.String(),
		Counts:   make([]Entry, 0, len(result.Counts)),
		Files:    result.Files,
		Warnings: make([]string, 0, len(result.Warnings)),
	}

	total := 0
	for _, key := range result.Keys(opts.Sort) {
		n := result.Counts[key]
		doc.Counts = append(doc.Counts, Entry{Key: key, Lines: n})
		total += n
	}
	if opts.Total {
		doc.Total = &total
	}

	for _, w := range result.Warnings {
		doc.Warnings = append(doc.Warnings, w.String())
	}
	return doc
}

// Formats lists the accepted --format values
var Formats = []string{"terminal", "json", "yaml", "markdown", "html"}

// New returns the reporter for format
func New(format string, w io.Writer, styles *ui.Styles, opts Options) (Reporter, error) {
	switch format {
	case "", "terminal":
		return NewTerminalReporter(w, styles, opts), nil
	case "json":
		return NewJSONReporter(w, opts), nil
	case "yaml":
		return NewYAMLReporter(w, opts), nil
	case "markdown", "md":
		return NewMarkdownReporter(w, opts), nil
	case "html":
		return NewHTMLReporter(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %v)", format, Formats)
	}
}
