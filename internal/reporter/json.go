package reporter

import (
	"encoding/json"
	"io"

	"github.com/pthm/loctally/internal/tally"
)

// JSONReporter outputs results as JSON
type JSONReporter struct {
	w    io.Writer
	opts Options
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(w io.Writer, opts Options) *JSONReporter {
	return &JSONReporter{w: w, opts: opts}
}

// Report outputs the counts as an indented JSON document
func (r *JSONReporter) Report(result *tally.Result) error {
	encoder := json.NewEncoder(r.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDocument(result, r.opts))
}
