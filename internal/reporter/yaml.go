package reporter

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/pthm/loctally/internal/tally"
)

// YAMLReporter outputs results as YAML
type YAMLReporter struct {
	w    io.Writer
	opts Options
}

// NewYAMLReporter creates a new YAML reporter
func NewYAMLReporter(w io.Writer, opts Options) *YAMLReporter {
	return &YAMLReporter{w: w, opts: opts}
}

// Report outputs the counts as a YAML document
func (r *YAMLReporter) Report(result *tally.Result) error {
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(BuildDocument(result, r.opts)); err != nil {
		return err
	}
	return enc.Close()
}
