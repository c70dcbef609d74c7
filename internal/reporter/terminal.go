package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/pthm/loctally/internal/tally"
	"github.com/pthm/loctally/internal/ui"
)

// TerminalReporter prints one "<key>: <count> lines" line per key. Styling
// is applied only when the UI is interactive, so piped output is exactly
// the plain line format.
type TerminalReporter struct {
	w      io.Writer
	styles *ui.Styles
	opts   Options
}

// NewTerminalReporter creates a new terminal reporter
func NewTerminalReporter(w io.Writer, styles *ui.Styles, opts Options) *TerminalReporter {
	if styles == nil {
		styles = ui.NewStyles(false)
	}
	return &TerminalReporter{w: w, styles: styles, opts: opts}
}

// Report prints the counts followed by the total
func (r *TerminalReporter) Report(result *tally.Result) error {
	doc := BuildDocument(result, r.opts)
	s := r.styles

	if s.Enabled() {
		fmt.Fprintln(r.w, s.Header.Render("Lines of code")+" "+s.Path.Render(doc.Root))
		fmt.Fprintln(r.w, s.Separator.Render(strings.Repeat("─", 37)))
	}

	for _, e := range doc.Counts {
		fmt.Fprintf(r.w, "%s: %s lines\n", s.Key.Render(e.Key), s.Count.Render(fmt.Sprint(e.Lines)))
	}

	if doc.Total != nil {
		if s.Enabled() {
			fmt.Fprintln(r.w, s.Separator.Render(strings.Repeat("─", 37)))
		}
		fmt.Fprintf(r.w, "%s: %s lines\n", s.Total.Render("total"), s.Total.Render(fmt.Sprint(*doc.Total)))
	}

	if s.Enabled() {
		fmt.Fprintln(r.w, s.FormatSuccess(fmt.Sprintf("%d files counted, %d skipped", doc.Files, len(doc.Warnings))))
	}
	return nil
}
