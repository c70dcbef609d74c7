package reporter

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/pthm/loctally/internal/tally"
)

// MarkdownReporter outputs results as a GitHub-flavored markdown table
type MarkdownReporter struct {
	w    io.Writer
	opts Options
}

// NewMarkdownReporter creates a new markdown reporter
func NewMarkdownReporter(w io.Writer, opts Options) *MarkdownReporter {
	return &MarkdownReporter{w: w, opts: opts}
}

// Report writes the markdown table
func (r *MarkdownReporter) Report(result *tally.Result) error {
	_, err := r.w.Write(renderMarkdown(BuildDocument(result, r.opts)))
	return err
}

// HTMLReporter renders the markdown report to an HTML fragment
type HTMLReporter struct {
	w    io.Writer
	opts Options
	md   goldmark.Markdown
}

// NewHTMLReporter creates a new HTML reporter
func NewHTMLReporter(w io.Writer, opts Options) *HTMLReporter {
	return &HTMLReporter{
		w:    w,
		opts: opts,
		md:   goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Report converts the markdown table to HTML
func (r *HTMLReporter) Report(result *tally.Result) error {
	source := renderMarkdown(BuildDocument(result, r.opts))
	return r.md.Convert(source, r.w)
}

func renderMarkdown(doc Document) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Lines of code in `%s`\n\n", doc.Root)

	header := "Extension"
	if doc.Mode == tally.ByFile.String() {
		header = "File"
	}
	fmt.Fprintf(&buf, "| %s | Lines |\n", header)
	buf.WriteString("| --- | ---: |\n")
	for _, e := range doc.Counts {
		fmt.Fprintf(&buf, "| %s | %d |\n", escapeCell(e.Key), e.Lines)
	}
	if doc.Total != nil {
		fmt.Fprintf(&buf, "| **total** | **%d** |\n", *doc.Total)
	}

	if len(doc.Warnings) > 0 {
		buf.WriteString("\n## Skipped files\n\n")
		for _, w := range doc.Warnings {
			fmt.Fprintf(&buf, "- %s\n", escapeInline(w))
		}
	}
	return buf.Bytes()
}

var cellEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`")

func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}

var inlineEscaper = strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`", "<", "&lt;")

func escapeInline(s string) string {
	return inlineEscaper.Replace(s)
}
