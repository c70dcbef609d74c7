package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// OutputMode determines how output should be formatted
type OutputMode int

const (
	// OutputModeInteractive enables full colors and the scan spinner
	OutputModeInteractive OutputMode = iota
	// OutputModePlain disables colors and progress (for piped output)
	OutputModePlain
	// OutputModeStructured writes machine-readable reports only
	// (json, yaml, markdown, html)
	OutputModeStructured
)

// UI provides a unified interface for terminal output with TTY detection
type UI struct {
	Mode      OutputMode
	Writer    io.Writer
	ErrWriter io.Writer
	Styles    *Styles
}

// New creates a new UI instance with automatic TTY detection
func New(w, errW io.Writer, format string) *UI {
	mode := detectMode(w, format)
	return &UI{
		Mode:      mode,
		Writer:    w,
		ErrWriter: errW,
		Styles:    NewStyles(mode == OutputModeInteractive),
	}
}

// detectMode determines the output mode based on TTY and format flags
func detectMode(w io.Writer, format string) OutputMode {
	if format != "" && format != "terminal" {
		return OutputModeStructured
	}

	// Check if stdout is a terminal
	if f, ok := w.(*os.File); ok {
		if term.IsTerminal(int(f.Fd())) {
			return OutputModeInteractive
		}
	}

	return OutputModePlain
}

// IsInteractive returns true if the output is interactive (TTY)
func (ui *UI) IsInteractive() bool {
	return ui.Mode == OutputModeInteractive
}

// IsStructured returns true if a machine-readable format was requested
func (ui *UI) IsStructured() bool {
	return ui.Mode == OutputModeStructured
}

// Warn writes a styled warning line to ErrWriter
func (ui *UI) Warn(msg string) {
	fmt.Fprintln(ui.ErrWriter, ui.Styles.FormatWarning(msg))
}
