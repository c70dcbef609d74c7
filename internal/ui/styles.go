package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all lipgloss styles for terminal output
type Styles struct {
	enabled bool

	// Status styles
	Warning lipgloss.Style
	Success lipgloss.Style

	// Report styles
	Header    lipgloss.Style
	Key       lipgloss.Style
	Count     lipgloss.Style
	Total     lipgloss.Style
	Path      lipgloss.Style
	Separator lipgloss.Style

	// Icons (degraded to ASCII when not interactive)
	IconWarning string
	IconSuccess string
}

// NewStyles creates a new Styles instance
// When enabled is false, styles return text unchanged (for non-TTY output)
func NewStyles(enabled bool) *Styles {
	s := &Styles{enabled: enabled}

	if enabled {
		s.Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Yellow
		s.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green

		s.Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")) // White bold
		s.Key = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))               // Cyan
		s.Count = lipgloss.NewStyle().Bold(true)
		s.Total = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")) // Green bold
		s.Path = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))              // Gray
		s.Separator = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))         // Gray

		s.IconWarning = "⚠"
		s.IconSuccess = "✓"
	} else {
		// No-op styles for non-TTY (plain text output)
		s.Warning = lipgloss.NewStyle()
		s.Success = lipgloss.NewStyle()

		s.Header = lipgloss.NewStyle()
		s.Key = lipgloss.NewStyle()
		s.Count = lipgloss.NewStyle()
		s.Total = lipgloss.NewStyle()
		s.Path = lipgloss.NewStyle()
		s.Separator = lipgloss.NewStyle()

		// ASCII fallback icons
		s.IconWarning = "WARN:"
		s.IconSuccess = "OK:"
	}

	return s
}

// Enabled returns whether styling is enabled
func (s *Styles) Enabled() bool {
	return s.enabled
}

// FormatWarning renders msg as a warning line with its icon
func (s *Styles) FormatWarning(msg string) string {
	return s.Warning.Render(s.IconWarning + " " + msg)
}

// FormatSuccess renders msg as a success line with its icon
func (s *Styles) FormatSuccess(msg string) string {
	return s.Success.Render(s.IconSuccess + " " + msg)
}
