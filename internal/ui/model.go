package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Stage represents the current stage of a count
type Stage int

const (
	StageResolve Stage = iota
	StageScan
	StageReport
)

// Message types for updating the model
type (
	StageMsg Stage
	FileMsg  string
	DoneMsg  struct{ Err error }
)

// maxPathWidth bounds the current-file suffix of the spinner line
const maxPathWidth = 48

// Model is the Bubbletea model for scan progress
type Model struct {
	stage    Stage
	spinner  spinner.Model
	current  string
	files    int
	quitting bool
	err      error
}

// NewModel creates a new progress model
func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		stage:   StageResolve,
		spinner: s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StageMsg:
		m.stage = Stage(msg)
		return m, nil

	case FileMsg:
		m.files++
		m.current = string(msg)
		return m, nil

	case DoneMsg:
		m.err = msg.Err
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.spinner.View())

	switch m.stage {
	case StageResolve:
		sb.WriteString(" Resolving configuration...")

	case StageScan:
		sb.WriteString(fmt.Sprintf(" Counting lines (%d files)", m.files))
		if m.current != "" {
			sb.WriteString(" ")
			sb.WriteString(truncateLeft(m.current, maxPathWidth))
		}

	case StageReport:
		sb.WriteString(" Rendering report...")
	}

	return sb.String()
}

// truncateLeft keeps the last width runes of s, prefixed with an ellipsis
func truncateLeft(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return "…" + string(r[len(r)-width+1:])
}
