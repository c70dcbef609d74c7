package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ProgressController manages the bubbletea program for progress display
type ProgressController struct {
	ui      *UI
	program *tea.Program
	done    chan struct{}
}

// StartProgress starts the progress display if in interactive mode
// Returns nil if not in interactive mode
func (ui *UI) StartProgress() *ProgressController {
	if !ui.IsInteractive() {
		return nil
	}

	m := NewModel()
	p := tea.NewProgram(m, tea.WithOutput(ui.ErrWriter), tea.WithInput(nil))

	ctrl := &ProgressController{
		ui:      ui,
		program: p,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(ctrl.done)
		// Rendering failures only lose the spinner
		_, _ = p.Run()
	}()

	return ctrl
}

// SetStage updates the current stage
func (pc *ProgressController) SetStage(stage Stage) {
	if pc != nil && pc.program != nil {
		pc.program.Send(StageMsg(stage))
	}
}

// FileDone records a counted file
func (pc *ProgressController) FileDone(path string) {
	if pc != nil && pc.program != nil {
		pc.program.Send(FileMsg(path))
	}
}

// Warn prints a warning above the spinner, or straight to the UI's error
// writer when there is no progress display.
func (pc *ProgressController) Warn(ui *UI, msg string) {
	if pc != nil && pc.program != nil {
		pc.program.Println(ui.Styles.FormatWarning(msg))
		return
	}
	ui.Warn(msg)
}

// Done signals that all work is complete and waits for the display to clear
func (pc *ProgressController) Done(err error) {
	if pc != nil && pc.program != nil {
		pc.program.Send(DoneMsg{Err: err})
		<-pc.done
	}
}
