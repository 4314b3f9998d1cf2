package app

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyaoi/codepick/internal/checklist"
	"github.com/kyaoi/codepick/internal/session"
	"github.com/kyaoi/codepick/internal/ui"
)

// Run executes the Bubble Tea program and returns what the user submitted.
func Run(state ui.State) (ui.Outcome, error) {
	model := ui.NewModel(state)
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return ui.Outcome{}, err
	}
	return model.Outcome(), nil
}

// Preview loads sourcePath once and writes the rendered checklist to w. With
// selectedOnly set only the default-selected file paths are written, one per
// line.
func Preview(ctx context.Context, w io.Writer, loader *session.Loader, sourcePath string, selectedOnly bool) error {
	tracker := session.NewTracker()
	s := loader.Load(ctx, tracker.Begin(sourcePath))
	if s.Failed() {
		return fmt.Errorf("loading file tree: %w", s.Err)
	}

	if selectedOnly {
		for _, path := range s.List.Selected() {
			if _, err := fmt.Fprintln(w, path); err != nil {
				return err
			}
		}
		return nil
	}
	return checklist.Print(w, s.SourcePath, s.List)
}
