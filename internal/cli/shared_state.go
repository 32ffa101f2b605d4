package cli

import (
	"github.com/atotto/clipboard"
	"github.com/freenote/freenote/internal/workspace"
)

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App       *App
	Workspace *workspace.Workspace

	// Terminal dimensions
	Width  int
	Height int
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines: title + separator) and
// status bar (3 lines: separator + status + hints).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 5
	if h < 1 {
		return 1
	}
	return h
}

// copyText puts text on the clipboard.
func (s *SharedState) copyText(text string) error {
	if s.App.Clipboard != nil {
		return s.App.Clipboard(text)
	}
	return clipboard.WriteAll(text)
}
