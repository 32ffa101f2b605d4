package cli

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewID identifies each type of view in the TUI.
type ViewID int

const (
	ViewNotes ViewID = iota
	ViewConfirm
)

// View is the interface that all TUI views must implement.
// It extends tea.Model with navigation and help metadata.
type View interface {
	tea.Model
	ID() ViewID
	ShortHelp() []key.Binding // key hints shown in the bottom bar
	Title() string            // breadcrumb segment for this view
}

// inputCapturer is implemented by views that sometimes need every key,
// including the global q and esc.
type inputCapturer interface {
	CapturesInput() bool
}

// workspaceWatcher is implemented by views that mirror workspace state
// and must resync after the workspace handles a message.
type workspaceWatcher interface {
	WorkspaceChanged()
}
