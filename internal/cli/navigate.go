package cli

import tea "github.com/charmbracelet/bubbletea"

// Navigation messages used by views to request view transitions.
// The appModel handles these in its Update method.

// pushViewMsg pushes a new view onto the navigation stack.
type pushViewMsg struct {
	view View
}

// wizardCompleteMsg is sent when a wizard form completes or is cancelled.
// The appModel handles it atomically: pop the wizard view, then run nextCmd.
type wizardCompleteMsg struct {
	nextCmd tea.Cmd
}

// pushView returns a tea.Cmd that pushes a view onto the stack.
func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

// thenQuit runs cmd to completion, delivers its message and then quits.
func thenQuit(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return tea.Quit
	}
	return func() tea.Msg {
		msg := cmd()
		return tea.BatchMsg{func() tea.Msg { return msg }, tea.Quit}
	}
}
