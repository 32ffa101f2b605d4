package cli

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/freenote/freenote/internal/cli/formatter"
	"github.com/freenote/freenote/internal/config"
	"github.com/freenote/freenote/internal/workspace"
)

// appModel is the root bubbletea Model for the TUI.
// It owns the workspace and manages a view stack.
type appModel struct {
	state     *SharedState
	viewStack []View
	quitting  bool
}

func newAppModel(ctx context.Context, app *App) appModel {
	cfg := app.Config
	if cfg == nil {
		cfg = config.Default()
	}
	ws := workspace.New(app.Gateway, workspace.Options{
		AutosaveInterval: cfg.Autosave,
		StatusTTL:        cfg.Status,
		Logger:           app.Logger,
		Context:          ctx,
	})
	state := &SharedState{App: app, Workspace: ws}

	m := appModel{state: state}

	// Start with the notes view as the home view.
	m.viewStack = []View{newNotesView(state)}

	return m
}

// activeView returns the top view on the stack, or nil.
func (m *appModel) activeView() View {
	if len(m.viewStack) == 0 {
		return nil
	}
	return m.viewStack[len(m.viewStack)-1]
}

// setActiveView replaces the top of the view stack.
// If the stack is empty, this is a no-op.
func (m *appModel) setActiveView(v View) {
	if len(m.viewStack) > 0 {
		m.viewStack[len(m.viewStack)-1] = v
	}
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.state.Workspace.Init()}
	if v := m.activeView(); v != nil {
		cmds = append(cmds, v.Init())
	}
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		// Every view keeps its layout current, not just the visible one.
		var cmds []tea.Cmd
		for i, v := range m.viewStack {
			updated, cmd := v.Update(msg)
			m.viewStack[i] = updated.(View)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case pushViewMsg:
		m.viewStack = append(m.viewStack, msg.view)
		return m, msg.view.Init()

	case wizardCompleteMsg:
		// Atomically pop the wizard view and execute the follow-up command.
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, msg.nextCmd
	}

	// Workspace results are handled no matter which view is on top.
	if cmd, ok := m.state.Workspace.Update(msg); ok {
		m.workspaceChanged()
		return m, cmd
	}

	// Forward to active view
	if v := m.activeView(); v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit without saving.
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	// If active view captures input (text fields, forms), forward directly.
	// This bypasses global keybindings so typing 'q' edits instead of quitting.
	if v := m.activeView(); v != nil && viewCapturesInput(v) {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	switch {
	case msg.String() == "q":
		// Pending edits are sent before the program exits.
		m.quitting = true
		return m, thenQuit(m.state.Workspace.Flush())

	case msg.Type == tea.KeyEsc:
		// Pop view stack (go back)
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
			return m, nil
		}
	}

	// Forward to active view
	if v := m.activeView(); v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	return m, nil
}

// workspaceChanged lets every watching view resync after the workspace
// handled a message.
func (m *appModel) workspaceChanged() {
	for _, v := range m.viewStack {
		if w, ok := v.(workspaceWatcher); ok {
			w.WorkspaceChanged()
		}
	}
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	if v := m.activeView(); v != nil {
		sections = append(sections, v.View())
	}
	sections = append(sections, m.renderStatusBar())

	result := strings.Join(sections, "\n")

	// Pad to terminal height to prevent stale line artifacts from
	// bubbletea's line-diff renderer in alt-screen mode.
	if m.state.Height > 0 {
		lines := strings.Count(result, "\n") + 1
		if lines < m.state.Height {
			result += strings.Repeat("\n", m.state.Height-lines)
		}
	}

	return result
}

// ── rendering helpers ────────────────────────────────────────────────────────

func (m *appModel) renderHeader() string {
	title := formatter.StylePurple.Render("freenote")

	// Breadcrumb from view stack
	var crumbs []string
	for _, v := range m.viewStack {
		if t := v.Title(); t != "" {
			crumbs = append(crumbs, t)
		}
	}
	breadcrumb := ""
	if len(crumbs) > 0 {
		breadcrumb = " " + formatter.Dim("›") + " " + formatter.Dim(strings.Join(crumbs, " › "))
	}

	header := title + breadcrumb
	if cfg := m.state.App.Config; cfg != nil {
		header += "  " + formatter.Dim("["+cfg.Server.URL+"]")
	}

	sep := formatter.Dim(strings.Repeat("─", max(m.state.Width, 20)))
	return header + "\n" + sep
}

func (m *appModel) renderStatusBar() string {
	ws := m.state.Workspace

	var status string
	switch s := ws.Status(); s.Kind {
	case workspace.StatusSaved:
		status = formatter.StyleGreen.Render("✔ " + s.Text)
	case workspace.StatusError:
		status = formatter.StyleRed.Render("✘ " + s.Text)
	case workspace.StatusInfo:
		status = formatter.StyleYellow.Render(s.Text)
	}
	if ws.Session().Dirty() {
		if status != "" {
			status += "  "
		}
		status += formatter.Dim("● unsaved")
	}

	var hints []string
	if v := m.activeView(); v != nil {
		for _, b := range v.ShortHelp() {
			hints = append(hints, formatter.Dim(b.Help().Key+": "+b.Help().Desc))
		}
	}
	if len(m.viewStack) > 1 {
		hints = append(hints, formatter.Dim("esc: back"))
	}

	bar := strings.Join(hints, "  ")
	sepStyle := lipgloss.NewStyle().Foreground(formatter.ColorDim)
	sep := sepStyle.Render(strings.Repeat("─", max(m.state.Width, 20)))
	return sep + "\n" + status + "\n" + bar
}

// viewCapturesInput returns true if the active view has its own text input
// focused and should receive all key events.
func viewCapturesInput(v View) bool {
	c, ok := v.(inputCapturer)
	return ok && c.CapturesInput()
}
