package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/freenote/freenote/internal/cli/formatter"
	"github.com/freenote/freenote/internal/domain"
	"github.com/freenote/freenote/internal/render"
	"github.com/freenote/freenote/internal/workspace"
	"github.com/muesli/reflow/truncate"
)

type focusArea int

const (
	focusTree focusArea = iota
	focusTitle
	focusContent
)

type notesKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Open        key.Binding
	NewNote     key.Binding
	NewNotebook key.Binding
	Delete      key.Binding
	Refresh     key.Binding
	Focus       key.Binding
	Back        key.Binding
	Save        key.Binding
	Clear       key.Binding
	Copy        key.Binding
	Quit        key.Binding
}

func defaultNotesKeyMap() notesKeyMap {
	return notesKeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		NewNote:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new note")),
		NewNotebook: key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "new notebook")),
		Delete:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Focus:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "edit")),
		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "tree")),
		Save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Clear:       key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "close note")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

// notesView is the tree pane plus the editor for the selected note. The
// inputs mirror the edit session: typing feeds the workspace, and the
// inputs are reloaded whenever the session revision moves.
type notesView struct {
	state *SharedState
	ws    *workspace.Workspace
	keys  notesKeyMap

	cursor   int
	cursorID int
	focus    focusArea

	title    textinput.Model
	content  textarea.Model
	revision int
}

func newNotesView(state *SharedState) *notesView {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "Title"

	ta := textarea.New()
	ta.Placeholder = "Write something…"
	ta.ShowLineNumbers = false
	ta.Prompt = ""

	v := &notesView{
		state:    state,
		ws:       state.Workspace,
		keys:     defaultNotesKeyMap(),
		cursorID: domain.RootID,
		title:    ti,
		content:  ta,
		revision: state.Workspace.Session().Revision(),
	}
	v.resize()
	return v
}

func (v *notesView) ID() ViewID    { return ViewNotes }
func (v *notesView) Title() string { return "Notes" }

func (v *notesView) ShortHelp() []key.Binding {
	if v.focus != focusTree {
		return []key.Binding{v.keys.Focus, v.keys.Back, v.keys.Save}
	}
	return []key.Binding{
		v.keys.Open, v.keys.NewNote, v.keys.NewNotebook, v.keys.Delete,
		v.keys.Refresh, v.keys.Focus, v.keys.Copy, v.keys.Quit,
	}
}

// CapturesInput is true while a text field has focus.
func (v *notesView) CapturesInput() bool { return v.focus != focusTree }

func (v *notesView) Init() tea.Cmd { return nil }

func (v *notesView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize()
		return v, nil
	case tea.KeyMsg:
		if v.focus == focusTree {
			return v, v.handleTreeKey(msg)
		}
		return v, v.handleEditorKey(msg)
	}

	// Cursor blink and other input internals.
	var cmd tea.Cmd
	switch v.focus {
	case focusTitle:
		v.title, cmd = v.title.Update(msg)
	case focusContent:
		v.content, cmd = v.content.Update(msg)
	}
	return v, cmd
}

func (v *notesView) handleTreeKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.moveCursor(-1)
	case key.Matches(msg, v.keys.Down):
		v.moveCursor(1)
	case key.Matches(msg, v.keys.Open):
		row, ok := v.currentRow()
		if !ok {
			return nil
		}
		if row.IsNotebook() {
			v.ws.ToggleNotebook(row.ID)
			v.placeCursor()
			return nil
		}
		return v.ws.SelectNote(row.ID)
	case key.Matches(msg, v.keys.NewNote):
		return v.ws.CreateNoteObject(v.targetNotebook(), domain.KindNote)
	case key.Matches(msg, v.keys.NewNotebook):
		return v.ws.CreateNoteObject(v.targetNotebook(), domain.KindNotebook)
	case key.Matches(msg, v.keys.Delete):
		row, ok := v.currentRow()
		if !ok {
			return nil
		}
		del, err := v.ws.DeleteNoteObject(row.ID)
		if err != nil {
			return del
		}
		return pushView(newDeleteConfirm(v.state, row, del))
	case key.Matches(msg, v.keys.Refresh):
		return v.ws.Refresh()
	case key.Matches(msg, v.keys.Focus):
		return v.setFocus(focusTitle)
	case key.Matches(msg, v.keys.Save):
		return v.ws.Flush()
	case key.Matches(msg, v.keys.Clear):
		v.ws.ClearSelection()
		v.WorkspaceChanged()
	case key.Matches(msg, v.keys.Copy):
		return v.copyContent()
	}
	return nil
}

func (v *notesView) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v.setFocus(focusTree)
	case key.Matches(msg, v.keys.Focus):
		if v.focus == focusTitle {
			return v.setFocus(focusContent)
		}
		return v.setFocus(focusTree)
	case key.Matches(msg, v.keys.Save):
		return v.ws.Flush()
	case key.Matches(msg, v.keys.Clear):
		v.ws.ClearSelection()
		v.WorkspaceChanged()
		return nil
	}

	var cmd tea.Cmd
	switch v.focus {
	case focusTitle:
		// Titles are single-line.
		if msg.Type == tea.KeyEnter {
			return v.setFocus(focusContent)
		}
		v.title, cmd = v.title.Update(msg)
		if val := v.title.Value(); val != v.ws.Session().Title() {
			v.ws.EditTitle(val)
			v.placeCursor()
		}
	case focusContent:
		v.content, cmd = v.content.Update(msg)
		if val := v.content.Value(); val != v.ws.Session().Content() {
			v.ws.EditContent(val)
		}
	}
	return cmd
}

// WorkspaceChanged reloads the inputs when a different session began or
// the session ended, and keeps the cursor on the same row id.
func (v *notesView) WorkspaceChanged() {
	s := v.ws.Session()
	if rev := s.Revision(); rev != v.revision {
		v.revision = rev
		v.title.SetValue(s.Title())
		v.content.SetValue(s.Content())
		if _, editing := s.NoteID(); !editing {
			v.setFocus(focusTree)
		}
	}
	v.placeCursor()
}

func (v *notesView) setFocus(f focusArea) tea.Cmd {
	if _, editing := v.ws.Session().NoteID(); !editing {
		f = focusTree
	}
	v.focus = f
	v.title.Blur()
	v.content.Blur()
	switch f {
	case focusTitle:
		return v.title.Focus()
	case focusContent:
		return v.content.Focus()
	}
	return nil
}

func (v *notesView) moveCursor(delta int) {
	rows := v.ws.Rows()
	if len(rows) == 0 {
		return
	}
	v.cursor = min(max(v.cursor+delta, 0), len(rows)-1)
	v.cursorID = rows[v.cursor].ID
}

func (v *notesView) placeCursor() {
	rows := v.ws.Rows()
	if len(rows) == 0 {
		v.cursor = 0
		return
	}
	if i := render.IndexOf(rows, v.cursorID); i >= 0 {
		v.cursor = i
	} else {
		v.cursor = min(v.cursor, len(rows)-1)
	}
	v.cursorID = rows[v.cursor].ID
}

func (v *notesView) currentRow() (render.Row, bool) {
	rows := v.ws.Rows()
	if v.cursor < 0 || v.cursor >= len(rows) {
		return render.Row{}, false
	}
	return rows[v.cursor], true
}

// targetNotebook is where n and N create: the notebook under the cursor,
// or the notebook holding the note under the cursor.
func (v *notesView) targetNotebook() int {
	row, ok := v.currentRow()
	if !ok {
		return domain.RootID
	}
	if row.IsNotebook() {
		return row.ID
	}
	if parent, ok := v.ws.Cache().ParentOf(row.ID); ok {
		return parent
	}
	return domain.RootID
}

func (v *notesView) copyContent() tea.Cmd {
	if _, editing := v.ws.Session().NoteID(); !editing {
		return v.ws.Notify(workspace.StatusInfo, "Open a note to copy it")
	}
	if err := v.state.copyText(v.ws.Session().Content()); err != nil {
		return v.ws.Notify(workspace.StatusError, fmt.Sprintf("Copy failed: %v", err))
	}
	return v.ws.Notify(workspace.StatusInfo, "Copied to clipboard")
}

// ── layout ───────────────────────────────────────────────────────────────────

func (v *notesView) paneWidths() (tree, editor int) {
	width := v.state.Width
	if width <= 0 {
		width = 80
	}
	tree = max(width/3, 20)
	editor = max(width-tree-3, 10)
	return tree, editor
}

func (v *notesView) resize() {
	_, editor := v.paneWidths()
	v.title.Width = editor - 1
	v.content.SetWidth(editor)
	v.content.SetHeight(max(v.state.ContentHeight()-3, 3))
}

func (v *notesView) View() string {
	treeW, editorW := v.paneWidths()
	height := v.state.ContentHeight()

	treePane := lipgloss.NewStyle().Width(treeW).Height(height).Render(v.renderTree(treeW, height))
	sep := formatter.Dim(strings.TrimRight(strings.Repeat("│\n", height), "\n"))
	editor := lipgloss.NewStyle().Width(editorW).Height(height).PaddingLeft(1).Render(v.renderEditor())

	return lipgloss.JoinHorizontal(lipgloss.Top, treePane, " "+sep, editor)
}

func (v *notesView) renderTree(width, height int) string {
	rows := v.ws.Rows()
	if len(rows) == 0 {
		return formatter.Dim("Loading…")
	}

	editingID, editing := v.ws.Session().NoteID()

	start := 0
	if v.cursor >= height {
		start = v.cursor - height + 1
	}
	end := min(start+height, len(rows))

	var b strings.Builder
	for i := start; i < end; i++ {
		r := rows[i]
		indent := strings.Repeat("  ", r.Depth)
		marker := "  "
		if r.IsNotebook() {
			marker = "▸ "
			if r.Open {
				marker = "▾ "
			}
		}
		room := max(width-lipgloss.Width(indent+marker), 1)
		line := indent + marker + truncate.StringWithTail(r.Title, uint(room), "…")

		style := formatter.StyleFg
		switch {
		case i == v.cursor && v.focus == focusTree:
			style = formatter.StyleCursor
		case i == v.cursor:
			style = formatter.StyleBold
		case editing && r.ID == editingID:
			style = formatter.StyleGreen
		case r.IsNotebook():
			style = formatter.StyleYellow
		}
		b.WriteString(style.Render(line))
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (v *notesView) renderEditor() string {
	s := v.ws.Session()
	if _, editing := s.NoteID(); !editing {
		if id, pending := v.ws.Pending(); pending {
			return formatter.Dim(fmt.Sprintf("Loading note #%d…", id))
		}
		return formatter.Dim("Select a note and press enter to edit it.")
	}

	label := func(text string, f focusArea) string {
		if v.focus == f {
			return formatter.StyleHeader.Render(text)
		}
		return formatter.Dim(text)
	}
	return strings.Join([]string{
		label("TITLE", focusTitle),
		v.title.View(),
		"",
		label("CONTENT", focusContent),
		v.content.View(),
	}, "\n")
}
