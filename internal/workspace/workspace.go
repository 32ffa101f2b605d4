// Package workspace ties the tree cache, expansion set, edit session and
// autosave scheduler to the notes server. All state is mutated inside
// Update, which runs on bubbletea's event loop; network calls run as
// commands and report back as messages.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/freenote/freenote/internal/api"
	"github.com/freenote/freenote/internal/autosave"
	"github.com/freenote/freenote/internal/domain"
	"github.com/freenote/freenote/internal/expansion"
	"github.com/freenote/freenote/internal/render"
	"github.com/freenote/freenote/internal/session"
	"github.com/freenote/freenote/internal/tree"
	"github.com/rs/zerolog"
)

// DefaultStatusTTL is how long the status indicator stays visible.
const DefaultStatusTTL = 3 * time.Second

// Options configures a Workspace.
type Options struct {
	AutosaveInterval time.Duration
	StatusTTL        time.Duration
	Logger           zerolog.Logger
	Context          context.Context // base context for requests
}

// Workspace owns the client-side state of one notes session.
type Workspace struct {
	gw       api.Gateway
	ctx      context.Context
	log      zerolog.Logger
	cache    *tree.Cache
	open     *expansion.Set
	session  *session.Session
	autosave *autosave.Scheduler

	treeSeq   int
	selectSeq int
	pendingID int
	pending   bool

	statusTTL time.Duration
	statusSeq int
	status    Status

	rows   []render.Row
	markup string
}

// New creates a workspace talking to gw. The root notebook starts open.
func New(gw api.Gateway, opts Options) *Workspace {
	if opts.StatusTTL <= 0 {
		opts.StatusTTL = DefaultStatusTTL
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return &Workspace{
		gw:        gw,
		ctx:       opts.Context,
		log:       opts.Logger.With().Str("component", "workspace").Logger(),
		cache:     tree.New(),
		open:      expansion.New(domain.RootID),
		session:   session.New(),
		autosave:  autosave.New(opts.AutosaveInterval),
		statusTTL: opts.StatusTTL,
	}
}

// ── Accessors ────────────────────────────────────────────────────────────────

func (w *Workspace) Cache() *tree.Cache            { return w.cache }
func (w *Workspace) Expansion() *expansion.Set     { return w.open }
func (w *Workspace) Session() *session.Session     { return w.session }
func (w *Workspace) Autosave() *autosave.Scheduler { return w.autosave }
func (w *Workspace) Status() Status                { return w.status }

// Rows returns the visible tree rows from the last render.
func (w *Workspace) Rows() []render.Row { return w.rows }

// Markup returns the HTML rendering of the tree from the last render.
func (w *Workspace) Markup() string { return w.markup }

// Pending reports the note id whose fetch is outstanding, if any.
func (w *Workspace) Pending() (int, bool) { return w.pendingID, w.pending }

// ── Flows ────────────────────────────────────────────────────────────────────

// Init loads the tree and starts autosave.
func (w *Workspace) Init() tea.Cmd {
	return tea.Batch(w.Refresh(), w.autosave.Start())
}

// Refresh reloads the tree from the server. Only the most recent refresh
// is applied.
func (w *Workspace) Refresh() tea.Cmd {
	w.treeSeq++
	seq := w.treeSeq
	gw, ctx := w.gw, w.ctx
	return func() tea.Msg {
		root, err := gw.Tree(ctx)
		return treeLoadedMsg{seq: seq, root: root, err: err}
	}
}

// SelectNote switches the edit session to note id. Any pending edits of
// the current note are flushed before the new note is fetched. Selecting
// the note already being edited does nothing.
func (w *Workspace) SelectNote(id int) tea.Cmd {
	if w.session.IsEditing(id) {
		return nil
	}
	if n, ok := w.cache.FindByID(id); ok && !n.IsNote() {
		return nil
	}
	w.log.Debug().Int("note_id", id).Msg("select note")

	flush := w.Flush()
	w.selectSeq++
	w.pendingID, w.pending = id, true
	seq := w.selectSeq
	gw, ctx := w.gw, w.ctx
	fetch := func() tea.Msg {
		note, err := gw.Note(ctx, id)
		return noteFetchedMsg{id: id, seq: seq, note: note, err: err}
	}
	return inOrder(flush, fetch)
}

// ClearSelection ends the edit session without saving and abandons any
// outstanding note fetch.
func (w *Workspace) ClearSelection() {
	w.selectSeq++
	w.pending = false
	if id, ok := w.session.NoteID(); ok {
		w.log.Debug().Int("note_id", id).Msg("clear selection")
	}
	w.session.Clear()
	w.rerender()
}

// EditTitle updates the title of the note being edited. The tree shows the
// new title immediately; nothing is sent until the next flush.
func (w *Workspace) EditTitle(title string) bool {
	if !w.session.SetTitle(title) {
		return false
	}
	w.cache.UpdateTitle(w.currentID(), title)
	w.rerender()
	return true
}

// EditContent updates the body of the note being edited.
func (w *Workspace) EditContent(content string) bool {
	return w.session.SetContent(content)
}

// Flush persists the session if it differs from the last saved values and
// from every request already in flight.
func (w *Workspace) Flush() tea.Cmd {
	snap, ok := w.session.BeginFlush()
	if !ok {
		return nil
	}
	w.log.Debug().Int("note_id", snap.NoteID).Int("epoch", snap.Epoch).Msg("flush")
	gw, ctx := w.gw, w.ctx
	return func() tea.Msg {
		err := gw.ModifyNote(ctx, api.ModifyRequest{ID: snap.NoteID, Title: snap.Title, Content: snap.Content})
		return savedMsg{snap: snap, err: err}
	}
}

// CreateNoteObject asks the server for a new note or notebook under
// parent. On success the parent and its ancestors are opened and the tree
// reloaded.
func (w *Workspace) CreateNoteObject(parent int, kind domain.Kind) tea.Cmd {
	gw, ctx := w.gw, w.ctx
	return func() tea.Msg {
		id, err := gw.CreateNoteObject(ctx, parent, kind)
		return createdMsg{parent: parent, kind: kind, id: id, err: err}
	}
}

// DeleteNoteObject asks the server to delete id and its subtree. The root
// is refused without a request.
func (w *Workspace) DeleteNoteObject(id int) (tea.Cmd, error) {
	if id == domain.RootID {
		return w.setStatus(StatusError, "The root notebook cannot be deleted"), domain.ErrRootNotDeletable
	}
	gw, ctx := w.gw, w.ctx
	return func() tea.Msg {
		return deletedMsg{id: id, err: gw.DeleteNoteObject(ctx, id)}
	}, nil
}

// Notify shows a transient status message.
func (w *Workspace) Notify(kind StatusKind, text string) tea.Cmd {
	return w.setStatus(kind, text)
}

// ToggleNotebook opens or closes a notebook and re-renders.
func (w *Workspace) ToggleNotebook(id int) bool {
	opened := w.open.Toggle(id)
	w.rerender()
	return opened
}

// Update applies a message produced by one of the workspace commands. The
// second result reports whether the message belonged to the workspace.
func (w *Workspace) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case treeLoadedMsg:
		return w.onTreeLoaded(msg), true
	case noteFetchedMsg:
		return w.onNoteFetched(msg), true
	case savedMsg:
		return w.onSaved(msg), true
	case createdMsg:
		return w.onCreated(msg), true
	case deletedMsg:
		return w.onDeleted(msg), true
	case statusExpiredMsg:
		if msg.seq == w.statusSeq {
			w.status = Status{}
		}
		return nil, true
	case autosave.TickMsg:
		fire, next := w.autosave.Handle(msg)
		if !fire {
			return nil, true
		}
		return tea.Batch(w.Flush(), next), true
	}
	return nil, false
}

func (w *Workspace) onTreeLoaded(msg treeLoadedMsg) tea.Cmd {
	if msg.seq != w.treeSeq {
		return nil
	}
	if msg.err != nil {
		w.log.Warn().Err(msg.err).Msg("tree load failed")
		return w.setStatus(StatusError, "Failed to load notes")
	}
	if err := w.cache.Load(msg.root); err != nil {
		w.log.Error().Err(err).Msg("rejected tree")
		return w.setStatus(StatusError, "Server sent an invalid tree")
	}
	w.log.Debug().Int("objects", w.cache.Len()).Msg("tree loaded")

	if id, editing := w.session.NoteID(); editing {
		if _, ok := w.cache.FindByID(id); ok {
			w.cache.UpdateTitle(id, w.session.Title())
		} else {
			w.log.Debug().Int("note_id", id).Msg("selected note gone")
			w.ClearSelection()
		}
	}
	w.rerender()
	return nil
}

func (w *Workspace) onNoteFetched(msg noteFetchedMsg) tea.Cmd {
	if msg.seq != w.selectSeq {
		return nil
	}
	w.pending = false
	switch {
	case errors.Is(msg.err, api.ErrNotFound):
		// Edits typed while the fetch was out still belong to the old note.
		flush := w.Flush()
		w.ClearSelection()
		return tea.Batch(flush, w.setStatus(StatusInfo, "Note no longer exists"))
	case msg.err != nil:
		w.log.Warn().Err(msg.err).Int("note_id", msg.id).Msg("note fetch failed")
		return w.setStatus(StatusError, "Failed to open note")
	case !msg.note.IsNote():
		return w.setStatus(StatusError, fmt.Sprintf("Object %d is not a note", msg.id))
	}
	flush := w.Flush()
	w.session.Begin(msg.id, msg.note.Title, msg.note.Content)
	w.rerender()
	return flush
}

func (w *Workspace) onSaved(msg savedMsg) tea.Cmd {
	if msg.err != nil {
		w.log.Warn().Err(msg.err).Int("note_id", msg.snap.NoteID).Msg("save failed")
		if !w.session.Fail(msg.snap) {
			w.log.Debug().Int("note_id", msg.snap.NoteID).Int("epoch", msg.snap.Epoch).Msg("stale save failure dropped")
			return nil
		}
		return w.setStatus(StatusError, textSaveFailed)
	}
	if !w.session.Ack(msg.snap) {
		return nil
	}
	return w.setStatus(StatusSaved, textSaved)
}

func (w *Workspace) onCreated(msg createdMsg) tea.Cmd {
	if msg.err != nil {
		w.log.Warn().Err(msg.err).Int("parent", msg.parent).Msg("create failed")
		return w.setStatus(StatusError, fmt.Sprintf("Failed to create %s", msg.kind))
	}
	w.open.OpenWithAncestors(msg.parent, w.cache)
	w.rerender()
	return w.Refresh()
}

func (w *Workspace) onDeleted(msg deletedMsg) tea.Cmd {
	if msg.err != nil {
		w.log.Warn().Err(msg.err).Int("id", msg.id).Msg("delete failed")
		return w.setStatus(StatusError, "Failed to delete")
	}
	if w.selectedWithin(msg.id) {
		w.ClearSelection()
	}
	return w.Refresh()
}

// selectedWithin reports whether the note being edited is id or lies
// inside it.
func (w *Workspace) selectedWithin(id int) bool {
	cur, editing := w.session.NoteID()
	if !editing {
		return false
	}
	if cur == id {
		return true
	}
	for _, a := range w.cache.Ancestors(cur) {
		if a == id {
			return true
		}
	}
	return false
}

func (w *Workspace) currentID() int {
	id, _ := w.session.NoteID()
	return id
}

func (w *Workspace) setStatus(kind StatusKind, text string) tea.Cmd {
	w.statusSeq++
	w.status = Status{Kind: kind, Text: text}
	seq := w.statusSeq
	return tea.Tick(w.statusTTL, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}

func (w *Workspace) rerender() {
	root := w.cache.Root()
	w.rows = render.Rows(root, w.open)
	w.markup = render.HTML(root, w.open)
}
