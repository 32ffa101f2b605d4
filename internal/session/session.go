// Package session holds the edit-session state for the note that is open
// in the editor: which note it is, what was last saved, what the user has
// typed since, and which saves are still on the wire.
//
// The session is the single source of truth for the editor surfaces; the
// UI writes edits into it and re-reads it whenever Revision changes.
package session

// State is the selection state.
type State int

const (
	Idle State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// Snapshot is a persist request: the note id plus the title and content
// being sent. Epoch ties it to the session it was taken from.
type Snapshot struct {
	NoteID  int
	Title   string
	Content string
	Epoch   int
}

func (s Snapshot) sameText(title, content string) bool {
	return s.Title == title && s.Content == content
}

// Session is the edit session. The zero value is Idle.
type Session struct {
	state  State
	noteID int
	epoch  int

	savedTitle   string
	savedContent string
	title        string
	content      string

	inflight []Snapshot
}

// New returns an idle session.
func New() *Session { return &Session{} }

func (s *Session) State() State { return s.state }

// NoteID returns the id of the note being edited.
func (s *Session) NoteID() (int, bool) {
	return s.noteID, s.state == Editing
}

// IsEditing reports whether the session is editing id.
func (s *Session) IsEditing(id int) bool {
	return s.state == Editing && s.noteID == id
}

// Revision changes every time the session begins or ends. Editor surfaces
// compare it to decide when to repopulate from Title and Content.
func (s *Session) Revision() int { return s.epoch }

// Begin opens a session on a freshly fetched note. The fetched values are
// both the live text and the last-saved snapshot.
func (s *Session) Begin(id int, title, content string) {
	s.epoch++
	s.state = Editing
	s.noteID = id
	s.savedTitle, s.savedContent = title, content
	s.title, s.content = title, content
	s.inflight = nil
}

// Clear ends the session without saving.
func (s *Session) Clear() {
	s.epoch++
	s.state = Idle
	s.noteID = 0
	s.savedTitle, s.savedContent = "", ""
	s.title, s.content = "", ""
	s.inflight = nil
}

func (s *Session) Title() string   { return s.title }
func (s *Session) Content() string { return s.content }

// LastSaved returns the snapshot the server is known to hold.
func (s *Session) LastSaved() (title, content string) {
	return s.savedTitle, s.savedContent
}

// SetTitle records a title edit. It returns false when idle.
func (s *Session) SetTitle(title string) bool {
	if s.state != Editing {
		return false
	}
	s.title = title
	return true
}

// SetContent records a content edit. It returns false when idle.
func (s *Session) SetContent(content string) bool {
	if s.state != Editing {
		return false
	}
	s.content = content
	return true
}

// Dirty reports whether the live text differs from the last-saved snapshot.
func (s *Session) Dirty() bool {
	return s.state == Editing && (s.title != s.savedTitle || s.content != s.savedContent)
}

// InFlight returns the number of saves sent and not yet answered.
func (s *Session) InFlight() int { return len(s.inflight) }

// BeginFlush returns the persist request for the current text and marks it
// in flight. It returns false when there is nothing to send: the session
// is idle, the text matches the last-saved snapshot, or an identical
// request is already in flight.
func (s *Session) BeginFlush() (Snapshot, bool) {
	if !s.Dirty() {
		return Snapshot{}, false
	}
	for _, f := range s.inflight {
		if f.sameText(s.title, s.content) {
			return Snapshot{}, false
		}
	}
	snap := Snapshot{NoteID: s.noteID, Title: s.title, Content: s.content, Epoch: s.epoch}
	s.inflight = append(s.inflight, snap)
	return snap, true
}

// Ack records a successful save. The snapshot becomes the last-saved
// state only if it belongs to the current session; the return value says
// whether it did.
func (s *Session) Ack(snap Snapshot) bool {
	if !s.owns(snap) {
		return false
	}
	s.drop(snap)
	s.savedTitle, s.savedContent = snap.Title, snap.Content
	return true
}

// Fail records a failed save. The last-saved snapshot is left alone so the
// next flush retries the same difference. The return value says whether
// the snapshot belonged to the current session.
func (s *Session) Fail(snap Snapshot) bool {
	if !s.owns(snap) {
		return false
	}
	s.drop(snap)
	return true
}

func (s *Session) owns(snap Snapshot) bool {
	return s.state == Editing && snap.Epoch == s.epoch && snap.NoteID == s.noteID
}

func (s *Session) drop(snap Snapshot) {
	for i, f := range s.inflight {
		if f == snap {
			s.inflight = append(s.inflight[:i], s.inflight[i+1:]...)
			return
		}
	}
}
