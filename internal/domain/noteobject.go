package domain

import (
	"encoding/json"
	"fmt"
)

// RootID is the id of the root notebook. Every tree has exactly one root
// and it can never be deleted.
const RootID = 0

// NoteObject is a node of the note tree: either a note (leaf with content)
// or a notebook (ordered container). Content is only meaningful for notes
// and Children only for notebooks.
type NoteObject struct {
	ID       int
	Kind     Kind
	Title    string
	Content  string
	Children []*NoteObject
}

// NewNote returns a note object.
func NewNote(id int, title, content string) *NoteObject {
	return &NoteObject{ID: id, Kind: KindNote, Title: title, Content: content}
}

// NewNotebook returns a notebook holding children in the given order.
func NewNotebook(id int, title string, children ...*NoteObject) *NoteObject {
	if children == nil {
		children = []*NoteObject{}
	}
	return &NoteObject{ID: id, Kind: KindNotebook, Title: title, Children: children}
}

func (n *NoteObject) IsNote() bool     { return n != nil && n.Kind == KindNote }
func (n *NoteObject) IsNotebook() bool { return n != nil && n.Kind == KindNotebook }

// wireObject is the JSON shape exchanged with the server:
// {id, title, type, notes (notebook only), content (note only)}.
type wireObject struct {
	ID      int            `json:"id"`
	Type    Kind           `json:"type,omitempty"`
	Title   string         `json:"title"`
	Content *string        `json:"content,omitempty"`
	Notes   *[]*NoteObject `json:"notes,omitempty"`
}

func (n *NoteObject) MarshalJSON() ([]byte, error) {
	w := wireObject{ID: n.ID, Type: n.Kind, Title: n.Title}
	switch n.Kind {
	case KindNotebook:
		children := n.Children
		if children == nil {
			children = []*NoteObject{}
		}
		w.Notes = &children
	default:
		content := n.Content
		w.Content = &content
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts both the tree shape and the single-note shape
// returned by GET /api/notes/{id}, which may omit "type". A missing type
// is inferred from the presence of "notes".
func (n *NoteObject) UnmarshalJSON(data []byte) error {
	var w wireObject
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind := w.Type
	if kind == "" {
		kind = KindNote
		if w.Notes != nil {
			kind = KindNotebook
		}
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return fmt.Errorf("note object %d: %w", w.ID, err)
	}

	*n = NoteObject{ID: w.ID, Kind: kind, Title: w.Title}
	switch kind {
	case KindNotebook:
		n.Children = []*NoteObject{}
		if w.Notes != nil {
			n.Children = *w.Notes
		}
	case KindNote:
		if w.Content != nil {
			n.Content = *w.Content
		}
	}
	return nil
}
