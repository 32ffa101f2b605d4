package domain

import "fmt"

// Kind discriminates the two NoteObject variants. The string values are the
// "type" field of the wire format.
type Kind string

const (
	KindNote     Kind = "note"
	KindNotebook Kind = "notebook"
)

// ParseKind converts a wire or flag value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindNote, KindNotebook:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// DefaultTitle is the title the server gives a freshly created object.
func (k Kind) DefaultTitle() string {
	if k == KindNotebook {
		return "New Notebook"
	}
	return "New Note"
}

func (k Kind) String() string { return string(k) }
