package domain

import "errors"

var (
	// ErrNotFound indicates no NoteObject with the requested id exists.
	ErrNotFound = errors.New("note object not found")

	// ErrNotNotebook indicates an operation that needs a container was
	// given the id of a note.
	ErrNotNotebook = errors.New("note object is not a notebook")

	// ErrRootNotDeletable is returned when asked to delete the root notebook.
	ErrRootNotDeletable = errors.New("root notebook cannot be deleted")

	// ErrInvalidTree indicates a tree that breaks the structural invariants
	// (root id, root kind, unique ids, leaf notes).
	ErrInvalidTree = errors.New("invalid note tree")

	// ErrUnknownKind indicates a "type" value other than note or notebook.
	ErrUnknownKind = errors.New("unknown note object type")
)
