// Package store persists each user's note tree as a single JSON document
// alongside a per-user id counter. Every mutation is a read-modify-write
// of that document inside one transaction.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/freenote/freenote/internal/domain"
)

var (
	// ErrUserExists is returned when adding a user id that is taken.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned for operations on an unknown user.
	ErrUserNotFound = errors.New("user not found")
)

// FirstFreeID is the counter value for a new user. Ids below it are used
// by the default tree.
const FirstFreeID = 2

// Patch lists the fields of a modify request. Nil fields are left alone.
// Content is ignored for notebooks.
type Patch struct {
	Title   *string
	Content *string
}

// Store is the persistence behind the reference server.
type Store interface {
	AddUser(ctx context.Context, userID, email string) error
	UserExists(ctx context.Context, userID string) (bool, error)

	Tree(ctx context.Context, userID string) (*domain.NoteObject, error)
	Note(ctx context.Context, userID string, id int) (*domain.NoteObject, error)
	Modify(ctx context.Context, userID string, id int, patch Patch) error
	Create(ctx context.Context, userID string, parent int, kind domain.Kind) (int, error)
	Delete(ctx context.Context, userID string, id int) error

	Close() error
}

// EnsureUser adds userID unless it already exists.
func EnsureUser(ctx context.Context, s Store, userID, email string) error {
	ok, err := s.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := s.AddUser(ctx, userID, email); err != nil && !errors.Is(err, ErrUserExists) {
		return err
	}
	return nil
}

// DefaultTree is the tree every new user starts with.
func DefaultTree() *domain.NoteObject {
	return domain.NewNotebook(domain.RootID, "Notes",
		domain.NewNote(1, "My First Note", "Hello, World!"),
	)
}

// document is one user's tree plus the next id to hand out.
type document struct {
	root    *domain.NoteObject
	counter int
}

func (d *document) note(id int) (*domain.NoteObject, error) {
	n := domain.Find(d.root, id)
	if n == nil {
		return nil, fmt.Errorf("object %d: %w", id, domain.ErrNotFound)
	}
	return domain.Clone(n), nil
}

func (d *document) modify(id int, patch Patch) error {
	n := domain.Find(d.root, id)
	if n == nil {
		return fmt.Errorf("object %d: %w", id, domain.ErrNotFound)
	}
	if patch.Content != nil && n.IsNote() {
		n.Content = *patch.Content
	}
	if patch.Title != nil {
		n.Title = *patch.Title
	}
	return nil
}

func (d *document) create(parent int, kind domain.Kind) (int, error) {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return 0, err
	}
	id := d.counter
	child := domain.NewNote(id, kind.DefaultTitle(), "")
	if kind == domain.KindNotebook {
		child = domain.NewNotebook(id, kind.DefaultTitle())
	}
	if err := domain.Insert(d.root, parent, child); err != nil {
		return 0, err
	}
	d.counter++
	return id, nil
}

func (d *document) delete(id int) error {
	_, err := domain.Remove(d.root, id)
	return err
}
