package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/freenote/freenote/internal/api"
	"github.com/freenote/freenote/internal/domain"
)

// Gateway operations recorded by FakeGateway.
const (
	OpTree    = "tree"
	OpOutline = "outline"
	OpNote    = "note"
	OpModify  = "modify"
	OpCreate  = "create"
	OpDelete  = "delete"
)

// Call is one recorded gateway request.
type Call struct {
	Op      string
	ID      int
	Parent  int
	Kind    domain.Kind
	Title   string
	Content string
}

// FakeGateway is an in-memory api.Gateway. It applies requests to its own
// copy of a tree the way the server would, records every call, and can be
// told to fail upcoming calls.
type FakeGateway struct {
	mu     sync.Mutex
	root   *domain.NoteObject
	nextID int
	calls  []Call
	fail   map[string][]error
}

var _ api.Gateway = (*FakeGateway)(nil)

// NewFakeGateway serves a copy of root.
func NewFakeGateway(root *domain.NoteObject) *FakeGateway {
	next := 2
	domain.Walk(root, func(n, _ *domain.NoteObject) bool {
		if n.ID >= next {
			next = n.ID + 1
		}
		return true
	})
	return &FakeGateway{root: domain.Clone(root), nextID: next, fail: make(map[string][]error)}
}

// FailNext makes the next call of op return err. Calls queue up.
func (f *FakeGateway) FailNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = append(f.fail[op], err)
}

// Calls returns every recorded call in order.
func (f *FakeGateway) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsFor returns the recorded calls of one operation.
func (f *FakeGateway) CallsFor(op string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Ops returns the sequence of recorded operation names.
func (f *FakeGateway) Ops() []string {
	var out []string
	for _, c := range f.Calls() {
		out = append(out, c.Op)
	}
	return out
}

// ResetCalls forgets recorded calls.
func (f *FakeGateway) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Root returns a copy of the server-side tree.
func (f *FakeGateway) Root() *domain.NoteObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.Clone(f.root)
}

// Mutate edits the server-side tree directly, as another client would.
func (f *FakeGateway) Mutate(fn func(root *domain.NoteObject)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.root)
}

func (f *FakeGateway) record(c Call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if queued := f.fail[c.Op]; len(queued) > 0 {
		f.fail[c.Op] = queued[1:]
		return queued[0]
	}
	return nil
}

func (f *FakeGateway) Tree(context.Context) (*domain.NoteObject, error) {
	if err := f.record(Call{Op: OpTree}); err != nil {
		return nil, err
	}
	return f.Root(), nil
}

// TreeOutline is Tree without note content.
func (f *FakeGateway) TreeOutline(context.Context) (*domain.NoteObject, error) {
	if err := f.record(Call{Op: OpOutline}); err != nil {
		return nil, err
	}
	return domain.StripContent(f.Root()), nil
}

func (f *FakeGateway) Note(_ context.Context, id int) (*domain.NoteObject, error) {
	if err := f.record(Call{Op: OpNote, ID: id}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := domain.Find(f.root, id)
	if n == nil {
		return nil, fmt.Errorf("fetching note %d: %w", id, api.ErrNotFound)
	}
	return domain.Clone(n), nil
}

func (f *FakeGateway) ModifyNote(_ context.Context, req api.ModifyRequest) error {
	if err := f.record(Call{Op: OpModify, ID: req.ID, Title: req.Title, Content: req.Content}); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := domain.Find(f.root, req.ID)
	if n == nil {
		return fmt.Errorf("saving note %d: %w", req.ID, api.ErrNotFound)
	}
	n.Title = req.Title
	if n.IsNote() {
		n.Content = req.Content
	}
	return nil
}

func (f *FakeGateway) CreateNoteObject(_ context.Context, parent int, kind domain.Kind) (int, error) {
	if err := f.record(Call{Op: OpCreate, Parent: parent, Kind: kind}); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	child := domain.NewNote(id, kind.DefaultTitle(), "")
	if kind == domain.KindNotebook {
		child = domain.NewNotebook(id, kind.DefaultTitle())
	}
	if err := domain.Insert(f.root, parent, child); err != nil {
		return 0, err
	}
	f.nextID++
	return id, nil
}

func (f *FakeGateway) DeleteNoteObject(_ context.Context, id int) error {
	if err := f.record(Call{Op: OpDelete, ID: id}); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := domain.Remove(f.root, id)
	return err
}
