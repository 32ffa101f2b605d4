package cli

import (
	"context"
	"testing"
	"time"

	"github.com/freenote/freenote/internal/autosave"
	"github.com/freenote/freenote/internal/domain"
	"github.com/freenote/freenote/internal/render"
	"github.com/freenote/freenote/internal/teatest"
	"github.com/freenote/freenote/internal/testutil"
	"github.com/freenote/freenote/internal/workspace"
	"github.com/stretchr/testify/require"
)

// TestDriver wraps teatest.Driver with inspection methods for the
// appModel internals (view stack, workspace, notes view).
type TestDriver struct {
	*teatest.Driver
	App     *App
	Gateway *testutil.FakeGateway
	Copied  []string
}

// NewTestDriver builds the TUI over a fake gateway serving root, sets the
// terminal size and drains Init(), which loads the tree.
func NewTestDriver(t *testing.T, root *domain.NoteObject) *TestDriver {
	t.Helper()

	app, gw := testApp(t, root)
	app.Config.Autosave = time.Hour
	app.Config.Status = time.Hour

	td := &TestDriver{App: app, Gateway: gw}
	app.Clipboard = func(s string) error {
		td.Copied = append(td.Copied, s)
		return nil
	}

	m := newAppModel(context.Background(), app)
	td.Driver = teatest.New(t, m, teatest.WithSize(120, 40))
	td.DrainInit()
	require.True(t, td.Workspace().Cache().Loaded(), "tree should load on init")

	return td
}

// ── High-level helpers ───────────────────────────────────────────────────────

// MoveTo moves the tree cursor onto id, which must be visible.
func (d *TestDriver) MoveTo(id int) {
	d.T.Helper()
	want := render.IndexOf(d.Workspace().Rows(), id)
	require.GreaterOrEqual(d.T, want, 0, "id %d is not visible", id)
	for d.notes().cursor < want {
		d.PressKey('j')
	}
	for d.notes().cursor > want {
		d.PressKey('k')
	}
}

// Open moves onto id and presses enter.
func (d *TestDriver) Open(id int) {
	d.T.Helper()
	d.MoveTo(id)
	d.PressEnter()
}

// Tick delivers the current autosave tick.
func (d *TestDriver) Tick() {
	d.T.Helper()
	d.Send(autosave.TickMsg{Generation: d.Workspace().Autosave().Generation(), At: time.Now()})
}

// ── Inspection ───────────────────────────────────────────────────────────────

func (d *TestDriver) appModel() appModel {
	return d.Model.(appModel)
}

func (d *TestDriver) Workspace() *workspace.Workspace {
	return d.appModel().state.Workspace
}

func (d *TestDriver) notes() *notesView {
	return d.appModel().viewStack[0].(*notesView)
}

// ActiveView returns the top view on the stack.
func (d *TestDriver) ActiveView() View {
	m := d.appModel()
	return m.activeView()
}

// ActiveViewID returns the ViewID of the top view on the stack.
func (d *TestDriver) ActiveViewID() ViewID {
	v := d.ActiveView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

// StackDepth returns the number of views on the stack.
func (d *TestDriver) StackDepth() int {
	return len(d.appModel().viewStack)
}

// CursorID returns the id of the row under the tree cursor.
func (d *TestDriver) CursorID() int {
	row, ok := d.notes().currentRow()
	require.True(d.T, ok)
	return row.ID
}

// EditingID returns the note being edited, or -1.
func (d *TestDriver) EditingID() int {
	id, ok := d.Workspace().Session().NoteID()
	if !ok {
		return -1
	}
	return id
}
