package cli

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freenote/freenote/internal/api"
	"github.com/freenote/freenote/internal/config"
	"github.com/freenote/freenote/internal/domain"
	"github.com/freenote/freenote/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testApp wires an App backed by a fake gateway serving root.
func testApp(t *testing.T, root *domain.NoteObject) (*App, *testutil.FakeGateway) {
	t.Helper()
	gw := testutil.NewFakeGateway(root)
	return &App{
		Config:    config.Default(),
		Gateway:   gw,
		Logger:    zerolog.Nop(),
		Clipboard: func(string) error { return nil },
	}, gw
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	return executeCmdWithInput(t, app, nil, args...)
}

func executeCmdWithInput(t *testing.T, app *App, in io.Reader, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	if in != nil {
		root.SetIn(in)
	}
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// --- Root ---

func TestRootCmd_NonInteractiveShowsHelp(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())
	app.IsInteractive = func() bool { return false }

	out, err := executeCmd(t, app)
	require.NoError(t, err)

	assert.Contains(t, out, "Browse and edit a tree of notes")
	assert.Contains(t, out, "serve")
	assert.Empty(t, gw.Calls(), "help must not touch the server")
}

func TestRootCmd_SetupKeepsInjectedGateway(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())

	_, err := executeCmd(t, app, "tree")
	require.NoError(t, err)

	assert.Same(t, gw, app.Gateway)
}

func TestRootCmd_LoadsConfigWithFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("FREENOTE_SERVER_USER", "alice")

	gw := testutil.NewFakeGateway(testutil.SampleTree())
	app := &App{Gateway: gw}
	defer app.Close()

	_, err := executeCmd(t, app, "--server", "http://notes.test:8080", "tree")
	require.NoError(t, err)

	require.NotNil(t, app.Config)
	assert.Equal(t, "http://notes.test:8080", app.Config.Server.URL)
	assert.Equal(t, "alice", app.Config.Server.User)
}

func TestRootCmd_InvalidConfigFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	app := &App{Gateway: testutil.NewFakeGateway(testutil.SampleTree())}
	_, err := executeCmd(t, app, "--server", "not a url", "tree")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.KeyServerURL)
}

// --- tree ---

func TestTreeCmd_TextShowsRootLevel(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())

	out, err := executeCmd(t, app, "tree")
	require.NoError(t, err)

	assert.Contains(t, out, "#0 Notes")
	assert.Contains(t, out, "#1 Work")
	assert.Contains(t, out, "[ 2 items ]")
	assert.Contains(t, out, "#5 Inbox")
	assert.NotContains(t, out, "Plan", "closed notebooks hide their children")
	assert.Equal(t, []string{testutil.OpOutline}, gw.Ops())
}

func TestTreeCmd_ExpandAll(t *testing.T) {
	app, _ := testApp(t, testutil.SampleTree())

	out, err := executeCmd(t, app, "tree", "--expand-all")
	require.NoError(t, err)

	for _, want := range []string{"#2 Plan", "#3 Archive", "#4 Old"} {
		assert.Contains(t, out, want)
	}
}

func TestTreeCmd_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{formatJSON, []string{`"type": "notebook"`, `"title": "Old"`}},
		{formatYAML, []string{"title: Notes", "type: note", "title: Old"}},
		{formatHTML, []string{`<details data-id="0" open>`, `<details data-id="1">`}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			app, _ := testApp(t, testutil.SampleTree())

			out, err := executeCmd(t, app, "tree", "--format", tt.format)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			assert.NotContains(t, out, "<p>plan</p>", "listings carry no content")
		})
	}
}

func TestTreeCmd_UnknownFormat(t *testing.T) {
	app, _ := testApp(t, testutil.SampleTree())

	_, err := executeCmd(t, app, "tree", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
}

func TestTreeCmd_GatewayError(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())
	gw.FailNext(testutil.OpOutline, api.ErrUnavailable)

	_, err := executeCmd(t, app, "tree")
	assert.ErrorIs(t, err, api.ErrUnavailable)
}

// --- show ---

func TestShowCmd(t *testing.T) {
	app, _ := testApp(t, testutil.SampleTree())

	out, err := executeCmd(t, app, "show", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "#2 Plan")
	assert.Contains(t, out, "<p>plan</p>")
}

func TestShowCmd_Raw(t *testing.T) {
	app, _ := testApp(t, testutil.SampleTree())

	out, err := executeCmd(t, app, "show", "2", "--raw")
	require.NoError(t, err)
	assert.Equal(t, "<p>plan</p>\n", out)
}

func TestShowCmd_Errors(t *testing.T) {
	app, _ := testApp(t, testutil.SampleTree())

	_, err := executeCmd(t, app, "show", "99")
	assert.ErrorIs(t, err, api.ErrNotFound)

	_, err = executeCmd(t, app, "show", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid id "abc"`)

	_, err = executeCmd(t, app, "show")
	assert.Error(t, err, "id is required")
}

// --- new ---

func TestNewCmd_CreatesNotebook(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())

	out, err := executeCmd(t, app, "new", "0", "--type", "notebook")
	require.NoError(t, err)

	calls := gw.CallsFor(testutil.OpCreate)
	require.Len(t, calls, 1)
	assert.Equal(t, 0, calls[0].Parent)
	assert.Equal(t, domain.KindNotebook, calls[0].Kind)
	assert.Contains(t, out, "Created notebook #6 in #0")
}

func TestNewCmd_DefaultsToNote(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())

	_, err := executeCmd(t, app, "new", "1")
	require.NoError(t, err)

	calls := gw.CallsFor(testutil.OpCreate)
	require.Len(t, calls, 1)
	assert.Equal(t, domain.KindNote, calls[0].Kind)
	assert.Equal(t, "New Note", domain.Find(gw.Root(), 6).Title)
}

func TestNewCmd_UnknownType(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())

	_, err := executeCmd(t, app, "new", "0", "--type", "folder")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
	assert.Empty(t, gw.Calls())
}

// --- rm ---

func TestRmCmd_DeletesSubtree(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())

	out, err := executeCmd(t, app, "rm", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "Deleted #3")
	assert.Nil(t, domain.Find(gw.Root(), 3))
	assert.Nil(t, domain.Find(gw.Root(), 4))
}

func TestRmCmd_RootRefusedLocally(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())

	_, err := executeCmd(t, app, "rm", "0")
	assert.ErrorIs(t, err, domain.ErrRootNotDeletable)
	assert.Empty(t, gw.Calls())
}

// --- edit ---

func TestEditCmd_TitleKeepsContent(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())

	out, err := executeCmd(t, app, "edit", "2", "--title", "Roadmap")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved #2")

	calls := gw.CallsFor(testutil.OpModify)
	require.Len(t, calls, 1)
	assert.Equal(t, "Roadmap", calls[0].Title)
	assert.Equal(t, "<p>plan</p>", calls[0].Content)
}

func TestEditCmd_ContentFromStdin(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())

	_, err := executeCmdWithInput(t, app, strings.NewReader("<p>piped</p>"), "edit", "5", "--content", "-")
	require.NoError(t, err)

	calls := gw.CallsFor(testutil.OpModify)
	require.Len(t, calls, 1)
	assert.Equal(t, "Inbox", calls[0].Title)
	assert.Equal(t, "<p>piped</p>", calls[0].Content)
}

func TestEditCmd_EmptyContentIsAChange(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())

	_, err := executeCmd(t, app, "edit", "2", "--content", "")
	require.NoError(t, err)

	calls := gw.CallsFor(testutil.OpModify)
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Content)
}

func TestEditCmd_Errors(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())

	_, err := executeCmd(t, app, "edit", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")

	_, err = executeCmd(t, app, "edit", "1", "--content", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notebook")

	_, err = executeCmd(t, app, "edit", "42", "--title", "x")
	assert.ErrorIs(t, err, api.ErrNotFound)

	assert.Empty(t, gw.CallsFor(testutil.OpModify))
}

func TestEditCmd_NotebookTitle(t *testing.T) {
	app, gw := testApp(t, testutil.SampleTree())

	_, err := executeCmd(t, app, "edit", "1", "--title", "Job")
	require.NoError(t, err)
	assert.Equal(t, "Job", domain.Find(gw.Root(), 1).Title)
}

// --- serve ---

func TestHashTokenCmd(t *testing.T) {
	app, _ := testApp(t, testutil.SampleTree())

	out, err := executeCmd(t, app, "serve", "hash-token", "s3cret")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestOpenStore(t *testing.T) {
	ctx := t.Context()

	st, err := openStore(ctx, config.ServeConfig{Driver: config.DriverSQLite, DB: filepath.Join(t.TempDir(), "notes.db")})
	require.NoError(t, err)
	require.NoError(t, st.AddUser(ctx, "u", ""))
	root, err := st.Tree(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "Notes", root.Title)
	require.NoError(t, st.Close())

	_, err = openStore(ctx, config.ServeConfig{Driver: config.DriverPostgres})
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.KeyServeDSN)

	_, err = openStore(ctx, config.ServeConfig{Driver: "mongo"})
	assert.Error(t, err)
}
