package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/freenote/freenote/internal/domain"
	"github.com/freenote/freenote/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, tokenHash string) *Server {
	t.Helper()
	return New(Options{Store: testutil.NewTestStore(t), TokenHash: tokenHash, Logger: zerolog.Nop()})
}

func do(t *testing.T, s *Server, method, path, body string, headers map[string]string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(data)
}

func decodeTree(t *testing.T, body string) *domain.NoteObject {
	t.Helper()
	var root *domain.NoteObject
	require.NoError(t, json.Unmarshal([]byte(body), &root))
	require.NoError(t, domain.Validate(root))
	return root
}

func TestGetTree_DefaultForNewUser(t *testing.T) {
	s := newTestServer(t, "")

	resp, body := do(t, s, http.MethodGet, "/api/notes", "", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	root := decodeTree(t, body)
	assert.Equal(t, "Notes", root.Title)
	assert.Equal(t, "Hello, World!", root.Children[0].Content)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))
}

func TestGetTree_WithoutContent(t *testing.T) {
	s := newTestServer(t, "")

	_, body := do(t, s, http.MethodGet, "/api/notes?content=0", "", nil)

	root := decodeTree(t, body)
	assert.Empty(t, root.Children[0].Content)
	assert.Equal(t, "My First Note", root.Children[0].Title)
}

func TestRequestID_Echoed(t *testing.T) {
	s := newTestServer(t, "")

	resp, _ := do(t, s, http.MethodGet, "/healthz", "", map[string]string{HeaderRequestID: "abc-123"})

	assert.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))
}

func TestGetNote(t *testing.T) {
	s := newTestServer(t, "")

	resp, body := do(t, s, http.MethodGet, "/api/notes/1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":1,"type":"note","title":"My First Note","content":"Hello, World!"}`, body)

	resp, body = do(t, s, http.MethodGet, "/api/notes/99", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", body)

	resp, _ = do(t, s, http.MethodGet, "/api/notes/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestModifyNote(t *testing.T) {
	s := newTestServer(t, "")

	resp, _ := do(t, s, http.MethodPost, "/api/modify-note", `{"id":1,"title":"T","content":"<b>c</b>"}`, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body := do(t, s, http.MethodGet, "/api/notes/1", "", nil)
	assert.JSONEq(t, `{"id":1,"type":"note","title":"T","content":"<b>c</b>"}`, body)

	resp, _ = do(t, s, http.MethodPost, "/api/modify-note", `{"id":50,"title":"x"}`, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, s, http.MethodPost, "/api/modify-note", `{"title":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNewNoteObject(t *testing.T) {
	s := newTestServer(t, "")

	resp, body := do(t, s, http.MethodPost, "/api/new-noteobject", `{"parent":0,"type":"notebook"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id":2}`, body)

	resp, body = do(t, s, http.MethodPost, "/api/new-noteobject", `{"parent":2,"type":"note"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id":3}`, body)

	_, body = do(t, s, http.MethodGet, "/api/notes", "", nil)
	root := decodeTree(t, body)
	nb := domain.Find(root, 2)
	require.NotNil(t, nb)
	assert.Equal(t, "New Notebook", nb.Title)
	assert.Equal(t, "New Note", nb.Children[0].Title)
}

func TestNewNoteObject_Errors(t *testing.T) {
	s := newTestServer(t, "")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"parent is a note", `{"parent":1,"type":"note"}`, http.StatusBadRequest},
		{"missing parent", `{"parent":9,"type":"note"}`, http.StatusNotFound},
		{"unknown type", `{"parent":0,"type":"folder"}`, http.StatusBadRequest},
		{"no parent field", `{"type":"note"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, s, http.MethodPost, "/api/new-noteobject", tt.body, nil)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestDeleteNoteObject(t *testing.T) {
	s := newTestServer(t, "")

	resp, _ := do(t, s, http.MethodPost, "/api/delete-noteobject", `{"id":1}`, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body := do(t, s, http.MethodGet, "/api/notes", "", nil)
	assert.Empty(t, decodeTree(t, body).Children)

	resp, _ = do(t, s, http.MethodPost, "/api/delete-noteobject", `{"id":0}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, s, http.MethodPost, "/api/delete-noteobject", `{"id":1}`, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUsersAreSeparate(t *testing.T) {
	s := newTestServer(t, "")
	alice := map[string]string{HeaderUser: "alice"}
	bob := map[string]string{HeaderUser: "bob"}

	do(t, s, http.MethodPost, "/api/delete-noteobject", `{"id":1}`, alice)

	_, body := do(t, s, http.MethodGet, "/api/notes", "", bob)
	assert.Len(t, decodeTree(t, body).Children, 1)
	_, body = do(t, s, http.MethodGet, "/api/notes", "", alice)
	assert.Empty(t, decodeTree(t, body).Children)
}

func TestToken(t *testing.T) {
	hash, err := HashToken("s3cret")
	require.NoError(t, err)
	s := newTestServer(t, hash)

	resp, _ := do(t, s, http.MethodGet, "/api/notes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, s, http.MethodGet, "/api/notes", "", map[string]string{HeaderToken: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, s, http.MethodGet, "/api/notes", "", map[string]string{HeaderToken: "s3cret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health check is open")
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	s := New(Options{Store: testutil.NewTestStore(t), Logger: zerolog.New(&buf)})

	do(t, s, http.MethodGet, "/api/notes/1", "", map[string]string{HeaderRequestID: "rid-7"})

	out := buf.String()
	assert.Contains(t, out, `"request_id":"rid-7"`)
	assert.Contains(t, out, `"path":"/api/notes/1"`)
	assert.Contains(t, out, `"status":200`)
}
