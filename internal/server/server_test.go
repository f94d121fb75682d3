package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polaris/internal/config"
	"polaris/internal/engine"
	"polaris/internal/git"
	"polaris/internal/session"
	"polaris/internal/workspace"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zerolog.Nop()
	recents, err := workspace.NewRecents(filepath.Join(t.TempDir(), "recents.json"))
	require.NoError(t, err)

	s := &Server{
		config:   &config.Config{Host: "127.0.0.1", DefaultEngine: "claude"},
		logger:   logger,
		router:   mux.NewRouter(),
		hub:      NewHub(logger),
		engines:  engine.NewManager(logger),
		sessions: session.NewReaderAt(t.TempDir(), t.TempDir()),
		recents:  recents,
	}
	s.setupRoutes()
	go s.hub.Run()
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func do(t *testing.T, s *Server, method, target string, body interface{}) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestGitStatusWithoutWorkspace(t *testing.T) {
	s := newTestServer(t)

	rec, resp := do(t, s, "GET", "/api/git/status", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
}

func TestIsRepositoryProbe(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()

	rec, resp := do(t, s, "GET", "/api/git/repo?path="+dir, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var probe map[string]bool
	require.NoError(t, json.Unmarshal(resp.Data, &probe))
	assert.False(t, probe["isRepository"])

	_, err := git.Init(dir, "main")
	require.NoError(t, err)

	_, resp = do(t, s, "GET", "/api/git/repo?path="+dir, nil)
	require.NoError(t, json.Unmarshal(resp.Data, &probe))
	assert.True(t, probe["isRepository"])
}

func TestGitStatusNonRepository(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()

	rec, resp := do(t, s, "GET", "/api/git/status?path="+dir, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	var status git.RepositoryStatus
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.False(t, status.Exists)
}

func TestGitInitThenStatus(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()

	rec, resp := do(t, s, "POST", "/api/git/init", map[string]string{"path": dir})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	var status git.RepositoryStatus
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.True(t, status.Exists)
	assert.Equal(t, "main", status.Branch)
}

func TestStageAndCommitFlow(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()
	_, err := git.Init(dir, "main")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello\n"), 0o644))

	rec, resp := do(t, s, "POST", "/api/git/stage", map[string]string{"path": dir, "file": "a.txt"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	rec, resp = do(t, s, "POST", "/api/git/commit", map[string]interface{}{
		"path": dir, "message": "add a.txt",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	var out map[string]string
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.Len(t, out["commit"], 40)
}

func TestCommitDiffUnknownBase(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()
	_, err := git.Init(dir, "main")
	require.NoError(t, err)

	rec, resp := do(t, s, "GET", "/api/git/diff/commit?path="+dir+"&base=nosuchref", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "COMMIT_NOT_FOUND", resp.Code)
}

func TestFileDiffRequiresFile(t *testing.T) {
	s := newTestServer(t)

	rec, _ := do(t, s, "GET", "/api/git/diff/file", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkspaceOpenAndFileCRUD(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()

	rec, resp := do(t, s, "POST", "/api/workspace/open", map[string]string{"path": dir})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	rec, _ = do(t, s, "POST", "/api/workspace/files", map[string]string{
		"path": "notes.md", "content": "# notes\n",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = do(t, s, "GET", "/api/workspace/files?path=notes.md", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var file map[string]string
	require.NoError(t, json.Unmarshal(resp.Data, &file))
	assert.Equal(t, "# notes\n", file["content"])

	rec, _ = do(t, s, "PUT", "/api/workspace/files", map[string]string{
		"path": "notes.md", "content": "updated\n",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, "DELETE", "/api/workspace/files?path=notes.md", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, "GET", "/api/workspace/files?path=notes.md", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkspaceOpenRecordsRecent(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()

	_, _ = do(t, s, "POST", "/api/workspace/open", map[string]string{"path": dir})

	rec, resp := do(t, s, "GET", "/api/workspace/recents", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []workspace.RecentEntry
	require.NoError(t, json.Unmarshal(resp.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, dir, entries[0].Path)
}

func TestWorkspaceTreeRequiresOpenWorkspace(t *testing.T) {
	s := newTestServer(t)

	rec, _ := do(t, s, "GET", "/api/workspace/tree", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))
	_, _ = do(t, s, "POST", "/api/workspace/open", map[string]string{"path": dir})

	rec, resp := do(t, s, "GET", "/api/workspace/search?q=main", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var matches []workspace.FileInfo
	require.NoError(t, json.Unmarshal(resp.Data, &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "main.go", matches[0].Name)
}

func TestSessionListEmpty(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()
	_, _ = do(t, s, "POST", "/api/workspace/open", map[string]string{"path": dir})

	rec, resp := do(t, s, "GET", "/api/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sessions []session.Meta
	require.NoError(t, json.Unmarshal(resp.Data, &sessions))
	assert.Empty(t, sessions)
}

func TestSessionListRejectsUnknownEngine(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()
	_, _ = do(t, s, "POST", "/api/workspace/open", map[string]string{"path": dir})

	rec, _ := do(t, s, "GET", "/api/sessions?engine=gemini", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatStartRequiresMessage(t *testing.T) {
	s := newTestServer(t)

	rec, resp := do(t, s, "POST", "/api/chat/start", map[string]string{"engine": "claude"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
}

func TestChatContinueRequiresSessionID(t *testing.T) {
	s := newTestServer(t)

	rec, _ := do(t, s, "POST", "/api/chat/continue", map[string]string{
		"engine": "claude", "message": "hi",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatInterruptUnknownSession(t *testing.T) {
	s := newTestServer(t)

	rec, _ := do(t, s, "POST", "/api/chat/interrupt", map[string]string{"sessionId": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIResponsesAreJSON(t *testing.T) {
	s := newTestServer(t)

	rec, _ := do(t, s, "GET", "/api/git/status", nil)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
