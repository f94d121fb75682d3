package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestRepo initializes a repository with an empty initial commit on
// main in a temp directory.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	dir := t.TempDir()
	repo, err := Init(dir, "main")
	require.NoError(t, err)
	return repo
}

// writeFile writes content under the repository root.
func writeFile(t *testing.T, r *Repository, name, content string) {
	t.Helper()
	abs := filepath.Join(r.Path(), filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

// commitFile writes, stages and commits one file.
func commitFile(t *testing.T, r *Repository, name, content, message string) string {
	t.Helper()
	writeFile(t, r, name, content)
	require.NoError(t, r.StageFile(name))
	hash, err := r.Commit(message, false, nil)
	require.NoError(t, err)
	return hash
}

// fakeResult is one canned response of the fake command runner.
type fakeResult struct {
	stdout []byte
	stderr []byte
	err    error
}

// fakeRunner replays canned responses and records the invocations.
type fakeRunner struct {
	lookPathErr error
	results     []fakeResult
	calls       [][]string
}

func (f *fakeRunner) Run(dir, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if len(f.results) == 0 {
		return nil, nil, nil
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res.stdout, res.stderr, res.err
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.lookPathErr != nil {
		return "", f.lookPathErr
	}
	return name, nil
}
