package workspace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecents(t *testing.T) *Recents {
	t.Helper()
	r, err := NewRecents(filepath.Join(t.TempDir(), "state", "recents.json"))
	require.NoError(t, err)
	return r
}

func TestRecentsAddAndOrder(t *testing.T) {
	r := newTestRecents(t)
	first := t.TempDir()
	second := t.TempDir()

	require.NoError(t, r.Add(first))
	require.NoError(t, r.Add(second))

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, second, all[0].Path, "most recent first")
	assert.Equal(t, filepath.Base(second), all[0].Name)
}

func TestRecentsDeduplicates(t *testing.T) {
	r := newTestRecents(t)
	dir := t.TempDir()
	other := t.TempDir()

	require.NoError(t, r.Add(dir))
	require.NoError(t, r.Add(other))
	require.NoError(t, r.Add(dir))

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, dir, all[0].Path)
}

func TestRecentsRejectsMissingDir(t *testing.T) {
	r := newTestRecents(t)
	require.Error(t, r.Add(filepath.Join(t.TempDir(), "nope")))
	assert.Empty(t, r.All())
}

func TestRecentsPersistence(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "recents.json")
	dir := t.TempDir()

	r1, err := NewRecents(stateFile)
	require.NoError(t, err)
	require.NoError(t, r1.Add(dir))

	r2, err := NewRecents(stateFile)
	require.NoError(t, err)
	all := r2.All()
	require.Len(t, all, 1)
	assert.Equal(t, dir, all[0].Path)
}

func TestRecentsClear(t *testing.T) {
	r := newTestRecents(t)
	require.NoError(t, r.Add(t.TempDir()))
	require.NoError(t, r.Clear())
	assert.Empty(t, r.All())
}
