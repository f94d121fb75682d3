package git

import (
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryFlags(t *testing.T) {
	tests := []struct {
		name     string
		staging  gogit.StatusCode
		worktree gogit.StatusCode
		want     statusFlag
	}{
		{"untracked sets no index bit", gogit.Untracked, gogit.Untracked, flagWorktreeNew},
		{"staged add", gogit.Added, gogit.Unmodified, flagIndexNew},
		{"staged modify", gogit.Modified, gogit.Unmodified, flagIndexModified},
		{"worktree modify", gogit.Unmodified, gogit.Modified, flagWorktreeModified},
		{"staged and worktree modify", gogit.Modified, gogit.Modified, flagIndexModified | flagWorktreeModified},
		{"staged delete with new worktree file", gogit.Deleted, gogit.Untracked, flagIndexDeleted | flagWorktreeNew},
		{"staged rename", gogit.Renamed, gogit.Unmodified, flagIndexRenamed},
		{"conflict", gogit.UpdatedButUnmerged, gogit.UpdatedButUnmerged, flagConflicted},
		{"worktree delete", gogit.Unmodified, gogit.Deleted, flagWorktreeDeleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entryFlags(&gogit.FileStatus{Staging: tt.staging, Worktree: tt.worktree})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccumulatorUnionsFlags(t *testing.T) {
	acc := newStatusAccumulator()
	acc.add("a.txt", flagIndexModified)
	acc.add("a.txt", flagWorktreeModified)
	acc.add("a.txt", flagIndexModified)

	assert.Equal(t, flagIndexModified|flagWorktreeModified, acc.flags["a.txt"])

	c := acc.classify()
	require.Len(t, c.Staged, 1)
	require.Len(t, c.Unstaged, 1)
	assert.Equal(t, StateModified, c.Staged[0].Status)
	assert.Equal(t, StateModified, c.Unstaged[0].Status)
}

func TestClassifyUntrackedGate(t *testing.T) {
	t.Run("worktree new without index flags is untracked", func(t *testing.T) {
		acc := newStatusAccumulator()
		acc.add("new.txt", flagWorktreeNew)
		c := acc.classify()
		assert.Equal(t, []string{"new.txt"}, c.Untracked)
		assert.Empty(t, c.Staged)
		assert.Empty(t, c.Unstaged)
	})

	t.Run("worktree new with index flags is unstaged added", func(t *testing.T) {
		acc := newStatusAccumulator()
		acc.add("dual.txt", flagIndexDeleted|flagWorktreeNew)
		c := acc.classify()

		require.Len(t, c.Staged, 1)
		assert.Equal(t, StateDeleted, c.Staged[0].Status)
		require.Len(t, c.Unstaged, 1)
		assert.Equal(t, StateAdded, c.Unstaged[0].Status)
		assert.Empty(t, c.Untracked)
	})
}

func TestClassifyConflictAxis(t *testing.T) {
	acc := newStatusAccumulator()
	acc.add("both.txt", flagConflicted|flagWorktreeModified)
	acc.add("pure.txt", flagConflicted)
	c := acc.classify()

	assert.Equal(t, []string{"both.txt", "pure.txt"}, c.Conflicted)
	// The conflict bucket does not swallow the other axes.
	require.Len(t, c.Unstaged, 1)
	assert.Equal(t, "both.txt", c.Unstaged[0].Path)
}

func TestClassifyPrecedence(t *testing.T) {
	acc := newStatusAccumulator()
	acc.add("f", flagIndexNew|flagIndexDeleted|flagIndexModified)
	c := acc.classify()
	require.Len(t, c.Staged, 1)
	assert.Equal(t, StateAdded, c.Staged[0].Status)

	acc = newStatusAccumulator()
	acc.add("f", flagIndexDeleted|flagIndexRenamed|flagIndexModified)
	c = acc.classify()
	assert.Equal(t, StateDeleted, c.Staged[0].Status)

	acc = newStatusAccumulator()
	acc.add("f", flagIndexRenamed|flagIndexModified)
	c = acc.classify()
	assert.Equal(t, StateRenamed, c.Staged[0].Status)
}

func TestClassifyDeterministicOrder(t *testing.T) {
	acc := newStatusAccumulator()
	acc.add("c.txt", flagWorktreeNew)
	acc.add("a.txt", flagWorktreeNew)
	acc.add("b.txt", flagWorktreeNew)
	c := acc.classify()
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, c.Untracked)
}

func TestAccumulatorKeepsRenameOrigin(t *testing.T) {
	acc := newStatusAccumulator()
	acc.addEntry("new_name.txt", &gogit.FileStatus{
		Staging: gogit.Renamed,
		Extra:   "old_name.txt",
	})
	c := acc.classify()
	require.Len(t, c.Staged, 1)
	assert.Equal(t, StateRenamed, c.Staged[0].Status)
	assert.Equal(t, "old_name.txt", c.Staged[0].OldPath)
}
