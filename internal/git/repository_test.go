package git

import (
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenNotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	require.ErrorIs(t, err, ErrNotARepository)
	assert.Equal(t, "NOT_A_REPOSITORY", ErrorCode(err))
}

func TestIsRepository(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsRepository(dir))
	_, err := Init(dir, "main")
	require.NoError(t, err)
	assert.True(t, IsRepository(dir))
}

func TestInitCreatesResolvableHead(t *testing.T) {
	r := newTestRepo(t)
	status, err := r.Status()
	require.NoError(t, err)

	assert.True(t, status.Exists)
	assert.False(t, status.IsEmpty)
	assert.Equal(t, "main", status.Branch)
	assert.Len(t, status.Commit, 40)
	assert.Len(t, status.ShortCommit, 8)
	assert.Equal(t, status.Commit[:8], status.ShortCommit)
	assert.Empty(t, status.Staged)
	assert.Empty(t, status.Untracked)
}

func TestStatusEmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	r, err := Open(dir)
	require.NoError(t, err)
	status, err := r.Status()
	require.NoError(t, err)

	assert.True(t, status.IsEmpty)
	assert.Empty(t, status.Branch)
	assert.Empty(t, status.Commit)
	assert.Zero(t, status.Ahead)
	assert.Zero(t, status.Behind)
	assert.NotNil(t, status.Staged)
	assert.NotNil(t, status.Untracked)
}

func TestStatusAgreesWithDiffSnapshot(t *testing.T) {
	r := newTestRepo(t)
	commitFile(t, r, "a.txt", "v1\n", "base")

	writeFile(t, r, "a.txt", "v2\n")
	require.NoError(t, r.StageFile("a.txt"))
	writeFile(t, r, "a.txt", "v3\n")
	writeFile(t, r, "loose.txt", "u\n")

	status, err := r.Status()
	require.NoError(t, err)
	acc, err := r.statusSnapshot()
	require.NoError(t, err)
	c := acc.classify()

	// Status and the diff builders read the same snapshot, so their
	// bucket views must never disagree.
	assert.Equal(t, c.Staged, status.Staged)
	assert.Equal(t, c.Unstaged, status.Unstaged)
	assert.Equal(t, c.Untracked, status.Untracked)
	assert.Empty(t, status.Conflicted)
}

func TestStatusBuckets(t *testing.T) {
	r := newTestRepo(t)
	commitFile(t, r, "tracked.txt", "one\n", "add tracked")

	writeFile(t, r, "tracked.txt", "two\n")
	writeFile(t, r, "staged.txt", "new\n")
	require.NoError(t, r.StageFile("staged.txt"))
	writeFile(t, r, "loose.txt", "untracked\n")

	status, err := r.Status()
	require.NoError(t, err)

	require.Len(t, status.Staged, 1)
	assert.Equal(t, "staged.txt", status.Staged[0].Path)
	assert.Equal(t, StateAdded, status.Staged[0].Status)

	require.Len(t, status.Unstaged, 1)
	assert.Equal(t, "tracked.txt", status.Unstaged[0].Path)
	assert.Equal(t, StateModified, status.Unstaged[0].Status)

	assert.Equal(t, []string{"loose.txt"}, status.Untracked)
	assert.Empty(t, status.Conflicted)
}

func TestStatusStagedDeleteWithNewWorktreeFile(t *testing.T) {
	r := newTestRepo(t)
	commitFile(t, r, "dual.txt", "original\n", "add dual")

	require.NoError(t, os.Remove(filepath.Join(r.Path(), "dual.txt")))
	require.NoError(t, r.StageFile("dual.txt"))
	writeFile(t, r, "dual.txt", "replacement\n")

	status, err := r.Status()
	require.NoError(t, err)

	require.Len(t, status.Staged, 1)
	assert.Equal(t, "dual.txt", status.Staged[0].Path)
	assert.Equal(t, StateDeleted, status.Staged[0].Status)

	require.Len(t, status.Unstaged, 1)
	assert.Equal(t, "dual.txt", status.Unstaged[0].Path)
	assert.Equal(t, StateAdded, status.Unstaged[0].Status)

	assert.Empty(t, status.Untracked, "a path known to the index is never untracked")
}

func TestAheadBehind(t *testing.T) {
	r := newTestRepo(t)
	commitFile(t, r, "a.txt", "one\n", "first")

	require.NoError(t, r.CreateBranch("upstream", false))
	commitFile(t, r, "a.txt", "two\n", "second")

	cfg, err := r.repo.Config()
	require.NoError(t, err)
	cfg.Branches["main"] = &config.Branch{
		Name:   "main",
		Remote: ".",
		Merge:  plumbing.NewBranchReferenceName("upstream"),
	}
	require.NoError(t, r.repo.SetConfig(cfg))

	status, err := r.Status()
	require.NoError(t, err)
	assert.Equal(t, 1, status.Ahead)
	assert.Equal(t, 0, status.Behind)
}

func TestAheadBehindWithoutUpstream(t *testing.T) {
	r := newTestRepo(t)
	commitFile(t, r, "a.txt", "one\n", "first")

	status, err := r.Status()
	require.NoError(t, err)
	assert.Zero(t, status.Ahead)
	assert.Zero(t, status.Behind)
}

func TestBranches(t *testing.T) {
	r := newTestRepo(t)
	commitFile(t, r, "a.txt", "one\n", "first")
	require.NoError(t, r.CreateBranch("feature", false))

	branches, err := r.Branches()
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "main", branches[0].Name)
	assert.True(t, branches[0].IsCurrent)
	assert.Equal(t, "feature", branches[1].Name)
	assert.False(t, branches[1].IsCurrent)
	assert.NotZero(t, branches[0].CommitDate)
}

func TestCheckoutBranch(t *testing.T) {
	r := newTestRepo(t)
	commitFile(t, r, "a.txt", "one\n", "first")

	require.NoError(t, r.CreateBranch("feature", true))
	assert.Equal(t, "feature", r.CurrentBranch())

	require.NoError(t, r.CheckoutBranch("main"))
	assert.Equal(t, "main", r.CurrentBranch())

	err := r.CheckoutBranch("missing")
	var notFound *BranchNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "BRANCH_NOT_FOUND", ErrorCode(err))
}
