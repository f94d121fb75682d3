package git

import (
	"errors"
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repository wraps an opened working copy.
type Repository struct {
	path   string
	repo   *gogit.Repository
	runner commandRunner
}

// Open opens the repository rooted at path.
func Open(path string) (*Repository, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return &Repository{path: path, repo: repo, runner: execRunner{}}, nil
}

// IsRepository reports whether path is the root of a git repository.
func IsRepository(path string) bool {
	_, err := gogit.PlainOpen(path)
	return err == nil
}

// Path returns the working directory of the repository.
func (r *Repository) Path() string {
	return r.path
}

// Init creates a repository at path with the given initial branch and an
// empty initial commit, so the new repository has a resolvable HEAD.
func Init(path, initialBranch string) (*Repository, error) {
	if initialBranch == "" {
		initialBranch = "main"
	}
	repo, err := gogit.PlainInitWithOptions(path, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(initialBranch),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init repository: %w", err)
	}
	r := &Repository{path: path, repo: repo, runner: execRunner{}}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	_, err = wt.Commit("Initial commit", &gogit.CommitOptions{
		AllowEmptyCommits: true,
		Author:            r.signature(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create initial commit: %w", err)
	}
	return r, nil
}

// Status builds the full aggregated snapshot of the working copy.
func (r *Repository) Status() (*RepositoryStatus, error) {
	status := &RepositoryStatus{
		Exists:     true,
		Staged:     []FileChange{},
		Unstaged:   []FileChange{},
		Untracked:  []string{},
		Conflicted: []string{},
	}

	head, err := r.repo.Head()
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		status.IsEmpty = true
	case err != nil:
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	default:
		status.Branch = head.Name().Short()
		status.Commit = head.Hash().String()
		status.ShortCommit = status.Commit[:8]
		status.Ahead, status.Behind = r.aheadBehind(status.Branch)
	}

	acc, err := r.statusSnapshot()
	if err != nil {
		return nil, err
	}
	c := acc.classify()
	if c.Staged != nil {
		status.Staged = c.Staged
	}
	if c.Unstaged != nil {
		status.Unstaged = c.Unstaged
	}
	if c.Untracked != nil {
		status.Untracked = c.Untracked
	}
	if c.Conflicted != nil {
		status.Conflicted = c.Conflicted
	}
	return status, nil
}

// aheadBehind counts commits between the branch and its configured
// upstream. A branch without an upstream, or an upstream that cannot be
// resolved locally, counts as (0, 0).
func (r *Repository) aheadBehind(branch string) (ahead, behind int) {
	cfg, err := r.repo.Config()
	if err != nil {
		return 0, 0
	}
	bc, ok := cfg.Branches[branch]
	if !ok || bc.Merge == "" {
		return 0, 0
	}

	var upstreamName plumbing.ReferenceName
	if bc.Remote == "" || bc.Remote == "." {
		upstreamName = bc.Merge
	} else {
		upstreamName = plumbing.NewRemoteReferenceName(bc.Remote, bc.Merge.Short())
	}
	upstream, err := r.repo.Reference(upstreamName, true)
	if err != nil {
		return 0, 0
	}
	local, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return 0, 0
	}

	localSet, err := r.ancestorSet(local.Hash())
	if err != nil {
		return 0, 0
	}
	upstreamSet, err := r.ancestorSet(upstream.Hash())
	if err != nil {
		return 0, 0
	}
	for h := range localSet {
		if _, ok := upstreamSet[h]; !ok {
			ahead++
		}
	}
	for h := range upstreamSet {
		if _, ok := localSet[h]; !ok {
			behind++
		}
	}
	return ahead, behind
}

// ancestorSet collects every commit reachable from the given head.
func (r *Repository) ancestorSet(from plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	iter, err := r.repo.Log(&gogit.LogOptions{From: from})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	set := make(map[plumbing.Hash]struct{})
	err = iter.ForEach(func(c *object.Commit) error {
		set[c.Hash] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// headTree returns the tree behind HEAD, or nil for an empty repository.
func (r *Repository) headTree() (*object.Tree, error) {
	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to load HEAD commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load HEAD tree: %w", err)
	}
	return tree, nil
}

// signature builds the commit author from repository config, with a
// fallback identity when none is set.
func (r *Repository) signature() *object.Signature {
	name, email := "Polaris", "polaris@localhost"
	if cfg, err := r.repo.Config(); err == nil {
		if cfg.User.Name != "" {
			name = cfg.User.Name
		}
		if cfg.User.Email != "" {
			email = cfg.User.Email
		}
	}
	return &object.Signature{Name: name, Email: email, When: time.Now()}
}
