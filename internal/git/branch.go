package git

import (
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Branches lists local and remote branches, current branch first.
func (r *Repository) Branches() ([]Branch, error) {
	var current string
	if head, err := r.repo.Head(); err == nil && head.Name().IsBranch() {
		current = head.Name().Short()
	}

	refs, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}

	branches := []Branch{}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		switch {
		case name.IsBranch():
			branches = append(branches, r.branchInfo(name.Short(), false, ref, current))
		case name.IsRemote():
			short := name.Short()
			if strings.HasSuffix(short, "/HEAD") {
				return nil
			}
			branches = append(branches, r.branchInfo(short, true, ref, current))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk references: %w", err)
	}

	sort.SliceStable(branches, func(i, j int) bool {
		if branches[i].IsCurrent != branches[j].IsCurrent {
			return branches[i].IsCurrent
		}
		if branches[i].IsRemote != branches[j].IsRemote {
			return !branches[i].IsRemote
		}
		return branches[i].Name < branches[j].Name
	})
	return branches, nil
}

func (r *Repository) branchInfo(name string, remote bool, ref *plumbing.Reference, current string) Branch {
	b := Branch{
		Name:      name,
		IsCurrent: !remote && name == current,
		IsRemote:  remote,
		Commit:    ref.Hash().String(),
	}
	if commit, err := r.repo.CommitObject(ref.Hash()); err == nil {
		b.CommitDate = commit.Committer.When.Unix()
	}
	return b
}

// CreateBranch creates a branch at HEAD and optionally checks it out.
func (r *Repository) CreateBranch(name string, checkout bool) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	refName := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(refName, false); err == nil {
		return fmt.Errorf("branch %q already exists", name)
	}
	ref := plumbing.NewHashReference(refName, head.Hash())
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", name, err)
	}
	if checkout {
		return r.CheckoutBranch(name)
	}
	return nil
}

// CheckoutBranch switches the working directory to an existing branch.
func (r *Repository) CheckoutBranch(name string) error {
	refName := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(refName, true); err != nil {
		return &BranchNotFoundError{Name: name}
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Branch: refName}); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", name, err)
	}
	return nil
}

// CurrentBranch returns the branch HEAD points at, or an empty string on
// a detached or unborn HEAD.
func (r *Repository) CurrentBranch() string {
	head, err := r.repo.Head()
	if err != nil || !head.Name().IsBranch() {
		return ""
	}
	return head.Name().Short()
}
