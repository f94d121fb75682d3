package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// StageFile adds one path to the staging area. Deleted paths are staged
// as removals.
func (r *Repository) StageFile(path string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if _, err := wt.Add(path); err != nil {
		return fmt.Errorf("failed to stage %s: %w", path, err)
	}
	return nil
}

// StageAll stages every change in the working directory.
func (r *Repository) StageAll() error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage all changes: %w", err)
	}
	return nil
}

// UnstageFile restores the index entry for one path from HEAD. On an
// unborn HEAD the entry is dropped from the index instead.
func (r *Repository) UnstageFile(path string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	_, err = r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return r.dropIndexEntry(path)
	}
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if err := wt.Restore(&gogit.RestoreOptions{Staged: true, Files: []string{path}}); err != nil {
		return fmt.Errorf("failed to unstage %s: %w", path, err)
	}
	return nil
}

// dropIndexEntry removes a path from the index without touching the
// working directory.
func (r *Repository) dropIndexEntry(path string) error {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}
	kept := idx.Entries[:0]
	for _, e := range idx.Entries {
		if e.Name != path {
			kept = append(kept, e)
		}
	}
	idx.Entries = kept
	if err := r.repo.Storer.SetIndex(idx); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

// DiscardChanges overwrites the working directory copy of a path with
// its HEAD content. Untracked paths are deleted instead.
func (r *Repository) DiscardChanges(path string) error {
	tree, err := r.headTree()
	if err != nil {
		return err
	}
	abs := filepath.Join(r.path, filepath.FromSlash(path))

	hash, inHead := treeEntryHash(tree, path)
	if !inHead {
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		return nil
	}

	blob, err := r.repo.BlobObject(hash)
	if err != nil {
		return fmt.Errorf("failed to load HEAD blob for %s: %w", path, err)
	}
	rd, err := blob.Reader()
	if err != nil {
		return fmt.Errorf("failed to read HEAD blob for %s: %w", path, err)
	}
	defer rd.Close()

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.ReadFrom(rd); err != nil {
		return fmt.Errorf("failed to restore %s: %w", path, err)
	}
	return nil
}

// Commit records the staged changes. With stageAll set, every working
// directory change is staged first. With explicit files given, only
// those paths are staged before committing.
func (r *Repository) Commit(message string, stageAll bool, files []string) (string, error) {
	if message == "" {
		return "", errors.New("commit message is required")
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	if stageAll {
		if err := r.StageAll(); err != nil {
			return "", err
		}
	}
	for _, f := range files {
		if err := r.StageFile(f); err != nil {
			return "", err
		}
	}

	hash, err := wt.Commit(message, &gogit.CommitOptions{Author: r.signature()})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return hash.String(), nil
}
