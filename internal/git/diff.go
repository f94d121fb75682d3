package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// CommitDiff compares HEAD against another commit and returns one entry
// per changed file, with rename detection enabled.
func (r *Repository) CommitDiff(base string) ([]DiffEntry, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(base))
	if err != nil {
		return nil, &CommitNotFoundError{ID: base}
	}
	baseCommit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, &CommitNotFoundError{ID: base}
	}
	baseTree, err := baseCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree for %s: %w", base, err)
	}
	headTree, err := r.headTree()
	if err != nil {
		return nil, err
	}
	if headTree == nil {
		headTree = &object.Tree{}
	}

	changes, err := object.DiffTreeWithOptions(context.Background(), baseTree, headTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	entries := make([]DiffEntry, 0, len(changes))
	for _, ch := range changes {
		entry, ok := r.entryFromChange(ch)
		if ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// entryFromChange converts one tree change into a diff entry.
func (r *Repository) entryFromChange(ch *object.Change) (DiffEntry, bool) {
	action, err := ch.Action()
	if err != nil {
		return DiffEntry{}, false
	}

	var ct ChangeType
	var path, oldPath string
	switch action {
	case merkletrie.Insert:
		ct = ChangeAdded
		path = ch.To.Name
	case merkletrie.Delete:
		ct = ChangeDeleted
		path = ch.From.Name
	default:
		ct = ChangeModified
		path = ch.To.Name
		if ch.From.Name != ch.To.Name {
			ct = ChangeRenamed
			oldPath = ch.From.Name
		}
	}

	return r.buildEntry(ct, path, oldPath, ch.From.TreeEntry.Hash, ch.To.TreeEntry.Hash, nil), true
}

// WorktreeDiff compares HEAD against the working directory for every
// path the status snapshot reports as changed on any axis.
func (r *Repository) WorktreeDiff() ([]DiffEntry, error) {
	acc, err := r.statusSnapshot()
	if err != nil {
		return nil, err
	}
	headTree, err := r.headTree()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(acc.flags))
	for p := range acc.flags {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	entries := make([]DiffEntry, 0, len(paths))
	for _, path := range paths {
		oldHash, inHead := treeEntryHash(headTree, path)
		inWorktree := r.worktreeHas(path)

		var ct ChangeType
		switch {
		case !inHead && inWorktree:
			ct = ChangeAdded
		case inHead && !inWorktree:
			ct = ChangeDeleted
		case inHead && inWorktree:
			ct = ChangeModified
		default:
			continue
		}
		entries = append(entries, r.buildEntry(ct, path, "", oldHash, plumbing.ZeroHash, nil))
	}
	return entries, nil
}

// IndexDiff compares HEAD against the staging area.
func (r *Repository) IndexDiff() ([]DiffEntry, error) {
	acc, err := r.statusSnapshot()
	if err != nil {
		return nil, err
	}
	headTree, err := r.headTree()
	if err != nil {
		return nil, err
	}

	entries := []DiffEntry{}
	for _, staged := range acc.classify().Staged {
		ct := changeTypeFor(staged.Status)
		oldName := staged.OldPath
		if oldName == "" {
			oldName = staged.Path
		}
		oldHash, _ := treeEntryHash(headTree, oldName)
		newHash, _ := r.indexEntryHash(staged.Path)
		entries = append(entries, r.buildEntry(ct, staged.Path, staged.OldPath, oldHash, newHash, nil))
	}
	return entries, nil
}

// WorktreeFileDiff builds the diff for one path, picking the comparison
// base from the path's staging state. A path changed in both the index
// and the worktree is compared index against worktree and flagged so the
// UI can say which view it is looking at.
func (r *Repository) WorktreeFileDiff(path string) (*DiffEntry, error) {
	acc, err := r.statusSnapshot()
	if err != nil {
		return nil, err
	}
	flags := acc.flags[path]

	if flags&(flagIndexNew|flagIndexModified) != 0 {
		oldHash, _ := r.indexEntryHash(path)
		ct := ChangeModified
		if !r.worktreeHas(path) {
			ct = ChangeDeleted
		}
		hint := &StatusHint{HasConflict: true, Message: msgBothModified, CurrentView: viewIndexWorktree}
		entry := r.buildEntry(ct, path, "", oldHash, plumbing.ZeroHash, hint)
		return &entry, nil
	}

	headTree, err := r.headTree()
	if err != nil {
		return nil, err
	}
	oldHash, inHead := treeEntryHash(headTree, path)
	inWorktree := r.worktreeHas(path)

	var ct ChangeType
	switch {
	case !inHead && inWorktree:
		ct = ChangeAdded
	case inHead && !inWorktree:
		ct = ChangeDeleted
	case inHead && inWorktree:
		ct = ChangeModified
	default:
		return nil, fmt.Errorf("no content for %s in HEAD or worktree", path)
	}

	hint := &StatusHint{CurrentView: viewHeadWorktree}
	if flags&flagIndexDeleted != 0 && flags&flagWorktreeNew != 0 {
		hint.HasConflict = true
		hint.Message = msgStagedDeleted
	}
	entry := r.buildEntry(ct, path, "", oldHash, plumbing.ZeroHash, hint)
	return &entry, nil
}

// IndexFileDiff builds the HEAD against staging area diff for one path.
func (r *Repository) IndexFileDiff(path string) (*DiffEntry, error) {
	acc, err := r.statusSnapshot()
	if err != nil {
		return nil, err
	}
	return r.indexFileEntry(acc, path)
}

// indexFileEntry resolves one staged path against HEAD. A staged rename
// is read from the old name on the HEAD side so both contents appear.
func (r *Repository) indexFileEntry(acc *statusAccumulator, path string) (*DiffEntry, error) {
	headTree, err := r.headTree()
	if err != nil {
		return nil, err
	}
	oldPath := acc.oldPaths[path]
	oldName := oldPath
	if oldName == "" {
		oldName = path
	}
	oldHash, inHead := treeEntryHash(headTree, oldName)
	newHash, inIndex := r.indexEntryHash(path)

	var ct ChangeType
	switch {
	case !inHead && inIndex:
		ct = ChangeAdded
	case inHead && !inIndex:
		ct = ChangeDeleted
	case inHead && inIndex:
		ct = ChangeModified
	default:
		return nil, fmt.Errorf("no content for %s in HEAD or index", path)
	}
	if ct == ChangeModified && oldPath != "" {
		ct = ChangeRenamed
	}

	hint := &StatusHint{CurrentView: viewHeadIndex}
	entry := r.buildEntry(ct, path, oldPath, oldHash, newHash, hint)
	return &entry, nil
}

// buildEntry materializes content for both sides and fills in line
// counts. Sides that could not be read leave the entry marked instead of
// failing the whole diff.
func (r *Repository) buildEntry(ct ChangeType, path, oldPath string, oldHash, newHash plumbing.Hash, hint *StatusHint) DiffEntry {
	sides := r.sideContents(ct, path, oldPath, oldHash, newHash)
	entry := DiffEntry{
		FilePath:       path,
		OldFilePath:    oldPath,
		ChangeType:     ct,
		OldContent:     sides.Old,
		NewContent:     sides.New,
		IsBinary:       sides.Binary,
		ContentOmitted: sides.Omitted,
		StatusHint:     hint,
	}
	if !sides.Binary && !sides.Omitted {
		adds, dels := countLineDiff(deref(sides.Old), deref(sides.New))
		entry.Additions = &adds
		entry.Deletions = &dels
	}
	return entry
}

// statusSnapshot reads the worktree status into a fresh accumulator.
func (r *Repository) statusSnapshot() (*statusAccumulator, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	wtStatus, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}
	acc := newStatusAccumulator()
	for path, fs := range wtStatus {
		acc.addEntry(path, fs)
	}
	return acc, nil
}

// indexEntryHash looks up the staged blob hash for a path.
func (r *Repository) indexEntryHash(path string) (plumbing.Hash, bool) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return plumbing.ZeroHash, false
	}
	entry, err := idx.Entry(path)
	if err != nil || entry == nil {
		return plumbing.ZeroHash, false
	}
	return entry.Hash, true
}

// worktreeHas reports whether the path exists as a regular file in the
// working directory.
func (r *Repository) worktreeHas(path string) bool {
	info, err := os.Stat(filepath.Join(r.path, filepath.FromSlash(path)))
	return err == nil && !info.IsDir()
}

// treeEntryHash looks up the blob hash for a path in a tree. A nil tree
// stands in for the empty tree of an unborn HEAD.
func treeEntryHash(tree *object.Tree, path string) (plumbing.Hash, bool) {
	if tree == nil {
		return plumbing.ZeroHash, false
	}
	file, err := tree.File(path)
	if err != nil {
		return plumbing.ZeroHash, false
	}
	return file.Hash, true
}

// changeTypeFor maps a status axis state onto a diff change type.
func changeTypeFor(s FileState) ChangeType {
	switch s {
	case StateAdded:
		return ChangeAdded
	case StateDeleted:
		return ChangeDeleted
	case StateRenamed:
		return ChangeRenamed
	case StateCopied:
		return ChangeCopied
	default:
		return ChangeModified
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
