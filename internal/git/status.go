package git

import (
	"sort"

	gogit "github.com/go-git/go-git/v5"
)

// statusFlag is a bit in the per-path accumulator. A path can carry
// several bits at once, one per axis it changed on.
type statusFlag uint16

const (
	flagIndexNew statusFlag = 1 << iota
	flagIndexModified
	flagIndexDeleted
	flagIndexRenamed
	flagIndexCopied
	flagWorktreeNew
	flagWorktreeModified
	flagWorktreeDeleted
	flagWorktreeRenamed
	flagWorktreeCopied
	flagConflicted
)

const (
	maskIndex    = flagIndexNew | flagIndexModified | flagIndexDeleted | flagIndexRenamed | flagIndexCopied
	maskWorktree = flagWorktreeNew | flagWorktreeModified | flagWorktreeDeleted | flagWorktreeRenamed | flagWorktreeCopied
)

// classification is the reconciled view of a status snapshot, with every
// path sorted into its axis buckets.
type classification struct {
	Staged     []FileChange
	Unstaged   []FileChange
	Untracked  []string
	Conflicted []string
}

// statusAccumulator merges status flags per path. Reporting the same path
// more than once unions the flags instead of overwriting them.
type statusAccumulator struct {
	flags    map[string]statusFlag
	oldPaths map[string]string
}

func newStatusAccumulator() *statusAccumulator {
	return &statusAccumulator{
		flags:    make(map[string]statusFlag),
		oldPaths: make(map[string]string),
	}
}

func (a *statusAccumulator) add(path string, f statusFlag) {
	a.flags[path] |= f
}

// addEntry folds one status entry into the accumulator.
func (a *statusAccumulator) addEntry(path string, fs *gogit.FileStatus) {
	if fs == nil {
		return
	}
	a.add(path, entryFlags(fs))
	if fs.Extra != "" {
		a.oldPaths[path] = fs.Extra
	}
}

// entryFlags maps the two status codes of an entry onto accumulator bits.
// An untracked staging code carries no index information, so it sets no
// index bit.
func entryFlags(fs *gogit.FileStatus) statusFlag {
	var f statusFlag
	switch fs.Staging {
	case gogit.Added:
		f |= flagIndexNew
	case gogit.Modified:
		f |= flagIndexModified
	case gogit.Deleted:
		f |= flagIndexDeleted
	case gogit.Renamed:
		f |= flagIndexRenamed
	case gogit.Copied:
		f |= flagIndexCopied
	case gogit.UpdatedButUnmerged:
		f |= flagConflicted
	}
	switch fs.Worktree {
	case gogit.Untracked, gogit.Added:
		f |= flagWorktreeNew
	case gogit.Modified:
		f |= flagWorktreeModified
	case gogit.Deleted:
		f |= flagWorktreeDeleted
	case gogit.Renamed:
		f |= flagWorktreeRenamed
	case gogit.Copied:
		f |= flagWorktreeCopied
	case gogit.UpdatedButUnmerged:
		f |= flagConflicted
	}
	return f
}

// classify resolves the accumulated flags into staged, unstaged,
// untracked and conflicted buckets. A path may land in several buckets,
// for example staged as deleted and unstaged as added at the same time.
func (a *statusAccumulator) classify() classification {
	paths := make([]string, 0, len(a.flags))
	for p := range a.flags {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var c classification
	for _, path := range paths {
		f := a.flags[path]
		if f&flagConflicted != 0 {
			c.Conflicted = append(c.Conflicted, path)
		}
		if f&maskIndex != 0 {
			c.Staged = append(c.Staged, FileChange{
				Path:    path,
				Status:  indexState(f),
				OldPath: a.oldPaths[path],
			})
		}
		if f&maskWorktree != 0 {
			// A path is untracked only when the worktree says new
			// and the index knows nothing about it.
			if f&flagWorktreeNew != 0 && f&maskIndex == 0 {
				c.Untracked = append(c.Untracked, path)
			} else {
				c.Unstaged = append(c.Unstaged, FileChange{
					Path:    path,
					Status:  worktreeState(f),
					OldPath: a.oldPaths[path],
				})
			}
		}
	}
	return c
}

// indexState picks the staged axis state, new over deleted over renamed.
func indexState(f statusFlag) FileState {
	switch {
	case f&flagIndexNew != 0:
		return StateAdded
	case f&flagIndexDeleted != 0:
		return StateDeleted
	case f&flagIndexRenamed != 0:
		return StateRenamed
	case f&flagIndexCopied != 0:
		return StateCopied
	default:
		return StateModified
	}
}

// worktreeState picks the unstaged axis state with the same precedence.
func worktreeState(f statusFlag) FileState {
	switch {
	case f&flagWorktreeNew != 0:
		return StateAdded
	case f&flagWorktreeDeleted != 0:
		return StateDeleted
	case f&flagWorktreeRenamed != 0:
		return StateRenamed
	case f&flagWorktreeCopied != 0:
		return StateCopied
	default:
		return StateModified
	}
}
