package git

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing"
)

// maxInlineDiffBytes caps how much file content is inlined into a diff
// entry. Larger files are reported without content.
const maxInlineDiffBytes = 2 * 1024 * 1024

// diffSides holds the materialized content of both sides of one diff
// entry. A nil side that was expected to exist marks the entry as
// content omitted.
type diffSides struct {
	Old     *string
	New     *string
	Binary  bool
	Omitted bool
}

// sideContents resolves the old and new content of a diff entry. A zero
// hash means the side lives in the working directory rather than the
// object store. Read failures never abort the diff, the side is simply
// left out and the entry flagged.
func (r *Repository) sideContents(ct ChangeType, path, oldPath string, oldHash, newHash plumbing.Hash) diffSides {
	var s diffSides
	oldName := oldPath
	if oldName == "" {
		oldName = path
	}
	if isBinaryPath(path) || isBinaryPath(oldName) {
		s.Binary = true
	}

	wantOld := ct != ChangeAdded
	wantNew := ct != ChangeDeleted

	if wantOld {
		s.Old = r.sideContent(oldName, oldHash, &s.Binary)
	}
	if wantNew {
		s.New = r.sideContent(path, newHash, &s.Binary)
	}
	if s.Binary {
		s.Old, s.New = nil, nil
	}
	s.Omitted = (wantOld && s.Old == nil) || (wantNew && s.New == nil)
	return s
}

// sideContent reads one side either from the object store or, for a zero
// hash, from the live working directory.
func (r *Repository) sideContent(path string, hash plumbing.Hash, binary *bool) *string {
	var data []byte
	if hash.IsZero() {
		abs := filepath.Join(r.path, filepath.FromSlash(path))
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() || info.Size() > maxInlineDiffBytes {
			return nil
		}
		data, err = os.ReadFile(abs)
		if err != nil {
			return nil
		}
	} else {
		blob, err := r.repo.BlobObject(hash)
		if err != nil || blob.Size > maxInlineDiffBytes {
			return nil
		}
		rd, err := blob.Reader()
		if err != nil {
			return nil
		}
		defer rd.Close()
		data, err = io.ReadAll(rd)
		if err != nil {
			return nil
		}
	}
	if isBinaryContent(data) {
		*binary = true
		return nil
	}
	text := string(data)
	return &text
}
