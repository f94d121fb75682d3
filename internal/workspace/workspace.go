// Package workspace handles file access for an opened project directory.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// skippedDirs are directories never listed, searched or watched.
var skippedDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"target":       {},
	"dist":         {},
	"vendor":       {},
	".venv":        {},
	"__pycache__":  {},
}

// Workspace handles all file operations within a project root.
type Workspace struct {
	Root string
}

// Open validates that root is an existing directory and returns a
// workspace over it.
func Open(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace path is not a directory: %s", abs)
	}
	return &Workspace{Root: abs}, nil
}

// FileInfo describes one entry of a directory listing.
type FileInfo struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	IsDir   bool   `json:"isDir"`
	Size    int64  `json:"size"`
	ModTime int64  `json:"modTime"`
}

// ReadFile returns the content of a file inside the workspace.
func (w *Workspace) ReadFile(relativePath string) (string, error) {
	full, err := w.resolve(relativePath)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(content), nil
}

// WriteFile writes content to a file, creating parent directories as
// needed.
func (w *Workspace) WriteFile(relativePath, content string) error {
	full, err := w.resolve(relativePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// CreateFile creates a new file and fails when the path already exists.
func (w *Workspace) CreateFile(relativePath, content string) error {
	full, err := w.resolve(relativePath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(full); err == nil {
		return fmt.Errorf("file already exists: %s", relativePath)
	}
	return w.WriteFile(relativePath, content)
}

// DeleteFile removes a file or an empty directory.
func (w *Workspace) DeleteFile(relativePath string) error {
	full, err := w.resolve(relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

// RenameFile moves a file inside the workspace.
func (w *Workspace) RenameFile(oldPath, newPath string) error {
	oldFull, err := w.resolve(oldPath)
	if err != nil {
		return err
	}
	newFull, err := w.resolve(newPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(newFull), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.Rename(oldFull, newFull); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}
	return nil
}

// List returns the entries of one directory, directories first.
func (w *Workspace) List(relativePath string) ([]FileInfo, error) {
	full, err := w.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	infos := []FileInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if _, skip := skippedDirs[name]; skip && entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, FileInfo{
			Name:    name,
			Path:    filepath.ToSlash(filepath.Join(relativePath, name)),
			IsDir:   entry.IsDir(),
			Size:    fi.Size(),
			ModTime: fi.ModTime().Unix(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].IsDir != infos[j].IsDir {
			return infos[i].IsDir
		}
		return strings.ToLower(infos[i].Name) < strings.ToLower(infos[j].Name)
	})
	return infos, nil
}

// Search walks the workspace for file names containing the query,
// case insensitive, up to limit hits.
func (w *Workspace) Search(query string, limit int) ([]FileInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	needle := strings.ToLower(query)
	results := []FileInfo{}

	err := filepath.WalkDir(w.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path == w.Root {
				return nil
			}
			if _, skip := skippedDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.Contains(strings.ToLower(name), needle) {
			return nil
		}
		rel, relErr := filepath.Rel(w.Root, path)
		if relErr != nil {
			return nil
		}
		fi, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		results = append(results, FileInfo{
			Name:    name,
			Path:    filepath.ToSlash(rel),
			Size:    fi.Size(),
			ModTime: fi.ModTime().Unix(),
		})
		if len(results) >= limit {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return results, nil
}

// Exists reports whether a path exists inside the workspace.
func (w *Workspace) Exists(relativePath string) bool {
	full, err := w.resolve(relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// resolve validates a relative path and joins it under the root.
// Traversal outside the root is rejected.
func (w *Workspace) resolve(relativePath string) (string, error) {
	if strings.Contains(relativePath, "..") {
		return "", fmt.Errorf("invalid path: traversal not allowed")
	}
	clean := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid path: absolute paths not allowed")
	}
	return filepath.Join(w.Root, clean), nil
}
