package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxTreeDepth bounds recursion so a pathological layout cannot blow up
// the response.
const maxTreeDepth = 12

// FileNode represents a file or directory in the project tree.
type FileNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	IsDir    bool        `json:"isDir"`
	Children []*FileNode `json:"children,omitempty"`
}

// Tree builds the full file tree of the workspace, skipping hidden
// entries and dependency directories.
func (w *Workspace) Tree() (*FileNode, error) {
	return buildTree(w.Root, w.Root, "", 0)
}

func buildTree(root, dir, relative string, depth int) (*FileNode, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	node := &FileNode{
		Name:  filepath.Base(dir),
		Path:  filepath.ToSlash(relative),
		IsDir: true,
	}
	if relative == "" {
		node.Name = filepath.Base(root)
		node.Path = ""
	}
	if depth >= maxTreeDepth {
		return node, nil
	}

	var children []*FileNode
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if _, skip := skippedDirs[name]; skip && entry.IsDir() {
			continue
		}
		childRel := filepath.Join(relative, name)
		if entry.IsDir() {
			child, err := buildTree(root, filepath.Join(dir, name), childRel, depth+1)
			if err != nil {
				continue
			}
			children = append(children, child)
		} else {
			children = append(children, &FileNode{
				Name:  name,
				Path:  filepath.ToSlash(childRel),
				IsDir: false,
			})
		}
	}

	sort.Slice(children, func(i, j int) bool {
		if children[i].IsDir != children[j].IsDir {
			return children[i].IsDir
		}
		return strings.ToLower(children[i].Name) < strings.ToLower(children[j].Name)
	})
	node.Children = children
	return node, nil
}
