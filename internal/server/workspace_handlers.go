package server

import (
	"net/http"
	"strconv"

	"polaris/internal/workspace"
)

// requireWorkspace returns the active workspace or writes an error.
func (s *Server) requireWorkspace(w http.ResponseWriter) *workspace.Workspace {
	ws := s.activeWorkspace()
	if ws == nil {
		writeError(w, http.StatusBadRequest, "no workspace open")
		return nil
	}
	return ws
}

func (s *Server) handleWorkspaceInfo(w http.ResponseWriter, r *http.Request) {
	ws := s.activeWorkspace()
	if ws == nil {
		writeJSON(w, map[string]interface{}{"open": false})
		return
	}
	writeJSON(w, map[string]interface{}{"open": true, "root": ws.Root})
}

func (s *Server) handleWorkspaceOpen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := s.openWorkspace(req.Path); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, map[string]string{"root": s.activeWorkspace().Root})
}

func (s *Server) handleWorkspaceTree(w http.ResponseWriter, r *http.Request) {
	ws := s.requireWorkspace(w)
	if ws == nil {
		return
	}
	tree, err := ws.Tree()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, tree)
}

func (s *Server) handleReadFile(w http.ResponseWriter, r *http.Request) {
	ws := s.requireWorkspace(w)
	if ws == nil {
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	content, err := ws.ReadFile(path)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, map[string]string{"path": path, "content": content})
}

func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	ws := s.requireWorkspace(w)
	if ws == nil {
		return
	}
	var req struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := ws.CreateFile(req.Path, req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, nil)
}

func (s *Server) handleUpdateFile(w http.ResponseWriter, r *http.Request) {
	ws := s.requireWorkspace(w)
	if ws == nil {
		return
	}
	var req struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := ws.WriteFile(req.Path, req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, nil)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	ws := s.requireWorkspace(w)
	if ws == nil {
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := ws.DeleteFile(path); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, nil)
}

func (s *Server) handleRenameFile(w http.ResponseWriter, r *http.Request) {
	ws := s.requireWorkspace(w)
	if ws == nil {
		return
	}
	var req struct {
		OldPath string `json:"oldPath"`
		NewPath string `json:"newPath"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := ws.RenameFile(req.OldPath, req.NewPath); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, nil)
}

func (s *Server) handleListDir(w http.ResponseWriter, r *http.Request) {
	ws := s.requireWorkspace(w)
	if ws == nil {
		return
	}
	entries, err := ws.List(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ws := s.requireWorkspace(w)
	if ws == nil {
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	matches, err := ws.Search(query, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, matches)
}

func (s *Server) handleRecents(w http.ResponseWriter, r *http.Request) {
	if s.recents == nil {
		writeJSON(w, []workspace.RecentEntry{})
		return
	}
	writeJSON(w, s.recents.All())
}
