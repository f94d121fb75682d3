package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"polaris/internal/engine"
)

// sessionScope resolves the engine and working directory query
// parameters shared by the session endpoints.
func (s *Server) sessionScope(w http.ResponseWriter, r *http.Request) (engine.Engine, string, bool) {
	name := r.URL.Query().Get("engine")
	if name == "" {
		name = s.config.DefaultEngine
	}
	eng := engine.Engine(name)
	if !eng.Valid() {
		writeError(w, http.StatusBadRequest, "unknown engine "+name)
		return "", "", false
	}
	workDir := r.URL.Query().Get("workDir")
	if workDir == "" {
		ws := s.activeWorkspace()
		if ws == nil {
			writeError(w, http.StatusBadRequest, "no workspace open and no workDir given")
			return "", "", false
		}
		workDir = ws.Root
	}
	return eng, workDir, true
}

func (s *Server) handleSessionList(w http.ResponseWriter, r *http.Request) {
	eng, workDir, ok := s.sessionScope(w, r)
	if !ok {
		return
	}
	sessions, err := s.sessions.List(eng, workDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, sessions)
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	eng, workDir, ok := s.sessionScope(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	messages, err := s.sessions.History(eng, workDir, id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, messages)
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	eng, workDir, ok := s.sessionScope(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	stats, err := s.sessions.Stats(eng, workDir, id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, stats)
}
