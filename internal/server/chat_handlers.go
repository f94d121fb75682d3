package server

import (
	"net/http"

	"polaris/internal/engine"
)

// chatRequest is the body for starting or continuing a chat turn.
type chatRequest struct {
	Engine    string `json:"engine"`
	Message   string `json:"message"`
	WorkDir   string `json:"workDir"`
	SessionID string `json:"sessionId"`
}

// resolveChat fills defaults for a chat request from the config and
// the active workspace.
func (s *Server) resolveChat(req *chatRequest) engine.StartOptions {
	name := req.Engine
	if name == "" {
		name = s.config.DefaultEngine
	}
	workDir := req.WorkDir
	if workDir == "" {
		if ws := s.activeWorkspace(); ws != nil {
			workDir = ws.Root
		}
	}
	return engine.StartOptions{
		Engine:  engine.Engine(name),
		Command: s.config.EngineCommand(name),
		WorkDir: workDir,
		Message: req.Message,
		Resume:  req.SessionID,
	}
}

func (s *Server) handleChatStart(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	opts := s.resolveChat(&req)
	opts.Resume = ""

	sessionID, err := s.engines.Start(opts, s.hub.BroadcastChatEvent)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, map[string]string{"sessionId": sessionID})
}

func (s *Server) handleChatContinue(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	sessionID, err := s.engines.Start(s.resolveChat(&req), s.hub.BroadcastChatEvent)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, map[string]string{"sessionId": sessionID})
}

func (s *Server) handleChatInterrupt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	if err := s.engines.Interrupt(req.SessionID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, nil)
}

// handleEngines reports which AI CLIs are installed and where.
func (s *Server) handleEngines(w http.ResponseWriter, r *http.Request) {
	type engineInfo struct {
		Name      string   `json:"name"`
		Command   string   `json:"command"`
		Available bool     `json:"available"`
		Version   string   `json:"version,omitempty"`
		Paths     []string `json:"paths,omitempty"`
	}

	engines := []engine.Engine{engine.EngineClaude, engine.EngineIFlow}
	out := make([]engineInfo, 0, len(engines))
	for _, eng := range engines {
		info := engineInfo{
			Name:    string(eng),
			Command: s.config.EngineCommand(string(eng)),
			Paths:   engine.DiscoverPaths(eng),
		}
		if len(info.Paths) > 0 {
			if version, err := engine.ValidatePath(info.Paths[0]); err == nil {
				info.Available = true
				info.Version = version
			}
		}
		out = append(out, info)
	}
	writeJSON(w, out)
}
