// Package server exposes the git, chat, session and workspace APIs the
// desktop frontend talks to, over HTTP and a WebSocket event stream.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"polaris/internal/config"
	"polaris/internal/engine"
	"polaris/internal/session"
	"polaris/internal/workspace"
)

// Server wires the HTTP API to the underlying services.
type Server struct {
	config     *config.Config
	logger     zerolog.Logger
	router     *mux.Router
	httpServer *http.Server
	hub        *Hub
	engines    *engine.Manager
	sessions   *session.Reader
	recents    *workspace.Recents

	mu      sync.Mutex
	active  *workspace.Workspace
	watcher *workspace.Watcher
}

// New creates a server instance. When the config names a workspace it
// is opened immediately.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	sessions, err := session.NewReader()
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:   cfg,
		logger:   logger,
		router:   mux.NewRouter(),
		engines:  engine.NewManager(logger),
		sessions: sessions,
	}

	if recentsPath, err := config.RecentsPath(); err == nil {
		if recents, err := workspace.NewRecents(recentsPath); err == nil {
			s.recents = recents
		} else {
			logger.Warn().Err(err).Msg("recent workspaces disabled")
		}
	}

	s.hub = NewHub(logger)
	s.setupRoutes()

	if cfg.Workspace != "" {
		if err := s.openWorkspace(cfg.Workspace); err != nil {
			return nil, fmt.Errorf("failed to open workspace: %w", err)
		}
	}
	return s, nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(jsonContentType)

	// Repository state
	api.HandleFunc("/git/repo", s.handleIsRepository).Methods("GET")
	api.HandleFunc("/git/status", s.handleGitStatus).Methods("GET")
	api.HandleFunc("/git/diff/worktree", s.handleWorktreeDiff).Methods("GET")
	api.HandleFunc("/git/diff/index", s.handleIndexDiff).Methods("GET")
	api.HandleFunc("/git/diff/commit", s.handleCommitDiff).Methods("GET")
	api.HandleFunc("/git/diff/file", s.handleFileDiff).Methods("GET")

	// Repository mutations
	api.HandleFunc("/git/init", s.handleGitInit).Methods("POST")
	api.HandleFunc("/git/stage", s.handleStage).Methods("POST")
	api.HandleFunc("/git/unstage", s.handleUnstage).Methods("POST")
	api.HandleFunc("/git/discard", s.handleDiscard).Methods("POST")
	api.HandleFunc("/git/commit", s.handleCommit).Methods("POST")

	// Branches and remotes
	api.HandleFunc("/git/branches", s.handleBranches).Methods("GET")
	api.HandleFunc("/git/branches", s.handleCreateBranch).Methods("POST")
	api.HandleFunc("/git/checkout", s.handleCheckout).Methods("POST")
	api.HandleFunc("/git/remotes", s.handleRemotes).Methods("GET")
	api.HandleFunc("/git/push", s.handlePush).Methods("POST")
	api.HandleFunc("/git/pr", s.handlePullRequestStatus).Methods("GET")
	api.HandleFunc("/git/pr", s.handleCreatePullRequest).Methods("POST")

	// Chat
	api.HandleFunc("/chat/start", s.handleChatStart).Methods("POST")
	api.HandleFunc("/chat/continue", s.handleChatContinue).Methods("POST")
	api.HandleFunc("/chat/interrupt", s.handleChatInterrupt).Methods("POST")
	api.HandleFunc("/engines", s.handleEngines).Methods("GET")

	// Session history
	api.HandleFunc("/sessions", s.handleSessionList).Methods("GET")
	api.HandleFunc("/sessions/{id}/history", s.handleSessionHistory).Methods("GET")
	api.HandleFunc("/sessions/{id}/stats", s.handleSessionStats).Methods("GET")

	// Workspace
	api.HandleFunc("/workspace", s.handleWorkspaceInfo).Methods("GET")
	api.HandleFunc("/workspace/open", s.handleWorkspaceOpen).Methods("POST")
	api.HandleFunc("/workspace/tree", s.handleWorkspaceTree).Methods("GET")
	api.HandleFunc("/workspace/files", s.handleReadFile).Methods("GET")
	api.HandleFunc("/workspace/files", s.handleCreateFile).Methods("POST")
	api.HandleFunc("/workspace/files", s.handleUpdateFile).Methods("PUT")
	api.HandleFunc("/workspace/files", s.handleDeleteFile).Methods("DELETE")
	api.HandleFunc("/workspace/files/rename", s.handleRenameFile).Methods("POST")
	api.HandleFunc("/workspace/list", s.handleListDir).Methods("GET")
	api.HandleFunc("/workspace/search", s.handleSearch).Methods("GET")
	api.HandleFunc("/workspace/recents", s.handleRecents).Methods("GET")

	// WebSocket event stream
	s.router.HandleFunc("/ws", s.hub.HandleWebSocket)
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        s.config.Addr(),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go s.hub.Run()

	s.logger.Info().Str("url", s.config.URL()).Msg("server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the watcher, hub and HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	s.mu.Unlock()

	s.hub.Close()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// openWorkspace switches the active workspace and rewires the file
// watcher to it.
func (s *Server) openWorkspace(path string) error {
	ws, err := workspace.Open(path)
	if err != nil {
		return err
	}
	watcher, err := workspace.NewWatcher(ws, s.logger)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.watcher
	s.active = ws
	s.watcher = watcher
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	go s.forwardFileEvents(watcher)

	if s.recents != nil {
		if err := s.recents.Add(ws.Root); err != nil {
			s.logger.Debug().Err(err).Msg("failed to record recent workspace")
		}
	}
	s.logger.Info().Str("root", ws.Root).Msg("workspace opened")
	return nil
}

// activeWorkspace returns the currently opened workspace.
func (s *Server) activeWorkspace() *workspace.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// forwardFileEvents pushes watcher events to WebSocket clients until
// the watcher closes.
func (s *Server) forwardFileEvents(w *workspace.Watcher) {
	events := w.Subscribe()
	for event := range events {
		s.hub.BroadcastFileEvent(event)
	}
}

// jsonContentType middleware sets Content-Type to application/json.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
