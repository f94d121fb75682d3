package engine

import (
	"bufio"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// scanBufferSize bounds one stream-json line. Assistant turns with large
// tool output can produce lines far beyond the bufio default.
const scanBufferSize = 4 * 1024 * 1024

// StartOptions describes one chat turn to run.
type StartOptions struct {
	Engine  Engine
	Command string
	WorkDir string
	Message string
	// Resume continues an existing CLI session when set.
	Resume string
}

// Manager spawns AI CLI processes and tracks the live ones by session
// id, so a stream can be interrupted from another request.
type Manager struct {
	mu       sync.Mutex
	running  map[string]process
	launcher launcher
	logger   zerolog.Logger
}

// NewManager creates a Manager using real subprocesses.
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		running:  make(map[string]process),
		launcher: execLauncher{},
		logger:   logger,
	}
}

// Start launches one chat turn and streams its events to emit from a
// background goroutine. It returns the provisional session id, which is
// superseded once the CLI announces its own id in the first system
// event. emit always receives a terminal event last.
func (m *Manager) Start(opts StartOptions, emit func(StreamEvent)) (string, error) {
	if !opts.Engine.Valid() {
		return "", fmt.Errorf("unknown engine %q", opts.Engine)
	}
	if opts.Command == "" {
		return "", fmt.Errorf("no command configured for engine %q", opts.Engine)
	}
	if strings.TrimSpace(opts.Message) == "" {
		return "", fmt.Errorf("message is required")
	}

	args := buildArgs(opts.Engine, opts.Message, opts.Resume)
	proc, err := m.launcher.Launch(opts.WorkDir, opts.Command, args...)
	if err != nil {
		return "", err
	}

	sessionID := opts.Resume
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	m.mu.Lock()
	m.running[sessionID] = proc
	m.mu.Unlock()

	m.logger.Info().
		Str("engine", string(opts.Engine)).
		Str("session", sessionID).
		Int("pid", proc.PID()).
		Msg("chat turn started")

	go m.pump(sessionID, proc, emit)
	return sessionID, nil
}

// Interrupt stops the process behind a live session.
func (m *Manager) Interrupt(sessionID string) error {
	m.mu.Lock()
	proc, ok := m.running[sessionID]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("no running session %q", sessionID)
	}
	m.logger.Info().Str("session", sessionID).Msg("interrupting chat turn")
	return proc.Terminate()
}

// Running lists the session ids with a live process.
func (m *Manager) Running() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.running))
	for id := range m.running {
		ids = append(ids, id)
	}
	return ids
}

// pump forwards stdout events until the process exits, rebinding the
// session to the id the CLI reports.
func (m *Manager) pump(sessionID string, proc process, emit func(StreamEvent)) {
	go m.drainStderr(sessionID, proc)

	ended := false
	scanner := bufio.NewScanner(proc.Stdout())
	scanner.Buffer(make([]byte, 64*1024), scanBufferSize)
	for scanner.Scan() {
		event, ok := parseStreamLine(scanner.Bytes())
		if !ok {
			continue
		}
		if event.SessionID != "" && event.SessionID != sessionID {
			sessionID = m.rebind(sessionID, event.SessionID)
		}
		if event.Type == EventSessionEnd {
			ended = true
		}
		emit(event)
	}

	err := proc.Wait()
	m.mu.Lock()
	delete(m.running, sessionID)
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn().Err(err).Str("session", sessionID).Msg("chat turn exited with error")
		emit(endEvent(sessionID, err))
		return
	}
	if !ended {
		emit(endEvent(sessionID, nil))
	}
	m.logger.Debug().Str("session", sessionID).Msg("chat turn finished")
}

// rebind moves the running process under the CLI's real session id.
func (m *Manager) rebind(oldID, newID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	proc, ok := m.running[oldID]
	if !ok {
		return oldID
	}
	delete(m.running, oldID)
	m.running[newID] = proc
	return newID
}

func (m *Manager) drainStderr(sessionID string, proc process) {
	scanner := bufio.NewScanner(proc.Stderr())
	scanner.Buffer(make([]byte, 64*1024), scanBufferSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			m.logger.Debug().Str("session", sessionID).Str("stderr", line).Msg("engine stderr")
		}
	}
}
