package engine

import "encoding/json"

// Engine identifies a supported AI CLI.
type Engine string

const (
	EngineClaude Engine = "claude"
	EngineIFlow  Engine = "iflow"
)

// Valid reports whether the engine name is one we know how to drive.
func (e Engine) Valid() bool {
	return e == EngineClaude || e == EngineIFlow
}

// Event types emitted over a chat stream beyond what the CLI itself
// produces.
const (
	EventSessionEnd = "session_end"
	EventError      = "error"
)

// StreamEvent is one line of the CLI's stream-json output, decoded just
// far enough to route it. Raw carries the untouched JSON for the client.
type StreamEvent struct {
	Type      string
	SessionID string
	Raw       json.RawMessage
}

// parseStreamLine decodes one stdout line. Lines that are not JSON
// objects are dropped, the CLIs occasionally print plain text warnings.
func parseStreamLine(line []byte) (StreamEvent, bool) {
	var head struct {
		Type      string `json:"type"`
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(line, &head); err != nil || head.Type == "" {
		return StreamEvent{}, false
	}
	raw := make(json.RawMessage, len(line))
	copy(raw, line)
	return StreamEvent{Type: head.Type, SessionID: head.SessionID, Raw: raw}, true
}

// endEvent builds the synthetic terminal event for streams whose CLI
// exited without announcing one.
func endEvent(sessionID string, err error) StreamEvent {
	payload := map[string]any{"type": EventSessionEnd, "session_id": sessionID}
	if err != nil {
		payload["type"] = EventError
		payload["error"] = err.Error()
	}
	raw, _ := json.Marshal(payload)
	evType := EventSessionEnd
	if err != nil {
		evType = EventError
	}
	return StreamEvent{Type: evType, SessionID: sessionID, Raw: raw}
}

// buildArgs assembles the CLI invocation for one chat turn.
func buildArgs(engine Engine, message, resume string) []string {
	switch engine {
	case EngineIFlow:
		args := []string{"--yolo"}
		if resume != "" {
			args = append(args, "--resume", resume)
		}
		return append(args, "--prompt", message)
	default:
		args := []string{
			"--print", "--verbose",
			"--output-format", "stream-json",
			"--permission-mode", "bypassPermissions",
		}
		if resume != "" {
			args = append(args, "--resume", resume)
		}
		return append(args, message)
	}
}
