// Package session reads the JSONL transcripts the AI CLIs write under
// their per-project history directories.
package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"polaris/internal/engine"
)

// transcriptScanBuffer bounds one transcript line.
const transcriptScanBuffer = 4 * 1024 * 1024

// Meta summarizes one stored session.
type Meta struct {
	ID           string `json:"id"`
	Engine       string `json:"engine"`
	ModifiedAt   int64  `json:"modifiedAt"`
	MessageCount int    `json:"messageCount"`
	FirstPrompt  string `json:"firstPrompt,omitempty"`
}

// Message is one user or assistant turn of a stored session.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// TokenStats aggregates the token usage reported across a session.
type TokenStats struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// Reader resolves and parses transcripts for the supported engines.
type Reader struct {
	claudeRoot string
	iflowRoot  string
}

// NewReader uses the default per-user history locations.
func NewReader() (*Reader, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return &Reader{
		claudeRoot: filepath.Join(home, ".claude"),
		iflowRoot:  filepath.Join(home, ".iflow"),
	}, nil
}

// NewReaderAt points the reader at explicit history roots.
func NewReaderAt(claudeRoot, iflowRoot string) *Reader {
	return &Reader{claudeRoot: claudeRoot, iflowRoot: iflowRoot}
}

// EncodeProjectPath turns a working directory into the directory name
// the CLIs use under projects/. Drive colons are dropped and both slash
// flavors become dashes, with a leading dash prefix.
func EncodeProjectPath(path string) string {
	normalized := strings.NewReplacer(":", "", "\\", "-", "/", "-").Replace(path)
	return "-" + normalized
}

// projectDir resolves the transcript directory for one engine and
// working directory.
func (r *Reader) projectDir(eng engine.Engine, workDir string) (string, error) {
	var root string
	switch eng {
	case engine.EngineClaude:
		root = r.claudeRoot
	case engine.EngineIFlow:
		root = r.iflowRoot
	default:
		return "", fmt.Errorf("unknown engine %q", eng)
	}
	return filepath.Join(root, "projects", EncodeProjectPath(workDir)), nil
}

// List returns the stored sessions for a working directory, newest
// first. A missing history directory yields an empty list.
func (r *Reader) List(eng engine.Engine, workDir string) ([]Meta, error) {
	dir, err := r.projectDir(eng, workDir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []Meta{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	metas := []Meta{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		meta := Meta{
			ID:         strings.TrimSuffix(entry.Name(), ".jsonl"),
			Engine:     string(eng),
			ModifiedAt: info.ModTime().Unix(),
		}
		messages, err := parseTranscript(filepath.Join(dir, entry.Name()))
		if err == nil {
			meta.MessageCount = len(messages)
			for _, msg := range messages {
				if msg.Role == "user" {
					meta.FirstPrompt = firstLine(msg.Content)
					break
				}
			}
		}
		metas = append(metas, meta)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].ModifiedAt > metas[j].ModifiedAt })
	return metas, nil
}

// History returns the parsed turns of one session.
func (r *Reader) History(eng engine.Engine, workDir, sessionID string) ([]Message, error) {
	path, err := r.sessionFile(eng, workDir, sessionID)
	if err != nil {
		return nil, err
	}
	return parseTranscript(path)
}

// Stats sums the token usage the assistant turns report.
func (r *Reader) Stats(eng engine.Engine, workDir, sessionID string) (*TokenStats, error) {
	path, err := r.sessionFile(eng, workDir, sessionID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session %s: %w", sessionID, err)
	}
	defer f.Close()

	stats := &TokenStats{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), transcriptScanBuffer)
	for scanner.Scan() {
		var line struct {
			Message struct {
				Usage struct {
					InputTokens  int `json:"input_tokens"`
					OutputTokens int `json:"output_tokens"`
				} `json:"usage"`
			} `json:"message"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		stats.InputTokens += line.Message.Usage.InputTokens
		stats.OutputTokens += line.Message.Usage.OutputTokens
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan session %s: %w", sessionID, err)
	}
	stats.TotalTokens = stats.InputTokens + stats.OutputTokens
	return stats, nil
}

func (r *Reader) sessionFile(eng engine.Engine, workDir, sessionID string) (string, error) {
	dir, err := r.projectDir(eng, workDir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, sessionID+".jsonl")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("session %s not found: %w", sessionID, err)
	}
	return path, nil
}

// transcriptLine is the subset of a stored line needed to rebuild the
// conversation. Content is either a plain string or a block array.
type transcriptLine struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Message   struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

func parseTranscript(path string) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	messages := []Message{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), transcriptScanBuffer)
	for scanner.Scan() {
		var line transcriptLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		if line.Type != "user" && line.Type != "assistant" {
			continue
		}
		content := contentText(line.Message.Content)
		if content == "" {
			continue
		}
		role := line.Message.Role
		if role == "" {
			role = line.Type
		}
		messages = append(messages, Message{
			Role:      role,
			Content:   content,
			Timestamp: line.Timestamp,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan transcript: %w", err)
	}
	return messages, nil
}

// contentText flattens a message content field. Tool use and other
// non-text blocks are skipped.
func contentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}
	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
