package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const maxRecents = 10

// RecentEntry is one remembered workspace.
type RecentEntry struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	LastOpened time.Time `json:"lastOpened"`
}

// Recents persists the recently opened workspaces, most recent first.
type Recents struct {
	mu       sync.RWMutex
	entries  []RecentEntry
	filePath string
}

// NewRecents loads the recents list from the given state file. A missing
// or corrupt file starts a fresh list.
func NewRecents(filePath string) (*Recents, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	r := &Recents{filePath: filePath, entries: []RecentEntry{}}
	data, err := os.ReadFile(filePath)
	if err == nil {
		if jsonErr := json.Unmarshal(data, &r.entries); jsonErr != nil {
			r.entries = []RecentEntry{}
		}
	}
	return r, nil
}

// Add records a workspace as most recently opened. Paths that are not
// existing directories are rejected.
func (r *Recents) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("workspace not found: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", abs)
	}

	r.mu.Lock()
	kept := make([]RecentEntry, 0, maxRecents)
	kept = append(kept, RecentEntry{
		Path:       abs,
		Name:       filepath.Base(abs),
		LastOpened: time.Now(),
	})
	for _, entry := range r.entries {
		if entry.Path != abs && len(kept) < maxRecents {
			kept = append(kept, entry)
		}
	}
	r.entries = kept
	r.mu.Unlock()

	return r.save()
}

// All returns a copy of the recents list.
func (r *Recents) All() []RecentEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RecentEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Clear drops every remembered workspace.
func (r *Recents) Clear() error {
	r.mu.Lock()
	r.entries = []RecentEntry{}
	r.mu.Unlock()
	return r.save()
}

func (r *Recents) save() error {
	r.mu.RLock()
	data, err := json.MarshalIndent(r.entries, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(r.filePath, data, 0o644)
}
