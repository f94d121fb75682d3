package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// debounceDelay coalesces bursts of events on the same path, editors
// tend to fire several writes per save.
const debounceDelay = 50 * time.Millisecond

// EventType represents the kind of file system change.
type EventType string

const (
	EventCreated  EventType = "created"
	EventModified EventType = "modified"
	EventDeleted  EventType = "deleted"
	EventRenamed  EventType = "renamed"
)

// FileEvent is one observed change, with the path relative to the
// workspace root.
type FileEvent struct {
	Type EventType `json:"type"`
	Path string    `json:"path"`
}

// Watcher observes a workspace tree and fans changes out to subscribers.
type Watcher struct {
	root     string
	fs       *fsnotify.Watcher
	logger   zerolog.Logger
	debounce *debouncer

	mu        sync.RWMutex
	listeners []chan FileEvent
	closed    bool

	dirMu   sync.RWMutex
	watched map[string]bool

	done chan struct{}
}

// NewWatcher starts watching the workspace root recursively.
func NewWatcher(w *Workspace, logger zerolog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	watcher := &Watcher{
		root:     w.Root,
		fs:       fs,
		logger:   logger,
		debounce: newDebouncer(debounceDelay),
		watched:  make(map[string]bool),
		done:     make(chan struct{}),
	}
	if err := watcher.watchRecursive(w.Root); err != nil {
		fs.Close()
		return nil, err
	}
	logger.Debug().Int("dirs", watcher.WatchCount()).Str("root", w.Root).Msg("watcher started")

	go watcher.run()
	return watcher, nil
}

// Subscribe returns a channel receiving future events.
func (w *Watcher) Subscribe() chan FileEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan FileEvent, 100)
	w.listeners = append(w.listeners, ch)
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (w *Watcher) Unsubscribe(ch chan FileEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, listener := range w.listeners {
		if listener == ch {
			w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close stops watching and closes every subscriber channel.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	listeners := w.listeners
	w.listeners = nil
	w.mu.Unlock()

	w.debounce.stop()
	close(w.done)
	for _, ch := range listeners {
		close(ch)
	}
	return w.fs.Close()
}

// WatchCount returns how many directories are being watched.
func (w *Watcher) WatchCount() int {
	w.dirMu.RLock()
	defer w.dirMu.RUnlock()
	return len(w.watched)
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return
	}
	if _, skip := skippedDirs[base]; skip {
		return
	}

	w.dirMu.RLock()
	wasDir := w.watched[event.Name]
	w.dirMu.RUnlock()

	out := FileEvent{Path: filepath.ToSlash(rel)}
	switch {
	case event.Op&fsnotify.Create != 0:
		out.Type = EventCreated
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchRecursive(event.Name); err != nil {
				w.logger.Debug().Err(err).Str("dir", event.Name).Msg("failed to watch new directory")
			}
		}
	case event.Op&fsnotify.Write != 0:
		out.Type = EventModified
	case event.Op&fsnotify.Remove != 0:
		out.Type = EventDeleted
		if wasDir {
			w.unwatch(event.Name)
		}
	case event.Op&fsnotify.Rename != 0:
		out.Type = EventRenamed
		if wasDir {
			w.unwatch(event.Name)
		}
	default:
		return
	}
	w.debounce.add(out, w.broadcast)
}

func (w *Watcher) broadcast(event FileEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	for _, ch := range w.listeners {
		select {
		case ch <- event:
		default:
			// Slow subscribers lose events rather than block the loop.
		}
	}
}

func (w *Watcher) watchRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		name := info.Name()
		if path != dir && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		if _, skip := skippedDirs[name]; skip {
			return filepath.SkipDir
		}

		w.dirMu.RLock()
		already := w.watched[path]
		w.dirMu.RUnlock()
		if already {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Debug().Err(err).Str("dir", path).Msg("could not watch directory")
			return nil
		}
		w.dirMu.Lock()
		w.watched[path] = true
		w.dirMu.Unlock()
		return nil
	})
}

func (w *Watcher) unwatch(dir string) {
	w.dirMu.Lock()
	defer w.dirMu.Unlock()
	prefix := dir + string(filepath.Separator)
	for path := range w.watched {
		if path == dir || strings.HasPrefix(path, prefix) {
			_ = w.fs.Remove(path)
			delete(w.watched, path)
		}
	}
}

// debouncer delays per path+type so rapid repeats collapse into one
// event.
type debouncer struct {
	mu      sync.Mutex
	pending map[string]*time.Timer
	events  map[string]FileEvent
	delay   time.Duration
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		pending: make(map[string]*time.Timer),
		events:  make(map[string]FileEvent),
		delay:   delay,
	}
}

func (d *debouncer) add(event FileEvent, notify func(FileEvent)) {
	key := event.Path + ":" + string(event.Type)
	d.mu.Lock()
	defer d.mu.Unlock()

	d.events[key] = event
	if timer, ok := d.pending[key]; ok {
		timer.Reset(d.delay)
		return
	}
	d.pending[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		ev, ok := d.events[key]
		delete(d.events, key)
		delete(d.pending, key)
		d.mu.Unlock()
		if ok {
			notify(ev)
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, timer := range d.pending {
		timer.Stop()
		delete(d.pending, key)
		delete(d.events, key)
	}
}
