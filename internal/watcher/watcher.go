// Package watcher reloads dictionary files when they change on disk.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event is a change to a watched file
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// ReloadHandler is called with the batch of events for one file after its
// quiet period. It is not called when the file no longer exists.
type ReloadHandler func(ctx context.Context, path string, events []Event)

// Config contains watcher configuration
type Config struct {
	Enabled    bool `json:"enabled" mapstructure:"enabled"`
	DebounceMs int  `json:"debounceMs" mapstructure:"debounce_ms"`
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		Enabled:    false,
		DebounceMs: 500,
	}
}

// ErrNotStarted is returned by Watch before Start
var ErrNotStarted = errors.New("watcher not started")

// Watcher reports changes to individual files. It watches each file's
// parent directory so that editors replacing a file by rename are seen.
type Watcher struct {
	config  Config
	logger  *slog.Logger
	handler ReloadHandler

	mu    sync.RWMutex
	fs    *fsnotify.Watcher
	files map[string]*Batcher[Event]
	dirs  map[string]int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watcher. Nothing is watched until Start and Watch.
func New(config Config, logger *slog.Logger, handler ReloadHandler) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		config:  config,
		logger:  logger,
		handler: handler,
		files:   make(map[string]*Batcher[Event]),
		dirs:    make(map[string]int),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins watching. A disabled watcher starts as a no-op.
func (w *Watcher) Start() error {
	if !w.config.Enabled {
		w.logger.Info("Dictionary watcher is disabled")
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}

	w.mu.Lock()
	w.fs = fsw
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(fsw)

	w.logger.Info("Starting dictionary watcher", "debounceMs", w.config.DebounceMs)
	return nil
}

// Stop stops watching and drops pending reloads
func (w *Watcher) Stop() error {
	w.cancel()

	w.mu.Lock()
	fsw := w.fs
	w.fs = nil
	for _, b := range w.files {
		b.Cancel()
	}
	w.mu.Unlock()

	var err error
	if fsw != nil {
		err = fsw.Close()
	}
	w.wg.Wait()
	w.logger.Info("Dictionary watcher stopped")
	return err
}

// Watch starts reporting changes to path. Watching a path twice is a no-op.
// On a disabled watcher Watch does nothing.
func (w *Watcher) Watch(path string) error {
	if !w.config.Enabled {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fs == nil {
		return ErrNotStarted
	}
	if _, exists := w.files[abs]; exists {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++

	delay := time.Duration(w.config.DebounceMs) * time.Millisecond
	w.files[abs] = NewBatcher(delay, func(events []Event) {
		w.reload(abs, events)
	})

	w.logger.Info("Watching dictionary", "path", abs)
	return nil
}

// Unwatch stops reporting changes to path
func (w *Watcher) Unwatch(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	b, exists := w.files[abs]
	if !exists {
		return
	}
	b.Cancel()
	delete(w.files, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		if w.fs != nil {
			_ = w.fs.Remove(dir)
		}
	}
	w.logger.Info("Stopped watching dictionary", "path", abs)
}

// Watched returns the watched file paths in order
func (w *Watcher) Watched() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Stats returns watcher statistics
func (w *Watcher) Stats() map[string]interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return map[string]interface{}{
		"enabled":      w.config.Enabled,
		"watchedFiles": len(w.files),
		"debounceMs":   w.config.DebounceMs,
	}
}

func (w *Watcher) loop(fsw *fsnotify.Watcher) {
	defer w.wg.Done()

	for {
		select {
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.dispatch(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Dictionary watcher error", "error", err.Error())
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) dispatch(ev fsnotify.Event) {
	event, ok := toEvent(ev)
	if !ok {
		return
	}

	w.mu.RLock()
	b := w.files[event.Path]
	w.mu.RUnlock()

	if b != nil {
		b.Add(event)
	}
}

func (w *Watcher) reload(path string, events []Event) {
	if w.ctx.Err() != nil {
		return
	}
	if _, err := os.Stat(path); err != nil {
		w.logger.Debug("Dictionary missing after change, keeping loaded words", "path", path)
		return
	}

	w.logger.Debug("Dictionary changed", "path", path, "eventCount", len(events))
	if w.handler != nil {
		w.handler(w.ctx, path, events)
	}
}

func toEvent(ev fsnotify.Event) (Event, bool) {
	var t EventType
	switch {
	case ev.Has(fsnotify.Create):
		t = EventCreate
	case ev.Has(fsnotify.Write):
		t = EventModify
	case ev.Has(fsnotify.Remove):
		t = EventDelete
	case ev.Has(fsnotify.Rename):
		t = EventRename
	default:
		return Event{}, false
	}
	return Event{Type: t, Path: filepath.Clean(ev.Name), Timestamp: time.Now()}, true
}
