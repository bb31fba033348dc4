// Package watch triggers dataset reloads when system documents change on disk.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"starfieldpedia/internal/platform/logger"
)

// ReloadFunc is invoked once per settled burst of changes.
type ReloadFunc func(ctx context.Context) error

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	Reloads       int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// DirWatcher watches a dataset directory tree and calls its ReloadFunc after
// changes to matching files have been quiet for the debounce window.
type DirWatcher struct {
	mu        sync.RWMutex
	watcher   *fsnotify.Watcher
	dir       string
	suffix    string
	reload    ReloadFunc
	log       *logger.Logger
	debounce  time.Duration
	pending   bool
	lastEvent time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
	stopped   bool
	closeOnce sync.Once

	stats Stats
}

// Option configures a DirWatcher.
type Option func(*DirWatcher)

// WithDebounce sets the quiet period before a reload fires.
func WithDebounce(d time.Duration) Option {
	return func(w *DirWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger used for watcher events.
func WithLogger(l *logger.Logger) Option {
	return func(w *DirWatcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithSuffix limits reload triggers to files with the given extension
// (case-insensitive). An empty suffix matches every file.
func WithSuffix(suffix string) Option {
	return func(w *DirWatcher) { w.suffix = strings.ToLower(suffix) }
}

// New creates a watcher for dir. It does not watch anything until Start.
func New(dir string, reload ReloadFunc, opts ...Option) (*DirWatcher, error) {
	if reload == nil {
		return nil, errors.New("watch: reload func required")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &DirWatcher{
		watcher:  fw,
		dir:      dir,
		suffix:   ".json",
		reload:   reload,
		log:      logger.Nop(),
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start registers dir and its subdirectories and begins the event loop in a
// goroutine. Calling Start on a running watcher is a no-op; a stopped
// watcher cannot be restarted.
func (w *DirWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.stopped:
		return errors.New("watch: watcher already stopped")
	case w.running:
		return nil
	}
	if err := w.addTree(w.dir); err != nil {
		return err
	}
	w.running = true
	w.log.Info("watching dataset directory", "dir", w.dir, "debounce", w.debounce)

	go w.run(ctx)
	return nil
}

// Stop ends the event loop, waits for an in-flight reload and releases the
// fsnotify handle.
func (w *DirWatcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.stopped = true
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.closeOnce.Do(func() {
		if err := w.watcher.Close(); err != nil {
			w.log.Error("closing watcher failed", "error", err)
		}
	})
}

// Stats returns a copy of the activity counters.
func (w *DirWatcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching reports whether the event loop is running.
func (w *DirWatcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// WatchedDirs lists the directories registered with fsnotify.
func (w *DirWatcher) WatchedDirs() []string {
	return w.watcher.WatchList()
}

func (w *DirWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}

func (w *DirWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounce / 4
	if tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("watcher context cancelled")
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", "error", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.fireIfSettled(ctx)
		}
	}
}

func (w *DirWatcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warn("watching new directory failed", "dir", event.Name, "error", err)
			}
			return
		}
	}
	if w.suffix != "" && !strings.HasSuffix(strings.ToLower(event.Name), w.suffix) {
		return
	}
	w.log.Debug("dataset change", "path", event.Name, "op", event.Op.String())

	w.mu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.stats.Events++
	w.stats.LastEventTime = w.lastEvent
	w.stats.LastEventPath = event.Name
	w.mu.Unlock()
}

func (w *DirWatcher) fireIfSettled(ctx context.Context) {
	w.mu.Lock()
	if !w.pending || time.Since(w.lastEvent) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	err := w.reload(ctx)

	w.mu.Lock()
	w.stats.Reloads++
	if err != nil {
		w.stats.Errors++
	}
	w.mu.Unlock()

	if err != nil {
		w.log.Error("reload failed", "dir", w.dir, "error", err)
		return
	}
	w.log.Info("dataset reloaded", "dir", w.dir)
}
