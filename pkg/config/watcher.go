package config

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a single config file for changes and reloads the global
// singleton (via Reload) whenever it settles after a write. Editors
// that write via rename-and-replace fire several fsnotify events per save,
// so reloads are debounced until the file has been quiet for a full
// interval.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	running bool
}

// NewWatcher creates a Watcher for path. The returned Watcher does not
// start watching until Watch is called.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultReloadDebounceInterval
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     path,
		debounce: debounce,
		logger:   logger.With("component", "config.watcher"),
		watcher:  fw,
	}, nil
}

// Watch blocks, driving the global configuration store's Reload each time
// the file settles after being written, until ctx is cancelled. Components
// interested in the reloaded config register with Subscribe; the watcher
// itself only decides *when* a reload happens.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("config: watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		w.watcher.Close()
	}()

	if err := w.watcher.Add(w.path); err != nil {
		return fmt.Errorf("config: failed to watch %s: %w", w.path, err)
	}

	w.logger.Info("config watcher started", "path", w.path, "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("config watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("config: watcher events channel closed")
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("config file event", "path", event.Name, "op", event.Op.String())
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("config: watcher errors channel closed")
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

// scheduleReload (re)arms a debounce timer so a burst of writes to the
// config file (as many editors perform) triggers exactly one reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if err := Reload(); err != nil {
			w.logger.Error("config reload failed", "error", err)
			return
		}
		w.logger.Info("config reloaded", "path", w.path, "generation", Generation())
	})
}
