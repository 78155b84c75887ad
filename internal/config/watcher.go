package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yooncheol/bapsang/internal/logging"
)

// ReloadCallback is called when the config file is successfully reloaded.
// A callback error is logged but the watcher keeps watching.
type ReloadCallback func(cfg *Config) error

// WatcherConfig holds configuration for the config file Watcher.
type WatcherConfig struct {
	// FilePath is the YAML config file to watch
	FilePath string

	// DebounceMillis coalesces file change events within this period
	// into a single reload. Default: 500ms.
	DebounceMillis int
}

// Watcher watches the config file and triggers reload callbacks with
// debouncing, so editor save sequences don't cause reload storms.
// Invalid configs during reload are logged and skipped; the previous
// valid config stays in effect.
type Watcher struct {
	config   WatcherConfig
	callback ReloadCallback
	cancel   context.CancelFunc
	stopped  chan struct{}
	ready    chan struct{} // closed once the fsnotify watcher is installed
	logger   *logging.Logger
	mu       sync.Mutex

	debounceTimer *time.Timer
}

// NewWatcher creates a watcher for the given config file.
// The callback is invoked once with the initial config and again whenever
// the file changes and the new config is valid.
func NewWatcher(config WatcherConfig, callback ReloadCallback) (*Watcher, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("FilePath cannot be empty")
	}
	if callback == nil {
		return nil, fmt.Errorf("callback cannot be nil")
	}
	if config.DebounceMillis == 0 {
		config.DebounceMillis = 500
	}

	return &Watcher{
		config:   config,
		callback: callback,
		stopped:  make(chan struct{}),
		ready:    make(chan struct{}),
		logger:   logging.GetLogger("config.watcher"),
	}, nil
}

// Start loads the initial config, invokes the callback with it and begins
// watching for file changes. Returns once the file watch is installed.
// Fails fast if the initial load or initial callback fails.
func (w *Watcher) Start(ctx context.Context) error {
	initialConfig, err := Load(w.config.FilePath)
	if err != nil {
		return fmt.Errorf("failed to load initial config: %w", err)
	}

	if err := w.callback(initialConfig); err != nil {
		return fmt.Errorf("initial callback failed: %w", err)
	}

	w.logger.Info("loaded initial config from %s", w.config.FilePath)

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	go w.watchLoop(watchCtx)

	// Wait until the fsnotify watch is installed so changes made right
	// after Start are not missed.
	select {
	case <-w.ready:
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for file watcher to initialize")
	}

	return nil
}

// signalReady closes the ready channel exactly once
func (w *Watcher) signalReady() {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.ready:
	default:
		close(w.ready)
	}
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.stopped)
	defer w.signalReady()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Error("failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(w.config.FilePath); err != nil {
		w.logger.Error("failed to watch file %s: %v", w.config.FilePath, err)
		return
	}

	w.logger.Info("watching %s for changes (debounce: %dms)",
		w.config.FilePath, w.config.DebounceMillis)

	w.signalReady()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("context cancelled, stopping")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Remove/Rename matter for atomic writes: the old file is
			// unlinked before the new one is renamed into place, so the
			// watch must be re-added on the new inode.
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Rename == fsnotify.Rename ||
				event.Op&fsnotify.Remove == fsnotify.Remove {
				if event.Op&fsnotify.Rename == fsnotify.Rename ||
					event.Op&fsnotify.Remove == fsnotify.Remove {
					time.Sleep(50 * time.Millisecond)
					if err := watcher.Add(w.config.FilePath); err != nil {
						w.logger.Warn("failed to re-add watch after %s: %v", event.Op, err)
					}
				}
				w.handleFileChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error: %v", err)
		}
	}
}

// handleFileChange debounces by resetting a timer on each event.
func (w *Watcher) handleFileChange() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(
		time.Duration(w.config.DebounceMillis)*time.Millisecond,
		w.reloadConfig,
	)
}

// reloadConfig reloads the file and calls the callback if it parses and
// validates. Failures keep the previous config in effect.
func (w *Watcher) reloadConfig() {
	w.logger.Info("reloading config from %s", w.config.FilePath)

	newConfig, err := Load(w.config.FilePath)
	if err != nil {
		w.logger.Warn("failed to load config (keeping previous config): %v", err)
		return
	}

	if err := w.callback(newConfig); err != nil {
		w.logger.Warn("callback error (continuing to watch): %v", err)
		return
	}

	w.logger.Info("config reloaded successfully")
}

// Stop stops the file watcher, waiting up to 5 seconds for the watch
// loop to exit.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}

	select {
	case <-w.stopped:
		w.logger.Debug("stopped gracefully")
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for watcher to stop")
	}
}
