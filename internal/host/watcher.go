package host

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ConfigReload carries the live settings read back from the config file.
// Texts is nil when the texts are not taken from the config file.
type ConfigReload struct {
	ReducedMotion bool
	Texts         []string
}

// ConfigWatcher reloads the live settings whenever the config file changes
// and publishes them on Changes.
type ConfigWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	load     func() (ConfigReload, error)
	logger   *zap.Logger
	debounce time.Duration
	changes  chan ConfigReload
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewConfigWatcher watches path. load is called after a debounced change.
func NewConfigWatcher(path string, load func() (ConfigReload, error), logger *zap.Logger) (*ConfigWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if load == nil {
		return nil, fmt.Errorf("load func is nil")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigWatcher{
		watcher:  watcher,
		path:     filepath.Clean(path),
		load:     load,
		logger:   logger,
		debounce: 200 * time.Millisecond,
		changes:  make(chan ConfigReload, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Changes delivers reloaded values. Only the latest value is kept when the
// reader falls behind. The channel is closed when the watcher stops.
func (w *ConfigWatcher) Changes() <-chan ConfigReload {
	return w.changes
}

// Start watches the config directory, so the file may be created later.
func (w *ConfigWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch config dir: %w", err)
	}
	w.running = true
	go w.run(ctx)
	return nil
}

// Stop ends the watch loop and closes the underlying watcher.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("failed to close config watcher", zap.Error(err))
	}
}

func (w *ConfigWatcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.changes)

	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()

	var pendingSince time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			pendingSince = time.Now()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		case <-ticker.C:
			if pendingSince.IsZero() || time.Since(pendingSince) < w.debounce {
				continue
			}
			pendingSince = time.Time{}
			w.reload()
		}
	}
}

func (w *ConfigWatcher) reload() {
	reload, err := w.load()
	if err != nil {
		w.logger.Warn("failed to reload config", zap.Error(err))
		return
	}
	w.logger.Debug("config reloaded",
		zap.Bool("reduced", reload.ReducedMotion),
		zap.Int("texts", len(reload.Texts)),
	)
	select {
	case w.changes <- reload:
	default:
		select {
		case <-w.changes:
		default:
		}
		w.changes <- reload
	}
}
