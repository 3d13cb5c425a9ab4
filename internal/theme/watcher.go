package theme

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Watcher polls a user palette file and reports edits.
type Watcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	dir     string
	palette *Palette

	pollInterval time.Duration

	onChangeCallback func(p *Palette)

	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewWatcher creates a watcher for p, which was loaded from dir.
func NewWatcher(dir string, p *Palette, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		logger:       logger,
		dir:          dir,
		palette:      p,
		pollInterval: time.Second,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// SetPollInterval sets how often the file is checked.
func (w *Watcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pollInterval = interval
}

// SetChangeCallback sets the callback invoked with the reloaded palette.
func (w *Watcher) SetChangeCallback(callback func(p *Palette)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChangeCallback = callback
}

// Start begins polling. Bundled palettes are not watched.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	if w.palette == nil || w.palette.IsBundled() {
		w.mu.Unlock()
		w.logger.Debug("not watching bundled theme")
		return nil
	}

	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	interval := w.pollInterval
	path := w.palette.Path
	w.mu.Unlock()

	go w.watchLoop(ctx, interval)

	w.logger.Debug("theme watcher started", "path", path, "interval", interval)
	return nil
}

// Stop stops polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
	w.logger.Debug("theme watcher stopped")
}

func (w *Watcher) watchLoop(ctx context.Context, interval time.Duration) {
	defer close(w.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

func (w *Watcher) checkForChanges() {
	w.mu.RLock()
	current := w.palette
	callback := w.onChangeCallback
	w.mu.RUnlock()

	changed, err := current.Changed()
	if err != nil {
		w.logger.Debug("theme file unavailable", "path", current.Path, "error", err)
		return
	}
	if !changed {
		return
	}

	p, err := Load(w.dir, current.Name)
	if err != nil {
		w.logger.Warn("failed to reload theme", "path", current.Path, "error", err)
		// Keep the old colours and wait for the next edit.
		stale := *current
		stale.ModTime = time.Now()
		w.mu.Lock()
		w.palette = &stale
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.palette = p
	w.mu.Unlock()

	w.logger.Info("theme file changed", "name", p.Name, "path", current.Path)
	if callback != nil {
		callback(p)
	}
}

// IsRunning returns whether the watcher is polling.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
