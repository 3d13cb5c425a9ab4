package audio

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher drops cached sounds when their files change on disk.
type Watcher struct {
	mu     sync.Mutex
	logger *slog.Logger
	player *Player

	watcher *fsnotify.Watcher
	paths   map[string]bool // Watched sound files
	dirs    map[string]bool // Directories added to fsnotify

	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a new audio file watcher.
func NewWatcher(player *Player, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger: logger,
		player: player,
		paths:  make(map[string]bool),
		dirs:   make(map[string]bool),
	}
}

// Start begins delivering change events.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.watcher = watcher
	w.doneCh = make(chan struct{})
	w.running = true

	for path := range w.paths {
		w.addDirLocked(path)
	}

	go w.watchLoop(ctx, watcher)

	w.logger.Debug("audio watcher started", "files", len(w.paths))
	return nil
}

// Watch adds a sound file. Its directory is watched so replaced files are
// noticed too.
func (w *Watcher) Watch(path string) {
	if path == "" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.paths[path] = true
	if w.running {
		w.addDirLocked(path)
	}
}

// Reset forgets every watched file. Directories stay watched until Stop.
func (w *Watcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.paths)
}

func (w *Watcher) addDirLocked(path string) {
	dir := filepath.Dir(path)
	if w.dirs[dir] {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Debug("failed to watch sound directory", "dir", dir, "error", err)
		return
	}
	w.dirs[dir] = true
}

// Stop stops watching audio files.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	watcher := w.watcher
	clear(w.dirs)
	w.mu.Unlock()

	_ = watcher.Close()
	<-w.doneCh
	w.logger.Debug("audio watcher stopped")
}

func (w *Watcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			w.mu.Lock()
			watched := w.paths[event.Name]
			w.mu.Unlock()

			if watched {
				w.logger.Debug("sound file changed, invalidating cache", "path", event.Name)
				w.player.Invalidate(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("audio watcher error", "error", err)
		}
	}
}
