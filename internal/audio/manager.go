package audio

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/jmylchreest/lmk/internal/config"
	"github.com/jmylchreest/lmk/internal/model"
)

// Manager plays a sound per notification urgency.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher
	enabled bool

	// Urgency to sound path
	sounds map[string]string
}

// NewManager creates a new audio manager.
func NewManager(cfg *config.DaemonConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	player := NewPlayer(logger)
	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, logger),
		sounds:  make(map[string]string),
	}
	m.applyConfig(cfg)
	return m
}

// applyConfig resolves per-urgency sounds. Missing files are skipped.
func (m *Manager) applyConfig(cfg *config.DaemonConfig) {
	if cfg == nil {
		return
	}

	sounds := make(map[string]string)
	for _, urgency := range []string{model.UrgencyLow, model.UrgencyNormal, model.UrgencyCritical} {
		path := cfg.GetSoundForUrgency(urgency)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "urgency", urgency, "path", path)
			continue
		}
		sounds[urgency] = path
	}

	m.mu.Lock()
	m.enabled = cfg.Audio.Enabled
	m.sounds = sounds
	m.mu.Unlock()

	m.player.SetVolume(float64(cfg.Audio.Volume) / 100.0)
}

func (m *Manager) soundPaths() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.sounds)
}

// Start preloads the configured sounds and watches them for changes.
func (m *Manager) Start(ctx context.Context) error {
	sounds := m.soundPaths()
	for _, path := range sounds {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}

	if err := m.watcher.Start(ctx); err != nil {
		return err
	}

	m.logger.Info("audio manager started", "sounds", len(sounds))
	return nil
}

// Stop shuts down the audio manager.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

// PlayForUrgency plays the sound configured for urgency. Nothing happens
// when audio is disabled or no sound is configured.
func (m *Manager) PlayForUrgency(urgency string) error {
	m.mu.RLock()
	enabled := m.enabled
	path, ok := m.sounds[urgency]
	m.mu.RUnlock()

	if !enabled {
		return nil
	}
	if !ok {
		m.logger.Debug("no sound configured for urgency", "urgency", urgency)
		return nil
	}

	return m.player.Play(path)
}

// UpdateConfig applies a hot-reloaded configuration.
func (m *Manager) UpdateConfig(cfg *config.DaemonConfig) {
	m.player.ClearCache()
	m.watcher.Reset()
	m.applyConfig(cfg)

	for _, path := range m.soundPaths() {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound on reload", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}

	m.logger.Debug("audio manager config updated")
}
