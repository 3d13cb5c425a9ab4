package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/lmk/internal/model"
)

// Pruner removes old dismissed notifications. *store.Store implements it.
type Pruner interface {
	Prune(now time.Time, retention time.Duration) []model.Notification
}

// Janitor periodically prunes dismissed notifications older than the
// retention period.
type Janitor struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	store     Pruner
	interval  time.Duration
	retention time.Duration
	now       func() time.Time

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewJanitor creates a janitor for store.
func NewJanitor(store Pruner, interval, retention time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		logger:    logger,
		store:     store,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

// SetRetention changes the retention used by later sweeps.
func (j *Janitor) SetRetention(retention time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.retention = retention
}

// Start begins sweeping every interval.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return nil
	}
	j.running = true
	j.stopCh = make(chan struct{})
	j.doneCh = make(chan struct{})
	j.mu.Unlock()

	go j.loop(ctx)

	j.logger.Debug("janitor started", "interval", j.interval, "retention", j.retention)
	return nil
}

// Stop stops sweeping and waits for the loop to exit.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	close(j.stopCh)
	j.mu.Unlock()

	<-j.doneCh
	j.logger.Debug("janitor stopped")
}

// Sweep prunes once as of now and returns how many notifications went.
func (j *Janitor) Sweep(now time.Time) int {
	j.mu.RLock()
	retention := j.retention
	j.mu.RUnlock()

	removed := j.store.Prune(now, retention)
	if len(removed) > 0 {
		j.logger.Debug("pruned notifications", "count", len(removed))
	}
	return len(removed)
}

func (j *Janitor) loop(ctx context.Context) {
	defer close(j.doneCh)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.stopCh:
			return
		case <-ticker.C:
			j.Sweep(j.now())
		}
	}
}
