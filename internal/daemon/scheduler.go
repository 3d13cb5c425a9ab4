package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/lmk/internal/model"
)

// Toaster receives toast lifecycle events. *display.Controller implements it.
type Toaster interface {
	ShowToast(id uint32)
	ToastExpired(id uint32)
}

// ToastScheduler shows a toast for each new notification and reports its
// expiry once the notification's duration has passed. Waiting toasts are
// runtime timers, not goroutines.
type ToastScheduler struct {
	mu      sync.Mutex
	toaster Toaster
	logger  *slog.Logger
	timers  map[uint32]*time.Timer
	stopped bool
}

// NewToastScheduler creates a scheduler driving t.
func NewToastScheduler(t Toaster, logger *slog.Logger) *ToastScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToastScheduler{
		toaster: t,
		logger:  logger,
		timers:  make(map[uint32]*time.Timer),
	}
}

// Schedule requests the toast for n now and its expiry after n.Duration().
// Expiries are never cancelled early; the controller drops stale ones.
func (s *ToastScheduler) Schedule(n model.Notification) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.toaster.ShowToast(n.ID)

	id := n.ID
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.timers[id] = time.AfterFunc(n.Duration(), func() { s.expire(id) })
}

func (s *ToastScheduler) expire(id uint32) {
	s.mu.Lock()
	delete(s.timers, id)
	stopped := s.stopped
	s.mu.Unlock()

	if !stopped {
		s.toaster.ToastExpired(id)
	}
}

// Pending returns the number of toasts waiting to expire.
func (s *ToastScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every outstanding expiry. Later calls to Schedule do nothing.
func (s *ToastScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.logger.Debug("toast scheduler stopped")
}
