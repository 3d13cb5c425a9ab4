package daemon

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/lmk/internal/display"
	"github.com/jmylchreest/lmk/internal/model"
	"github.com/jmylchreest/lmk/internal/store"
)

// SoundPlayer plays the sound for a notification urgency.
type SoundPlayer interface {
	PlayForUrgency(urgency string) error
}

// Status summarises the daemon for the control interface.
type Status struct {
	State   display.State
	ToastID uint32
	Pending int // Undismissed notifications
	Total   int // All retained notifications
}

// Daemon ties the request sources to the store, the toast scheduler and the
// display controller. Every method is safe for concurrent use.
type Daemon struct {
	store  *store.Store
	ctrl   *display.Controller
	toasts *ToastScheduler
	logger *slog.Logger

	mu       sync.RWMutex
	defaults model.Request
	sounds   SoundPlayer
	onError  func(err error)
}

// New creates a daemon around an existing store and controller.
func New(st *store.Store, ctrl *display.Controller, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		store:    st,
		ctrl:     ctrl,
		toasts:   NewToastScheduler(ctrl, logger),
		logger:   logger,
		defaults: model.DefaultRequest(),
	}
}

// SetDefaults replaces the request defaults handed to request sources.
func (d *Daemon) SetDefaults(req model.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.defaults = req
}

// Defaults returns the values a request source uses for missing fields.
func (d *Daemon) Defaults() model.Request {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.defaults
}

// SetSoundPlayer enables a sound for each new notification. nil disables.
func (d *Daemon) SetSoundPlayer(p SoundPlayer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sounds = p
}

// SetSoundErrorHandler sets where sound failures are reported.
func (d *Daemon) SetSoundErrorHandler(fn func(err error)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onError = fn
}

// Submit stores a request and schedules its toast.
func (d *Daemon) Submit(req model.Request) (model.Notification, error) {
	n, err := d.store.Add(req)
	if err != nil {
		return model.Notification{}, err
	}

	d.logger.Debug("notification added",
		"id", n.ID,
		"ref", n.Ref,
		"urgency", n.Urgency,
		"duration_ms", n.DurationMs,
	)
	d.toasts.Schedule(n)

	d.mu.RLock()
	sounds, onError := d.sounds, d.onError
	d.mu.RUnlock()
	if sounds != nil {
		go func() {
			if err := sounds.PlayForUrgency(n.Urgency); err != nil {
				d.logger.Debug("failed to play urgency sound", "urgency", n.Urgency, "error", err)
				if onError != nil {
					onError(err)
				}
			}
		}()
	}

	return n, nil
}

// ToggleCenter opens or closes the notification center.
func (d *Daemon) ToggleCenter() {
	d.ctrl.ToggleCenter()
}

// Dismiss dismisses one notification and reports whether it changed.
func (d *Daemon) Dismiss(id uint32) bool {
	if !d.store.Dismiss(id) {
		return false
	}
	d.ctrl.Refresh()
	return true
}

// DismissAll dismisses every notification and returns how many changed.
func (d *Daemon) DismissAll() int {
	count := d.store.DismissAll()
	if count > 0 {
		d.ctrl.Refresh()
	}
	return count
}

// List returns every retained notification in arrival order, dismissed
// ones included.
func (d *Daemon) List() []model.Notification {
	return d.store.All()
}

// Status reports the display state and store counts.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	st, err := d.ctrl.Status(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		State:   st.State,
		ToastID: st.ToastID,
		Pending: d.store.Pending(),
		Total:   d.store.Count(),
	}, nil
}

// Stop cancels outstanding toast expiries.
func (d *Daemon) Stop() {
	d.toasts.Stop()
}
