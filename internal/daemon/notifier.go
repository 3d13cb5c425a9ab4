package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/lmk/internal/model"
)

// NotificationLevel indicates the severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

// Urgency returns the notification urgency for the level.
func (l NotificationLevel) Urgency() string {
	switch l {
	case NotificationLevelInfo:
		return model.UrgencyLow
	case NotificationLevelError:
		return model.UrgencyCritical
	default:
		return model.UrgencyNormal
	}
}

// InternalNotifier posts notifications about lmkd itself through the normal
// submit path. The same key is not repeated within the minimum interval.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	submit func(req model.Request)
	now    func() time.Time

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration

	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier.
func NewInternalNotifier(logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		now:            time.Now,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		enabled:        true,
	}
}

// SetSubmitHandler sets the function that delivers notifications.
func (n *InternalNotifier) SetSubmitHandler(submit func(req model.Request)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submit = submit
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends an internal notification unless it is rate limited.
func (n *InternalNotifier) Notify(key, title, body string, level NotificationLevel) {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return
	}
	if n.submit == nil {
		n.mu.Unlock()
		n.logger.Debug("internal notification skipped: no handler", "title", title)
		return
	}

	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "title", title)
		return
	}
	n.lastNotifyTime[key] = now
	submit := n.submit
	n.mu.Unlock()

	n.logger.Debug("sending internal notification", "key", key, "title", title, "level", level)
	submit(model.Request{
		Title:      title,
		Body:       body,
		Urgency:    level.Urgency(),
		DurationMs: model.DefaultDurationMs,
	})
}

// NotifyConfigReloaded reports a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify(
		"config-reload",
		"Configuration Reloaded",
		"lmkd configuration has been successfully reloaded.",
		NotificationLevelInfo,
	)
}

// NotifyConfigError reports a config file that failed to load.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyStartup reports that the daemon is running.
func (n *InternalNotifier) NotifyStartup(version, listen string) {
	body := "Notification daemon " + version + " is now running."
	if listen != "" {
		body += "\nListening on " + listen
	}
	n.Notify("startup", "lmkd Started", body, NotificationLevelInfo)
}

// NotifyAudioError reports a failed sound.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify(
		"audio-error",
		"Audio Error",
		"Failed to play notification sound: "+err.Error(),
		NotificationLevelWarning,
	)
}
