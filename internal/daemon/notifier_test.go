package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/lmk/internal/model"
)

func newTestNotifier() (*InternalNotifier, *[]model.Request, *time.Time) {
	n := NewInternalNotifier(nil)
	var sent []model.Request
	n.SetSubmitHandler(func(req model.Request) { sent = append(sent, req) })

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }
	return n, &sent, &now
}

func TestNotificationLevel_Urgency(t *testing.T) {
	assert.Equal(t, model.UrgencyLow, NotificationLevelInfo.Urgency())
	assert.Equal(t, model.UrgencyNormal, NotificationLevelWarning.Urgency())
	assert.Equal(t, model.UrgencyCritical, NotificationLevelError.Urgency())
}

func TestInternalNotifier_RateLimit(t *testing.T) {
	n, sent, now := newTestNotifier()

	n.NotifyConfigReloaded()
	n.NotifyConfigReloaded()
	require.Len(t, *sent, 1)
	assert.Equal(t, "Configuration Reloaded", (*sent)[0].Title)
	assert.Equal(t, model.UrgencyLow, (*sent)[0].Urgency)

	// A different key is not limited.
	n.NotifyConfigError(errors.New("bad position"))
	require.Len(t, *sent, 2)
	assert.Equal(t, "Failed to reload configuration: bad position", (*sent)[1].Body)
	assert.Equal(t, model.UrgencyNormal, (*sent)[1].Urgency)

	*now = now.Add(5 * time.Second)
	n.NotifyConfigReloaded()
	assert.Len(t, *sent, 3)
}

func TestInternalNotifier_Disabled(t *testing.T) {
	n, sent, _ := newTestNotifier()
	n.SetEnabled(false)
	n.NotifyStartup("v1", "127.0.0.1:8888")
	assert.Empty(t, *sent)
}

func TestInternalNotifier_NoHandler(t *testing.T) {
	n := NewInternalNotifier(nil)
	assert.NotPanics(t, func() { n.NotifyAudioError(errors.New("x")) })
}

func TestInternalNotifier_Startup(t *testing.T) {
	n, sent, _ := newTestNotifier()
	n.SetMinInterval(0)

	n.NotifyStartup("v1.2.0", "127.0.0.1:8888")
	n.NotifyStartup("v1.2.0", "")
	require.Len(t, *sent, 2)
	assert.Equal(t, "lmkd Started", (*sent)[0].Title)
	assert.Equal(t, "Notification daemon v1.2.0 is now running.\nListening on 127.0.0.1:8888", (*sent)[0].Body)
	assert.Equal(t, "Notification daemon v1.2.0 is now running.", (*sent)[1].Body)
	assert.Equal(t, model.DefaultDurationMs, (*sent)[1].DurationMs)
}
