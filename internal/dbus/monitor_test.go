package dbus

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notifyBody() []any {
	return []any{
		"firefox",
		uint32(0),
		"firefox",
		"Download complete",
		"file.zip",
		[]string{"default", "Open"},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(0))},
		int32(4000),
	}
}

func TestParseNotifyBody(t *testing.T) {
	n, err := parseNotifyBody(notifyBody())
	require.NoError(t, err)
	assert.Equal(t, "firefox", n.AppName)
	assert.Equal(t, "Download complete", n.Summary)
	assert.Equal(t, "file.zip", n.Body)
	assert.Equal(t, []string{"default", "Open"}, n.Actions)
	assert.Equal(t, "low", n.Urgency())
	assert.Equal(t, int32(4000), n.ExpireTimeout)
}

func TestParseNotifyBody_Invalid(t *testing.T) {
	_, err := parseNotifyBody(notifyBody()[:5])
	assert.ErrorContains(t, err, "expected 8 arguments")

	body := notifyBody()
	body[3] = 12
	_, err = parseNotifyBody(body)
	assert.ErrorContains(t, err, "invalid summary type")

	// Optional trailing arguments of the wrong type are skipped.
	body = notifyBody()
	body[5] = "not a list"
	body[7] = "soon"
	n, err := parseNotifyBody(body)
	require.NoError(t, err)
	assert.Nil(t, n.Actions)
	assert.Zero(t, n.ExpireTimeout)
}

func TestMonitor_HandleNotify(t *testing.T) {
	m := NewMonitor(nil)
	var got []*DBusNotification
	m.SetNotifyHandler(func(n *DBusNotification) {
		got = append(got, n)
	})

	call := &dbus.Message{
		Type: dbus.TypeMethodCall,
		Headers: map[dbus.HeaderField]dbus.Variant{
			dbus.FieldInterface: dbus.MakeVariant(DBusInterface),
			dbus.FieldMember:    dbus.MakeVariant("Notify"),
		},
		Body: notifyBody(),
	}
	require.True(t, isNotifyCall(call))
	m.handleNotify(call)

	other := &dbus.Message{
		Type: dbus.TypeMethodCall,
		Headers: map[dbus.HeaderField]dbus.Variant{
			dbus.FieldInterface: dbus.MakeVariant(DBusInterface),
			dbus.FieldMember:    dbus.MakeVariant("CloseNotification"),
		},
	}
	assert.False(t, isNotifyCall(other))
	assert.False(t, isNotifyCall(&dbus.Message{Type: dbus.TypeSignal}))

	m.handleNotify(&dbus.Message{Body: []any{"short"}})

	require.Len(t, got, 1)
	assert.Equal(t, "Download complete", got[0].Summary)
}

func TestMonitor_StopWithoutStart(t *testing.T) {
	assert.NoError(t, NewMonitor(nil).Stop())
}
