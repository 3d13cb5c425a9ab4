package dbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/lmk/internal/store"
)

type closedSignal struct {
	id     uint32
	reason CloseReason
}

type signalRecorder struct {
	mu      sync.Mutex
	signals []closedSignal
}

func (r *signalRecorder) emit(id uint32, reason CloseReason) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, closedSignal{id, reason})
	return nil
}

func (r *signalRecorder) all() []closedSignal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]closedSignal(nil), r.signals...)
}

func newTestServer(t *testing.T) (*NotificationServer, *signalRecorder) {
	t.Helper()
	s := NewNotificationServer(nil)
	rec := &signalRecorder{}
	s.emit = rec.emit

	var next uint32
	s.SetNotifyHandler(func(n *DBusNotification) (uint32, error) {
		next++
		return next, nil
	})
	return s, rec
}

func notify(s *NotificationServer, summary string) (uint32, *dbus.Error) {
	return s.Notify("app", 0, "", summary, "", nil, nil, -1)
}

func TestNotificationServer_Notify(t *testing.T) {
	s, _ := newTestServer(t)

	var got *DBusNotification
	s.SetNotifyHandler(func(n *DBusNotification) (uint32, error) {
		got = n
		return 42, nil
	})

	hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(2))}
	id, dErr := s.Notify("mail", 7, "icon", "Subject", "Body", []string{"default", "Open"}, hints, 1200)
	require.Nil(t, dErr)
	assert.Equal(t, uint32(42), id)
	assert.True(t, s.IsActive(42))

	require.NotNil(t, got)
	assert.Equal(t, "mail", got.AppName)
	assert.Equal(t, uint32(7), got.ReplacesID)
	assert.Equal(t, "Subject", got.Summary)
	assert.Equal(t, int32(1200), got.ExpireTimeout)
	assert.Equal(t, "critical", got.Urgency())
}

func TestNotificationServer_NotifyErrors(t *testing.T) {
	s := NewNotificationServer(nil)
	_, dErr := notify(s, "x")
	assert.NotNil(t, dErr, "no handler")

	s.SetNotifyHandler(func(*DBusNotification) (uint32, error) {
		return 0, errors.New("store is closed")
	})
	_, dErr = notify(s, "x")
	require.NotNil(t, dErr)
	assert.Contains(t, dErr.Error(), "store is closed")
}

func TestNotificationServer_CloseNotification(t *testing.T) {
	s, rec := newTestServer(t)

	var closed []uint32
	s.SetCloseHandler(func(id uint32) bool {
		closed = append(closed, id)
		return true
	})

	id, _ := notify(s, "x")
	require.Nil(t, s.CloseNotification(id))
	assert.False(t, s.IsActive(id))
	assert.Equal(t, []uint32{id}, closed)
	assert.Equal(t, []closedSignal{{id, CloseReasonClosed}}, rec.all())

	// Unknown or already closed IDs are ignored.
	require.Nil(t, s.CloseNotification(id))
	require.Nil(t, s.CloseNotification(999))
	assert.Len(t, closed, 1)
	assert.Len(t, rec.all(), 1)
}

func TestNotificationServer_Capabilities(t *testing.T) {
	s := NewNotificationServer(nil)
	caps, dErr := s.GetCapabilities()
	require.Nil(t, dErr)
	assert.Equal(t, []string{"body"}, caps)

	s.SetServerInfo(ServerInfo{Name: "lmkd", Vendor: "lmk", Version: "1.0.0", SpecVersion: "1.2"})
	name, vendor, version, spec, dErr := s.GetServerInformation()
	require.Nil(t, dErr)
	assert.Equal(t, []string{"lmkd", "lmk", "1.0.0", "1.2"}, []string{name, vendor, version, spec})
}

func TestNotificationServer_EmitWithoutConnection(t *testing.T) {
	s := NewNotificationServer(nil)
	assert.Error(t, s.emitNotificationClosed(1, CloseReasonExpired))
}

func TestNotificationServer_WatchStore(t *testing.T) {
	s, rec := newTestServer(t)
	first, _ := notify(s, "a")
	second, _ := notify(s, "b")
	third, _ := notify(s, "c")

	events := make(chan store.ChangeEvent, 4)
	events <- store.ChangeEvent{Type: store.ChangeTypeAdd, Count: 1, IDs: []uint32{first}}
	events <- store.ChangeEvent{Type: store.ChangeTypeDismiss, Count: 2, IDs: []uint32{first, 100}}
	events <- store.ChangeEvent{Type: store.ChangeTypePrune, Count: 2, IDs: []uint32{first, second}}
	close(events)

	done := make(chan struct{})
	go func() {
		s.WatchStore(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WatchStore did not return after the channel closed")
	}

	assert.Equal(t, []closedSignal{
		{first, CloseReasonDismissed},
		{second, CloseReasonUndefined},
	}, rec.all())
	assert.True(t, s.IsActive(third))
}

func TestNotificationServer_WatchStoreCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.WatchStore(ctx, make(chan store.ChangeEvent))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WatchStore did not return after cancel")
	}
}

// fakeBus records exported objects by "path iface".
type fakeBus struct {
	exported  map[string]bool
	failIface string
	reply     dbus.RequestNameReply
	nameErr   error
}

func (b *fakeBus) Export(v interface{}, path dbus.ObjectPath, iface string) error {
	key := string(path) + " " + iface
	if v == nil {
		delete(b.exported, key)
		return nil
	}
	if iface == b.failIface {
		return errors.New("export refused")
	}
	b.exported[key] = true
	return nil
}

func (b *fakeBus) RequestName(string, dbus.RequestNameFlags) (dbus.RequestNameReply, error) {
	return b.reply, b.nameErr
}

func TestPublish(t *testing.T) {
	node := &introspect.Node{Name: ControlPath}

	tests := []struct {
		name     string
		bus      fakeBus
		wantErr  string
		exported int
	}{
		{
			name:     "claims name",
			bus:      fakeBus{reply: dbus.RequestNameReplyPrimaryOwner},
			exported: 2,
		},
		{
			name:    "name taken",
			bus:     fakeBus{reply: dbus.RequestNameReplyExists},
			wantErr: "already taken",
		},
		{
			name:    "request fails",
			bus:     fakeBus{nameErr: errors.New("bus gone")},
			wantErr: "bus gone",
		},
		{
			name:    "introspection export fails",
			bus:     fakeBus{failIface: introspectableInterface, reply: dbus.RequestNameReplyPrimaryOwner},
			wantErr: "introspectable",
		},
		{
			name:    "object export fails",
			bus:     fakeBus{failIface: ControlInterface, reply: dbus.RequestNameReplyPrimaryOwner},
			wantErr: "export refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := tt.bus
			bus.exported = make(map[string]bool)

			err := publish(&bus, &ControlServer{}, node, ControlInterface, ControlBusName)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Empty(t, bus.exported, "nothing may stay exported after a failure")
				return
			}
			require.NoError(t, err)
			assert.Len(t, bus.exported, tt.exported)
			assert.True(t, bus.exported[ControlPath+" "+ControlInterface])
		})
	}
}
