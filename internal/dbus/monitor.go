package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

// MonitorHandler receives a Notify call observed on the bus.
type MonitorHandler func(notification *DBusNotification)

// Monitor passively observes Notify calls addressed to another notification
// daemon, so lmk can mirror them without owning the bus name.
type Monitor struct {
	mu     sync.Mutex
	conn   *dbus.Conn
	logger *slog.Logger
	stopCh chan struct{}
	doneCh chan struct{}

	onNotify MonitorHandler
}

// NewMonitor creates a new notification monitor.
func NewMonitor(logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		logger: logger,
	}
}

// SetNotifyHandler sets the callback for observed notifications.
func (m *Monitor) SetNotifyHandler(handler MonitorHandler) {
	m.onNotify = handler
}

// Start opens a dedicated connection and turns it into a monitor. A monitor
// connection cannot be used for anything else.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		return fmt.Errorf("monitor already running")
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	rules := []string{
		"type='method_call',interface='" + DBusInterface + "',member='Notify'",
	}
	err = conn.BusObject().Call("org.freedesktop.DBus.Monitoring.BecomeMonitor", 0, rules, uint32(0)).Err
	if err != nil {
		m.logger.Warn("BecomeMonitor not available, trying AddMatch", "error", err)
		matchRule := rules[0] + ",eavesdrop='true'"
		if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, matchRule).Err; err != nil {
			_ = conn.Close()
			return fmt.Errorf("failed to add match rule (eavesdrop may require permissions): %w", err)
		}
	}

	m.conn = conn
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})

	ch := make(chan *dbus.Message, 100)
	conn.Eavesdrop(ch)
	go m.processMessages(ch, m.stopCh, m.doneCh)

	m.logger.Info("started D-Bus notification monitor")
	return nil
}

// processMessages reads eavesdropped messages until stopped.
func (m *Monitor) processMessages(ch <-chan *dbus.Message, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if isNotifyCall(msg) {
				m.handleNotify(msg)
			}
		}
	}
}

func isNotifyCall(msg *dbus.Message) bool {
	if msg.Type != dbus.TypeMethodCall {
		return false
	}
	iface, ok := msg.Headers[dbus.FieldInterface]
	if !ok || iface.Value() != DBusInterface {
		return false
	}
	member, ok := msg.Headers[dbus.FieldMember]
	return ok && member.Value() == "Notify"
}

func (m *Monitor) handleNotify(msg *dbus.Message) {
	notification, err := parseNotifyBody(msg.Body)
	if err != nil {
		m.logger.Warn("malformed Notify call", "error", err)
		return
	}

	m.logger.Debug("captured notification",
		"app", notification.AppName,
		"summary", notification.Summary)

	if m.onNotify != nil {
		m.onNotify(notification)
	}
}

// parseNotifyBody decodes the arguments of
// Notify(app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout).
func parseNotifyBody(body []any) (*DBusNotification, error) {
	if len(body) < 8 {
		return nil, fmt.Errorf("expected 8 arguments, got %d", len(body))
	}

	n := &DBusNotification{}
	var ok bool
	if n.AppName, ok = body[0].(string); !ok {
		return nil, fmt.Errorf("invalid app_name type %T", body[0])
	}
	if n.ReplacesID, ok = body[1].(uint32); !ok {
		return nil, fmt.Errorf("invalid replaces_id type %T", body[1])
	}
	if n.AppIcon, ok = body[2].(string); !ok {
		return nil, fmt.Errorf("invalid app_icon type %T", body[2])
	}
	if n.Summary, ok = body[3].(string); !ok {
		return nil, fmt.Errorf("invalid summary type %T", body[3])
	}
	if n.Body, ok = body[4].(string); !ok {
		return nil, fmt.Errorf("invalid body type %T", body[4])
	}

	if actions, ok := body[5].([]string); ok {
		n.Actions = actions
	}
	if hints, ok := body[6].(map[string]dbus.Variant); ok {
		n.Hints = hints
	}
	if timeout, ok := body[7].(int32); ok {
		n.ExpireTimeout = timeout
	}
	return n, nil
}

// Stop closes the monitor connection.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	conn, stop, done := m.conn, m.stopCh, m.doneCh
	m.conn = nil
	m.mu.Unlock()

	if conn == nil {
		return nil
	}
	close(stop)
	<-done
	return conn.Close()
}
