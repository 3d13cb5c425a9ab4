package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/lmk/internal/daemon"
	"github.com/jmylchreest/lmk/internal/model"
)

const (
	// ControlInterface is the lmk control interface and bus name.
	ControlInterface = "io.github.jmylchreest.Lmk"
	// ControlPath is the control object path.
	ControlPath = "/io/github/jmylchreest/Lmk"
	// ControlBusName is the bus name lmkd claims for the control interface.
	ControlBusName = ControlInterface
)

// statusTimeout bounds how long Status waits for the display controller.
const statusTimeout = 2 * time.Second

// Backend is what the control interface drives. *daemon.Daemon implements it.
type Backend interface {
	ToggleCenter()
	Dismiss(id uint32) bool
	DismissAll() int
	List() []model.Notification
	Status(ctx context.Context) (daemon.Status, error)
}

// ControlServer exports the lmk control interface.
type ControlServer struct {
	mu      sync.Mutex
	conn    *dbus.Conn
	logger  *slog.Logger
	backend Backend
	running bool
}

// NewControlServer creates a control server for backend.
func NewControlServer(backend Backend, logger *slog.Logger) *ControlServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ControlServer{
		logger:  logger,
		backend: backend,
	}
}

// Start exports the control object on conn and claims the bus name.
func (c *ControlServer) Start(conn *dbus.Conn) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return fmt.Errorf("control server already running")
	}

	node := &introspect.Node{
		Name: ControlPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    ControlInterface,
				Methods: controlMethods(),
			},
		},
	}
	if err := publish(conn, c, node, ControlInterface, ControlBusName); err != nil {
		return err
	}

	c.conn = conn
	c.running = true
	c.logger.Info("D-Bus control interface started", "name", ControlBusName)
	return nil
}

// Stop releases the bus name and unexports the object.
func (c *ControlServer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false

	if _, err := c.conn.ReleaseName(ControlBusName); err != nil {
		c.logger.Warn("failed to release bus name", "error", err)
	}
	_ = c.conn.Export(nil, ControlPath, ControlInterface)
	_ = c.conn.Export(nil, ControlPath, introspectableInterface)
	c.logger.Info("D-Bus control interface stopped")
}

// ToggleCenter opens or closes the notification center.
// D-Bus method: ToggleCenter()
func (c *ControlServer) ToggleCenter() *dbus.Error {
	c.logger.Debug("ToggleCenter called")
	c.backend.ToggleCenter()
	return nil
}

// Dismiss dismisses one notification.
// D-Bus method: Dismiss(u) -> b
func (c *ControlServer) Dismiss(id uint32) (bool, *dbus.Error) {
	c.logger.Debug("Dismiss called", "id", id)
	return c.backend.Dismiss(id), nil
}

// DismissAll dismisses every notification.
// D-Bus method: DismissAll() -> u
func (c *ControlServer) DismissAll() (uint32, *dbus.Error) {
	c.logger.Debug("DismissAll called")
	return clampUint32(c.backend.DismissAll()), nil
}

// List returns every retained notification in arrival order.
// D-Bus method: List() -> a(ussssxb)
func (c *ControlServer) List() ([]Entry, *dbus.Error) {
	notifications := c.backend.List()
	entries := make([]Entry, 0, len(notifications))
	for _, n := range notifications {
		entries = append(entries, NewEntry(n))
	}
	return entries, nil
}

// Status reports the display state and store counts.
// D-Bus method: Status() -> (suuu)
func (c *ControlServer) Status() (StatusReply, *dbus.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	st, err := c.backend.Status(ctx)
	if err != nil {
		return StatusReply{}, dbus.MakeFailedError(err)
	}
	return StatusReply{
		State:   st.State.String(),
		ToastID: st.ToastID,
		Pending: clampUint32(st.Pending),
		Total:   clampUint32(st.Total),
	}, nil
}

func clampUint32(n int) uint32 {
	switch {
	case n < 0:
		return 0
	case uint64(n) > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(n)
}

func controlMethods() []introspect.Method {
	return []introspect.Method{
		{Name: "ToggleCenter"},
		{
			Name: "Dismiss",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
				{Name: "dismissed", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "DismissAll",
			Args: []introspect.Arg{
				{Name: "count", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "List",
			Args: []introspect.Arg{
				{Name: "notifications", Type: "a(ussssxb)", Direction: "out"},
			},
		},
		{
			Name: "Status",
			Args: []introspect.Arg{
				{Name: "status", Type: "(suuu)", Direction: "out"},
			},
		},
	}
}
