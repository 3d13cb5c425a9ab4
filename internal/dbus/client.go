package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Client calls the lmkd control interface.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient opens a private session bus connection.
func NewClient() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(ControlBusName, ControlPath),
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Running reports whether lmkd owns the control bus name.
func (c *Client) Running() (bool, error) {
	var owned bool
	err := c.conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, ControlBusName).Store(&owned)
	if err != nil {
		return false, fmt.Errorf("failed to query bus name: %w", err)
	}
	return owned, nil
}

// ToggleCenter opens or closes the notification center.
func (c *Client) ToggleCenter() error {
	return wrapCallError("ToggleCenter", c.call("ToggleCenter").Err)
}

// Dismiss dismisses one notification and reports whether it changed.
func (c *Client) Dismiss(id uint32) (bool, error) {
	var dismissed bool
	err := c.call("Dismiss", id).Store(&dismissed)
	return dismissed, wrapCallError("Dismiss", err)
}

// DismissAll dismisses everything and returns how many changed.
func (c *Client) DismissAll() (uint32, error) {
	var count uint32
	err := c.call("DismissAll").Store(&count)
	return count, wrapCallError("DismissAll", err)
}

// List returns every retained notification.
func (c *Client) List() ([]Entry, error) {
	var entries []Entry
	err := c.call("List").Store(&entries)
	return entries, wrapCallError("List", err)
}

// Status returns the daemon status.
func (c *Client) Status() (StatusReply, error) {
	var status StatusReply
	err := c.call("Status").Store(&status)
	return status, wrapCallError("Status", err)
}

func (c *Client) call(method string, args ...any) *dbus.Call {
	return c.obj.Call(ControlInterface+"."+method, 0, args...)
}

func wrapCallError(method string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w", method, err)
}
