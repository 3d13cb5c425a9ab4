package main

import (
	"errors"
	"fmt"

	"github.com/jmylchreest/lmk/internal/dbus"
	"github.com/jmylchreest/lmk/internal/model"
	"github.com/jmylchreest/lmk/internal/tui"
)

// errNotRunning is returned when no lmkd owns the control bus name.
var errNotRunning = errors.New("lmkd is not running (no owner for " + dbus.ControlBusName + ")")

// controlClient is the subset of *dbus.Client the commands use.
type controlClient interface {
	ToggleCenter() error
	Dismiss(id uint32) (bool, error)
	DismissAll() (uint32, error)
	List() ([]dbus.Entry, error)
	Status() (dbus.StatusReply, error)
}

// daemonClient adapts the control client to model types.
type daemonClient struct {
	client controlClient
}

var _ tui.Backend = (*daemonClient)(nil)

// connect opens the session bus and checks that lmkd is there. The returned
// close func must be called.
func connect() (*daemonClient, func(), error) {
	client, err := dbus.NewClient()
	if err != nil {
		return nil, nil, err
	}

	running, err := client.Running()
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	if !running {
		_ = client.Close()
		return nil, nil, errNotRunning
	}

	return &daemonClient{client: client}, func() { _ = client.Close() }, nil
}

// List returns every retained notification, dismissed ones included.
func (c *daemonClient) List() ([]model.Notification, error) {
	entries, err := c.client.List()
	if err != nil {
		return nil, err
	}
	notifications := make([]model.Notification, 0, len(entries))
	for _, e := range entries {
		notifications = append(notifications, e.Notification())
	}
	return notifications, nil
}

func (c *daemonClient) Dismiss(id uint32) (bool, error) {
	return c.client.Dismiss(id)
}

func (c *daemonClient) DismissAll() (int, error) {
	n, err := c.client.DismissAll()
	return int(n), err
}

func (c *daemonClient) ToggleCenter() error {
	return c.client.ToggleCenter()
}

func (c *daemonClient) Status() (dbus.StatusReply, error) {
	status, err := c.client.Status()
	if err != nil {
		return dbus.StatusReply{}, fmt.Errorf("failed to get status: %w", err)
	}
	return status, nil
}
