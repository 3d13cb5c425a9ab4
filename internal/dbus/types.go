package dbus

import (
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/lmk/internal/model"
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved/undefined.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// DBusNotification is the argument list of an org.freedesktop.Notifications
// Notify call.
type DBusNotification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Urgency maps the byte urgency hint (0, 1, 2) to an urgency name.
// A missing or unknown hint is normal.
func (n *DBusNotification) Urgency() string {
	v, ok := n.Hints["urgency"]
	if !ok {
		return model.UrgencyNormal
	}

	var level int64
	switch val := v.Value().(type) {
	case byte:
		level = int64(val)
	case int32:
		level = int64(val)
	case uint32:
		level = int64(val)
	default:
		return model.UrgencyNormal
	}

	switch level {
	case 0:
		return model.UrgencyLow
	case 2:
		return model.UrgencyCritical
	default:
		return model.UrgencyNormal
	}
}

// Category extracts the category hint from the notification.
func (n *DBusNotification) Category() string {
	return n.stringHint("category")
}

// DesktopEntry extracts the desktop-entry hint.
func (n *DBusNotification) DesktopEntry() string {
	return n.stringHint("desktop-entry")
}

// ImagePath extracts the image-path hint.
func (n *DBusNotification) ImagePath() string {
	return n.stringHint("image-path")
}

func (n *DBusNotification) stringHint(key string) string {
	if v, ok := n.Hints[key]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// Request converts the call into a notification request. A non-positive
// expire timeout keeps the default duration; lmk has no sticky toasts.
func (n *DBusNotification) Request(defaults model.Request) model.Request {
	req := defaults
	if n.Summary != "" {
		req.Title = n.Summary
	}
	req.Body = n.Body
	req.Urgency = n.Urgency()

	switch {
	case n.AppIcon != "":
		req.Icon = n.AppIcon
	case n.ImagePath() != "":
		req.Icon = n.ImagePath()
	}

	if n.ExpireTimeout > 0 {
		req.DurationMs = int(n.ExpireTimeout)
	}
	return req
}

// ServerCapabilities lists the capabilities advertised by lmkd.
var ServerCapabilities = []string{
	"body", // Plain body text, no markup
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string
	Vendor      string
	Version     string
	SpecVersion string
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "lmkd",
		Vendor:      "lmk",
		Version:     "dev",
		SpecVersion: "1.2",
	}
}

// Entry is one notification as returned by the control List method.
// It travels as the D-Bus struct (ussssxb).
type Entry struct {
	ID        uint32
	Ref       string
	Title     string
	Body      string
	Urgency   string
	CreatedAt int64 // Unix milliseconds
	Dismissed bool
}

// NewEntry converts a stored notification.
func NewEntry(n model.Notification) Entry {
	return Entry{
		ID:        n.ID,
		Ref:       n.Ref,
		Title:     n.Title,
		Body:      n.Body,
		Urgency:   n.Urgency,
		CreatedAt: n.CreatedAt.UnixMilli(),
		Dismissed: n.Dismissed,
	}
}

// Notification converts the entry back for display by clients.
func (e Entry) Notification() model.Notification {
	return model.Notification{
		ID:        e.ID,
		Ref:       e.Ref,
		Title:     e.Title,
		Body:      e.Body,
		Urgency:   e.Urgency,
		CreatedAt: time.UnixMilli(e.CreatedAt),
		Dismissed: e.Dismissed,
	}
}

// StatusReply is the control Status result, the D-Bus struct (suuu).
type StatusReply struct {
	State   string
	ToastID uint32
	Pending uint32
	Total   uint32
}
