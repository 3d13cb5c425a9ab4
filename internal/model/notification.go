// Package model defines the core data structures for lmk.
package model

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Urgency names. Any other value is passed through untouched and rendered
// like normal.
const (
	UrgencyLow      = "low"
	UrgencyNormal   = "normal"
	UrgencyCritical = "critical"
)

// Notification is a single entry held by the store.
type Notification struct {
	// ID is the creation-order index assigned by the store, starting at 1.
	ID uint32 `json:"id"`
	// Ref is a ULID that stays unique across daemon restarts.
	Ref string `json:"ref"`

	Title      string `json:"title"`
	Body       string `json:"body"`
	Icon       string `json:"icon,omitempty"`
	Urgency    string `json:"urgency"`
	DurationMs int    `json:"duration_ms"`

	CreatedAt   time.Time `json:"created_at"`
	Dismissed   bool      `json:"dismissed"`
	DismissedAt time.Time `json:"dismissed_at,omitzero"`

	// Cached box computed at creation time.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRef generates a ULID for the given creation time.
func NewRef(t time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(t), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}

// Duration returns how long the toast for this notification stays up.
func (n *Notification) Duration() time.Duration {
	return time.Duration(n.DurationMs) * time.Millisecond
}

// IsCritical reports whether the notification is rendered with the urgent colour.
func (n *Notification) IsCritical() bool {
	return n.Urgency == UrgencyCritical
}

// MarkDismissed flags the notification as dismissed. It returns false if it
// already was; the dismissed flag is never reset.
func (n *Notification) MarkDismissed(at time.Time) bool {
	if n.Dismissed {
		return false
	}
	n.Dismissed = true
	n.DismissedAt = at
	return true
}
