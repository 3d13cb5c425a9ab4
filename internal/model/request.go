package model

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// Field limits in bytes.
const (
	MaxTitleBytes   = 1023
	MaxBodyBytes    = 2047
	MaxIconBytes    = 255
	MaxUrgencyBytes = 15
)

// Defaults applied to incomplete requests.
const (
	DefaultTitle      = "Notification"
	DefaultDurationMs = 5000
)

// Request is a parsed notification-creation request as delivered by a
// request source (HTTP, D-Bus).
type Request struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Icon       string `json:"icon,omitempty"`
	Urgency    string `json:"urgency"`
	DurationMs int    `json:"duration"`
}

// DefaultRequest returns a request carrying every default value.
func DefaultRequest() Request {
	return Request{
		Title:      DefaultTitle,
		Urgency:    UrgencyNormal,
		DurationMs: DefaultDurationMs,
	}
}

// Normalize fills defaults and clamps every field to its limit. It never
// fails: overlong text is truncated on a grapheme boundary and control
// characters other than newline are dropped.
func (r Request) Normalize() Request {
	r.Title = truncate(sanitize(r.Title), MaxTitleBytes)
	r.Body = truncate(sanitize(r.Body), MaxBodyBytes)
	r.Icon = truncate(sanitize(r.Icon), MaxIconBytes)

	r.Urgency = strings.TrimSpace(sanitize(r.Urgency))
	if r.Urgency == "" {
		r.Urgency = UrgencyNormal
	}
	r.Urgency = truncate(r.Urgency, MaxUrgencyBytes)

	if r.DurationMs <= 0 {
		r.DurationMs = DefaultDurationMs
	}
	return r
}

// sanitize removes invalid UTF-8 and control characters. Tabs become
// spaces, newlines are kept.
func sanitize(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

// truncate cuts s to at most limit bytes without splitting a grapheme cluster.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	end := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		_, to := g.Positions()
		if to > limit {
			break
		}
		end = to
	}
	return s[:end]
}
