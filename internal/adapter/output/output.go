// Package output provides output formatters for notifications.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/jmylchreest/lmk/internal/model"
)

// Formatter formats notifications for output.
type Formatter interface {
	// Format writes formatted notifications to the writer.
	Format(w io.Writer, notifications []model.Notification) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatDmenu FormatType = "dmenu"
	FormatIDs   FormatType = "ids"
	FormatJSON  FormatType = "json"
	FormatPlain FormatType = "plain"
	FormatYAML  FormatType = "yaml"
)

// FormatTypes lists every supported format.
func FormatTypes() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML, FormatDmenu, FormatIDs}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatPlain, "":
		return NewPlainFormatter(opts), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatDmenu:
		return NewDmenuFormatter(opts), nil
	case FormatIDs:
		return NewIDsFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown format %q, must be one of: %v", format, FormatTypes())
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template       string // Custom template for dmenu/plain format
	ShowIndex      bool   // Show the notification ID
	ShowTime       bool   // Show relative time
	BodyMaxLen     int    // Maximum body width in cells (0 = unlimited)
	Separator      string // Field separator for dmenu format
	IncludeNewline bool   // Include newlines in body (default: replace with space)
	Color          bool   // Style plain output with urgency colours

	// Now is the reference for relative times. Defaults to time.Now.
	Now func() time.Time
}

// DefaultFormatterOptions returns sensible defaults.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:  true,
		ShowTime:   true,
		BodyMaxLen: 80,
		Separator:  " | ",
	}
}

func (o FormatterOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
