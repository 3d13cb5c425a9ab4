package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/lmk/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff0000"))
	lowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

// PlainFormatter formats notifications as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter. An invalid custom
// template falls back to the default layout.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs(opts)).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}
	return f
}

// Format writes notifications as plain text.
func (f *PlainFormatter) Format(w io.Writer, notifications []model.Notification) error {
	now := f.opts.now()
	for i := range notifications {
		if err := f.formatNotification(w, now, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatNotification(w io.Writer, now time.Time, n *model.Notification) error {
	if f.template != nil {
		return f.template.Execute(w, newTemplateData(n, now))
	}

	var sb strings.Builder

	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", n.ID)
	}

	sb.WriteString(f.style(n, n.Title))

	if n.Dismissed {
		sb.WriteString(f.dim(" (dismissed)"))
	}
	if f.opts.ShowTime {
		sb.WriteString(f.dim(" " + humanize.RelTime(n.CreatedAt, now, "ago", "from now")))
	}
	sb.WriteString("\n")

	if body := sanitizeBody(n.Body, f.opts.BodyMaxLen, f.opts.IncludeNewline); body != "" {
		for line := range strings.SplitSeq(body, "\n") {
			sb.WriteString("    " + line + "\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (f *PlainFormatter) style(n *model.Notification, s string) string {
	if !f.opts.Color {
		return s
	}
	switch n.Urgency {
	case model.UrgencyCritical:
		return criticalStyle.Render(s)
	case model.UrgencyLow:
		return lowStyle.Render(s)
	default:
		return titleStyle.Render(s)
	}
}

func (f *PlainFormatter) dim(s string) string {
	if !f.opts.Color {
		return s
	}
	return dimStyle.Render(s)
}

// FormatField outputs a specific field from a notification.
func FormatField(n *model.Notification, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return fmt.Sprint(n.ID)
	case "ref":
		return n.Ref
	case "title", "summary":
		return n.Title
	case "body":
		return n.Body
	case "icon":
		return n.Icon
	case "urgency":
		return n.Urgency
	case "all", "full":
		return fmt.Sprintf("%s\n%s", n.Title, n.Body)
	default:
		return n.Title
	}
}
