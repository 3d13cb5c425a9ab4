package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/jmylchreest/lmk/internal/model"
)

// DmenuFormatter formats notifications for dmenu/rofi/fuzzel, one per line.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}
	if opts.Template != "" {
		tmpl, err := template.New("dmenu").Funcs(templateFuncs(opts)).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}
	return f
}

// Format writes notifications in dmenu format (one per line).
func (f *DmenuFormatter) Format(w io.Writer, notifications []model.Notification) error {
	now := f.opts.now()
	for i := range notifications {
		line := f.formatLine(now, &notifications[i])
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// formatLine formats a single line: id | time | title: body
func (f *DmenuFormatter) formatLine(now time.Time, n *model.Notification) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, newTemplateData(n, now)); err == nil {
			return buf.String()
		}
	}

	var parts []string
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprint(n.ID))
	}
	if f.opts.ShowTime {
		parts = append(parts, shortAge(now.Sub(n.CreatedAt)))
	}

	content := n.Title
	if body := sanitizeBody(n.Body, f.opts.BodyMaxLen, false); body != "" {
		content += ": " + body
	}
	parts = append(parts, content)

	return strings.Join(parts, sep)
}

// templateData provides data for custom templates.
type templateData struct {
	Notification *model.Notification
	RelativeTime string
}

func newTemplateData(n *model.Notification, now time.Time) templateData {
	return templateData{
		Notification: n,
		RelativeTime: humanize.RelTime(n.CreatedAt, now, "ago", "from now"),
	}
}

// templateFuncs returns template helper functions.
func templateFuncs(opts FormatterOptions) template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, width int) string {
			if width <= 0 {
				return s
			}
			return runewidth.Truncate(s, width, "...")
		},
		"reltime": func(t time.Time) string {
			return humanize.RelTime(t, opts.now(), "ago", "from now")
		},
		"urgencyIcon": func(urgency string) string {
			switch urgency {
			case model.UrgencyLow:
				return "L"
			case model.UrgencyCritical:
				return "!"
			default:
				return "-"
			}
		},
	}
}

// shortAge renders an age as now, 5m, 3h, 2d or 1w.
func shortAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw", int(d.Hours()/24/7))
	}
}

// sanitizeBody cleans up body text. Newlines become spaces unless kept, runs
// of spaces collapse, and the result is cut to maxWidth terminal cells.
func sanitizeBody(body string, maxWidth int, includeNewline bool) string {
	if !includeNewline {
		body = strings.ReplaceAll(body, "\n", " ")
	}
	body = strings.ReplaceAll(body, "\r", "")

	for strings.Contains(body, "  ") {
		body = strings.ReplaceAll(body, "  ", " ")
	}
	body = strings.TrimSpace(body)

	if maxWidth > 0 {
		body = runewidth.Truncate(body, maxWidth, "...")
	}
	return body
}
