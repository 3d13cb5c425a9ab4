package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lmk/internal/dbus"
)

var statusOpts struct {
	format string
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text       string `json:"text"`
	Alt        string `json:"alt,omitempty"`
	Tooltip    string `json:"tooltip,omitempty"`
	Class      string `json:"class,omitempty"`
	Percentage int    `json:"percentage,omitempty"`
}

// statusJSON is the --format json output.
type statusJSON struct {
	State   string `json:"state"`
	ToastID uint32 `json:"toast_id,omitempty"`
	Pending uint32 `json:"pending"`
	Total   uint32 `json:"total"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon state",
	Long: `Show what lmkd is displaying and how many notifications it holds.

--format waybar prints Waybar's custom module JSON:

  "custom/notifications": {
    "exec": "lmk status --format waybar",
    "interval": 5,
    "return-type": "json",
    "on-click": "lmk toggle"
  }

The Waybar class is "empty" with nothing pending, "center" while the
center is open, "toast" while a toast shows, and "pending" otherwise.
When lmkd is not running the class is "error".`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.format, "format", "f", "plain",
		"Output format (plain, json, waybar)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	format := strings.ToLower(statusOpts.format)

	switch format {
	case "plain", "json", "waybar":
	default:
		return fmt.Errorf("unknown format %q, must be one of: plain, json, waybar", statusOpts.format)
	}

	c, closeFn, err := connect()
	if err == nil {
		defer closeFn()
	}
	var status dbus.StatusReply
	if err == nil {
		status, err = c.Status()
	}
	if err != nil {
		if format == "waybar" {
			// Waybar hides modules whose command fails, so report instead.
			logger.Debug("status unavailable", "error", err)
			return writeJSON(out, WaybarStatus{Text: "", Alt: "error", Class: "error", Tooltip: err.Error()})
		}
		return err
	}

	switch format {
	case "json":
		return writeJSON(out, statusJSON(status))
	case "waybar":
		return writeJSON(out, waybarStatus(status))
	default:
		return writePlainStatus(out, status)
	}
}

// waybarStatus creates a WaybarStatus from a daemon status.
func waybarStatus(s dbus.StatusReply) WaybarStatus {
	if s.Pending == 0 {
		return WaybarStatus{
			Text:    "",
			Alt:     "empty",
			Class:   "empty",
			Tooltip: buildTooltip(s),
		}
	}

	class := "pending"
	switch s.State {
	case "center":
		class = "center"
	case "toast":
		class = "toast"
	}

	return WaybarStatus{
		Text:       fmt.Sprintf("%d", s.Pending),
		Alt:        class,
		Tooltip:    buildTooltip(s),
		Class:      class,
		Percentage: int(min(s.Pending, 100)),
	}
}

// buildTooltip describes the counts.
func buildTooltip(s dbus.StatusReply) string {
	if s.Total == 0 {
		return "No notifications"
	}
	lines := []string{fmt.Sprintf("%d pending", s.Pending)}
	if dismissed := s.Total - s.Pending; dismissed > 0 {
		lines = append(lines, fmt.Sprintf("%d dismissed", dismissed))
	}
	return strings.Join(lines, "\n")
}

func writePlainStatus(w io.Writer, s dbus.StatusReply) error {
	state := s.State
	if s.State == "toast" {
		state = fmt.Sprintf("toast (%d)", s.ToastID)
	}
	_, err := fmt.Fprintf(w, "State:   %s\nPending: %d\nTotal:   %d\n", state, s.Pending, s.Total)
	return err
}

// writeJSON writes v as one JSON line.
func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
