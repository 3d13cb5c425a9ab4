package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/lmk/internal/adapter/input"
	"github.com/jmylchreest/lmk/internal/model"
	"github.com/jmylchreest/lmk/internal/server"
)

var sendOpts struct {
	url      string
	urgency  string
	icon     string
	duration int
	stdin    bool
	fallback bool
}

var sendCmd = &cobra.Command{
	Use:   "send [title] [body...]",
	Short: "Send a notification to lmkd",
	Long: `Send a notification to lmkd over HTTP.

Fields left unset are filled in by the daemon (title "Notification",
urgency "normal", duration from its config).

Examples:
  lmk send "Build finished" "all 42 tests passed"
  lmk send -u critical -d 10000 "Disk full"

  # One request per JSON object, NDJSON line, or plain text (title, then body)
  echo '{"title":"Backup","body":"done"}' | lmk send --stdin
  make 2>&1 | tail -1 | lmk send --stdin`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVar(&sendOpts.url, "url", "",
		"lmkd address (default from config, http://127.0.0.1:8888)")
	sendCmd.Flags().StringVarP(&sendOpts.urgency, "urgency", "u", "",
		"Urgency (low, normal, critical)")
	sendCmd.Flags().StringVarP(&sendOpts.icon, "icon", "i", "",
		"Icon name or path")
	sendCmd.Flags().IntVarP(&sendOpts.duration, "duration", "d", 0,
		"Toast duration in milliseconds (0 = daemon default)")
	sendCmd.Flags().BoolVar(&sendOpts.stdin, "stdin", false,
		"Read notifications from stdin")
	sendCmd.Flags().BoolVar(&sendOpts.fallback, "fallback", false,
		"Use the desktop notification service if lmkd is unreachable")
}

func runSend(cmd *cobra.Command, args []string) error {
	c := getConfig()

	base := model.Request{
		Icon:       sendOpts.icon,
		Urgency:    c.Send.Urgency,
		DurationMs: sendOpts.duration,
	}
	if sendOpts.urgency != "" {
		base.Urgency = sendOpts.urgency
	}

	var requests []model.Request
	if sendOpts.stdin {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		var err error
		requests, err = input.NewStdinAdapter().Requests(ctx, base)
		if err != nil {
			return err
		}
	} else {
		if len(args) == 0 {
			return fmt.Errorf("a title is required (or use --stdin)")
		}
		req := base
		req.Title = args[0]
		req.Body = strings.Join(args[1:], " ")
		requests = append(requests, req)
	}

	url := sendOpts.url
	if url == "" {
		url = c.Send.URL
	}
	fallback := sendOpts.fallback || c.Send.Fallback
	client := &http.Client{Timeout: c.Send.Timeout.Duration()}

	for _, req := range requests {
		err := postRequest(cmd.Context(), client, url, req)
		if err == nil {
			logger.Debug("notification sent", "url", url, "title", req.Title)
			continue
		}
		if !fallback {
			return err
		}

		logger.Warn("lmkd unreachable, using desktop notifications", "error", err)
		if err := beeep.Notify(req.Title, req.Body, req.Icon); err != nil {
			return fmt.Errorf("fallback notification failed: %w", err)
		}
	}
	return nil
}

// notifyEndpoint appends the notify path to a daemon base URL.
func notifyEndpoint(base string) string {
	return strings.TrimRight(base, "/") + server.NotifyPath
}

// requestPayload encodes only the fields that are set, so the daemon
// applies its own defaults to the rest.
func requestPayload(req model.Request) ([]byte, error) {
	payload := make(map[string]any, 5)
	if req.Title != "" {
		payload["title"] = req.Title
	}
	if req.Body != "" {
		payload["body"] = req.Body
	}
	if req.Icon != "" {
		payload["icon"] = req.Icon
	}
	if req.Urgency != "" {
		payload["urgency"] = req.Urgency
	}
	if req.DurationMs > 0 {
		payload["duration"] = req.DurationMs
	}
	return json.Marshal(payload)
}

// postRequest sends one notification to lmkd.
func postRequest(ctx context.Context, client *http.Client, base string, req model.Request) error {
	body, err := requestPayload(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, notifyEndpoint(base), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("invalid daemon url %q: %w", base, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to reach lmkd: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lmkd answered %s", resp.Status)
	}
	return nil
}
