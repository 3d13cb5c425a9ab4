package tui

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

// copyText copies text to the system clipboard. A configured command gets
// the text on stdin; otherwise the platform clipboard tool is used.
func copyText(text, command string) error {
	if strings.TrimSpace(command) == "" {
		return clipboard.WriteAll(text)
	}
	return runClipboardCommand(text, command)
}

func runClipboardCommand(text, command string) error {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return fmt.Errorf("invalid clipboard command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := exec.CommandContext(ctx, parts[0], parts[1:]...)
	c.Stdin = strings.NewReader(text)
	if out, err := c.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", parts[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
