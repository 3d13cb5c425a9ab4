package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lmk/internal/core"
)

var dismissOpts struct {
	all   bool
	quiet bool
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Open or close the notification center",
	Long: `Open the notification center if it is closed, close it otherwise.

The center lists every pending notification; clicking one dismisses it.
Bind this to a key in your compositor, e.g. for Hyprland:

  bind = SUPER, N, exec, lmk toggle`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := connect()
		if err != nil {
			return err
		}
		defer closeFn()
		return c.ToggleCenter()
	},
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss [id|-]",
	Short: "Dismiss notifications",
	Long: `Dismiss one notification by ID, or all of them with --all.

The argument may be a full line from 'lmk list -f dmenu'. Use "-" to read
it from stdin:

  lmk list -f dmenu | fuzzel -d | lmk dismiss -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDismiss,
}

func init() {
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(dismissCmd)

	dismissCmd.Flags().BoolVarP(&dismissOpts.all, "all", "a", false,
		"Dismiss every pending notification")
	dismissCmd.Flags().BoolVarP(&dismissOpts.quiet, "quiet", "q", false,
		"Suppress output")
}

func runDismiss(cmd *cobra.Command, args []string) error {
	if dismissOpts.all == (len(args) == 1) {
		return fmt.Errorf("specify an id or --all")
	}

	var id uint32
	if !dismissOpts.all {
		selection := args[0]
		if selection == "-" {
			var err error
			if selection, err = readSelection(os.Stdin); err != nil {
				return err
			}
		}
		var ok bool
		if id, ok = core.ParseSelection(selection); !ok {
			return fmt.Errorf("invalid notification id %q", selection)
		}
	}

	c, closeFn, err := connect()
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	if dismissOpts.all {
		n, err := c.DismissAll()
		if err != nil {
			return err
		}
		if !dismissOpts.quiet {
			fmt.Fprintf(out, "Dismissed %d notification(s)\n", n)
		}
		return nil
	}

	changed, err := c.Dismiss(id)
	if err != nil {
		return err
	}
	if !dismissOpts.quiet {
		if changed {
			fmt.Fprintf(out, "Dismissed %d\n", id)
		} else {
			fmt.Fprintf(out, "Notification %d is unknown or already dismissed\n", id)
		}
	}
	return nil
}

// readSelection reads the first line of r, as piped from a menu.
func readSelection(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line), nil
}
