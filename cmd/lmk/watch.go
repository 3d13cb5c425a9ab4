package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lmk/internal/tui"
)

var watchOpts struct {
	all     bool
	refresh time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Browse notifications interactively",
	Long: `Open a terminal UI listing the notifications held by lmkd.

Press ? inside for the key bindings. This is also what 'lmk' runs with no
subcommand.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVarP(&watchOpts.all, "all", "a", false,
		"Show dismissed notifications (default from config)")
	watchCmd.Flags().DurationVar(&watchOpts.refresh, "refresh", 0,
		"Poll interval (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, closeFn, err := connect()
	if err != nil {
		return err
	}
	defer closeFn()

	conf := getConfig()
	return tui.Run(c, watchOptions(conf.Watch.Refresh.Duration(), conf.Watch.ShowDismissed, conf.Clipboard.Command))
}

// watchOptions merges the flags over the configured values.
func watchOptions(refresh time.Duration, showDismissed bool, clipboardCommand string) tui.Options {
	if watchOpts.refresh > 0 {
		refresh = watchOpts.refresh
	}
	return tui.Options{
		Refresh:          refresh,
		ShowDismissed:    showDismissed || watchOpts.all,
		ClipboardCommand: clipboardCommand,
	}
}
