package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lmk/internal/adapter/output"
	"github.com/jmylchreest/lmk/internal/config"
	"github.com/jmylchreest/lmk/internal/core"
	"github.com/jmylchreest/lmk/internal/model"
	"github.com/jmylchreest/lmk/internal/store"
)

// queryOptions are the filter, sort and output flags shared by list and
// history.
type queryOptions struct {
	// Filter options
	all     bool
	since   string
	urgency string
	limit   int
	search  string
	filter  string

	// Sort options
	sortBy    string
	sortOrder string

	// Output options
	format   string
	field    string
	template string
	noColor  bool
}

func (o *queryOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.since, "since", "",
		"Show notifications from the last duration (e.g., 1h, 7d, 1w)")
	cmd.Flags().StringVar(&o.urgency, "urgency", "",
		"Filter by urgency (low, normal, critical)")
	cmd.Flags().IntVarP(&o.limit, "limit", "n", 0,
		"Maximum number of notifications to show (0=unlimited)")
	cmd.Flags().StringVarP(&o.search, "search", "s", "",
		"Search in title and body")
	cmd.Flags().StringVar(&o.filter, "filter", "",
		`Filter expression, e.g. "urgency>=normal,title~backup"`)

	cmd.Flags().StringVar(&o.sortBy, "sort", "time",
		"Sort by field (time, id, urgency, title)")
	cmd.Flags().StringVar(&o.sortOrder, "order", "desc",
		"Sort order (asc, desc)")

	cmd.Flags().StringVarP(&o.format, "format", "f", "",
		"Output format (plain, json, yaml, dmenu, ids; default from config)")
	cmd.Flags().StringVar(&o.field, "field", "",
		"Output a single field of one notification (id, ref, title, body, icon, urgency, all)")
	cmd.Flags().StringVar(&o.template, "template", "",
		"Custom Go template for dmenu output")
	cmd.Flags().BoolVar(&o.noColor, "no-color", false,
		"Disable colours in plain output")
}

var listOpts queryOptions

var listCmd = &cobra.Command{
	Use:   "list [id]",
	Short: "List notifications held by lmkd",
	Long: `List the notifications currently held by lmkd.

Dismissed notifications are hidden unless --all is given. With an ID (or a
line from 'lmk list -f dmenu') only that notification is printed.

Examples:
  lmk list
  lmk list --all --format json
  lmk list --filter "urgency=critical,dismissed=false"
  lmk list -f dmenu | fuzzel -d | lmk list --field body | wl-copy`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

var historyOpts queryOptions

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show archived notifications",
	Long: `Show notifications the daemon archived when pruning.

Archiving is enabled with janitor.archive in lmkd.toml. The archive is read
directly; lmkd does not need to be running.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)

	listOpts.addFlags(listCmd)
	listCmd.Flags().BoolVarP(&listOpts.all, "all", "a", false,
		"Include dismissed notifications")

	historyOpts.addFlags(historyCmd)
	historyCmd.Flags().String("file", "",
		"Archive file (default from config, ~/.local/share/lmk/archive.jsonl)")
}

func runList(cmd *cobra.Command, args []string) error {
	c, closeFn, err := connect()
	if err != nil {
		return err
	}
	defer closeFn()

	notifications, err := c.List()
	if err != nil {
		return err
	}
	return query(cmd.OutOrStdout(), notifications, listOpts, args, getConfig(), time.Now())
}

func runHistory(cmd *cobra.Command, args []string) error {
	c := getConfig()

	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = c.History.Path
	}
	if path == "" {
		path = store.ArchivePath()
	}

	notifications, err := store.LoadArchive(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded archive", "path", path, "count", len(notifications))

	opts := historyOpts
	opts.all = true
	if opts.since == "" {
		opts.since = c.History.Since
	}
	if opts.limit == 0 {
		opts.limit = c.History.Limit
	}
	return query(cmd.OutOrStdout(), notifications, opts, args, c, time.Now())
}

// query filters, sorts and prints notifications, or one of them when args
// names an ID.
func query(w io.Writer, notifications []model.Notification, opts queryOptions, args []string, c *config.Config, now time.Time) error {
	if len(args) == 1 {
		id, ok := core.ParseSelection(args[0])
		if !ok {
			return fmt.Errorf("invalid notification id %q", args[0])
		}
		n := core.LookupByID(notifications, id)
		if n == nil {
			return fmt.Errorf("notification %d not found", id)
		}
		return outputOne(w, n, opts, c, now)
	}

	filtered, err := applyQuery(notifications, opts, now)
	if err != nil {
		return err
	}
	if len(filtered) == 0 {
		logger.Debug("no notifications to output")
		return nil
	}

	formatter, err := createFormatter(opts, c, now)
	if err != nil {
		return err
	}
	return formatter.Format(w, filtered)
}

// applyQuery runs the filter, search and sort options.
func applyQuery(notifications []model.Notification, opts queryOptions, now time.Time) ([]model.Notification, error) {
	filter := core.FilterOptions{IncludeDismissed: opts.all}

	since, err := core.ParseDuration(opts.since)
	if err != nil {
		return nil, fmt.Errorf("invalid --since: %w", err)
	}
	filter.Since = since

	if opts.urgency != "" {
		if filter.Urgency, err = core.ParseUrgency(opts.urgency); err != nil {
			return nil, err
		}
	}

	expr, err := core.ParseFilter(opts.filter, now)
	if err != nil {
		return nil, err
	}

	// Sort before limiting so --limit keeps the first rows shown.
	result := core.Filter(notifications, filter, now)
	result = core.FilterWithExpr(result, expr)
	result = core.Search(result, opts.search)
	core.Sort(result, core.SortOptions{
		Field: core.ParseSortField(opts.sortBy),
		Order: core.ParseSortOrder(opts.sortOrder),
	})

	if opts.limit > 0 && len(result) > opts.limit {
		result = result[:opts.limit]
	}
	return result, nil
}

// outputOne prints a single notification, as JSON unless a format or field
// is asked for.
func outputOne(w io.Writer, n *model.Notification, opts queryOptions, c *config.Config, now time.Time) error {
	if opts.field != "" {
		_, err := fmt.Fprintln(w, output.FormatField(n, opts.field))
		return err
	}

	if opts.format == "" {
		opts.format = string(output.FormatJSON)
	}
	formatter, err := createFormatter(opts, c, now)
	if err != nil {
		return err
	}
	return formatter.Format(w, []model.Notification{*n})
}

// createFormatter creates the output formatter for opts, falling back to
// the configured format.
func createFormatter(opts queryOptions, c *config.Config, now time.Time) (output.Formatter, error) {
	format := opts.format
	if format == "" {
		format = c.Output.Format
	}

	fo := output.DefaultFormatterOptions()
	fo.Template = opts.template
	fo.Color = c.Output.Color && !opts.noColor
	fo.Now = func() time.Time { return now }

	return output.NewFormatter(output.FormatType(strings.ToLower(format)), fo)
}
