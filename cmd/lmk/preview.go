package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lmk/internal/canvas"
	"github.com/jmylchreest/lmk/internal/config"
	"github.com/jmylchreest/lmk/internal/display"
	"github.com/jmylchreest/lmk/internal/layout"
	"github.com/jmylchreest/lmk/internal/model"
	"github.com/jmylchreest/lmk/internal/store"
)

var previewOpts struct {
	output       string
	daemonConfig string
	toast        bool
	width        int
	height       int
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render sample notifications to a PNG",
	Long: `Render a few sample notifications with the fonts, colours and layout
from lmkd.toml and write the popup to a PNG file. lmkd is not needed.

Examples:
  lmk preview -o center.png
  lmk preview --toast -o toast.png --daemon-config ./lmkd.toml`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewOpts.output, "output", "o", "",
		"PNG file to write (required)")
	previewCmd.Flags().StringVar(&previewOpts.daemonConfig, "daemon-config", "",
		"lmkd config to render with (default: ~/.config/lmk/lmkd.toml)")
	previewCmd.Flags().BoolVar(&previewOpts.toast, "toast", false,
		"Render a single toast instead of the center")
	previewCmd.Flags().IntVar(&previewOpts.width, "width", 1920,
		"Virtual screen width")
	previewCmd.Flags().IntVar(&previewOpts.height, "height", 1080,
		"Virtual screen height")
	_ = previewCmd.MarkFlagRequired("output")
}

// previewSamples is what the preview draws.
var previewSamples = []model.Request{
	{Title: "Build finished", Body: "All 42 tests passed in 3.2s", Urgency: model.UrgencyLow},
	{Title: "Meeting in 5 minutes", Body: "Design review with the platform team.\nRoom 4B or the usual video link.", Urgency: model.UrgencyNormal},
	{Title: "Disk almost full", Body: "/home has 1.2 GB left. Old dismissed notifications and caches can be cleared to make room.", Urgency: model.UrgencyCritical},
}

func runPreview(cmd *cobra.Command, args []string) error {
	dcfg, err := config.LoadDaemonConfig(previewOpts.daemonConfig)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	rec := canvas.NewRecorder(previewOpts.width, previewOpts.height)
	if err := renderPreview(&buf, rec, dcfg, previewSamples, previewOpts.toast); err != nil {
		return err
	}
	if err := os.WriteFile(previewOpts.output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", previewOpts.output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", previewOpts.output)
	return nil
}

// renderPreview runs a throwaway store and controller against rec and
// encodes the requested view to w as PNG.
func renderPreview(w io.Writer, rec *canvas.Recorder, dcfg *config.DaemonConfig, samples []model.Request, toast bool) error {
	if len(samples) == 0 {
		return fmt.Errorf("nothing to preview")
	}

	opts, err := dcfg.DisplayOptions()
	if err != nil {
		return err
	}
	cv, err := canvas.New(rec, dcfg.FontConfig())
	if err != nil {
		return fmt.Errorf("failed to load fonts: %w", err)
	}

	engine := layout.NewEngine(cv.Metrics(display.FontTitle), cv.Metrics(display.FontBody), dcfg.WrapOptions())
	st := store.NewStore(engine, store.WithLogger(logger))
	defer st.Close()

	ctrl := display.NewController(st, cv, opts, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	var first model.Notification
	for i, req := range samples {
		n, err := st.Add(req)
		if err != nil {
			return err
		}
		if i == 0 {
			first = n
		}
	}

	want := display.StateCenter
	if toast {
		want = display.StateToast
		ctrl.ShowToast(first.ID)
	} else {
		ctrl.ToggleCenter()
	}

	// Status is answered after the events queued above. The controller
	// hides the surface when it stops, so encode before that.
	status, err := ctrl.Status(ctx)
	if err != nil {
		return err
	}
	if status.State != want {
		return fmt.Errorf("preview ended in state %s, expected %s", status.State, want)
	}
	return rec.WritePNG(w)
}
