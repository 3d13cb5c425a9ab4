package canvas

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/lmk/internal/display"
	"github.com/jmylchreest/lmk/internal/layout"
	"github.com/jmylchreest/lmk/internal/model"
	"github.com/jmylchreest/lmk/internal/store"
)

var (
	red  = color.RGBA{R: 0xff, A: 0xff}
	grey = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
)

func newTestCanvas(t *testing.T) (*Canvas, *Recorder) {
	t.Helper()
	rec := NewRecorder(1920, 1080)
	c, err := New(rec, DefaultFontConfig())
	require.NoError(t, err)
	return c, rec
}

func TestNew_BadFontPath(t *testing.T) {
	fonts := DefaultFontConfig()
	fonts.Body.Path = "/nonexistent/font.ttf"
	_, err := New(NewRecorder(10, 10), fonts)
	assert.Error(t, err)
}

func TestMetrics_Monospace(t *testing.T) {
	c, _ := newTestCanvas(t)

	for _, f := range []display.Font{display.FontTitle, display.FontBody} {
		m := c.Metrics(f)
		assert.Positive(t, m.Advance('a'), f.String())
		assert.Equal(t, m.Advance('a'), m.Advance('W'), f.String())
		assert.Greater(t, m.Height(), m.Ascent(), f.String())
		assert.Positive(t, m.Ascent(), f.String())
	}

	assert.Greater(t, c.Metrics(display.FontTitle).Height(), c.Metrics(display.FontBody).Height())
}

func TestFillRect_ClipsToSurface(t *testing.T) {
	c, rec := newTestCanvas(t)

	c.MoveResize(5, 7, 20, 10)
	c.Map()
	c.Clear(grey)
	c.FillRect(15, 5, 50, 50, red)
	c.Flush()

	f, n := rec.Last()
	require.Equal(t, 1, n)
	assert.True(t, f.Visible)
	assert.Equal(t, 5, f.X)
	assert.Equal(t, 7, f.Y)
	assert.Equal(t, 20, f.Image.Bounds().Dx())
	assert.Equal(t, 10, f.Image.Bounds().Dy())
	assert.Equal(t, grey, f.Image.RGBAAt(0, 0))
	assert.Equal(t, red, f.Image.RGBAAt(19, 9))
	assert.Equal(t, grey, f.Image.RGBAAt(14, 5))
}

func TestFlush_FrameIsCopy(t *testing.T) {
	c, rec := newTestCanvas(t)

	c.MoveResize(0, 0, 4, 4)
	c.Map()
	c.Clear(grey)
	c.Flush()
	c.Clear(red)

	f, _ := rec.Last()
	assert.Equal(t, grey, f.Image.RGBAAt(1, 1))
}

func TestFlush_Unmapped(t *testing.T) {
	c, rec := newTestCanvas(t)

	c.MoveResize(0, 0, 4, 4)
	c.Unmap()
	c.Flush()

	f, _ := rec.Last()
	assert.False(t, f.Visible)
	assert.Nil(t, f.Image)
	assert.Error(t, rec.WritePNG(&bytes.Buffer{}))
}

func TestDrawText_MarksPixels(t *testing.T) {
	c, rec := newTestCanvas(t)

	c.MoveResize(0, 0, 100, 30)
	c.Map()
	c.Clear(grey)
	c.DrawText(2, 20, display.FontTitle, red, "WWW")
	c.Flush()

	f, _ := rec.Last()
	changed := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 100; x++ {
			if f.Image.RGBAAt(x, y) != grey {
				changed++
			}
		}
	}
	assert.Positive(t, changed)
}

func TestController_RendersToastFrame(t *testing.T) {
	c, rec := newTestCanvas(t)
	engine := layout.NewEngine(c.Metrics(display.FontTitle), c.Metrics(display.FontBody), layout.WrapOptions{})
	st := store.NewStore(engine)
	defer st.Close()

	ctrl := display.NewController(st, c, display.DefaultOptions(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	n, err := st.Add(model.Request{Title: "Build finished", Body: "All tests passed", DurationMs: 5000})
	require.NoError(t, err)
	ctrl.ShowToast(n.ID)

	status, err := ctrl.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, display.StateToast, status.State)

	f, frames := rec.Last()
	require.Equal(t, 1, frames)
	require.True(t, f.Visible)
	assert.Equal(t, n.Width, f.Image.Bounds().Dx())
	assert.Equal(t, n.Height, f.Image.Bounds().Dy())
	assert.Equal(t, 1920-n.Width-10, f.X)
	assert.Equal(t, 30, f.Y)

	var buf bytes.Buffer
	require.NoError(t, rec.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, n.Width, img.Bounds().Dx())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("controller did not stop")
	}
}
