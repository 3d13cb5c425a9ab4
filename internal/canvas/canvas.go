// Package canvas is a software display.Renderer. It draws into an RGBA
// buffer and hands finished frames to a Presenter on Flush.
package canvas

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/jmylchreest/lmk/internal/display"
	"github.com/jmylchreest/lmk/internal/layout"
)

// Frame is a finished surface image and where it goes on screen. Image is
// owned by the receiver.
type Frame struct {
	Image   *image.RGBA
	X, Y    int
	Visible bool
}

// Presenter puts frames on screen.
type Presenter interface {
	Present(f Frame)
	ScreenSize() (width, height int)
}

// Canvas implements display.Renderer. Drawing methods must be called from
// a single goroutine; Metrics may be used from any.
type Canvas struct {
	presenter Presenter
	title     *faceSet
	body      *faceSet

	img     *image.RGBA
	x, y    int
	visible bool
}

var _ display.Renderer = (*Canvas)(nil)

// New loads the fonts and creates a canvas presenting to p. Font errors are
// returned; the daemon cannot run without them.
func New(p Presenter, fonts FontConfig) (*Canvas, error) {
	title, err := loadFaceSet(fonts.Title, defaultTitleFont, fonts.DPI)
	if err != nil {
		return nil, err
	}
	body, err := loadFaceSet(fonts.Body, defaultBodyFont, fonts.DPI)
	if err != nil {
		return nil, err
	}

	return &Canvas{
		presenter: p,
		title:     title,
		body:      body,
		img:       image.NewRGBA(image.Rect(0, 0, layout.MinWidth, 1)),
	}, nil
}

// Metrics implements display.Renderer.
func (c *Canvas) Metrics(f display.Font) layout.Metrics {
	return c.faces(f).measure
}

// ScreenSize implements display.Renderer.
func (c *Canvas) ScreenSize() (int, int) {
	return c.presenter.ScreenSize()
}

// MoveResize implements display.Renderer.
func (c *Canvas) MoveResize(x, y, width, height int) {
	c.x, c.y = x, y
	if b := c.img.Bounds(); b.Dx() != width || b.Dy() != height {
		c.img = image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	}
}

// Map implements display.Renderer.
func (c *Canvas) Map() { c.visible = true }

// Unmap implements display.Renderer.
func (c *Canvas) Unmap() { c.visible = false }

// Clear implements display.Renderer.
func (c *Canvas) Clear(bg color.RGBA) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

// FillRect implements display.Renderer.
func (c *Canvas) FillRect(x, y, width, height int, col color.RGBA) {
	r := image.Rect(x, y, x+width, y+height).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// DrawText implements display.Renderer.
func (c *Canvas) DrawText(x, y int, f display.Font, col color.RGBA, text string) {
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.faces(f).draw,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// Flush implements display.Renderer.
func (c *Canvas) Flush() {
	frame := Frame{X: c.x, Y: c.y, Visible: c.visible}
	if c.visible {
		frame.Image = image.NewRGBA(c.img.Bounds())
		copy(frame.Image.Pix, c.img.Pix)
	}
	c.presenter.Present(frame)
}

func (c *Canvas) faces(f display.Font) *faceSet {
	if f == display.FontTitle {
		return c.title
	}
	return c.body
}
