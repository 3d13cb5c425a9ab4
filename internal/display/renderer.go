package display

import (
	"image/color"

	"github.com/jmylchreest/lmk/internal/layout"
)

// Font selects one of the two faces used for notifications.
type Font int

const (
	// FontTitle is the bold title face.
	FontTitle Font = iota
	// FontBody is the regular body face.
	FontBody
)

func (f Font) String() string {
	if f == FontTitle {
		return "title"
	}
	return "body"
}

// Renderer is the drawing surface. Only the controller goroutine calls it.
type Renderer interface {
	// Metrics returns glyph measurements for font.
	Metrics(font Font) layout.Metrics
	// ScreenSize returns the size of the output the surface is placed on.
	ScreenSize() (width, height int)

	MoveResize(x, y, width, height int)
	Map()
	Unmap()
	Clear(bg color.RGBA)
	FillRect(x, y, width, height int, c color.RGBA)
	// DrawText draws text with its baseline at y.
	DrawText(x, y int, font Font, c color.RGBA, text string)
	// Flush presents everything drawn since the last flush.
	Flush()
}
