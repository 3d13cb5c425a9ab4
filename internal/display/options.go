package display

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/jmylchreest/lmk/internal/layout"
)

// Anchor is the screen corner or edge the surface is attached to.
type Anchor string

const (
	AnchorTopLeft      Anchor = "top-left"
	AnchorTopRight     Anchor = "top-right"
	AnchorTopCenter    Anchor = "top-center"
	AnchorBottomLeft   Anchor = "bottom-left"
	AnchorBottomRight  Anchor = "bottom-right"
	AnchorBottomCenter Anchor = "bottom-center"
)

// Placement positions the surface relative to the screen.
type Placement struct {
	Anchor  Anchor
	OffsetX int // Pixels from the left or right screen edge
	OffsetY int // Pixels from the top or bottom screen edge
}

// IsBottom reports whether the surface hangs from the bottom edge.
func (p Placement) IsBottom() bool {
	switch p.Anchor {
	case AnchorBottomLeft, AnchorBottomRight, AnchorBottomCenter:
		return true
	default:
		return false
	}
}

// Origin returns the top-left corner of a width x height surface on a
// screenW x screenH screen.
func (p Placement) Origin(screenW, screenH, width, height int) (x, y int) {
	switch p.Anchor {
	case AnchorTopLeft, AnchorBottomLeft:
		x = p.OffsetX
	case AnchorTopCenter, AnchorBottomCenter:
		x = (screenW - width) / 2
	default:
		x = screenW - width - p.OffsetX
	}

	if p.IsBottom() {
		y = screenH - height - p.OffsetY
	} else {
		y = p.OffsetY
	}
	return x, y
}

// Theme holds the surface colours.
type Theme struct {
	Foreground color.RGBA
	Background color.RGBA
	Border     color.RGBA
	// Urgent replaces Foreground for titles of critical notifications.
	Urgent color.RGBA
}

// BorderWidth is the frame drawn around the surface, in pixels.
const BorderWidth = 1

// Options configures the controller. It can be replaced at runtime.
type Options struct {
	Placement Placement
	Theme     Theme
	Wrap      layout.WrapOptions
}

// DefaultOptions returns a top-right placement with the dark theme.
func DefaultOptions() Options {
	return Options{
		Placement: Placement{Anchor: AnchorTopRight, OffsetX: 10, OffsetY: 30},
		Theme: Theme{
			Foreground: color.RGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff},
			Background: color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff},
			Border:     color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff},
			Urgent:     color.RGBA{R: 0xff, A: 0xff},
		},
	}
}

// ParseColor parses "#rrggbb" or "#rrggbbaa" into a premultiplied colour.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	c := color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}
	return color.RGBAModel.Convert(c).(color.RGBA), nil
}
