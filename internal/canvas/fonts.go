package canvas

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"

	"github.com/jmylchreest/lmk/internal/layout"
)

// FontSpec selects a font file and size. An empty Path uses the bundled
// Go Mono face.
type FontSpec struct {
	Path string
	Size float64 // Points
}

// FontConfig describes both notification faces.
type FontConfig struct {
	Title FontSpec
	Body  FontSpec
	DPI   float64
}

// DefaultFontConfig returns bold 10pt titles and regular 9pt bodies at 96 DPI.
func DefaultFontConfig() FontConfig {
	return FontConfig{
		Title: FontSpec{Size: 10},
		Body:  FontSpec{Size: 9},
		DPI:   96,
	}
}

// faceSet holds one parsed font and two faces built from it. Faces cache
// glyphs internally and are not safe for concurrent use, so measuring
// (any goroutine, behind the metrics cache lock) and drawing (controller
// goroutine only) each get their own.
type faceSet struct {
	measure *layout.CachedMetrics
	draw    font.Face
}

func loadFaceSet(spec FontSpec, fallback []byte, dpi float64) (*faceSet, error) {
	data := fallback
	if spec.Path != "" {
		b, err := os.ReadFile(spec.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read font %s: %w", spec.Path, err)
		}
		data = b
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	opts := &opentype.FaceOptions{Size: spec.Size, DPI: dpi, Hinting: font.HintingFull}
	measureFace, err := opentype.NewFace(f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	drawFace, err := opentype.NewFace(f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}

	return &faceSet{
		measure: layout.NewCachedMetrics(faceMetrics{face: measureFace}),
		draw:    drawFace,
	}, nil
}

// faceMetrics adapts a font.Face to layout.Metrics.
type faceMetrics struct {
	face font.Face
}

func (m faceMetrics) Advance(r rune) int {
	adv, ok := m.face.GlyphAdvance(r)
	if !ok {
		adv, _ = m.face.GlyphAdvance('?')
	}
	return adv.Round()
}

func (m faceMetrics) Height() int {
	return m.face.Metrics().Height.Ceil()
}

func (m faceMetrics) Ascent() int {
	return m.face.Metrics().Ascent.Ceil()
}

var (
	defaultTitleFont = gomonobold.TTF
	defaultBodyFont  = gomono.TTF
)
