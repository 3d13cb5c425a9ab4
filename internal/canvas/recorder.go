package canvas

import (
	"fmt"
	"image/png"
	"io"
	"sync"
)

// Recorder is an offscreen Presenter that keeps the most recent frame.
// It backs previews and tests.
type Recorder struct {
	Width, Height int

	mu     sync.Mutex
	last   Frame
	frames int
}

// NewRecorder creates a recorder for a virtual screen of the given size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height}
}

// Present implements Presenter.
func (r *Recorder) Present(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = f
	r.frames++
}

// ScreenSize implements Presenter.
func (r *Recorder) ScreenSize() (int, int) {
	return r.Width, r.Height
}

// Last returns the most recent frame and the number presented so far.
func (r *Recorder) Last() (Frame, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.frames
}

// WritePNG encodes the most recent visible frame.
func (r *Recorder) WritePNG(w io.Writer) error {
	f, _ := r.Last()
	if !f.Visible || f.Image == nil {
		return fmt.Errorf("no visible frame")
	}
	return png.Encode(w, f.Image)
}
