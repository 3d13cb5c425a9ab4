// Package surface shows canvas frames in a Wayland layer-shell window.
package surface

import (
	"log/slog"
	"sync"
	"sync/atomic"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/lmk/internal/canvas"
)

// Namespace identifies the surface to compositors.
const Namespace = "lmk-notification"

// Fallback screen size when no monitor geometry is available.
const (
	fallbackWidth  = 1920
	fallbackHeight = 1080
)

// Surface is a canvas.Presenter backed by one borderless layer-shell
// window anchored top-left. Frame positions become layer-shell margins.
//
// Start and the handlers run on the GTK main loop. Present and ScreenSize
// may be called from any goroutine.
type Surface struct {
	app     *gtk.Application
	monitor int
	logger  *slog.Logger

	window  *gtk.Window
	picture *gtk.Picture

	screenW atomic.Int32
	screenH atomic.Int32

	mu      sync.Mutex
	pending *canvas.Frame

	onClick  func(y int)
	onExpose func()
}

var _ canvas.Presenter = (*Surface)(nil)

// New creates a surface. monitor is 1-indexed; 0 uses the first monitor.
func New(app *gtk.Application, monitor int, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Surface{app: app, monitor: monitor, logger: logger}
	s.screenW.Store(fallbackWidth)
	s.screenH.Store(fallbackHeight)
	return s
}

// OnClick sets the handler for pointer releases. y is relative to the top of
// the surface.
func (s *Surface) OnClick(fn func(y int)) { s.onClick = fn }

// OnExpose sets the handler called when the compositor maps the window.
func (s *Surface) OnExpose(fn func()) { s.onExpose = fn }

// Start creates the window. It must run on the GTK main loop.
func (s *Surface) Start() error {
	if gdk.DisplayGetDefault() == nil {
		return &Error{Message: "no display available"}
	}

	s.window = gtk.NewWindow()
	s.window.SetApplication(s.app)
	s.window.SetDecorated(false)
	s.window.SetResizable(false)

	layershell.InitForWindow(s.window)
	layershell.SetLayer(s.window, layershell.LayerShellLayerTop)
	layershell.SetExclusiveZone(s.window, 0)
	layershell.SetKeyboardMode(s.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(s.window, Namespace)
	layershell.SetAnchor(s.window, layershell.LayerShellEdgeTop, true)
	layershell.SetAnchor(s.window, layershell.LayerShellEdgeLeft, true)

	s.picture = gtk.NewPicture()
	s.picture.SetCanShrink(false)
	s.window.SetChild(s.picture)

	click := gtk.NewGestureClick()
	click.SetButton(0)
	click.ConnectReleased(func(nPress int, x, y float64) {
		if s.onClick != nil {
			s.onClick(int(y))
		}
	})
	s.window.AddController(click)

	s.window.ConnectMap(func() {
		if s.onExpose != nil {
			s.onExpose()
		}
	})

	s.refreshScreen()
	s.logger.Info("surface started", "screen_width", s.screenW.Load(), "screen_height", s.screenH.Load())
	return nil
}

// Stop destroys the window. It must run on the GTK main loop.
func (s *Surface) Stop() {
	if s.window != nil {
		s.window.Destroy()
		s.window = nil
	}
}

// ScreenSize implements canvas.Presenter.
func (s *Surface) ScreenSize() (int, int) {
	return int(s.screenW.Load()), int(s.screenH.Load())
}

// Present implements canvas.Presenter. Frames are applied on the main loop;
// if several arrive before it runs only the newest is shown.
func (s *Surface) Present(f canvas.Frame) {
	s.mu.Lock()
	scheduled := s.pending != nil
	s.pending = &f
	s.mu.Unlock()

	if scheduled {
		return
	}
	glib.IdleAdd(func() {
		s.mu.Lock()
		frame := s.pending
		s.pending = nil
		s.mu.Unlock()
		if frame != nil {
			s.apply(*frame)
		}
	})
}

func (s *Surface) apply(f canvas.Frame) {
	if s.window == nil {
		return
	}
	if !f.Visible || f.Image == nil {
		s.window.SetVisible(false)
		return
	}

	if mon := pickMonitor(gdk.DisplayGetDefault(), s.monitor); mon != nil {
		layershell.SetMonitor(s.window, mon)
	}

	b := f.Image.Bounds()
	texture := gdk.NewMemoryTexture(
		b.Dx(), b.Dy(),
		gdk.MemoryR8G8B8A8Premultiplied,
		glib.NewBytes(f.Image.Pix),
		uint(f.Image.Stride),
	)

	layershell.SetMargin(s.window, layershell.LayerShellEdgeLeft, f.X)
	layershell.SetMargin(s.window, layershell.LayerShellEdgeTop, f.Y)
	s.picture.SetSizeRequest(b.Dx(), b.Dy())
	s.window.SetDefaultSize(b.Dx(), b.Dy())
	s.picture.SetPaintable(texture)
	s.window.SetVisible(true)
}

// refreshScreen records the chosen monitor's size for layout.
func (s *Surface) refreshScreen() {
	mon := pickMonitor(gdk.DisplayGetDefault(), s.monitor)
	if mon == nil {
		s.logger.Warn("no monitor geometry, using fallback screen size")
		return
	}
	geom := mon.Geometry()
	if geom.Width() > 0 && geom.Height() > 0 {
		s.screenW.Store(int32(geom.Width()))
		s.screenH.Store(int32(geom.Height()))
	}
}

// Error is returned when the surface cannot be created.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return "surface: " + e.Message
}
