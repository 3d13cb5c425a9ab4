package surface

import (
	"unsafe"

	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
)

// monitorIndex maps a configured monitor number (1-indexed) onto the
// available monitors. Zero or out of range values use the first monitor.
// ok is false when there are none.
func monitorIndex(configured int, available uint) (index uint, ok bool) {
	if available == 0 {
		return 0, false
	}
	if configured <= 0 || uint(configured) > available {
		return 0, true
	}
	return uint(configured - 1), true
}

// pickMonitor returns the monitor popups are placed on, or nil when there is
// no display.
func pickMonitor(display *gdk.Display, configured int) *gdk.Monitor {
	if display == nil {
		return nil
	}
	monitors := display.Monitors()
	if monitors == nil {
		return nil
	}
	index, ok := monitorIndex(configured, monitors.NItems())
	if !ok {
		return nil
	}
	return wrapMonitor(monitors.Item(index))
}

// wrapMonitor turns a list item into a gdk.Monitor. gotk4 does not export
// its own wrapper; the struct layout is a single embedded object pointer.
func wrapMonitor(obj *coreglib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*coreglib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
