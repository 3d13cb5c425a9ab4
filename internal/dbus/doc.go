// Package dbus exposes lmk on the session bus.
//
// It exports the io.github.jmylchreest.Lmk control interface used by the
// lmk CLI, and can optionally own org.freedesktop.Notifications or
// passively mirror Notify calls addressed to another notification daemon.
package dbus
