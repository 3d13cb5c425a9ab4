// Package display owns the notification surface. A single goroutine runs the
// toast / center state machine and is the only caller of the Renderer;
// everything else talks to it by enqueueing events.
package display
