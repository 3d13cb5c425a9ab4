package display

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jmylchreest/lmk/internal/layout"
	"github.com/jmylchreest/lmk/internal/model"
)

// ErrStopped is returned by queries made after the controller stopped.
var ErrStopped = errors.New("display controller stopped")

// Store is the part of the notification store the controller uses.
type Store interface {
	Get(id uint32) (model.Notification, bool)
	Snapshot() []model.Notification
	Dismiss(id uint32) bool
	DismissAtOffset(y, spacing int) (uint32, bool)
}

type eventKind int

const (
	evShowToast eventKind = iota
	evToastExpired
	evToggleCenter
	evDismissAt
	evDismiss
	evRedraw
	evRefresh
	evOptions
	evStatus
)

var eventNames = map[eventKind]string{
	evShowToast:    "show_toast",
	evToastExpired: "toast_expired",
	evToggleCenter: "toggle_center",
	evDismissAt:    "dismiss_at",
	evDismiss:      "dismiss",
	evRedraw:       "redraw",
	evRefresh:      "refresh",
	evOptions:      "options",
	evStatus:       "status",
}

type event struct {
	kind  eventKind
	id    uint32
	y     int
	opts  Options
	reply chan Status
}

// eventQueueSize bounds how many events may wait for the controller.
const eventQueueSize = 256

// Controller runs the Hidden / Toast / Center state machine. All methods
// except Run only enqueue an event and may be called from any goroutine;
// events are processed one at a time, in enqueue order, by Run.
type Controller struct {
	store    Store
	renderer Renderer
	logger   *slog.Logger

	events chan event
	done   chan struct{}

	// Owned by the Run goroutine.
	opts    Options
	engine  *layout.Engine
	state   State
	toastID uint32
}

// NewController creates a controller drawing store contents on r.
func NewController(store Store, r Renderer, opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		store:    store,
		renderer: r,
		logger:   logger,
		events:   make(chan event, eventQueueSize),
		done:     make(chan struct{}),
		opts:     opts,
		engine:   layout.NewEngine(r.Metrics(FontTitle), r.Metrics(FontBody), opts.Wrap),
		state:    StateHidden,
	}
}

// ShowToast requests the toast for id.
func (c *Controller) ShowToast(id uint32) {
	c.enqueue(event{kind: evShowToast, id: id})
}

// ToastExpired reports that the toast for id has run its duration.
func (c *Controller) ToastExpired(id uint32) {
	c.enqueue(event{kind: evToastExpired, id: id})
}

// ToggleCenter opens the center if it is closed and closes it otherwise.
func (c *Controller) ToggleCenter() {
	c.enqueue(event{kind: evToggleCenter})
}

// DismissAt reports a click at surface offset y.
func (c *Controller) DismissAt(y int) {
	c.enqueue(event{kind: evDismissAt, y: y})
}

// Dismiss dismisses a notification by id.
func (c *Controller) Dismiss(id uint32) {
	c.enqueue(event{kind: evDismiss, id: id})
}

// RedrawRequested reports that the surface contents were lost.
func (c *Controller) RedrawRequested() {
	c.enqueue(event{kind: evRedraw})
}

// Refresh re-reads the store after it was changed by someone else, such as
// a bulk dismiss.
func (c *Controller) Refresh() {
	c.enqueue(event{kind: evRefresh})
}

// SetOptions replaces placement, theme and wrapping.
func (c *Controller) SetOptions(opts Options) {
	c.enqueue(event{kind: evOptions, opts: opts})
}

// Status returns the current state as seen by the controller goroutine.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	select {
	case c.events <- event{kind: evStatus, reply: reply}:
	case <-c.done:
		return Status{}, ErrStopped
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}

	select {
	case st := <-reply:
		return st, nil
	case <-c.done:
		return Status{}, ErrStopped
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

func (c *Controller) enqueue(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// Run processes events until ctx is cancelled, then hides the surface.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	c.logger.Debug("display controller started")
	for {
		select {
		case <-ctx.Done():
			if c.state != StateHidden {
				c.hide()
			}
			c.logger.Debug("display controller stopped")
			return nil
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

func (c *Controller) handle(ev event) {
	before := c.state

	switch ev.kind {
	case evShowToast:
		c.showToast(ev.id)
	case evToastExpired:
		c.toastExpired(ev.id)
	case evToggleCenter:
		c.toggleCenter()
	case evDismissAt:
		c.dismissAt(ev.y)
	case evDismiss:
		c.dismiss(ev.id)
	case evRedraw:
		if c.state == StateCenter {
			c.renderCenter()
		}
	case evRefresh:
		c.refresh()
	case evOptions:
		c.applyOptions(ev.opts)
	case evStatus:
		ev.reply <- Status{State: c.state, ToastID: c.toastID}
		return
	}

	if c.state != before {
		c.logger.Debug("display state changed",
			"event", eventNames[ev.kind],
			"from", before,
			"to", c.state,
			"toast_id", c.toastID,
		)
	}
}

func (c *Controller) showToast(id uint32) {
	if c.state == StateCenter {
		return
	}

	n, ok := c.store.Get(id)
	if !ok || n.Dismissed {
		return
	}

	c.state = StateToast
	c.toastID = id
	c.renderToast(n)
}

// toastExpired only hides the toast it belongs to; an expiry arriving after
// another toast or the center took over is stale and ignored.
func (c *Controller) toastExpired(id uint32) {
	if c.state != StateToast || c.toastID != id {
		return
	}
	c.hide()
}

func (c *Controller) toggleCenter() {
	if c.state == StateCenter {
		c.hide()
		return
	}

	c.state = StateCenter
	c.toastID = 0
	c.renderCenter()
}

func (c *Controller) dismissAt(y int) {
	if c.state != StateCenter {
		return
	}

	id, ok := c.store.DismissAtOffset(y, layout.LineSpacing)
	if !ok {
		return
	}
	c.logger.Debug("dismissed notification", "id", id, "y", y)
	c.renderCenter()
}

func (c *Controller) dismiss(id uint32) {
	if !c.store.Dismiss(id) {
		return
	}

	switch {
	case c.state == StateCenter:
		c.renderCenter()
	case c.state == StateToast && c.toastID == id:
		c.hide()
	}
}

func (c *Controller) applyOptions(opts Options) {
	c.opts = opts
	c.engine = layout.NewEngine(c.renderer.Metrics(FontTitle), c.renderer.Metrics(FontBody), opts.Wrap)

	switch c.state {
	case StateCenter:
		c.renderCenter()
	case StateToast:
		if n, ok := c.store.Get(c.toastID); ok && !n.Dismissed {
			c.renderToast(n)
		} else {
			c.hide()
		}
	}
}

// refresh hides a toast whose record went away and re-renders the center.
// An untouched toast is left as drawn.
func (c *Controller) refresh() {
	switch c.state {
	case StateCenter:
		c.renderCenter()
	case StateToast:
		if n, ok := c.store.Get(c.toastID); !ok || n.Dismissed {
			c.hide()
		}
	}
}

func (c *Controller) hide() {
	c.state = StateHidden
	c.toastID = 0
	c.renderer.Unmap()
	c.renderer.Flush()
}
