package display

import (
	"github.com/jmylchreest/lmk/internal/layout"
	"github.com/jmylchreest/lmk/internal/model"
)

// CenterSize returns the surface size needed to stack items with
// LineSpacing above, between and below them.
func CenterSize(items []model.Notification) (width, height int) {
	width = layout.MinWidth
	height = layout.LineSpacing
	for _, n := range items {
		width = max(width, n.Width)
		height += n.Height + layout.LineSpacing
	}
	return min(width, layout.MaxWidth), height
}

// renderCenter draws every undismissed notification top to bottom. With
// nothing to show the surface is hidden instead.
func (c *Controller) renderCenter() {
	items := c.store.Snapshot()
	if len(items) == 0 {
		c.hide()
		return
	}

	width, height := CenterSize(items)
	c.present(width, height)

	top := layout.LineSpacing
	for _, n := range items {
		c.drawNotification(n, top)
		top += n.Height + layout.LineSpacing
	}

	c.drawFrame(width, height)
	c.renderer.Flush()
}

// renderToast draws a single notification in its own box.
func (c *Controller) renderToast(n model.Notification) {
	c.present(n.Width, n.Height)
	c.drawNotification(n, 0)
	c.drawFrame(n.Width, n.Height)
	c.renderer.Flush()
}

func (c *Controller) present(width, height int) {
	screenW, screenH := c.renderer.ScreenSize()
	x, y := c.opts.Placement.Origin(screenW, screenH, width, height)

	c.renderer.MoveResize(x, y, width, height)
	c.renderer.Map()
	c.renderer.Clear(c.opts.Theme.Background)
}

// drawNotification draws n with its top edge at top. Text is re-wrapped
// against the notification's own width.
func (c *Controller) drawNotification(n model.Notification, top int) {
	theme := c.opts.Theme
	box := c.engine.ComputeBox(n.Title, n.Body, n.Width)

	c.renderer.FillRect(0, top, n.Width, n.Height, theme.Background)

	titleColor := theme.Foreground
	if n.IsCritical() {
		titleColor = theme.Urgent
	}

	y := top + layout.Padding + c.engine.Title.Ascent()
	for _, line := range box.TitleLines {
		c.renderer.DrawText(layout.Padding, y, FontTitle, titleColor, line)
		y += c.engine.TitleLineHeight()
	}

	y += layout.LineSpacing

	for _, line := range box.BodyLines {
		c.renderer.DrawText(layout.Padding, y, FontBody, theme.Foreground, line)
		y += c.engine.BodyLineHeight()
	}
}

func (c *Controller) drawFrame(width, height int) {
	border := c.opts.Theme.Border
	c.renderer.FillRect(0, 0, width, BorderWidth, border)
	c.renderer.FillRect(0, height-BorderWidth, width, BorderWidth, border)
	c.renderer.FillRect(0, 0, BorderWidth, height, border)
	c.renderer.FillRect(width-BorderWidth, 0, BorderWidth, height, border)
}
