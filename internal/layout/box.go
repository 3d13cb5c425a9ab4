package layout

// Box is the wrapped text and on-screen size of one notification.
type Box struct {
	Width      int
	Height     int
	TitleLines []string
	BodyLines  []string
}

// Engine sizes notifications using one font for titles and one for bodies.
// It holds no mutable state and may be shared between goroutines as long as
// the Metrics are safe for concurrent use.
type Engine struct {
	Title   Metrics
	Body    Metrics
	Options WrapOptions
}

// NewEngine creates an Engine.
func NewEngine(title, body Metrics, opts WrapOptions) *Engine {
	return &Engine{Title: title, Body: body, Options: opts}
}

// TitleLineHeight is the vertical step between title baselines.
func (e *Engine) TitleLineHeight() int {
	return e.Title.Height() + LineSpacing
}

// BodyLineHeight is the vertical step between body baselines.
func (e *Engine) BodyLineHeight() int {
	return e.Body.Height() + LineSpacing
}

// ComputeBox wraps title and body against widthEnvelope and returns the
// resulting box. The width is the widest line plus padding, clamped to
// [MinWidth, MaxWidth].
func (e *Engine) ComputeBox(title, body string, widthEnvelope int) Box {
	box := Box{
		TitleLines: Wrap(title, e.Title, widthEnvelope, MaxTitleLines, e.Options),
		BodyLines:  Wrap(body, e.Body, widthEnvelope, MaxBodyLines, e.Options),
	}

	widest := 0
	for _, line := range box.TitleLines {
		widest = max(widest, MeasureString(e.Title, line))
	}
	for _, line := range box.BodyLines {
		widest = max(widest, MeasureString(e.Body, line))
	}

	box.Width = min(max(widest+2*Padding, MinWidth), MaxWidth)
	box.Height = len(box.TitleLines)*e.TitleLineHeight() +
		len(box.BodyLines)*e.BodyLineHeight() +
		2*Padding + LineSpacing

	return box
}
