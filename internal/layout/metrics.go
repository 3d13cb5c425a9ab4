package layout

import "sync"

// Metrics reports glyph measurements for a single font.
type Metrics interface {
	// Advance returns the horizontal advance of a single codepoint in pixels.
	Advance(r rune) int
	// Height returns the font line height in pixels, without line spacing.
	Height() int
	// Ascent returns the distance from the top of a line to the baseline.
	Ascent() int
}

// MeasureString returns the summed advance of every codepoint in s.
func MeasureString(m Metrics, s string) int {
	width := 0
	for _, r := range s {
		width += m.Advance(r)
	}
	return width
}

// CachedMetrics memoizes advances of an underlying Metrics. It is safe for
// concurrent use; calls into the wrapped Metrics are serialized by the same
// lock, so the wrapped value does not need to be.
type CachedMetrics struct {
	mu       sync.Mutex
	m        Metrics
	advances map[rune]int
	height   int
	ascent   int
}

// NewCachedMetrics wraps m with an advance cache.
func NewCachedMetrics(m Metrics) *CachedMetrics {
	return &CachedMetrics{
		m:        m,
		advances: make(map[rune]int),
		height:   m.Height(),
		ascent:   m.Ascent(),
	}
}

// Advance implements Metrics.
func (c *CachedMetrics) Advance(r rune) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if adv, ok := c.advances[r]; ok {
		return adv
	}
	adv := c.m.Advance(r)
	c.advances[r] = adv
	return adv
}

// Height implements Metrics.
func (c *CachedMetrics) Height() int { return c.height }

// Ascent implements Metrics.
func (c *CachedMetrics) Ascent() int { return c.ascent }
