package layout

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedMetrics gives every glyph the same advance.
type fixedMetrics struct {
	advance int
	height  int
	ascent  int
}

func (m fixedMetrics) Advance(rune) int { return m.advance }
func (m fixedMetrics) Height() int      { return m.height }
func (m fixedMetrics) Ascent() int      { return m.ascent }

// countingMetrics records how often Advance was called.
type countingMetrics struct {
	fixedMetrics
	mu    sync.Mutex
	calls int
}

func (m *countingMetrics) Advance(r rune) int {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.fixedMetrics.Advance(r)
}

var mono = fixedMetrics{advance: 10, height: 12, ascent: 9}

// widthFor returns the envelope that leaves room for n glyphs of mono.
func widthFor(n int) int {
	return n*mono.advance + 2*Padding
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth int
		maxLines int
		opts     WrapOptions
		want     []string
	}{
		{
			name:     "empty text",
			text:     "",
			maxWidth: MaxWidth,
			maxLines: MaxBodyLines,
			want:     nil,
		},
		{
			name:     "fits on one line",
			text:     "Hi",
			maxWidth: MaxWidth,
			maxLines: MaxTitleLines,
			want:     []string{"Hi"},
		},
		{
			name:     "breaks at last space",
			text:     "aaaa bbbb",
			maxWidth: widthFor(6),
			maxLines: MaxBodyLines,
			want:     []string{"aaaa", "bbbb"},
		},
		{
			name:     "breaks at the latest of several spaces",
			text:     "aa bb cc dd",
			maxWidth: widthFor(6),
			maxLines: MaxBodyLines,
			want:     []string{"aa bb", "cc dd"},
		},
		{
			name:     "overflowing space is consumed",
			text:     "abcdef ghi",
			maxWidth: widthFor(6),
			maxLines: MaxBodyLines,
			want:     []string{"abcdef", "ghi"},
		},
		{
			name:     "newline forces a break",
			text:     "a\nb",
			maxWidth: MaxWidth,
			maxLines: MaxBodyLines,
			want:     []string{"a", "b"},
		},
		{
			name:     "blank lines are kept",
			text:     "a\n\nb",
			maxWidth: MaxWidth,
			maxLines: MaxBodyLines,
			want:     []string{"a", "", "b"},
		},
		{
			name:     "trailing newline adds nothing",
			text:     "abc\n",
			maxWidth: MaxWidth,
			maxLines: MaxBodyLines,
			want:     []string{"abc"},
		},
		{
			name:     "long word kept whole",
			text:     "xxxxxxxxxx",
			maxWidth: widthFor(6),
			maxLines: MaxBodyLines,
			want:     []string{"xxxxxxxxxx"},
		},
		{
			name:     "long word kept whole then wraps on",
			text:     "xxxxxxxxxx yy",
			maxWidth: widthFor(6),
			maxLines: MaxBodyLines,
			want:     []string{"xxxxxxxxxx", "yy"},
		},
		{
			name:     "long word kept whole up to newline",
			text:     "xxxxxxxxxx\nyy",
			maxWidth: widthFor(6),
			maxLines: MaxBodyLines,
			want:     []string{"xxxxxxxxxx", "yy"},
		},
		{
			name:     "long word hard broken",
			text:     "xxxxxxxxxx",
			maxWidth: widthFor(6),
			maxLines: MaxBodyLines,
			opts:     WrapOptions{BreakWords: true},
			want:     []string{"xxxxxx", "xxxx"},
		},
		{
			name:     "hard break after leading word",
			text:     "ab cdefghijk",
			maxWidth: widthFor(6),
			maxLines: MaxBodyLines,
			opts:     WrapOptions{BreakWords: true},
			want:     []string{"ab", "cdefgh", "ijk"},
		},
		{
			name:     "line cap drops the rest",
			text:     "a\nb\nc\nd",
			maxWidth: MaxWidth,
			maxLines: 2,
			want:     []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, mono, tt.maxWidth, tt.maxLines, tt.opts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrap_GlyphWiderThanBudget(t *testing.T) {
	wide := fixedMetrics{advance: 100, height: 12, ascent: 9}

	got := Wrap("ab", wide, widthFor(6), MaxBodyLines, WrapOptions{BreakWords: true})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestWrap_SingleWordWiderThanMaxWidth(t *testing.T) {
	word := strings.Repeat("w", 80)

	got := Wrap(word, mono, MaxWidth, MaxBodyLines, WrapOptions{})
	assert.Equal(t, []string{word}, got)
}

func TestWrap_TitleAndBodyCaps(t *testing.T) {
	text := strings.Repeat("line\n", 100)

	assert.Len(t, Wrap(text, mono, MaxWidth, MaxTitleLines, WrapOptions{}), MaxTitleLines)
	assert.Len(t, Wrap(text, mono, MaxWidth, MaxBodyLines, WrapOptions{}), MaxBodyLines)
}

func TestWrap_LinesFitBudget(t *testing.T) {
	texts := []string{
		"The quick brown fox jumps over the lazy dog",
		"a bb ccc dddd eeeee ffffff ggggggg hhhhhhhh iiiiiiiii",
		"supercalifragilisticexpialidocious is a long word among short ones",
		"  leading spaces\n and a newline  then  doubles",
		strings.Repeat("word ", 60),
	}
	widths := []int{widthFor(5), widthFor(8), widthFor(13), 200, MaxWidth}

	for _, breakWords := range []bool{false, true} {
		opts := WrapOptions{BreakWords: breakWords}
		for _, text := range texts {
			for _, width := range widths {
				budget := width - 2*Padding
				for _, line := range Wrap(text, mono, width, MaxBodyLines, opts) {
					if MeasureString(mono, line) <= budget {
						continue
					}
					// Only a single word may overflow.
					assert.NotContains(t, strings.TrimLeft(line, " "), " ",
						"line %q overflows budget %d", line, budget)
					if breakWords {
						t.Errorf("line %q overflows budget %d with word breaking", line, budget)
					}
				}
			}
		}
	}
}

func TestWrap_PreservesText(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	lines := Wrap(text, mono, widthFor(9), MaxBodyLines, WrapOptions{})

	assert.Equal(t, text, strings.Join(lines, " "))
}

func TestEngine_ComputeBox(t *testing.T) {
	title := fixedMetrics{advance: 10, height: 12, ascent: 9}
	body := fixedMetrics{advance: 10, height: 10, ascent: 8}
	e := NewEngine(title, body, WrapOptions{})

	t.Run("one title line and one body line", func(t *testing.T) {
		box := e.ComputeBox("Hi", "Short body", MaxWidth)

		assert.Equal(t, []string{"Hi"}, box.TitleLines)
		assert.Equal(t, []string{"Short body"}, box.BodyLines)
		assert.Equal(t, e.TitleLineHeight()+e.BodyLineHeight()+2*Padding+LineSpacing, box.Height)
		assert.Equal(t, 64, box.Height)
		assert.Equal(t, MinWidth, box.Width)
	})

	t.Run("width follows widest line", func(t *testing.T) {
		box := e.ComputeBox("t", strings.Repeat("b", 40), MaxWidth)
		assert.Equal(t, 40*10+2*Padding, box.Width)
	})

	t.Run("width clamped to max", func(t *testing.T) {
		box := e.ComputeBox(strings.Repeat("W", 80), "", MaxWidth)

		require.Len(t, box.TitleLines, 1)
		assert.Equal(t, MaxWidth, box.Width)
	})

	t.Run("empty notification", func(t *testing.T) {
		box := e.ComputeBox("", "", MaxWidth)

		assert.Empty(t, box.TitleLines)
		assert.Empty(t, box.BodyLines)
		assert.Equal(t, MinWidth, box.Width)
		assert.Equal(t, 2*Padding+LineSpacing, box.Height)
	})

	t.Run("height counts wrapped lines", func(t *testing.T) {
		box := e.ComputeBox("a\nb", "c\nd\ne", MaxWidth)

		assert.Equal(t, 2*e.TitleLineHeight()+3*e.BodyLineHeight()+2*Padding+LineSpacing, box.Height)
	})
}

func TestEngine_ComputeBoxWidthAlwaysClamped(t *testing.T) {
	e := NewEngine(mono, mono, WrapOptions{})
	inputs := []string{"", "x", strings.Repeat("x", 30), strings.Repeat("x", 200), strings.Repeat("ab ", 300)}

	for _, title := range inputs {
		for _, body := range inputs {
			box := e.ComputeBox(title, body, MaxWidth)
			assert.GreaterOrEqual(t, box.Width, MinWidth)
			assert.LessOrEqual(t, box.Width, MaxWidth)
		}
	}
}

func TestCachedMetrics(t *testing.T) {
	inner := &countingMetrics{fixedMetrics: mono}
	c := NewCachedMetrics(inner)

	assert.Equal(t, 10, c.Advance('a'))
	assert.Equal(t, 10, c.Advance('a'))
	assert.Equal(t, 10, c.Advance('b'))
	assert.Equal(t, 2, inner.calls)

	assert.Equal(t, mono.height, c.Height())
	assert.Equal(t, mono.ascent, c.Ascent())
}

func TestCachedMetrics_Concurrent(t *testing.T) {
	inner := &countingMetrics{fixedMetrics: mono}
	c := NewCachedMetrics(inner)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 'a'; r <= 'z'; r++ {
				c.Advance(r)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 26, inner.calls)
}
