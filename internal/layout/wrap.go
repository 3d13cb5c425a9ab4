// Package layout wraps notification text into lines and computes the box a
// notification occupies on screen.
package layout

// Geometry shared by sizing and drawing, in pixels.
const (
	MinWidth    = 300
	MaxWidth    = 500
	Padding     = 12
	LineSpacing = 6
)

// Line caps. Text beyond them is dropped.
const (
	MaxTitleLines = 20
	MaxBodyLines  = 50
)

// WrapOptions tunes the handling of words wider than a line.
type WrapOptions struct {
	// BreakWords splits a word that does not fit on a line at the
	// overflowing character. When false the word is kept whole on its own
	// line, which may be wider than the box; the renderer clips it at the
	// box edge.
	BreakWords bool
}

// Wrap greedily splits text into lines no wider than maxWidth-2*Padding.
// A line breaks at the last space seen after its start; the space itself is
// consumed. A newline always ends the line. At most maxLines lines are
// returned.
func Wrap(text string, m Metrics, maxWidth, maxLines int, opts WrapOptions) []string {
	if text == "" || maxLines <= 0 {
		return nil
	}

	budget := maxWidth - 2*Padding
	runes := []rune(text)
	lines := make([]string, 0, 4)

	start := 0
	for start < len(runes) && len(lines) < maxLines {
		end, next := breakLine(runes, start, m, budget, opts)
		lines = append(lines, string(runes[start:end]))
		start = next
	}

	return lines
}

// breakLine finds where the line beginning at start ends. end is exclusive,
// next is where the following line begins.
func breakLine(runes []rune, start int, m Metrics, budget int, opts WrapOptions) (end, next int) {
	width := 0
	lastSpace := -1

	for i := start; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			return i, i + 1
		}
		if r == ' ' {
			lastSpace = i
		}

		width += m.Advance(r)
		if width <= budget {
			continue
		}

		if lastSpace > start {
			return lastSpace, lastSpace + 1
		}

		if opts.BreakWords {
			if i == start {
				// A single glyph wider than the budget still has to go somewhere.
				return i + 1, i + 1
			}
			return i, i
		}

		// Keep the word whole: run to the next space, newline or end.
		j := i + 1
		for j < len(runes) && runes[j] != ' ' && runes[j] != '\n' {
			j++
		}
		if j < len(runes) {
			return j, j + 1
		}
		return j, j
	}

	return len(runes), len(runes)
}
