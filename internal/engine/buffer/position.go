package buffer

import (
	"github.com/dmorey/caret/internal/grapheme"
	"github.com/dmorey/caret/internal/rope"
)

// LinePosition addresses a character as a line index plus a character
// offset from the start of that line.
type LinePosition struct {
	Line   rope.AbsLine
	Offset rope.RelChar
}

// LinePositionFromAbsChar converts an absolute character position.
func LinePositionFromAbsChar(pos rope.AbsChar, buf *Buffer) LinePosition {
	text := buf.Text()
	line := text.CharToLine(pos)
	return LinePosition{
		Line:   line,
		Offset: rope.RelChar(pos - text.LineToChar(line)),
	}
}

// ToAbsChar converts back to an absolute character position.
func (lp LinePosition) ToAbsChar(buf *Buffer) rope.AbsChar {
	return buf.Text().LineToChar(lp.Line) + rope.AbsChar(lp.Offset)
}

// GraphemeOffset counts the grapheme clusters between the start of the
// line and the position's character offset.
func (lp LinePosition) GraphemeOffset(buf *Buffer) int {
	line := buf.Text().Line(lp.Line)
	count := 0
	cur := rope.RelChar(0)
	for cur < lp.Offset {
		next := grapheme.NextBoundary(line, cur)
		if next == cur {
			break
		}
		count++
		cur = next
	}
	return count
}

// SetOffsetInGraphemes places the offset after the given number of
// grapheme clusters, truncated to the end of the line when the line is
// shorter than requested.
func (lp *LinePosition) SetOffsetInGraphemes(buf *Buffer, graphemes int) {
	line := buf.Text().Line(lp.Line)
	n := rope.RelChar(line.LenChars())
	lp.Offset = 0
	for graphemes > 0 {
		lp.Offset = grapheme.NextBoundary(line, lp.Offset)
		graphemes--
		if lp.Offset >= n {
			lp.Offset = n
			break
		}
	}
}
