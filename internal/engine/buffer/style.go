package buffer

import "github.com/dmorey/caret/internal/rope"

// StyleSpan marks a half-open character range with a named style. The
// buffer does not interpret styles; an external highlighter computes
// them and the renderer consumes them.
type StyleSpan struct {
	Start rope.AbsChar
	End   rope.AbsChar
	Style string
}

// SetStyleSpans replaces the buffer's style side-table. The spans are
// valid only for the current text; any text change discards them.
func (b *Buffer) SetStyleSpans(spans []StyleSpan) {
	b.styles = spans
}

// StyleSpans returns the current style side-table, or nil when the text
// changed since the last SetStyleSpans.
func (b *Buffer) StyleSpans() []StyleSpan {
	return b.styles
}
