package rope

// Slice is a read-only view of a character range of a rope. Offsets
// into a slice are relative to its start. The view stays valid only
// until the underlying rope is mutated.
type Slice struct {
	rope  *Rope
	start AbsChar
	end   AbsChar
}

// LenChars returns the number of characters in the slice.
func (s Slice) LenChars() int {
	return int(s.end - s.start)
}

// String materializes the slice's text.
func (s Slice) String() string {
	return s.rope.Slice(s.start, s.end)
}

// Start returns the slice's absolute start position in the rope.
func (s Slice) Start() AbsChar {
	return s.start
}

// Sub returns a narrower view of the slice, with offsets relative to
// the slice start.
func (s Slice) Sub(start, end RelChar) Slice {
	return Slice{
		rope:  s.rope,
		start: s.start + AbsChar(start),
		end:   s.start + AbsChar(end),
	}
}

// LineSpanAt returns the span of the line containing pos, clamped to
// the slice. The end includes the line's newline if present. Used by
// grapheme stepping, which never crosses a line terminator.
func (s Slice) LineSpanAt(pos RelChar) (start, end RelChar) {
	abs := s.start + AbsChar(pos)
	line := s.rope.CharToLine(abs)
	ls := s.rope.LineToChar(line)
	le := s.rope.LineToChar(line + 1)
	if ls < s.start {
		ls = s.start
	}
	if le > s.end {
		le = s.end
	}
	return RelChar(ls - s.start), RelChar(le - s.start)
}

// LineItem is one element yielded by a LineIter.
type LineItem struct {
	// Index is the absolute line index.
	Index AbsLine

	// Slice views the line text, including its newline if present.
	Slice Slice
}

// LineIter lazily walks lines of a rope in order.
type LineIter struct {
	rope *Rope
	next AbsLine
	cur  LineItem
}

// Next advances to the next line, returning false when exhausted.
func (it *LineIter) Next() bool {
	if int(it.next) >= it.rope.LenLines() {
		return false
	}
	it.cur = LineItem{Index: it.next, Slice: it.rope.Line(it.next)}
	it.next++
	return true
}

// Item returns the current line. Valid only after Next returns true.
func (it *LineIter) Item() LineItem {
	return it.cur
}
