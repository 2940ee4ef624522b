package rope

// AbsChar is an absolute character (rune) index into a rope.
// Valid values are 0..LenChars inclusive; the final position addresses
// the end of the text.
type AbsChar int

// AbsLine is an absolute line index into a rope. Lines are 0-indexed;
// a rope always has at least one line.
type AbsLine int

// RelChar is a character offset relative to the start of a line.
type RelChar int

// RelLine is a line count used to move an AbsLine up or down.
type RelLine int

// SaturatingSub subtracts n lines, stopping at line zero.
func (l AbsLine) SaturatingSub(n RelLine) AbsLine {
	r := l - AbsLine(n)
	if r < 0 {
		return 0
	}
	return r
}

// Add moves the line index down by n lines.
func (l AbsLine) Add(n RelLine) AbsLine {
	return l + AbsLine(n)
}
