// Package grapheme locates extended grapheme cluster boundaries in a
// rope, so cursor steps cross combining marks and emoji ZWJ sequences
// as single units rather than one codepoint at a time.
//
// Clusters never span a line terminator, so boundary search only ever
// materializes the line containing the position; the rest of the rope
// is never pulled in.
package grapheme

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dmorey/caret/internal/rope"
)

// NextBoundary returns the first cluster boundary strictly after pos,
// or the slice length when pos is at the end of the text.
func NextBoundary(s rope.Slice, pos rope.RelChar) rope.RelChar {
	length := rope.RelChar(s.LenChars())
	if pos >= length {
		return length
	}

	start, end := s.LineSpanAt(pos)
	text := s.Sub(start, end).String()

	off := start
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		off += rope.RelChar(utf8.RuneCountInString(cluster))
		if off > pos {
			return off
		}
	}
	return end
}

// PrevBoundary returns the last cluster boundary strictly before pos,
// or zero when pos is at the start of the text.
func PrevBoundary(s rope.Slice, pos rope.RelChar) rope.RelChar {
	if pos <= 0 {
		return 0
	}
	length := rope.RelChar(s.LenChars())
	if pos > length {
		pos = length
	}

	// The char just before pos determines the line to scan; when pos
	// sits at a line start this lands on the previous line.
	start, end := s.LineSpanAt(pos - 1)
	text := s.Sub(start, end).String()

	boundary := start
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		next := boundary + rope.RelChar(utf8.RuneCountInString(cluster))
		if next >= pos {
			return boundary
		}
		boundary = next
	}
	return boundary
}
