// Package rope implements a character-indexed rope for editor text
// storage. All public offsets are rune counts, never bytes, so callers
// can step the cursor without worrying about UTF-8 widths; the rope
// itself guarantees no operation splits a multi-byte codepoint.
//
// Index arguments must be validated by the caller against LenChars;
// out-of-range indices are programming errors and panic.
package rope

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Rope is a mutable sequence of Unicode scalar values with O(log n)
// insert, remove, and char/line index translation.
type Rope struct {
	root *node
}

// New creates an empty rope.
func New() *Rope {
	return &Rope{root: newLeaf("")}
}

// FromString creates a rope holding s.
func FromString(s string) *Rope {
	if len(s) == 0 {
		return New()
	}
	var chunks []*node
	for len(s) > 0 {
		n := maxLeafBytes
		if n >= len(s) {
			chunks = append(chunks, newLeaf(s))
			break
		}
		// Back off to a rune boundary so chunks never split a codepoint.
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		chunks = append(chunks, newLeaf(s[:n]))
		s = s[n:]
	}
	return &Rope{root: buildLevel(chunks)}
}

// FromReader creates a rope from the full contents of r.
func FromReader(r io.Reader) (*Rope, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return FromString(string(data)), nil
}

func buildLevel(nodes []*node) *node {
	for len(nodes) > 1 {
		var parents []*node
		for i := 0; i < len(nodes); i += maxChildren {
			end := i + maxChildren
			if end > len(nodes) {
				end = len(nodes)
			}
			group := make([]*node, end-i)
			copy(group, nodes[i:end])
			parents = append(parents, newInternal(group))
		}
		nodes = parents
	}
	if len(nodes) == 0 {
		return newLeaf("")
	}
	return nodes[0]
}

// LenChars returns the number of characters in the rope.
func (r *Rope) LenChars() int {
	return r.root.sum.chars
}

// LenBytes returns the UTF-8 encoded size of the rope.
func (r *Rope) LenBytes() int {
	return r.root.sum.bytes
}

// LenLines returns the number of lines (newline count plus one).
func (r *Rope) LenLines() int {
	return r.root.sum.breaks + 1
}

// MaxLineIndex returns the index of the last line.
func (r *Rope) MaxLineIndex() AbsLine {
	return AbsLine(r.root.sum.breaks)
}

func (r *Rope) checkChar(pos AbsChar, what string) {
	if pos < 0 || int(pos) > r.LenChars() {
		panic(fmt.Sprintf("rope: %s index %d out of range [0, %d]", what, pos, r.LenChars()))
	}
}

// InsertString inserts text at a character position.
func (r *Rope) InsertString(pos AbsChar, text string) {
	r.checkChar(pos, "insert")
	if len(text) == 0 {
		return
	}
	left, right := r.root.split(int(pos))
	r.root = concat(concat(left, FromString(text).root), right)
}

// Remove deletes the character range [start, end).
func (r *Rope) Remove(start, end AbsChar) {
	r.checkChar(start, "remove start")
	r.checkChar(end, "remove end")
	if start > end {
		panic(fmt.Sprintf("rope: inverted remove range [%d, %d)", start, end))
	}
	if start == end {
		return
	}
	left, rest := r.root.split(int(start))
	_, right := rest.split(int(end - start))
	r.root = concat(left, right)
}

// CharToLine returns the line containing the given character position.
func (r *Rope) CharToLine(pos AbsChar) AbsLine {
	r.checkChar(pos, "charToLine")
	return AbsLine(r.root.charToLine(int(pos)))
}

// LineToChar returns the character offset of the start of a line.
// CharToLine and LineToChar are exact inverses at line boundaries.
// Lines past the end map to LenChars.
func (r *Rope) LineToChar(line AbsLine) AbsChar {
	if line < 0 {
		panic(fmt.Sprintf("rope: negative line index %d", line))
	}
	if int(line) >= r.LenLines() {
		return AbsChar(r.LenChars())
	}
	return AbsChar(r.root.lineToChar(int(line)))
}

// Slice returns the text in the character range [start, end).
func (r *Rope) Slice(start, end AbsChar) string {
	r.checkChar(start, "slice start")
	r.checkChar(end, "slice end")
	var sb strings.Builder
	r.root.appendRange(&sb, int(start), int(end))
	return sb.String()
}

// String returns the full text.
func (r *Rope) String() string {
	var sb strings.Builder
	sb.Grow(r.LenBytes())
	r.root.appendTo(&sb)
	return sb.String()
}

// Line returns a view of one line, including its terminating newline
// if present.
func (r *Rope) Line(line AbsLine) Slice {
	if line < 0 || int(line) >= r.LenLines() {
		panic(fmt.Sprintf("rope: line index %d out of range [0, %d)", line, r.LenLines()))
	}
	start := r.LineToChar(line)
	end := r.LineToChar(line + 1)
	return Slice{rope: r, start: start, end: end}
}

// WholeSlice returns a view of the entire rope.
func (r *Rope) WholeSlice() Slice {
	return Slice{rope: r, start: 0, end: AbsChar(r.LenChars())}
}

// LinesAt returns an iterator over lines starting at the given line.
// The iterator is finite and can be restarted by calling LinesAt again.
func (r *Rope) LinesAt(start AbsLine) *LineIter {
	if start < 0 {
		start = 0
	}
	return &LineIter{rope: r, next: start}
}
