package buffer

import (
	"strings"
	"unicode/utf8"

	"github.com/dmorey/caret/internal/engine/id"
	"github.com/dmorey/caret/internal/rope"
)

// Span is a half-open character range within a single line.
type Span struct {
	Start rope.RelChar
	End   rope.RelChar
}

// LineMatches holds the search hits of one line, in order.
type LineMatches struct {
	Spans []Span
}

// SearchState is the result of scanning the visible window of one pane
// for a pattern. It stays valid until the next Search or ClearSearch.
type SearchState struct {
	paneID    id.Pane
	startLine rope.AbsLine
	matches   []LineMatches
}

// LineMatches returns the hits on the given line as seen by the given
// pane, or nil when the pane or line was not part of the scan.
func (s *SearchState) LineMatches(paneID id.Pane, line rope.AbsLine) *LineMatches {
	if paneID != s.paneID {
		return nil
	}
	i := int(line - s.startLine)
	if i < 0 || i >= len(s.matches) {
		return nil
	}
	return &s.matches[i]
}

// NextMatch returns the first hit at or after pos, or false when no
// later hit exists in the scanned window. The scan does not wrap.
func (s *SearchState) NextMatch(pos LinePosition) (LinePosition, bool) {
	for i, lm := range s.matches {
		line := s.startLine.Add(rope.RelLine(i))
		if line < pos.Line {
			continue
		}
		for _, span := range lm.Spans {
			if line == pos.Line && span.Start < pos.Offset {
				continue
			}
			return LinePosition{Line: line, Offset: span.Start}, true
		}
	}
	return LinePosition{}, false
}

// Search scans numLines lines starting at the pane's top line for
// literal occurrences of pattern and records them as the buffer's
// search state. An empty pattern leaves any previous state in place.
func (b *Buffer) Search(pattern string, paneID id.Pane, topLine rope.AbsLine, numLines int) {
	if pattern == "" || numLines <= 0 {
		return
	}

	state := &SearchState{
		paneID:    paneID,
		startLine: topLine,
		matches:   make([]LineMatches, numLines),
	}

	iter := b.Text().LinesAt(topLine)
	for iter.Next() {
		item := iter.Item()
		i := int(item.Index - topLine)
		if i >= numLines {
			break
		}

		lineStr := item.Slice.String()
		byteOff := 0
		charOff := 0
		for {
			rel := strings.Index(lineStr[byteOff:], pattern)
			if rel < 0 {
				break
			}
			charOff += utf8.RuneCountInString(lineStr[byteOff : byteOff+rel])
			start := rope.RelChar(charOff)
			n := utf8.RuneCountInString(pattern)
			state.matches[i].Spans = append(state.matches[i].Spans, Span{
				Start: start,
				End:   start + rope.RelChar(n),
			})
			charOff += n
			byteOff += rel + len(pattern)
		}
	}

	b.search = state
}

// SearchState returns the current search state, or nil.
func (b *Buffer) SearchState() *SearchState {
	return b.search
}

// ClearSearch drops the search state.
func (b *Buffer) ClearSearch() {
	b.search = nil
}
