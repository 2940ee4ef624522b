// Package buffer implements the text buffer: rope-backed content with
// snapshot undo history, per-pane cursors, named markers, movement and
// boundary finding, and incremental search over the visible window.
package buffer

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dmorey/caret/internal/engine/id"
	"github.com/dmorey/caret/internal/grapheme"
	"github.com/dmorey/caret/internal/rope"
)

// Marker names with movement semantics: the cursor never crosses a
// prompt-end marker backward or a completion-start marker forward.
// Callers fencing off part of a buffer set these with SetMarker.
const (
	MarkerPromptEnd       = "prompt_end"
	MarkerCompletionStart = "completion_start"
)

// Direction orients a movement or deletion.
type Direction uint8

const (
	Backward Direction = iota
	Forward
)

// Boundary names a kind of stopping point for movement and deletion.
type Boundary uint8

const (
	Grapheme Boundary = iota
	LineEnd
	BufferEnd
)

// MoveKind distinguishes the three movement families.
type MoveKind uint8

const (
	MoveBoundary MoveKind = iota
	MoveLine
	MovePage
)

// Move describes one cursor movement step. Boundary is meaningful only
// when Kind is MoveBoundary.
type Move struct {
	Kind     MoveKind
	Boundary Boundary
}

// BoundaryMove is shorthand for a boundary movement step.
func BoundaryMove(b Boundary) Move {
	return Move{Kind: MoveBoundary, Boundary: b}
}

// actionKind classifies edits for undo grouping. Consecutive edits of
// the same kind merge into one history item; kindNone never merges.
type actionKind uint8

const (
	kindNone actionKind = iota
	kindClear
	kindInsertChar
	kindDeletion
)

// CursorMap holds the cursor of each pane displaying a buffer.
type CursorMap map[id.Pane]rope.AbsChar

// historyItem is one undo snapshot: the full text plus the cursor and
// marker state that goes with it.
type historyItem struct {
	text    rope.Rope
	markers map[string]rope.AbsChar
	cursors CursorMap
}

func (h historyItem) clone() historyItem {
	markers := make(map[string]rope.AbsChar, len(h.markers))
	for k, v := range h.markers {
		markers[k] = v
	}
	cursors := make(CursorMap, len(h.cursors))
	for k, v := range h.cursors {
		cursors[k] = v
	}
	return historyItem{text: h.text, markers: markers, cursors: cursors}
}

// Buffer is a single editable text. All mutating methods operate on the
// newest history item; editing after an undo first discards the undone
// future.
type Buffer struct {
	id   id.Buffer
	path string

	history     []historyItem
	activeIndex int
	lastAction  actionKind

	search *SearchState
	styles []StyleSpan
}

func newBuffer(bufID id.Buffer, text rope.Rope, path string) *Buffer {
	return &Buffer{
		id:   bufID,
		path: path,
		history: []historyItem{{
			text:    text,
			markers: make(map[string]rope.AbsChar),
			cursors: make(CursorMap),
		}},
	}
}

// NewEmpty returns an empty buffer with no associated path.
func NewEmpty() *Buffer {
	return newBuffer(id.NewBuffer(), *rope.New(), "")
}

// NewWithID returns an empty pathless buffer with a caller-chosen
// identifier. Used when restoring a persisted session.
func NewWithID(bufID id.Buffer) *Buffer {
	return newBuffer(bufID, *rope.New(), "")
}

// FromPath reads the file at path into a new buffer.
func FromPath(path string) (*Buffer, error) {
	return fromPath(id.NewBuffer(), path)
}

// FromPathWithID is FromPath with a caller-chosen identifier. Used when
// restoring a persisted session, where pane snapshots refer to buffers
// by their old ids.
func FromPathWithID(bufID id.Buffer, path string) (*Buffer, error) {
	return fromPath(bufID, path)
}

func fromPath(bufID id.Buffer, path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open buffer file: %w", err)
	}
	defer f.Close()

	text, err := rope.FromReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read buffer file %s: %w", path, err)
	}
	return newBuffer(bufID, *text, path), nil
}

// ID returns the buffer's identifier.
func (b *Buffer) ID() id.Buffer {
	return b.id
}

// Path returns the file path backing the buffer, or "" for scratch and
// overlay buffers.
func (b *Buffer) Path() string {
	return b.path
}

// SetPath associates the buffer with a file path.
func (b *Buffer) SetPath(path string) {
	b.path = path
}

// Text returns the active text snapshot.
func (b *Buffer) Text() *rope.Rope {
	return &b.history[b.activeIndex].text
}

func (b *Buffer) active() *historyItem {
	return &b.history[b.activeIndex]
}

// Cursor returns the cursor position of the given pane. The pane must
// have been registered with SetCursor.
func (b *Buffer) Cursor(paneID id.Pane) rope.AbsChar {
	pos, ok := b.active().cursors[paneID]
	if !ok {
		panic(fmt.Sprintf("no cursor for pane %s in buffer %s", paneID, b.id))
	}
	return pos
}

// Cursors returns the cursor map of the active snapshot.
func (b *Buffer) Cursors() CursorMap {
	return b.active().cursors
}

// SetCursor places the cursor of a pane. This also registers a cursor
// for a pane newly displaying the buffer. Cursor motion is not
// undoable, but it breaks undo grouping: insert, move, insert yields
// two history items rather than one.
func (b *Buffer) SetCursor(paneID id.Pane, pos rope.AbsChar) {
	b.lastAction = kindNone
	b.active().cursors[paneID] = pos
}

// RemoveCursor drops a pane's cursor from every history item. Called
// when a pane closes or switches to another buffer.
func (b *Buffer) RemoveCursor(paneID id.Pane) {
	for i := range b.history {
		delete(b.history[i].cursors, paneID)
	}
}

// Marker returns the named marker position, if set.
func (b *Buffer) Marker(name string) (rope.AbsChar, bool) {
	pos, ok := b.active().markers[name]
	return pos, ok
}

// SetMarker places a named marker in the active snapshot.
func (b *Buffer) SetMarker(name string, pos rope.AbsChar) {
	b.active().markers[name] = pos
}

// maybeSnapshot prepares the history for an edit of the given kind.
// Editing while undone truncates the future first. A new snapshot is
// pushed unless the edit merges with the previous one.
func (b *Buffer) maybeSnapshot(kind actionKind) {
	if b.activeIndex != len(b.history)-1 {
		b.history = b.history[:b.activeIndex+1]
		b.lastAction = kindNone
	}

	if b.lastAction != kind || kind == kindNone {
		b.history = append(b.history, b.history[len(b.history)-1].clone())
		b.activeIndex = len(b.history) - 1
		b.lastAction = kind
	}
}

// Undo steps to the previous history item. At the oldest item it does
// nothing.
func (b *Buffer) Undo() {
	if b.activeIndex > 0 {
		b.activeIndex--
		b.styles = nil
	}
	b.lastAction = kindNone
}

// Redo steps to the next history item. At the newest item it does
// nothing.
func (b *Buffer) Redo() {
	if b.activeIndex+1 < len(b.history) {
		b.activeIndex++
		b.styles = nil
	}
	b.lastAction = kindNone
}

// InsertRune inserts one character at pos. Consecutive insertions merge
// into a single undo item. Every cursor at or after pos advances by
// one.
func (b *Buffer) InsertRune(r rune, pos rope.AbsChar) {
	b.insertText(string(r), pos, kindInsertChar)
}

// InsertString inserts text at pos as a single undoable edit.
func (b *Buffer) InsertString(text string, pos rope.AbsChar) {
	b.insertText(text, pos, kindNone)
}

func (b *Buffer) insertText(text string, pos rope.AbsChar, kind actionKind) {
	b.maybeSnapshot(kind)
	b.styles = nil

	item := b.active()
	item.text.InsertString(pos, text)

	n := rope.AbsChar(len([]rune(text)))
	for paneID, cursor := range item.cursors {
		if cursor >= pos {
			item.cursors[paneID] = cursor + n
		}
	}
	// Strictly-after only: a marker at the insertion point fences the
	// text before it and must not follow the new text.
	for name, marker := range item.markers {
		if marker > pos {
			item.markers[name] = marker + n
		}
	}
}

// DeleteText removes the range [start, end). Cursors inside the range
// collapse to start; cursors at or past end shift left by the deleted
// length.
func (b *Buffer) DeleteText(start, end rope.AbsChar) {
	if start >= end {
		return
	}
	b.maybeSnapshot(kindDeletion)
	b.styles = nil

	item := b.active()
	item.text.Remove(start, end)

	n := end - start
	adjust := func(pos rope.AbsChar) rope.AbsChar {
		switch {
		case pos >= start && pos < end:
			return start
		case pos >= end:
			return pos - n
		}
		return pos
	}
	for paneID, cursor := range item.cursors {
		item.cursors[paneID] = adjust(cursor)
	}
	for name, marker := range item.markers {
		item.markers[name] = adjust(marker)
	}
}

// SetText replaces the whole content as one undoable edit. Cursors past
// the new end clamp to the end; markers are cleared.
func (b *Buffer) SetText(text string) {
	b.maybeSnapshot(kindNone)
	b.styles = nil

	item := b.active()
	item.text = *rope.FromString(text)
	item.markers = make(map[string]rope.AbsChar)

	end := rope.AbsChar(item.text.LenChars())
	for paneID, cursor := range item.cursors {
		if cursor > end {
			item.cursors[paneID] = end
		}
	}
}

// Clear removes all text as one undoable edit and rewinds every cursor
// to the start.
func (b *Buffer) Clear() {
	b.maybeSnapshot(kindClear)
	b.styles = nil

	item := b.active()
	item.text = *rope.New()
	item.markers = make(map[string]rope.AbsChar)
	for paneID := range item.cursors {
		item.cursors[paneID] = 0
	}
}

// Append adds text at the end of the buffer without creating an undo
// item. Used for streamed subprocess output. Output lands on the
// active snapshot, so it stays visible even after an undo. Cursors
// sitting at the end follow the appended text.
func (b *Buffer) Append(text string) {
	b.styles = nil
	item := b.active()
	pos := rope.AbsChar(item.text.LenChars())
	item.text.InsertString(pos, text)

	n := rope.AbsChar(len([]rune(text)))
	for paneID, cursor := range item.cursors {
		if cursor >= pos {
			item.cursors[paneID] = cursor + n
		}
	}
}

// FindBoundary returns the position of the nearest boundary of the
// given kind from pos in the given direction.
func (b *Buffer) FindBoundary(pos rope.AbsChar, boundary Boundary, dir Direction) rope.AbsChar {
	text := b.Text()
	switch boundary {
	case Grapheme:
		whole := text.WholeSlice()
		if dir == Backward {
			return rope.AbsChar(grapheme.PrevBoundary(whole, rope.RelChar(pos)))
		}
		return rope.AbsChar(grapheme.NextBoundary(whole, rope.RelChar(pos)))

	case LineEnd:
		lp := LinePositionFromAbsChar(pos, b)
		if dir == Backward {
			lp.Offset = 0
		} else {
			line := text.Line(lp.Line)
			// The final line may lack a trailing newline; stop before
			// the terminator when there is one.
			n := line.LenChars()
			if s := line.String(); len(s) > 0 && s[len(s)-1] == '\n' {
				n--
			}
			lp.Offset = rope.RelChar(n)
		}
		return lp.ToAbsChar(b)

	case BufferEnd:
		if dir == Backward {
			return 0
		}
		return rope.AbsChar(text.LenChars())
	}
	return pos
}

// MoveCursor applies one movement step to a pane's cursor. Line and
// page movement preserve the horizontal position in graphemes rather
// than chars so the cursor stays visually aligned over multi-char
// clusters. pageLines is the page size in lines and only matters for
// MovePage.
//
// The cursor never moves before a prompt-end marker or after a
// completion-start marker.
func (b *Buffer) MoveCursor(paneID id.Pane, step Move, dir Direction, pageLines int) {
	cursor := b.Cursor(paneID)

	switch step.Kind {
	case MoveBoundary:
		cursor = b.FindBoundary(cursor, step.Boundary, dir)
	case MoveLine, MovePage:
		lines := rope.RelLine(1)
		if step.Kind == MovePage {
			lines = rope.RelLine(pageLines)
		}

		lp := LinePositionFromAbsChar(cursor, b)
		graphemes := lp.GraphemeOffset(b)
		if dir == Backward {
			lp.Line = lp.Line.SaturatingSub(lines)
		} else {
			lp.Line = lp.Line.Add(lines)
			if max := b.Text().MaxLineIndex(); lp.Line > max {
				lp.Line = max
			}
		}
		lp.SetOffsetInGraphemes(b, graphemes)
		cursor = lp.ToAbsChar(b)
	}

	if promptEnd, ok := b.Marker(MarkerPromptEnd); ok && cursor < promptEnd {
		cursor = promptEnd
	}
	if complStart, ok := b.Marker(MarkerCompletionStart); ok && cursor > complStart {
		cursor = complStart
	}

	b.SetCursor(paneID, cursor)
}
