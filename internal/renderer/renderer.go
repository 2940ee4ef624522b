// Package renderer paints the editor state onto a terminal with tcell.
// One text line maps to one terminal row and one grapheme cluster to
// one cell, which keeps cursor math and layout math identical.
package renderer

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dmorey/caret/internal/app"
	"github.com/dmorey/caret/internal/engine/buffer"
	"github.com/dmorey/caret/internal/engine/pane"
	"github.com/dmorey/caret/internal/overlay"
	"github.com/dmorey/caret/internal/rope"
)

var (
	styleDefault = tcell.StyleDefault
	styleStatus  = tcell.StyleDefault.Reverse(true)
	styleMatch   = tcell.StyleDefault.Reverse(true)
	stylePrompt  = tcell.StyleDefault.Bold(true)
	styleFaint   = tcell.StyleDefault.Dim(true)
)

// Terminal owns the tcell screen.
type Terminal struct {
	screen tcell.Screen
}

// NewTerminal initializes the terminal screen.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return &Terminal{screen: screen}, nil
}

// Fini restores the terminal. Must run before process exit.
func (t *Terminal) Fini() {
	t.screen.Fini()
}

// Size returns the screen size in cells.
func (t *Terminal) Size() (int, int) {
	return t.screen.Size()
}

// ChannelEvents forwards terminal events to ch until quit closes.
func (t *Terminal) ChannelEvents(ch chan<- tcell.Event, quit <-chan struct{}) {
	t.screen.ChannelEvents(ch, quit)
}

// Draw repaints the whole screen from the editor state.
func (t *Terminal) Draw(st *app.State) {
	t.screen.Clear()

	for _, p := range st.PaneTree().Panes() {
		t.drawPane(st, p)
	}

	if o := st.Overlay(); o != nil {
		t.drawOverlay(o)
	} else {
		p := st.PaneTree().Active()
		if buf, ok := st.Buffer(p.BufferID()); ok {
			t.placeCursor(p, buf)
		}
	}

	t.screen.Show()
}

func (t *Terminal) drawPane(st *app.State, p *pane.Pane) {
	buf, ok := st.Buffer(p.BufferID())
	if !ok {
		return
	}
	r := p.Rect()
	x0, y0 := int(r.X), int(r.Y)
	width, height := int(r.Width), int(r.Height)
	if width < 1 || height < 1 {
		return
	}

	// The last row of every pane is its status line.
	textRows := height - 1

	search := buf.SearchState()
	row := 0
	iter := buf.Text().LinesAt(p.TopLine())
	for iter.Next() && row < textRows {
		item := iter.Item()
		var matches *buffer.LineMatches
		if search != nil {
			matches = search.LineMatches(p.ID(), item.Index)
		}
		t.drawLine(x0, y0+row, width, item.Slice, matches)
		row++
	}

	t.drawStatusLine(p, buf, x0, y0+height-1, width)
}

// drawLine paints one text line, one grapheme cluster per cell. The
// trailing newline is never drawn. Cells inside a search match render
// reversed.
func (t *Terminal) drawLine(x0, y int, width int, line rope.Slice, matches *buffer.LineMatches) {
	text := line.String()
	if n := len(text); n > 0 && text[n-1] == '\n' {
		text = text[:n-1]
	}

	col := 0
	runeOffset := rope.RelChar(0)
	state := -1
	for len(text) > 0 && col < width {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		runes := []rune(cluster)

		style := styleDefault
		if matches != nil {
			for _, span := range matches.Spans {
				if runeOffset >= span.Start && runeOffset < span.End {
					style = styleMatch
					break
				}
			}
		}
		t.screen.SetContent(x0+col, y, runes[0], runes[1:], style)
		col++
		runeOffset += rope.RelChar(len(runes))
	}
}

func (t *Terminal) drawStatusLine(p *pane.Pane, buf *buffer.Buffer, x0, y, width int) {
	name := buf.Path()
	if name == "" {
		name = "*scratch*"
	}
	pos := buffer.LinePositionFromAbsChar(buf.Cursor(p.ID()), buf)
	text := fmt.Sprintf(" %s  %d:%d", name, int(pos.Line)+1, pos.GraphemeOffset(buf)+1)

	style := styleStatus
	if !p.IsActive() {
		style = styleStatus.Dim(true)
	}
	t.drawText(x0, y, width, text, style)
	for col := len([]rune(text)); col < width; col++ {
		t.screen.SetContent(x0+col, y, ' ', nil, style)
	}
}

// drawOverlay paints the overlay across the top of the screen: prompt,
// input line, then suggestions. The hardware cursor moves to the input
// line.
func (t *Terminal) drawOverlay(o *overlay.Overlay) {
	width, _ := t.screen.Size()

	t.fillRow(0, width, stylePrompt)
	t.drawText(0, 0, width, o.Prompt(), stylePrompt)

	t.fillRow(1, width, styleDefault)
	t.drawText(0, 1, width, o.Text(), styleDefault)

	t.fillRow(2, width, styleFaint)
	var line string
	for i, s := range o.Suggestions() {
		if i > 0 {
			line += "  "
		}
		line += s
	}
	t.drawText(0, 2, width, line, styleFaint)

	buf := o.Buffer()
	pos := buffer.LinePositionFromAbsChar(buf.Cursor(o.Pane().ID()), buf)
	t.screen.ShowCursor(pos.GraphemeOffset(buf), 1)
}

func (t *Terminal) fillRow(y, width int, style tcell.Style) {
	for x := 0; x < width; x++ {
		t.screen.SetContent(x, y, ' ', nil, style)
	}
}

func (t *Terminal) drawText(x0, y, width int, text string, style tcell.Style) {
	col := 0
	state := -1
	for len(text) > 0 && col < width {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		runes := []rune(cluster)
		t.screen.SetContent(x0+col, y, runes[0], runes[1:], style)
		col++
	}
}

// placeCursor shows the hardware cursor at the active pane's cursor
// position, hiding it when the cursor is scrolled out of view.
func (t *Terminal) placeCursor(p *pane.Pane, buf *buffer.Buffer) {
	r := p.Rect()
	pos := buffer.LinePositionFromAbsChar(buf.Cursor(p.ID()), buf)

	row := int(pos.Line) - int(p.TopLine())
	if row < 0 || row >= int(r.Height)-1 {
		t.screen.HideCursor()
		return
	}
	t.screen.ShowCursor(int(r.X)+pos.GraphemeOffset(buf), int(r.Y)+row)
}
