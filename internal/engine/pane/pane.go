// Package pane implements the pane tree: the recursive split layout
// that maps screen space to buffers. Leaves are panes showing one
// buffer each; internal nodes stack their children horizontally or
// vertically. Exactly one leaf is active at any time.
package pane

import (
	"github.com/dmorey/caret/internal/engine/buffer"
	"github.com/dmorey/caret/internal/engine/id"
	"github.com/dmorey/caret/internal/rope"
)

// Orientation is the stacking axis of an internal node.
type Orientation uint8

const (
	// Horizontal lays children out side by side, dividing width.
	Horizontal Orientation = iota
	// Vertical lays children out top to bottom, dividing height.
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Rect is a pane's screen-space rectangle.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Pane is one leaf of the tree: a viewport onto a buffer.
type Pane struct {
	id       id.Pane
	bufferID id.Buffer
	rect     Rect
	topLine  rope.AbsLine
	active   bool
}

// ID returns the pane's identifier.
func (p *Pane) ID() id.Pane {
	return p.id
}

// BufferID returns the id of the buffer the pane displays.
func (p *Pane) BufferID() id.Buffer {
	return p.bufferID
}

// Rect returns the pane's most recently computed rectangle.
func (p *Pane) Rect() Rect {
	return p.rect
}

// TopLine returns the first visible line.
func (p *Pane) TopLine() rope.AbsLine {
	return p.topLine
}

// SetTopLine scrolls the pane so that line is the first visible one.
func (p *Pane) SetTopLine(line rope.AbsLine) {
	p.topLine = line
}

// IsActive reports whether this pane has input focus.
func (p *Pane) IsActive() bool {
	return p.active
}

// SwitchBuffer repoints the pane at a different buffer. The pane's
// cursor entry moves with it: removed from the old buffer, created at
// zero in the new one. This is the only sanctioned way a pane changes
// buffers.
func (p *Pane) SwitchBuffer(buffers map[id.Buffer]*buffer.Buffer, newID id.Buffer) {
	if old, ok := buffers[p.bufferID]; ok {
		old.RemoveCursor(p.id)
	}
	p.bufferID = newID
	if next, ok := buffers[newID]; ok {
		next.SetCursor(p.id, 0)
	}
}

// NewWidgetPane returns a standalone pane for overlay widgets. It is
// not part of any tree; the overlay owns it and lays it out directly.
func NewWidgetPane(bufferID id.Buffer) *Pane {
	return &Pane{
		id:       id.NewPane(),
		bufferID: bufferID,
		active:   true,
	}
}

// SetRect places the pane. Only overlay widget panes are positioned
// directly; tree panes get their rects from RecalcLayout.
func (p *Pane) SetRect(r Rect) {
	p.rect = r
}

// MaybeRescroll adjusts the pane's top line so the cursor stays within
// the visible window. lineHeight must be positive.
func (p *Pane) MaybeRescroll(buf *buffer.Buffer, cursor rope.AbsChar, lineHeight float64) {
	visible := int(p.rect.Height / lineHeight)
	if visible < 1 {
		visible = 1
	}

	line := buf.Text().CharToLine(cursor)
	if line < p.topLine {
		p.topLine = line
	} else if line >= p.topLine+rope.AbsLine(visible) {
		p.topLine = line - rope.AbsLine(visible) + 1
	}
}

// node is either a leaf holding a pane or an internal node holding two
// or more children.
type node struct {
	orientation Orientation
	children    []*node
	pane        *Pane
}

func (n *node) isLeaf() bool {
	return n.pane != nil
}

// Tree is the pane tree. A fresh tree is a single active leaf.
type Tree struct {
	root *node
}

// NewTree returns a tree with one active pane showing the given
// buffer.
func NewTree(bufferID id.Buffer) *Tree {
	return &Tree{root: &node{pane: &Pane{
		id:       id.NewPane(),
		bufferID: bufferID,
		active:   true,
	}}}
}

// Panes returns the leaves in depth-first order, which is also the
// cyclic order used by pane navigation.
func (t *Tree) Panes() []*Pane {
	var out []*Pane
	var walk func(*node)
	walk = func(n *node) {
		if n.isLeaf() {
			out = append(out, n.pane)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	return out
}

// Active returns the active pane.
func (t *Tree) Active() *Pane {
	for _, p := range t.Panes() {
		if p.active {
			return p
		}
	}
	panic("pane tree has no active pane")
}

// MakeNextActive moves focus to the next pane in depth-first order,
// wrapping at the end.
func (t *Tree) MakeNextActive() {
	t.shiftActive(1)
}

// MakePreviousActive moves focus to the previous pane in depth-first
// order, wrapping at the start.
func (t *Tree) MakePreviousActive() {
	t.shiftActive(-1)
}

func (t *Tree) shiftActive(delta int) {
	panes := t.Panes()
	for i, p := range panes {
		if p.active {
			p.active = false
			panes[(i+delta+len(panes))%len(panes)].active = true
			return
		}
	}
}

// Split divides the active pane, adding a new inactive pane showing
// the same buffer with the same scroll position. The new pane is
// returned so the caller can register its cursor.
//
// Tree shape: when the active leaf's parent already stacks in the
// requested orientation the new leaf joins that flat child list right
// after the active leaf. A single-child parent adopts the requested
// orientation instead of nesting. Otherwise the two leaves are wrapped
// in a new internal node.
func (t *Tree) Split(orientation Orientation) *Pane {
	active := t.Active()
	newPane := &Pane{
		id:       id.NewPane(),
		bufferID: active.bufferID,
		rect:     active.rect,
		topLine:  active.topLine,
	}

	single, pair := splitNode(t.root, orientation, active.id, newPane)
	if pair != nil {
		// The root itself was the active leaf.
		t.root = &node{orientation: orientation, children: pair}
	} else {
		t.root = single
	}
	return newPane
}

// splitNode returns either the (possibly rebuilt) node, or the pair of
// nodes the caller should splice in where the node used to be.
func splitNode(n *node, orientation Orientation, activeID id.Pane, newPane *Pane) (*node, []*node) {
	if n.isLeaf() {
		if n.pane.id == activeID {
			return nil, []*node{n, {pane: newPane}}
		}
		return n, nil
	}

	newOrientation := n.orientation
	var newChildren []*node
	for _, child := range n.children {
		single, pair := splitNode(child, orientation, activeID, newPane)
		if pair == nil {
			newChildren = append(newChildren, single)
			continue
		}
		if len(n.children) == 1 {
			newOrientation = orientation
		}
		if orientation == newOrientation {
			newChildren = append(newChildren, pair...)
		} else {
			newChildren = append(newChildren, &node{
				orientation: orientation,
				children:    pair,
			})
		}
	}
	n.children = newChildren
	n.orientation = newOrientation
	return n, nil
}

// CloseActive removes the active pane and returns it. Closing the last
// remaining pane is rejected by returning nil. After a close the first
// pane in depth-first order becomes active.
func (t *Tree) CloseActive() *Pane {
	if t.root.isLeaf() {
		return nil
	}

	closed := t.Active()
	t.root = removeLeaf(t.root, closed.id)
	if t.root == nil {
		// Unreachable: the root had at least two leaves.
		panic("pane tree emptied by close")
	}

	panes := t.Panes()
	for _, p := range panes {
		p.active = false
	}
	panes[0].active = true
	return closed
}

// removeLeaf drops the leaf with the given id, collapsing any internal
// node left with a single child. Returns nil when n itself was the
// removed leaf.
func removeLeaf(n *node, paneID id.Pane) *node {
	if n.isLeaf() {
		if n.pane.id == paneID {
			return nil
		}
		return n
	}

	var kept []*node
	for _, child := range n.children {
		if replacement := removeLeaf(child, paneID); replacement != nil {
			kept = append(kept, replacement)
		}
	}
	n.children = kept
	if len(kept) == 1 {
		return kept[0]
	}
	return n
}

// RecalcLayout recomputes every pane's rectangle within the given
// total size. Horizontal nodes divide width evenly left to right,
// vertical nodes divide height evenly top to bottom.
func (t *Tree) RecalcLayout(width, height float64) {
	recalcNode(t.root, Rect{Width: width, Height: height})
}

func recalcNode(n *node, rect Rect) {
	if n.isLeaf() {
		n.pane.rect = rect
		return
	}

	count := float64(len(n.children))
	switch n.orientation {
	case Horizontal:
		w := rect.Width / count
		x := rect.X
		for _, child := range n.children {
			recalcNode(child, Rect{X: x, Y: rect.Y, Width: w, Height: rect.Height})
			x += w
		}
	case Vertical:
		h := rect.Height / count
		y := rect.Y
		for _, child := range n.children {
			recalcNode(child, Rect{X: rect.X, Y: y, Width: rect.Width, Height: h})
			y += h
		}
	}
}
