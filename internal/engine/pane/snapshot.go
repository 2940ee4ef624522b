package pane

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmorey/caret/internal/engine/id"
	"github.com/dmorey/caret/internal/rope"
)

// nodeSnapshot is the persisted shape of one tree node. Internal nodes
// carry orientation and children; leaves carry the pane and buffer
// ids, the active flag, and the scroll position.
type nodeSnapshot struct {
	Orientation string         `json:"orientation,omitempty"`
	Children    []nodeSnapshot `json:"children,omitempty"`

	PaneID   string `json:"pane_id,omitempty"`
	BufferID string `json:"buffer_id,omitempty"`
	Active   bool   `json:"active,omitempty"`
	TopLine  int    `json:"top_line,omitempty"`
}

// ErrEmptySnapshot reports a snapshot with no leaves.
var ErrEmptySnapshot = errors.New("pane tree snapshot has no panes")

// Serialize encodes the tree as JSON for the persistence store.
func (t *Tree) Serialize() ([]byte, error) {
	snap := snapshotNode(t.root)
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("serialize pane tree: %w", err)
	}
	return data, nil
}

func snapshotNode(n *node) nodeSnapshot {
	if n.isLeaf() {
		return nodeSnapshot{
			PaneID:   string(n.pane.id),
			BufferID: string(n.pane.bufferID),
			Active:   n.pane.active,
			TopLine:  int(n.pane.topLine),
		}
	}
	snap := nodeSnapshot{Orientation: n.orientation.String()}
	for _, c := range n.children {
		snap.Children = append(snap.Children, snapshotNode(c))
	}
	return snap
}

// LoadTree rebuilds a tree from a serialized snapshot. Leaves whose
// buffer no longer exists are redirected to the scratch buffer.
// Exactly one leaf ends up active regardless of what the snapshot
// says. Unknown or missing orientation defaults to horizontal.
func LoadTree(data []byte, exists func(id.Buffer) bool, scratch id.Buffer) (*Tree, error) {
	var snap nodeSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse pane tree snapshot: %w", err)
	}

	root := restoreNode(snap, exists, scratch)
	if root == nil {
		return nil, ErrEmptySnapshot
	}

	tree := &Tree{root: root}
	active := 0
	for _, p := range tree.Panes() {
		if p.active {
			active++
			if active > 1 {
				p.active = false
			}
		}
	}
	if active == 0 {
		tree.Panes()[0].active = true
	}
	return tree, nil
}

func restoreNode(snap nodeSnapshot, exists func(id.Buffer) bool, scratch id.Buffer) *node {
	if len(snap.Children) == 0 {
		bufID := id.Buffer(snap.BufferID)
		if !exists(bufID) {
			bufID = scratch
		}
		paneID := id.Pane(snap.PaneID)
		if paneID == "" {
			paneID = id.NewPane()
		}
		topLine := snap.TopLine
		if topLine < 0 {
			topLine = 0
		}
		return &node{pane: &Pane{
			id:       paneID,
			bufferID: bufID,
			topLine:  rope.AbsLine(topLine),
			active:   snap.Active,
		}}
	}

	orientation := Horizontal
	if snap.Orientation == "vertical" {
		orientation = Vertical
	}
	n := &node{orientation: orientation}
	for _, child := range snap.Children {
		if restored := restoreNode(child, exists, scratch); restored != nil {
			n.children = append(n.children, restored)
		}
	}
	switch len(n.children) {
	case 0:
		return nil
	case 1:
		return n.children[0]
	}
	return n
}
