package pane

import (
	"testing"

	"github.com/dmorey/caret/internal/engine/buffer"
	"github.com/dmorey/caret/internal/engine/id"
)

func activeCount(t *Tree) int {
	n := 0
	for _, p := range t.Panes() {
		if p.IsActive() {
			n++
		}
	}
	return n
}

func TestSplitAddsOneLeafAndKeepsOneActive(t *testing.T) {
	tree := NewTree(id.NewBuffer())
	if got := len(tree.Panes()); got != 1 {
		t.Fatalf("fresh tree has %d panes, want 1", got)
	}

	before := len(tree.Panes())
	newPane := tree.Split(Horizontal)
	if got := len(tree.Panes()); got != before+1 {
		t.Errorf("panes after split = %d, want %d", got, before+1)
	}
	if activeCount(tree) != 1 {
		t.Errorf("active panes = %d, want 1", activeCount(tree))
	}
	if newPane.IsActive() {
		t.Error("new pane should start inactive")
	}
	if newPane.BufferID() != tree.Active().BufferID() {
		t.Error("new pane should show the active pane's buffer")
	}
}

func TestSplitSameOrientationStaysFlat(t *testing.T) {
	tree := NewTree(id.NewBuffer())
	tree.Split(Horizontal)
	tree.Split(Horizontal)

	if got := len(tree.Panes()); got != 3 {
		t.Fatalf("panes = %d, want 3", got)
	}
	// A flat three-way horizontal split divides width in thirds; a
	// nested split would give 1/2 and two 1/4s.
	tree.RecalcLayout(900, 300)
	for i, p := range tree.Panes() {
		if p.Rect().Width != 300 {
			t.Errorf("pane %d width = %v, want 300", i, p.Rect().Width)
		}
	}
}

func TestSplitMixedOrientationNests(t *testing.T) {
	tree := NewTree(id.NewBuffer())
	tree.Split(Horizontal)
	tree.Split(Vertical)

	tree.RecalcLayout(800, 600)
	panes := tree.Panes()
	if len(panes) != 3 {
		t.Fatalf("panes = %d, want 3", len(panes))
	}

	// The active (first) pane was split vertically inside the left
	// half: two quarter-height... rather two half-height halves of the
	// left column, plus the untouched right half.
	active := tree.Active()
	if active.Rect().Width != 400 || active.Rect().Height != 300 {
		t.Errorf("active rect = %+v, want 400x300", active.Rect())
	}
}

func TestSplitThenLayoutHalves(t *testing.T) {
	tree := NewTree(id.NewBuffer())
	tree.Split(Horizontal)
	tree.RecalcLayout(800, 800)

	panes := tree.Panes()
	if len(panes) != 2 {
		t.Fatalf("panes = %d, want 2", len(panes))
	}
	for i, p := range panes {
		r := p.Rect()
		if r.Width != 400 || r.Height != 800 {
			t.Errorf("pane %d rect = %+v, want width 400 height 800", i, r)
		}
	}
	if panes[0].Rect().X == panes[1].Rect().X {
		t.Error("side-by-side panes should not overlap")
	}
}

func TestVerticalLayoutDividesHeight(t *testing.T) {
	tree := NewTree(id.NewBuffer())
	tree.Split(Vertical)
	tree.RecalcLayout(800, 600)

	for i, p := range tree.Panes() {
		r := p.Rect()
		if r.Width != 800 || r.Height != 300 {
			t.Errorf("pane %d rect = %+v, want width 800 height 300", i, r)
		}
	}
}

func TestNavigationWrapsCyclically(t *testing.T) {
	tree := NewTree(id.NewBuffer())
	tree.Split(Horizontal)
	tree.Split(Horizontal)

	first := tree.Active().ID()
	tree.MakeNextActive()
	second := tree.Active().ID()
	if second == first {
		t.Fatal("next should change the active pane")
	}
	tree.MakeNextActive()
	tree.MakeNextActive()
	if got := tree.Active().ID(); got != first {
		t.Errorf("three nexts over three panes should wrap to the start")
	}

	tree.MakePreviousActive()
	if got := tree.Active().ID(); got == first {
		t.Error("previous from the first pane should wrap to the last")
	}
	if activeCount(tree) != 1 {
		t.Errorf("active panes = %d, want 1", activeCount(tree))
	}
}

func TestCloseActiveCollapses(t *testing.T) {
	tree := NewTree(id.NewBuffer())
	tree.Split(Horizontal)
	tree.Split(Vertical)

	closed := tree.CloseActive()
	if closed == nil {
		t.Fatal("close should succeed with more than one pane")
	}
	if got := len(tree.Panes()); got != 2 {
		t.Errorf("panes after close = %d, want 2", got)
	}
	if activeCount(tree) != 1 {
		t.Errorf("active panes = %d, want 1", activeCount(tree))
	}

	// The nested vertical node lost a child and must have collapsed:
	// layout divides the full width between the two remaining panes.
	tree.RecalcLayout(800, 600)
	for i, p := range tree.Panes() {
		if p.Rect().Width != 400 {
			t.Errorf("pane %d width = %v, want 400", i, p.Rect().Width)
		}
	}
}

func TestCloseLastPaneRejected(t *testing.T) {
	tree := NewTree(id.NewBuffer())
	if closed := tree.CloseActive(); closed != nil {
		t.Error("closing the only pane should be rejected")
	}
	if got := len(tree.Panes()); got != 1 {
		t.Errorf("panes = %d, want 1", got)
	}
}

func TestSwitchBufferMovesCursorEntry(t *testing.T) {
	bufA := buffer.NewEmpty()
	bufB := buffer.NewEmpty()
	buffers := map[id.Buffer]*buffer.Buffer{
		bufA.ID(): bufA,
		bufB.ID(): bufB,
	}

	tree := NewTree(bufA.ID())
	p := tree.Active()
	bufA.SetCursor(p.ID(), 0)

	p.SwitchBuffer(buffers, bufB.ID())

	if p.BufferID() != bufB.ID() {
		t.Errorf("pane buffer = %s, want %s", p.BufferID(), bufB.ID())
	}
	if _, ok := bufA.Cursors()[p.ID()]; ok {
		t.Error("old buffer should no longer track the pane's cursor")
	}
	if got, ok := bufB.Cursors()[p.ID()]; !ok || got != 0 {
		t.Errorf("new buffer cursor = %v (present=%v), want 0", got, ok)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	bufID := id.NewBuffer()
	tree := NewTree(bufID)
	tree.Split(Horizontal)
	tree.Split(Vertical)
	tree.Active().SetTopLine(7)

	data, err := tree.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	restored, err := LoadTree(data, func(id.Buffer) bool { return true }, bufID)
	if err != nil {
		t.Fatal(err)
	}

	origPanes := tree.Panes()
	gotPanes := restored.Panes()
	if len(gotPanes) != len(origPanes) {
		t.Fatalf("restored %d panes, want %d", len(gotPanes), len(origPanes))
	}
	for i := range origPanes {
		if gotPanes[i].ID() != origPanes[i].ID() {
			t.Errorf("pane %d id changed across round trip", i)
		}
		if gotPanes[i].TopLine() != origPanes[i].TopLine() {
			t.Errorf("pane %d top line = %d, want %d", i, gotPanes[i].TopLine(), origPanes[i].TopLine())
		}
	}
	if restored.Active().ID() != tree.Active().ID() {
		t.Error("active pane changed across round trip")
	}

	// Layout after restore matches layout before.
	tree.RecalcLayout(800, 600)
	restored.RecalcLayout(800, 600)
	for i := range origPanes {
		if gotPanes[i].Rect() != origPanes[i].Rect() {
			t.Errorf("pane %d rect = %+v, want %+v", i, gotPanes[i].Rect(), origPanes[i].Rect())
		}
	}
}

func TestLoadRedirectsMissingBuffers(t *testing.T) {
	gone := id.NewBuffer()
	scratch := id.NewBuffer()
	tree := NewTree(gone)
	tree.Split(Horizontal)

	data, err := tree.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	restored, err := LoadTree(data, func(b id.Buffer) bool { return b == scratch }, scratch)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range restored.Panes() {
		if p.BufferID() != scratch {
			t.Errorf("pane %d buffer = %s, want scratch", i, p.BufferID())
		}
	}
}

func TestLoadRestoresExactlyOneActive(t *testing.T) {
	// Hand-built snapshot with no active leaf at all.
	data := []byte(`{"orientation":"horizontal","children":[` +
		`{"pane_id":"p1","buffer_id":"b"},{"pane_id":"p2","buffer_id":"b"}]}`)

	tree, err := LoadTree(data, func(id.Buffer) bool { return true }, "b")
	if err != nil {
		t.Fatal(err)
	}
	if activeCount(tree) != 1 {
		t.Errorf("active panes = %d, want 1", activeCount(tree))
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := LoadTree([]byte("not json"), func(id.Buffer) bool { return true }, "b"); err == nil {
		t.Error("want error for malformed snapshot")
	}
}
