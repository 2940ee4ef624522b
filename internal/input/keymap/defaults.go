package keymap

import (
	"fmt"

	"github.com/dmorey/caret/internal/engine/action"
	"github.com/dmorey/caret/internal/engine/buffer"
	"github.com/dmorey/caret/internal/engine/pane"
)

// FromPairs builds a map from chord-string/action pairs. The first
// invalid chord aborts with its parse error.
func FromPairs(name string, pairs []Pair) (*KeyMap, error) {
	m := New(name)
	for _, p := range pairs {
		if err := m.BindString(p.Chord, p.Action); err != nil {
			return nil, fmt.Errorf("keymap %s, chord %q: %w", name, p.Chord, err)
		}
	}
	return m, nil
}

// Pair is one chord-string binding.
type Pair struct {
	Chord  string
	Action action.Action
}

// Base returns the default global keymap.
func Base() (*KeyMap, error) {
	return FromPairs("base", []Pair{
		{"<esc>", action.Exit{}},
		{"<ctrl>q", action.Exit{}},
		{"<ctrl>x+<ctrl>c", action.Exit{}},
		{"<ctrl>o", action.InsertLineAfter{}},
		{"<ctrl>b", action.Move{Step: buffer.BoundaryMove(buffer.Grapheme), Direction: buffer.Backward}},
		{"<ctrl>f", action.Move{Step: buffer.BoundaryMove(buffer.Grapheme), Direction: buffer.Forward}},
		{"<ctrl>p", action.Move{Step: buffer.Move{Kind: buffer.MoveLine}, Direction: buffer.Backward}},
		{"<ctrl>n", action.Move{Step: buffer.Move{Kind: buffer.MoveLine}, Direction: buffer.Forward}},
		{"<ctrl>a", action.Move{Step: buffer.BoundaryMove(buffer.LineEnd), Direction: buffer.Backward}},
		{"<ctrl>e", action.Move{Step: buffer.BoundaryMove(buffer.LineEnd), Direction: buffer.Forward}},
		{"<alt>v", action.Move{Step: buffer.Move{Kind: buffer.MovePage}, Direction: buffer.Backward}},
		{"<ctrl>v", action.Move{Step: buffer.Move{Kind: buffer.MovePage}, Direction: buffer.Forward}},
		{"<alt><shift><less>", action.Move{Step: buffer.BoundaryMove(buffer.BufferEnd), Direction: buffer.Backward}},
		{"<alt><shift><greater>", action.Move{Step: buffer.BoundaryMove(buffer.BufferEnd), Direction: buffer.Forward}},
		{"<backspace>", action.Delete{Boundary: buffer.Grapheme, Direction: buffer.Backward}},
		{"<ctrl>d", action.Delete{Boundary: buffer.Grapheme, Direction: buffer.Forward}},
		{"<ctrl>k", action.Delete{Boundary: buffer.LineEnd, Direction: buffer.Forward}},
		{"<ctrl>s", action.InteractiveSearch{}},
		{"<ctrl>/", action.Undo{}},
		{"<ctrl><shift>?", action.Redo{}},
		{"<ctrl>x+k", action.DeleteBuffer{}},
		{"<ctrl>x+<ctrl>f", action.OpenFile{}},
		{"<ctrl>x+<ctrl>s", action.SaveFile{}},
		{"<ctrl><shift>j", action.PreviousPane{}},
		{"<ctrl><shift>k", action.NextPane{}},
		{"<ctrl>x+2", action.SplitPane{Orientation: pane.Vertical}},
		{"<ctrl>x+3", action.SplitPane{Orientation: pane.Horizontal}},
		{"<ctrl>x+0", action.ClosePane{}},
		{"<ctrl>x+<ctrl>p", action.RunNonInteractiveProcess{}},
		{"<ctrl>g", action.Cancel{}},
	})
}

// OpenFileOverlay returns the keymap pushed while the file chooser is
// open.
func OpenFileOverlay() (*KeyMap, error) {
	return FromPairs("open-file-overlay", []Pair{
		{"<ctrl>i", action.Autocomplete{}},
		{"<tab>", action.Autocomplete{}},
		{"<ret>", action.Confirm{}},
		{"<ctrl>m", action.Confirm{}},
	})
}

// SearchOverlay returns the keymap pushed while interactive search is
// open.
func SearchOverlay() (*KeyMap, error) {
	return FromPairs("search-overlay", []Pair{
		{"<ret>", action.Confirm{}},
		{"<ctrl>m", action.Confirm{}},
		{"<ctrl>s", action.SearchNext{}},
	})
}

// ProcessOverlay returns the keymap pushed while the run-command
// prompt is open.
func ProcessOverlay() (*KeyMap, error) {
	return FromPairs("process-overlay", []Pair{
		{"<ret>", action.Confirm{}},
		{"<ctrl>m", action.Confirm{}},
	})
}
