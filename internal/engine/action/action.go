// Package action defines the closed set of editor actions. Key lookups
// and asynchronous notifications both resolve to an Action; the app
// state dispatches on the concrete type exhaustively.
package action

import (
	"github.com/dmorey/caret/internal/engine/buffer"
	"github.com/dmorey/caret/internal/engine/id"
	"github.com/dmorey/caret/internal/engine/pane"
)

// Action is one editor operation. The set of implementations is closed;
// the marker method keeps foreign types out.
type Action interface {
	isAction()
}

// Insert types one character at the active cursor.
type Insert struct {
	Rune rune
}

// InsertLineAfter opens a new line below the cursor and moves to it.
type InsertLineAfter struct{}

// Exit requests an orderly shutdown of the editor.
type Exit struct{}

// OpenFile opens the file chooser overlay.
type OpenFile struct{}

// SaveFile writes the active buffer back to its path.
type SaveFile struct{}

// PreviousPane focuses the previous pane in depth-first order.
type PreviousPane struct{}

// NextPane focuses the next pane in depth-first order.
type NextPane struct{}

// SplitPane splits the active pane along the given axis.
type SplitPane struct {
	Orientation pane.Orientation
}

// ClosePane closes the active pane.
type ClosePane struct{}

// Confirm commits the open overlay's pending effect.
type Confirm struct{}

// Cancel dismisses the open overlay, or clears in-progress key and
// search state when no overlay is open.
type Cancel struct{}

// Autocomplete asks the open overlay to extend the input with its top
// suggestion.
type Autocomplete struct{}

// InteractiveSearch opens the search overlay.
type InteractiveSearch struct{}

// SearchNext jumps to the next search match.
type SearchNext struct{}

// Undo steps the active buffer back one history item.
type Undo struct{}

// Redo steps the active buffer forward one history item.
type Redo struct{}

// Move applies one cursor movement step to the active pane.
type Move struct {
	Step      buffer.Move
	Direction buffer.Direction
}

// Delete removes text from the cursor to the given boundary.
type Delete struct {
	Boundary  buffer.Boundary
	Direction buffer.Direction
}

// DeleteBuffer removes the active buffer, repointing its panes at a
// surviving buffer.
type DeleteBuffer struct{}

// RunNonInteractiveProcess opens the command prompt overlay.
type RunNonInteractiveProcess struct{}

// AppendToBuffer delivers one chunk of subprocess output.
type AppendToBuffer struct {
	Buffer id.Buffer
	Text   string
}

// ProcessFinished reports that a subprocess's output stream closed.
type ProcessFinished struct {
	Buffer id.Buffer
	Err    error
}

func (Insert) isAction()                   {}
func (InsertLineAfter) isAction()          {}
func (Exit) isAction()                     {}
func (OpenFile) isAction()                 {}
func (SaveFile) isAction()                 {}
func (PreviousPane) isAction()             {}
func (NextPane) isAction()                 {}
func (SplitPane) isAction()                {}
func (ClosePane) isAction()                {}
func (Confirm) isAction()                  {}
func (Cancel) isAction()                   {}
func (Autocomplete) isAction()             {}
func (InteractiveSearch) isAction()        {}
func (SearchNext) isAction()               {}
func (Undo) isAction()                     {}
func (Redo) isAction()                     {}
func (Move) isAction()                     {}
func (Delete) isAction()                   {}
func (DeleteBuffer) isAction()             {}
func (RunNonInteractiveProcess) isAction() {}
func (AppendToBuffer) isAction()           {}
func (ProcessFinished) isAction()          {}
