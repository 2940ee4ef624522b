package keymap

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/dmorey/caret/internal/engine/action"
	"github.com/dmorey/caret/internal/engine/buffer"
	"github.com/dmorey/caret/internal/engine/pane"
	"github.com/dmorey/caret/internal/logging"
)

// namedActions are the actions user bindings may refer to by name.
// Parameterized variants get one name per useful parameterization.
var namedActions = map[string]action.Action{
	"exit":              action.Exit{},
	"insert-line-after": action.InsertLineAfter{},
	"open-file":         action.OpenFile{},
	"save-file":         action.SaveFile{},
	"previous-pane":     action.PreviousPane{},
	"next-pane":         action.NextPane{},
	"split-vertical":    action.SplitPane{Orientation: pane.Vertical},
	"split-horizontal":  action.SplitPane{Orientation: pane.Horizontal},
	"close-pane":        action.ClosePane{},
	"delete-buffer":     action.DeleteBuffer{},
	"search":            action.InteractiveSearch{},
	"search-next":       action.SearchNext{},
	"undo":              action.Undo{},
	"redo":              action.Redo{},
	"cancel":            action.Cancel{},
	"run-process":       action.RunNonInteractiveProcess{},

	"move-backward":  action.Move{Step: buffer.BoundaryMove(buffer.Grapheme), Direction: buffer.Backward},
	"move-forward":   action.Move{Step: buffer.BoundaryMove(buffer.Grapheme), Direction: buffer.Forward},
	"move-up":        action.Move{Step: buffer.Move{Kind: buffer.MoveLine}, Direction: buffer.Backward},
	"move-down":      action.Move{Step: buffer.Move{Kind: buffer.MoveLine}, Direction: buffer.Forward},
	"page-up":        action.Move{Step: buffer.Move{Kind: buffer.MovePage}, Direction: buffer.Backward},
	"page-down":      action.Move{Step: buffer.Move{Kind: buffer.MovePage}, Direction: buffer.Forward},
	"line-start":     action.Move{Step: buffer.BoundaryMove(buffer.LineEnd), Direction: buffer.Backward},
	"line-end":       action.Move{Step: buffer.BoundaryMove(buffer.LineEnd), Direction: buffer.Forward},
	"buffer-start":   action.Move{Step: buffer.BoundaryMove(buffer.BufferEnd), Direction: buffer.Backward},
	"buffer-end":     action.Move{Step: buffer.BoundaryMove(buffer.BufferEnd), Direction: buffer.Forward},
	"delete-back":    action.Delete{Boundary: buffer.Grapheme, Direction: buffer.Backward},
	"delete-forward": action.Delete{Boundary: buffer.Grapheme, Direction: buffer.Forward},
	"kill-line":      action.Delete{Boundary: buffer.LineEnd, Direction: buffer.Forward},
}

type bindingsFile struct {
	Bindings map[string]string `toml:"bindings"`
}

// ApplyUserBindings overlays user bindings from TOML data onto the
// base map. Entries with a malformed chord or an unknown action name
// are logged and skipped; a well-formed file never aborts the load.
func ApplyUserBindings(data []byte, base *KeyMap, log *logging.Logger) error {
	var file bindingsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse bindings: %w", err)
	}

	for chord, name := range file.Bindings {
		act, ok := namedActions[name]
		if !ok {
			log.Warn("skipping binding %q: unknown action %q", chord, name)
			continue
		}
		if err := base.BindString(chord, act); err != nil {
			log.Warn("skipping binding %q: %v", chord, err)
			continue
		}
		log.Debug("bound %q to %s", chord, name)
	}
	return nil
}
