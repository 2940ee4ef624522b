package app

import (
	"github.com/dmorey/caret/internal/input/key"
	"github.com/dmorey/caret/internal/input/keymap"
	"github.com/dmorey/caret/internal/message"
)

// keyHandler accumulates key presses into a sequence and resolves it
// against the keymap stack. The base map is always at the bottom; an
// open overlay pushes its map on top.
type keyHandler struct {
	stack  *keymap.Stack
	curSeq key.Sequence
}

func newKeyHandler(base *keymap.KeyMap) *keyHandler {
	return &keyHandler{stack: keymap.NewStack(base)}
}

// HandleKeyPress feeds one key press into the pending sequence. A
// prefix match leaves the sequence pending; anything else resolves it.
// Actions produced by the lookup are handled immediately; their errors
// are logged, not returned, since a key press has no caller to fail.
func (s *State) HandleKeyPress(atom key.Atom, queue *message.Queue) {
	s.keys.curSeq = s.keys.curSeq.Append(atom)

	clearSeq := true
	result := s.keys.stack.Lookup(s.keys.curSeq)
	switch result.Kind {
	case keymap.LookupBadSequence:
		s.log.Debug("unbound key sequence %q", s.keys.curSeq.String())
	case keymap.LookupPrefix:
		clearSeq = false
	case keymap.LookupAction:
		if err := s.HandleAction(result.Action, queue); err != nil {
			s.log.Error("action failed: %v", err)
		}
	}

	if clearSeq {
		s.keys.curSeq = nil
	}
}

// PendingSequence returns the keys typed so far toward a multi-key
// chord, for display in the UI.
func (s *State) PendingSequence() key.Sequence {
	return s.keys.curSeq
}
