// Package keymap resolves key sequences to actions. A KeyMap is an
// ordered set of bindings; a Stack layers overlay maps over the base
// map and provides the self-insertion fallback that makes ordinary
// typing work without per-character bindings.
package keymap

import (
	"github.com/dmorey/caret/internal/engine/action"
	"github.com/dmorey/caret/internal/input/key"
)

// LookupKind classifies a lookup result.
type LookupKind uint8

const (
	// LookupBadSequence means no binding matches and none can; the
	// accumulated sequence should be discarded.
	LookupBadSequence LookupKind = iota
	// LookupPrefix means the sequence is a proper prefix of at least
	// one binding; the caller keeps accumulating atoms.
	LookupPrefix
	// LookupAction means an exact binding matched.
	LookupAction
)

// Lookup is the result of resolving a sequence. Action is set only
// when Kind is LookupAction.
type Lookup struct {
	Kind   LookupKind
	Action action.Action
}

type binding struct {
	seq key.Sequence
	act action.Action
}

// KeyMap is a named, ordered set of sequence-to-action bindings.
type KeyMap struct {
	name     string
	bindings []binding
	exact    map[string]int
}

// New returns an empty map with the given name. The name only appears
// in logs.
func New(name string) *KeyMap {
	return &KeyMap{name: name, exact: make(map[string]int)}
}

// Name returns the map's name.
func (m *KeyMap) Name() string {
	return m.name
}

// Bind adds or replaces the binding for seq.
func (m *KeyMap) Bind(seq key.Sequence, act action.Action) {
	k := seq.String()
	if i, ok := m.exact[k]; ok {
		m.bindings[i].act = act
		return
	}
	m.exact[k] = len(m.bindings)
	m.bindings = append(m.bindings, binding{seq: seq, act: act})
}

// BindString parses a chord string and binds it.
func (m *KeyMap) BindString(chord string, act action.Action) error {
	seq, err := key.ParseSequence(chord)
	if err != nil {
		return err
	}
	m.Bind(seq, act)
	return nil
}

// Lookup resolves a sequence against this map alone. An exact match
// wins; otherwise a sequence that is a proper prefix of some binding
// reports LookupPrefix.
func (m *KeyMap) Lookup(seq key.Sequence) Lookup {
	if i, ok := m.exact[seq.String()]; ok {
		return Lookup{Kind: LookupAction, Action: m.bindings[i].act}
	}
	for _, b := range m.bindings {
		if len(b.seq) > len(seq) && b.seq.StartsWith(seq) {
			return Lookup{Kind: LookupPrefix}
		}
	}
	return Lookup{Kind: LookupBadSequence}
}

// Stack is a stack of keymaps. The base map sits at the bottom;
// overlays push their maps on top and pop them when dismissed.
type Stack struct {
	maps []*KeyMap
}

// NewStack returns a stack holding just the base map.
func NewStack(base *KeyMap) *Stack {
	return &Stack{maps: []*KeyMap{base}}
}

// Push layers a map over the current top.
func (s *Stack) Push(m *KeyMap) {
	s.maps = append(s.maps, m)
}

// Pop removes the top map. The base map is never popped.
func (s *Stack) Pop() {
	if len(s.maps) > 1 {
		s.maps = s.maps[:len(s.maps)-1]
	}
}

// Lookup resolves a sequence against the stack, topmost map first. A
// map's Action or Prefix result is final; only BadSequence falls
// through to the next map down.
//
// When every map reports BadSequence and the sequence is a single
// printable key pressed with no modifiers (or shift alone), the result
// is an implicit Insert of that character. The fallback is evaluated
// once, after the whole stack is exhausted, so an overlay cannot
// shadow typing with an unrelated prefix.
func (s *Stack) Lookup(seq key.Sequence) Lookup {
	for i := len(s.maps) - 1; i >= 0; i-- {
		if res := s.maps[i].Lookup(seq); res.Kind != LookupBadSequence {
			return res
		}
	}

	if len(seq) == 1 {
		atom := seq[0]
		plain := atom.Mods == 0 || atom.Mods == key.ModShift
		if plain && atom.Key.IsRune() {
			return Lookup{Kind: LookupAction, Action: action.Insert{Rune: atom.Key.Rune}}
		}
	}
	return Lookup{Kind: LookupBadSequence}
}
