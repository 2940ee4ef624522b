package key

import (
	"strings"
	"unicode"
)

// Atom is one step of a key sequence: a key together with the
// modifiers held when it was pressed.
type Atom struct {
	Mods Modifier
	Key  Key
}

// NewAtom returns a normalized atom. Rune keys pressed with Shift are
// stored upper-cased with the Shift bit retained, so that atoms built
// from host events and atoms built from parsed bindings compare equal.
func NewAtom(mods Modifier, k Key) Atom {
	if mods.Has(ModShift) && k.IsRune() {
		k.Rune = unicode.ToUpper(k.Rune)
	}
	return Atom{Mods: mods, Key: k}
}

// String renders the atom in chord-grammar form, modifiers first.
func (a Atom) String() string {
	return a.Mods.String() + a.Key.String()
}

// Sequence is an ordered list of atoms. Sequences are the keys of
// keymap bindings and the accumulated state of an in-progress chord.
type Sequence []Atom

// Append returns the sequence extended by one atom. The receiver is
// not modified.
func (s Sequence) Append(a Atom) Sequence {
	out := make(Sequence, len(s), len(s)+1)
	copy(out, s)
	return append(out, a)
}

// StartsWith reports whether prefix is a leading sub-sequence of s.
// Every sequence starts with the empty sequence.
func (s Sequence) StartsWith(prefix Sequence) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i, a := range prefix {
		if s[i] != a {
			return false
		}
	}
	return true
}

// String renders the sequence in chord-grammar form with "+" between
// atoms. The result parses back to an equal sequence.
func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, a := range s {
		parts[i] = a.String()
	}
	return strings.Join(parts, "+")
}
