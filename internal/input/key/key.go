// Package key models physical key input: single keys, modifier sets,
// keys-plus-modifiers atoms, and ordered sequences of atoms. It also
// implements the textual chord grammar used by keymap bindings, for
// example "<ctrl>x+<ctrl>f".
package key

import "fmt"

// Code distinguishes printable rune keys from named special keys.
type Code uint8

// Special key codes. CodeRune marks a printable key whose identity is
// carried in Key.Rune.
const (
	CodeRune Code = iota
	CodeEscape
	CodeEnter
	CodeBackspace
	CodeTab
	CodeDelete
	CodeUp
	CodeDown
	CodeLeft
	CodeRight
	CodeHome
	CodeEnd
	CodePageUp
	CodePageDown
)

// Key identifies a single key: either a printable rune or a named
// special. The zero value is the rune key for U+0000 and is not a
// valid key.
type Key struct {
	Code Code
	Rune rune
}

// RuneKey returns the key for a printable rune.
func RuneKey(r rune) Key {
	return Key{Code: CodeRune, Rune: r}
}

// specialNames maps chord-grammar names to special key codes. Names
// that denote grammar metacharacters (less, greater, plus) map to the
// corresponding rune keys instead; see namedRunes.
var specialNames = map[string]Code{
	"esc":       CodeEscape,
	"ret":       CodeEnter,
	"backspace": CodeBackspace,
	"tab":       CodeTab,
	"del":       CodeDelete,
	"up":        CodeUp,
	"down":      CodeDown,
	"left":      CodeLeft,
	"right":     CodeRight,
	"home":      CodeHome,
	"end":       CodeEnd,
	"pageup":    CodePageUp,
	"pagedown":  CodePageDown,
}

// namedRunes covers printable keys that cannot appear literally in the
// chord grammar because the parser assigns them structural meaning.
var namedRunes = map[string]rune{
	"space":   ' ',
	"less":    '<',
	"greater": '>',
	"plus":    '+',
}

// keyFromName resolves a bracketed grammar name to a key. The bool
// reports whether the name is known.
func keyFromName(name string) (Key, bool) {
	if code, ok := specialNames[name]; ok {
		return Key{Code: code}, true
	}
	if r, ok := namedRunes[name]; ok {
		return RuneKey(r), true
	}
	return Key{}, false
}

// String renders the key in chord-grammar form: a literal character
// for plain runes, or a bracketed name such as "<esc>" for specials
// and for runes the grammar reserves.
func (k Key) String() string {
	if k.Code == CodeRune {
		switch k.Rune {
		case ' ':
			return "<space>"
		case '<':
			return "<less>"
		case '>':
			return "<greater>"
		case '+':
			return "<plus>"
		}
		return string(k.Rune)
	}
	for name, code := range specialNames {
		if code == k.Code {
			return "<" + name + ">"
		}
	}
	return fmt.Sprintf("<unknown:%d>", k.Code)
}

// IsRune reports whether the key is a printable rune key.
func (k Key) IsRune() bool {
	return k.Code == CodeRune
}
