package key

import "strings"

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
)

// modifierNames is ordered to give atoms a canonical rendering.
var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "ctrl"},
	{ModShift, "shift"},
	{ModAlt, "alt"},
}

// modifierFromName resolves a bracketed grammar name to a modifier
// bit. The bool reports whether the name is a modifier at all.
func modifierFromName(name string) (Modifier, bool) {
	for _, mn := range modifierNames {
		if mn.name == name {
			return mn.mod, true
		}
	}
	return 0, false
}

// Has reports whether all bits of o are set in m.
func (m Modifier) Has(o Modifier) bool {
	return m&o == o
}

// String renders the set in canonical order, e.g. "<ctrl><shift>".
func (m Modifier) String() string {
	var sb strings.Builder
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			sb.WriteByte('<')
			sb.WriteString(mn.name)
			sb.WriteByte('>')
		}
	}
	return sb.String()
}
