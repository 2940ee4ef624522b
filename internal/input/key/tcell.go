package key

import "github.com/gdamore/tcell/v2"

// FromTcell converts a terminal key event into a normalized atom. The
// bool is false for events that carry no key we model, such as bare
// modifier churn reported by some terminals.
//
// Terminals fold ctrl-letter combinations into C0 control codes, so
// those are unfolded back into a rune key with the ctrl bit set. Tab,
// enter, backspace, and escape keep their special identity even though
// they share code points with ctrl-i, ctrl-m, ctrl-h, and ctrl-[.
func FromTcell(ev *tcell.EventKey) (Atom, bool) {
	mods := convertMod(ev.Modifiers())

	switch k := ev.Key(); k {
	case tcell.KeyRune:
		return NewAtom(mods, RuneKey(ev.Rune())), true
	case tcell.KeyEscape:
		return NewAtom(mods, Key{Code: CodeEscape}), true
	case tcell.KeyEnter:
		return NewAtom(mods&^ModCtrl, Key{Code: CodeEnter}), true
	case tcell.KeyTab:
		return NewAtom(mods&^ModCtrl, Key{Code: CodeTab}), true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return NewAtom(mods&^ModCtrl, Key{Code: CodeBackspace}), true
	case tcell.KeyDelete:
		return NewAtom(mods, Key{Code: CodeDelete}), true
	case tcell.KeyUp:
		return NewAtom(mods, Key{Code: CodeUp}), true
	case tcell.KeyDown:
		return NewAtom(mods, Key{Code: CodeDown}), true
	case tcell.KeyLeft:
		return NewAtom(mods, Key{Code: CodeLeft}), true
	case tcell.KeyRight:
		return NewAtom(mods, Key{Code: CodeRight}), true
	case tcell.KeyHome:
		return NewAtom(mods, Key{Code: CodeHome}), true
	case tcell.KeyEnd:
		return NewAtom(mods, Key{Code: CodeEnd}), true
	case tcell.KeyPgUp:
		return NewAtom(mods, Key{Code: CodePageUp}), true
	case tcell.KeyPgDn:
		return NewAtom(mods, Key{Code: CodePageDown}), true
	case tcell.KeyCtrlSpace:
		return NewAtom(mods|ModCtrl, RuneKey(' ')), true
	case tcell.KeyCtrlUnderscore:
		return NewAtom(mods|ModCtrl, RuneKey('/')), true
	default:
		if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			r := 'a' + rune(k-tcell.KeyCtrlA)
			return NewAtom(mods|ModCtrl, RuneKey(r)), true
		}
		return Atom{}, false
	}
}

func convertMod(m tcell.ModMask) Modifier {
	var mods Modifier
	if m&tcell.ModCtrl != 0 {
		mods |= ModCtrl
	}
	if m&tcell.ModShift != 0 {
		mods |= ModShift
	}
	if m&tcell.ModAlt != 0 {
		mods |= ModAlt
	}
	return mods
}
