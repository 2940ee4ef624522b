package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Sentinel parse failures. ParseSequence wraps these in a *ParseError
// carrying the offending token; match with errors.Is.
var (
	// ErrInvalidName means a bracketed name is not a known modifier
	// or key, or a "<" was never closed.
	ErrInvalidName = errors.New("invalid name")
	// ErrUnexpectedAppend means a "+" appeared where an atom was
	// expected, e.g. at the start of the input or after another "+".
	ErrUnexpectedAppend = errors.New("unexpected append")
	// ErrUnexpectedModifier means a modifier followed a completed
	// atom without an intervening "+".
	ErrUnexpectedModifier = errors.New("unexpected modifier")
	// ErrUnexpectedKey means a key followed a completed atom without
	// an intervening "+".
	ErrUnexpectedKey = errors.New("unexpected key")
	// ErrIncomplete means the input ended with dangling modifiers or
	// a trailing "+", or was empty.
	ErrIncomplete = errors.New("incomplete sequence")
)

// ParseError reports a malformed chord string together with the token
// that triggered the failure.
type ParseError struct {
	Err   error
	Token string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %q", e.Err, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErr(err error, token string) error {
	return &ParseError{Err: err, Token: token}
}

// item is one lexed token of the chord grammar.
type item struct {
	kind itemKind
	mod  Modifier
	key  Key
	text string
}

type itemKind uint8

const (
	itemModifier itemKind = iota
	itemKey
	itemAppend
)

// lex splits a chord string into modifier, key, and append tokens.
// "<name>" resolves through the modifier and key name tables, "+"
// separates atoms, and any other character is a literal rune key.
func lex(s string) ([]item, error) {
	var items []item
	rest := s
	for len(rest) > 0 {
		r, size := utf8.DecodeRuneInString(rest)
		switch r {
		case '<':
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				return nil, parseErr(ErrInvalidName, rest)
			}
			name := rest[1:end]
			rest = rest[end+1:]
			if mod, ok := modifierFromName(name); ok {
				items = append(items, item{kind: itemModifier, mod: mod, text: name})
				continue
			}
			if k, ok := keyFromName(name); ok {
				items = append(items, item{kind: itemKey, key: k, text: "<" + name + ">"})
				continue
			}
			return nil, parseErr(ErrInvalidName, name)
		case '+':
			items = append(items, item{kind: itemAppend, text: "+"})
			rest = rest[size:]
		default:
			items = append(items, item{kind: itemKey, key: RuneKey(r), text: string(r)})
			rest = rest[size:]
		}
	}
	return items, nil
}

// ParseSequence parses a chord string such as "<ctrl>x+<ctrl>f" into a
// sequence of atoms. Each atom is zero or more modifiers followed by
// exactly one key; atoms are joined by "+". Shift-modified rune keys
// are normalized the same way NewAtom normalizes host events, so a
// parsed binding compares equal to the sequence typed at the keyboard.
func ParseSequence(s string) (Sequence, error) {
	items, err := lex(s)
	if err != nil {
		return nil, err
	}

	var (
		seq      Sequence
		mods     Modifier
		needAtom = true
	)
	for _, it := range items {
		if needAtom {
			switch it.kind {
			case itemModifier:
				mods |= it.mod
			case itemKey:
				seq = append(seq, NewAtom(mods, it.key))
				mods = 0
				needAtom = false
			case itemAppend:
				return nil, parseErr(ErrUnexpectedAppend, it.text)
			}
			continue
		}
		switch it.kind {
		case itemModifier:
			return nil, parseErr(ErrUnexpectedModifier, it.text)
		case itemKey:
			return nil, parseErr(ErrUnexpectedKey, it.text)
		case itemAppend:
			needAtom = true
		}
	}
	if needAtom {
		return nil, parseErr(ErrIncomplete, s)
	}
	return seq, nil
}
