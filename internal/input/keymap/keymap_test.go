package keymap

import (
	"testing"

	"github.com/dmorey/caret/internal/engine/action"
	"github.com/dmorey/caret/internal/input/key"
	"github.com/dmorey/caret/internal/logging"
)

func mustSeq(t *testing.T, chord string) key.Sequence {
	t.Helper()
	seq, err := key.ParseSequence(chord)
	if err != nil {
		t.Fatalf("ParseSequence(%q): %v", chord, err)
	}
	return seq
}

// The action set is closed, so tests use Insert actions with
// distinguishable payloads as stand-ins.
var (
	actBaseA    = action.Insert{Rune: '1'}
	actOverlayA = action.Insert{Rune: '2'}
	actOverlayC = action.Insert{Rune: '3'}
	actBaseB    = action.Insert{Rune: '4'}
	actBaseX    = action.Insert{Rune: '5'}
)

func buildStack(t *testing.T) *Stack {
	t.Helper()
	base := New("base")
	if err := base.BindString("<ctrl>a", actBaseA); err != nil {
		t.Fatal(err)
	}
	if err := base.BindString("<ctrl>b", actBaseB); err != nil {
		t.Fatal(err)
	}
	if err := base.BindString("x", actBaseX); err != nil {
		t.Fatal(err)
	}

	overlay := New("overlay")
	if err := overlay.BindString("<ctrl>a", actOverlayA); err != nil {
		t.Fatal(err)
	}
	if err := overlay.BindString("<ctrl>c", actOverlayC); err != nil {
		t.Fatal(err)
	}

	stack := NewStack(base)
	stack.Push(overlay)
	return stack
}

func TestStackLookup(t *testing.T) {
	stack := buildStack(t)

	tests := []struct {
		name  string
		chord string
		want  Lookup
	}{
		{"overlay overrides base", "<ctrl>a", Lookup{Kind: LookupAction, Action: actOverlayA}},
		{"overlay-only entry", "<ctrl>c", Lookup{Kind: LookupAction, Action: actOverlayC}},
		{"falls through to base", "<ctrl>b", Lookup{Kind: LookupAction, Action: actBaseB}},
		{"single char bound in base", "x", Lookup{Kind: LookupAction, Action: actBaseX}},
		{"unbound char self-inserts", "y", Lookup{Kind: LookupAction, Action: action.Insert{Rune: 'y'}}},
		{"unbound modified char is bad", "<ctrl>x", Lookup{Kind: LookupBadSequence}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stack.Lookup(mustSeq(t, tt.chord)); got != tt.want {
				t.Errorf("lookup = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStackShiftedSelfInsert(t *testing.T) {
	stack := NewStack(New("base"))

	seq := key.Sequence{key.NewAtom(key.ModShift, key.RuneKey('a'))}
	got := stack.Lookup(seq)
	want := Lookup{Kind: LookupAction, Action: action.Insert{Rune: 'A'}}
	if got != want {
		t.Errorf("lookup = %+v, want %+v", got, want)
	}
}

func TestStackPopRestoresBase(t *testing.T) {
	stack := buildStack(t)
	stack.Pop()

	if got := stack.Lookup(mustSeq(t, "<ctrl>a")); got.Action != actBaseA {
		t.Errorf("after pop, lookup = %+v, want base action", got)
	}
	if got := stack.Lookup(mustSeq(t, "<ctrl>c")); got.Kind != LookupBadSequence {
		t.Errorf("after pop, overlay binding should be gone, got %+v", got)
	}

	// The base map is never popped.
	stack.Pop()
	stack.Pop()
	if got := stack.Lookup(mustSeq(t, "<ctrl>a")); got.Action != actBaseA {
		t.Errorf("base map disappeared, lookup = %+v", got)
	}
}

func TestPrefixLookup(t *testing.T) {
	base := New("base")
	if err := base.BindString("<ctrl>x+<ctrl>f", action.OpenFile{}); err != nil {
		t.Fatal(err)
	}
	stack := NewStack(base)

	if got := stack.Lookup(mustSeq(t, "<ctrl>x")); got.Kind != LookupPrefix {
		t.Errorf("chord prefix lookup = %+v, want prefix", got)
	}
	if got := stack.Lookup(mustSeq(t, "<ctrl>x+<ctrl>f")); got.Kind != LookupAction {
		t.Errorf("full chord lookup = %+v, want action", got)
	}
	if got := stack.Lookup(mustSeq(t, "<ctrl>x+<ctrl>g")); got.Kind != LookupBadSequence {
		t.Errorf("wrong continuation lookup = %+v, want bad sequence", got)
	}
}

func TestOverlayPrefixShadowsBase(t *testing.T) {
	// A prefix hit in the top map is final even when a lower map has
	// an exact binding for the same sequence.
	base := New("base")
	if err := base.BindString("<ctrl>a", actBaseA); err != nil {
		t.Fatal(err)
	}
	overlay := New("overlay")
	if err := overlay.BindString("<ctrl>a+<ctrl>b", actOverlayA); err != nil {
		t.Fatal(err)
	}

	stack := NewStack(base)
	stack.Push(overlay)

	if got := stack.Lookup(mustSeq(t, "<ctrl>a")); got.Kind != LookupPrefix {
		t.Errorf("lookup = %+v, want prefix from the overlay", got)
	}
}

func TestBindReplacesExisting(t *testing.T) {
	m := New("base")
	if err := m.BindString("<ctrl>a", actBaseA); err != nil {
		t.Fatal(err)
	}
	if err := m.BindString("<ctrl>a", actOverlayA); err != nil {
		t.Fatal(err)
	}
	if got := m.Lookup(mustSeq(t, "<ctrl>a")); got.Action != actOverlayA {
		t.Errorf("rebinding should replace, got %+v", got)
	}
}

func TestBaseMapParses(t *testing.T) {
	base, err := Base()
	if err != nil {
		t.Fatalf("base map failed to build: %v", err)
	}

	stack := NewStack(base)
	if got := stack.Lookup(mustSeq(t, "<ctrl>x+<ctrl>f")); got.Kind != LookupAction {
		t.Errorf("open-file chord = %+v, want action", got)
	}
	if _, ok := stack.Lookup(mustSeq(t, "<ctrl>x+<ctrl>f")).Action.(action.OpenFile); !ok {
		t.Error("open-file chord bound to wrong action")
	}
	if got := stack.Lookup(mustSeq(t, "<ctrl>x")); got.Kind != LookupPrefix {
		t.Errorf("ctrl-x = %+v, want prefix", got)
	}

	for _, build := range []func() (*KeyMap, error){OpenFileOverlay, SearchOverlay, ProcessOverlay} {
		if _, err := build(); err != nil {
			t.Errorf("overlay map failed to build: %v", err)
		}
	}
}

func TestApplyUserBindings(t *testing.T) {
	base, err := Base()
	if err != nil {
		t.Fatal(err)
	}

	data := []byte(`
[bindings]
"<ctrl>u" = "undo"
"<ctrl>x+<ctrl>r" = "redo"
"<ctrl>w" = "no-such-action"
"++bad" = "undo"
`)
	if err := ApplyUserBindings(data, base, logging.NullLogger); err != nil {
		t.Fatalf("ApplyUserBindings: %v", err)
	}

	stack := NewStack(base)
	if _, ok := stack.Lookup(mustSeq(t, "<ctrl>u")).Action.(action.Undo); !ok {
		t.Error("user binding for undo not applied")
	}
	if _, ok := stack.Lookup(mustSeq(t, "<ctrl>x+<ctrl>r")).Action.(action.Redo); !ok {
		t.Error("user chord binding for redo not applied")
	}
	if got := stack.Lookup(mustSeq(t, "<ctrl>w")); got.Kind != LookupBadSequence {
		t.Errorf("binding with unknown action should be skipped, got %+v", got)
	}
}

func TestApplyUserBindingsRejectsMalformedTOML(t *testing.T) {
	base := New("base")
	if err := ApplyUserBindings([]byte("not toml ["), base, logging.NullLogger); err == nil {
		t.Error("want error for malformed TOML")
	}
}
