package overlay

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestOpenFileSeedsWithDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "testfile1", "testfile2")

	o, err := NewOpenFile(dir)
	if err != nil {
		t.Fatal(err)
	}

	if got := o.Text(); got != dir+"/" {
		t.Errorf("seed text = %q, want %q", got, dir+"/")
	}
	if got := o.Buffer().Cursor(o.Pane().ID()); int(got) != len([]rune(dir+"/")) {
		t.Errorf("cursor = %d, want end of seed", got)
	}
	if len(o.Suggestions()) != 2 {
		t.Errorf("suggestions = %v, want both files", o.Suggestions())
	}
}

func TestOpenFileSuggestionsNarrow(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "alpha", "beta", "alpine")

	o, err := NewOpenFile(dir)
	if err != nil {
		t.Fatal(err)
	}

	o.Buffer().SetText(filepath.Join(dir, "alp"))
	if err := o.UpdateSuggestions(); err != nil {
		t.Fatal(err)
	}

	got := o.Suggestions()
	if len(got) != 2 {
		t.Fatalf("suggestions = %v, want alpha and alpine", got)
	}
	for _, s := range got {
		if s != "alpha" && s != "alpine" {
			t.Errorf("unexpected suggestion %q", s)
		}
	}
}

func TestOpenFileAutocompleteSingleCandidate(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "unique", "other")

	o, err := NewOpenFile(dir)
	if err != nil {
		t.Fatal(err)
	}

	o.Buffer().SetText(filepath.Join(dir, "uniq"))
	if err := o.UpdateSuggestions(); err != nil {
		t.Fatal(err)
	}
	if err := o.Autocomplete(); err != nil {
		t.Fatal(err)
	}

	if got := o.Text(); got != filepath.Join(dir, "unique") {
		t.Errorf("text after autocomplete = %q, want the full path", got)
	}
	if got := o.Buffer().Cursor(o.Pane().ID()); int(got) != len([]rune(o.Text())) {
		t.Errorf("cursor = %d, want end of line", got)
	}
}

func TestOpenFileAutocompleteAmbiguousDoesNothing(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "alpha", "alpine")

	o, err := NewOpenFile(dir)
	if err != nil {
		t.Fatal(err)
	}

	before := filepath.Join(dir, "alp")
	o.Buffer().SetText(before)
	if err := o.UpdateSuggestions(); err != nil {
		t.Fatal(err)
	}
	if err := o.Autocomplete(); err != nil {
		t.Fatal(err)
	}
	if got := o.Text(); got != before {
		t.Errorf("text = %q, want unchanged %q", got, before)
	}
}

func TestOpenFileUnreadableDirectory(t *testing.T) {
	o, err := NewOpenFile("/definitely/not/a/real/dir")
	if err != nil {
		t.Fatal(err)
	}
	if len(o.Suggestions()) != 0 {
		t.Errorf("suggestions = %v, want none", o.Suggestions())
	}
}

func TestOverlayPrompts(t *testing.T) {
	search, err := NewSearch()
	if err != nil {
		t.Fatal(err)
	}
	run, err := NewRunProcess()
	if err != nil {
		t.Fatal(err)
	}

	if got := search.Prompt(); got != "Search:" {
		t.Errorf("search prompt = %q", got)
	}
	if got := run.Prompt(); got != "Run:" {
		t.Errorf("run prompt = %q", got)
	}
	if search.Kind() != KindSearch || run.Kind() != KindRunProcess {
		t.Error("overlay kinds mixed up")
	}
}

func TestOverlayLayout(t *testing.T) {
	o, err := NewSearch()
	if err != nil {
		t.Fatal(err)
	}

	o.RecalcLayout(800, 16)
	if r := o.Rect(); r.Width != 800 || r.Height != 48 {
		t.Errorf("overlay rect = %+v, want 800x48", r)
	}
	if r := o.Pane().Rect(); r.Y != 16 || r.Height != 16 {
		t.Errorf("input pane rect = %+v, want one line at y=16", r)
	}
}

func TestSearchOverlayTyping(t *testing.T) {
	o, err := NewSearch()
	if err != nil {
		t.Fatal(err)
	}

	paneID := o.Pane().ID()
	for _, r := range "abc" {
		o.Buffer().InsertRune(r, o.Buffer().Cursor(paneID))
	}
	if got := o.Text(); got != "abc" {
		t.Errorf("query = %q, want abc", got)
	}
}
