// Package overlay implements the modal input widgets that float above
// the pane tree: the file chooser, interactive search, and the run
// command prompt. Each overlay owns a private buffer and widget pane
// plus the keymap pushed for its lifetime; while one is open it is the
// editing target for every keystroke.
package overlay

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/dmorey/caret/internal/engine/buffer"
	"github.com/dmorey/caret/internal/engine/pane"
	"github.com/dmorey/caret/internal/input/keymap"
	"github.com/dmorey/caret/internal/rope"
)

// Kind identifies the overlay variant. The set is closed; the
// dispatcher switches on it exhaustively.
type Kind uint8

const (
	// KindOpenFile is the file chooser.
	KindOpenFile Kind = iota
	// KindSearch is interactive search over the active buffer.
	KindSearch
	// KindRunProcess prompts for a command line to run.
	KindRunProcess
)

// maxSuggestions caps how many directory entries the file chooser
// offers.
const maxSuggestions = 100

// Overlay is one open modal widget.
type Overlay struct {
	kind Kind
	buf  *buffer.Buffer
	pane *pane.Pane
	km   *keymap.KeyMap
	rect pane.Rect

	suggestions []string
}

func newOverlay(kind Kind, km *keymap.KeyMap) *Overlay {
	buf := buffer.NewEmpty()
	p := pane.NewWidgetPane(buf.ID())
	buf.SetCursor(p.ID(), 0)
	return &Overlay{kind: kind, buf: buf, pane: p, km: km}
}

// NewOpenFile returns a file chooser seeded with the given directory.
func NewOpenFile(defaultDir string) (*Overlay, error) {
	km, err := keymap.OpenFileOverlay()
	if err != nil {
		return nil, err
	}

	o := newOverlay(KindOpenFile, km)
	seed := strings.TrimSuffix(defaultDir, "/") + "/"
	o.buf.SetText(seed)
	o.buf.SetCursor(o.pane.ID(), rope.AbsChar(len([]rune(seed))))
	if err := o.UpdateSuggestions(); err != nil {
		return nil, err
	}
	return o, nil
}

// NewSearch returns an interactive search prompt.
func NewSearch() (*Overlay, error) {
	km, err := keymap.SearchOverlay()
	if err != nil {
		return nil, err
	}
	return newOverlay(KindSearch, km), nil
}

// NewRunProcess returns a command line prompt.
func NewRunProcess() (*Overlay, error) {
	km, err := keymap.ProcessOverlay()
	if err != nil {
		return nil, err
	}
	return newOverlay(KindRunProcess, km), nil
}

// Kind returns the overlay variant.
func (o *Overlay) Kind() Kind {
	return o.kind
}

// Prompt returns the label drawn before the input line.
func (o *Overlay) Prompt() string {
	switch o.kind {
	case KindOpenFile:
		return "Open file:"
	case KindSearch:
		return "Search:"
	case KindRunProcess:
		return "Run:"
	}
	return ""
}

// Buffer returns the overlay's input buffer.
func (o *Overlay) Buffer() *buffer.Buffer {
	return o.buf
}

// Pane returns the overlay's widget pane.
func (o *Overlay) Pane() *pane.Pane {
	return o.pane
}

// KeyMap returns the map pushed onto the key stack while the overlay
// is open.
func (o *Overlay) KeyMap() *keymap.KeyMap {
	return o.km
}

// Text returns the current input line.
func (o *Overlay) Text() string {
	return o.buf.Text().String()
}

// Rect returns the overlay's screen rectangle.
func (o *Overlay) Rect() pane.Rect {
	return o.rect
}

// RecalcLayout pins the overlay to the top of the window: one line of
// prompt, one of input, one of suggestions.
func (o *Overlay) RecalcLayout(width, lineHeight float64) {
	o.rect = pane.Rect{Width: width, Height: lineHeight * 3}
	o.pane.SetRect(pane.Rect{Y: lineHeight, Width: width, Height: lineHeight})
}

// Suggestions returns the file chooser's current completions.
func (o *Overlay) Suggestions() []string {
	return o.suggestions
}

// UpdateSuggestions refreshes the file chooser's completions from the
// directory named by the input line. The portion after the final
// separator fuzzy-filters the directory's entries; an unreadable
// directory just means no suggestions.
func (o *Overlay) UpdateSuggestions() error {
	if o.kind != KindOpenFile {
		return fmt.Errorf("suggestions on %v overlay", o.kind)
	}

	text := o.Text()
	dir, partial := filepath.Dir(text), filepath.Base(text)
	if strings.HasSuffix(text, "/") {
		dir, partial = strings.TrimSuffix(text, "/"), ""
		if dir == "" {
			dir = "/"
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		o.suggestions = nil
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if partial == "" {
		if len(names) > maxSuggestions {
			names = names[:maxSuggestions]
		}
		o.suggestions = names
		return nil
	}

	ranks := fuzzy.RankFindNormalizedFold(partial, names)
	sort.Sort(ranks)
	matched := make([]string, 0, len(ranks))
	for _, r := range ranks {
		matched = append(matched, r.Target)
		if len(matched) == maxSuggestions {
			break
		}
	}
	o.suggestions = matched
	return nil
}

// Autocomplete replaces the input line with the single remaining
// suggestion. With zero or several candidates it does nothing.
func (o *Overlay) Autocomplete() error {
	if o.kind != KindOpenFile {
		return nil
	}
	if len(o.suggestions) != 1 {
		return nil
	}

	dir := filepath.Dir(o.Text())
	o.buf.SetText(filepath.Join(dir, o.suggestions[0]))
	o.buf.MoveCursor(o.pane.ID(), buffer.BoundaryMove(buffer.LineEnd), buffer.Forward, 1)
	return o.UpdateSuggestions()
}
