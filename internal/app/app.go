// Package app holds the whole editor state and routes key presses and
// queued messages to it. Everything below it is a passive data
// structure; this package is where actions actually happen.
package app

import (
	"os"
	"path/filepath"

	"github.com/dmorey/caret/internal/engine/buffer"
	"github.com/dmorey/caret/internal/engine/id"
	"github.com/dmorey/caret/internal/engine/pane"
	"github.com/dmorey/caret/internal/input/keymap"
	"github.com/dmorey/caret/internal/logging"
	"github.com/dmorey/caret/internal/overlay"
	"github.com/dmorey/caret/internal/persist"
	"github.com/dmorey/caret/internal/process"
	"github.com/dmorey/caret/internal/rope"
)

// defaultPageLines is used for page movement when a pane has not been
// laid out yet.
const defaultPageLines = 20

// Options configures State construction.
type Options struct {
	// Store enables session persistence when non-nil. Load restores
	// the previous session from it and every action saves back to it.
	Store *persist.Store

	// Bindings is the raw user config document; its [bindings] table
	// overrides the base keymap. Empty means no overrides.
	Bindings []byte

	// LineHeight is the height of one text line in layout units.
	// Values below or equal to zero fall back to 1.
	LineHeight float64

	Log *logging.Logger
}

// State is the complete editor: buffers, the pane tree, the optional
// overlay, running subprocesses and the key handler. It is not safe
// for concurrent use; the event loop owns it.
type State struct {
	keys      *keyHandler
	buffers   map[id.Buffer]*buffer.Buffer
	paneTree  *pane.Tree
	overlay   *overlay.Overlay
	processes map[id.Buffer]*process.Process

	width      float64
	height     float64
	lineHeight float64

	store *persist.Store
	log   *logging.Logger
}

// Load builds the editor state, restoring the previous session from
// opts.Store when one is available. A scratch buffer always exists and
// is the fallback for panes whose buffer could not be restored.
func Load(opts Options) (*State, error) {
	log := opts.Log
	if log == nil {
		log = logging.NullLogger
	}
	lineHeight := opts.LineHeight
	if lineHeight <= 0 {
		lineHeight = 1
	}

	base, err := keymap.Base()
	if err != nil {
		return nil, err
	}
	if len(opts.Bindings) > 0 {
		if err := keymap.ApplyUserBindings(opts.Bindings, base, log); err != nil {
			return nil, err
		}
	}

	s := &State{
		keys:       newKeyHandler(base),
		buffers:    make(map[id.Buffer]*buffer.Buffer),
		processes:  make(map[id.Buffer]*process.Process),
		lineHeight: lineHeight,
		store:      opts.Store,
		log:        log.WithComponent("app"),
	}

	scratch := buffer.NewEmpty()
	s.buffers[scratch.ID()] = scratch

	var snapshot []byte
	var records []persist.BufferRecord
	if s.store != nil {
		snapshot, records, err = s.store.Load()
		if err != nil {
			s.log.Warn("failed to load persisted session: %v", err)
			snapshot, records = nil, nil
		}
	}

	byID := make(map[id.Buffer]persist.BufferRecord, len(records))
	for _, rec := range records {
		buf, err := buffer.FromPathWithID(rec.ID, rec.Path)
		if err != nil {
			s.log.Warn("failed to restore buffer %s: %v", rec.Path, err)
			continue
		}
		s.buffers[rec.ID] = buf
		byID[rec.ID] = rec
	}

	if snapshot != nil {
		tree, err := pane.LoadTree(snapshot, func(bufID id.Buffer) bool {
			_, ok := s.buffers[bufID]
			return ok
		}, scratch.ID())
		if err != nil {
			s.log.Warn("failed to restore pane tree: %v", err)
		} else {
			s.paneTree = tree
		}
	}
	if s.paneTree == nil {
		s.paneTree = pane.NewTree(scratch.ID())
	}

	for _, p := range s.paneTree.Panes() {
		buf := s.buffers[p.BufferID()]
		cursor := rope.AbsChar(0)
		if rec, ok := byID[p.BufferID()]; ok {
			if saved, ok := rec.Cursors[p.ID()]; ok {
				cursor = rope.AbsChar(saved)
				if end := rope.AbsChar(buf.Text().LenChars()); cursor > end {
					cursor = end
				}
			}
		}
		buf.SetCursor(p.ID(), cursor)

		if int(p.TopLine()) >= buf.Text().LenLines() {
			p.SetTopLine(0)
		}
	}

	return s, nil
}

// Buffer returns the buffer with the given id.
func (s *State) Buffer(bufID id.Buffer) (*buffer.Buffer, bool) {
	buf, ok := s.buffers[bufID]
	return buf, ok
}

// PaneTree returns the pane tree.
func (s *State) PaneTree() *pane.Tree {
	return s.paneTree
}

// Overlay returns the open overlay, or nil.
func (s *State) Overlay() *overlay.Overlay {
	return s.overlay
}

// LineHeight returns the configured line height in layout units.
func (s *State) LineHeight() float64 {
	return s.lineHeight
}

// RecalcLayout distributes the given area over the pane tree and, when
// an overlay is open, lays the overlay out across the top.
func (s *State) RecalcLayout(width, height float64) {
	s.width = width
	s.height = height
	s.paneTree.RecalcLayout(width, height)
	if s.overlay != nil {
		s.overlay.RecalcLayout(width, s.lineHeight)
	}
}

func (s *State) openOverlay(o *overlay.Overlay) {
	if s.overlay != nil {
		s.keys.stack.Pop()
	}
	s.overlay = o
	s.keys.stack.Push(o.KeyMap())
	if s.width > 0 {
		o.RecalcLayout(s.width, s.lineHeight)
	}
}

func (s *State) closeOverlay() {
	if s.overlay == nil {
		return
	}
	s.overlay = nil
	s.keys.stack.Pop()
}

// defaultOpenDir is the directory the file chooser starts in: the
// active buffer's directory, or the working directory for pathless
// buffers.
func (s *State) defaultOpenDir() string {
	if buf, err := s.activeBuffer(); err == nil && buf.Path() != "" {
		return filepath.Dir(buf.Path())
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// persistState saves the session. Persistence is best effort: failures
// are logged and never fail the action that triggered the save.
func (s *State) persistState() {
	if s.store == nil {
		return
	}

	snapshot, err := s.paneTree.Serialize()
	if err != nil {
		s.log.Warn("failed to serialize pane tree: %v", err)
		return
	}

	var records []persist.BufferRecord
	for bufID, buf := range s.buffers {
		if buf.Path() == "" {
			continue
		}
		cursors := make(map[id.Pane]int)
		for paneID, pos := range buf.Cursors() {
			cursors[paneID] = int(pos)
		}
		records = append(records, persist.BufferRecord{
			ID:      bufID,
			Path:    buf.Path(),
			Cursors: cursors,
		})
	}

	if err := s.store.Save(snapshot, records); err != nil {
		s.log.Warn("failed to persist session: %v", err)
	}
}
