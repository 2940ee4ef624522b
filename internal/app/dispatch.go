package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/dmorey/caret/internal/engine/action"
	"github.com/dmorey/caret/internal/engine/buffer"
	"github.com/dmorey/caret/internal/engine/pane"
	"github.com/dmorey/caret/internal/message"
	"github.com/dmorey/caret/internal/overlay"
	"github.com/dmorey/caret/internal/process"
)

// ErrNoPath is returned when saving a buffer that has no file path.
var ErrNoPath = errors.New("buffer has no file path")

var errInvalidActiveBuffer = errors.New("active pane points to unknown buffer")

// activeBuffer returns the buffer key input goes to: the overlay's
// input buffer when an overlay is open, the active pane's buffer
// otherwise.
func (s *State) activeBuffer() (*buffer.Buffer, error) {
	if s.overlay != nil {
		return s.overlay.Buffer(), nil
	}
	buf, ok := s.buffers[s.paneTree.Active().BufferID()]
	if !ok {
		return nil, errInvalidActiveBuffer
	}
	return buf, nil
}

func (s *State) activePaneBuffer() (*pane.Pane, *buffer.Buffer, error) {
	if s.overlay != nil {
		return s.overlay.Pane(), s.overlay.Buffer(), nil
	}
	p := s.paneTree.Active()
	buf, ok := s.buffers[p.BufferID()]
	if !ok {
		return nil, nil, errInvalidActiveBuffer
	}
	return p, buf, nil
}

// treeActiveBuffer ignores any open overlay and returns the active
// tree pane and its buffer. Pane operations and search jumps act on
// the tree even while an overlay is capturing text input.
func (s *State) treeActiveBuffer() (*pane.Pane, *buffer.Buffer, error) {
	p := s.paneTree.Active()
	buf, ok := s.buffers[p.BufferID()]
	if !ok {
		return nil, nil, errInvalidActiveBuffer
	}
	return p, buf, nil
}

// pageLines is the number of text lines one page movement covers in
// the given pane.
func (s *State) pageLines(p *pane.Pane) int {
	n := int(p.Rect().Height / s.lineHeight)
	if n < 1 {
		return defaultPageLines
	}
	return n
}

func (s *State) insertRune(r rune) error {
	p, buf, err := s.activePaneBuffer()
	if err != nil {
		return err
	}
	buf.InsertRune(r, buf.Cursor(p.ID()))
	return nil
}

// insertLineAfter opens a new line below the cursor. The cursor stays
// where it was, even when it sits at the end of the line.
func (s *State) insertLineAfter() error {
	p, buf, err := s.activePaneBuffer()
	if err != nil {
		return err
	}
	cursor := buf.Cursor(p.ID())
	end := buf.FindBoundary(cursor, buffer.LineEnd, buffer.Forward)
	buf.InsertString("\n", end)
	buf.SetCursor(p.ID(), cursor)
	return nil
}

func (s *State) moveCursor(step buffer.Move, dir buffer.Direction) error {
	p, buf, err := s.activePaneBuffer()
	if err != nil {
		return err
	}
	buf.MoveCursor(p.ID(), step, dir, s.pageLines(p))
	p.MaybeRescroll(buf, buf.Cursor(p.ID()), s.lineHeight)
	return nil
}

func (s *State) deleteText(boundary buffer.Boundary, dir buffer.Direction) error {
	p, buf, err := s.activePaneBuffer()
	if err != nil {
		return err
	}
	pos := buf.Cursor(p.ID())
	edge := buf.FindBoundary(pos, boundary, dir)
	if pos == edge {
		return nil
	}
	if pos < edge {
		buf.DeleteText(pos, edge)
	} else {
		buf.DeleteText(edge, pos)
	}
	return nil
}

func (s *State) splitPane(orientation pane.Orientation) error {
	active, buf, err := s.treeActiveBuffer()
	if err != nil {
		return err
	}
	cursor := buf.Cursor(active.ID())
	newPane := s.paneTree.Split(orientation)
	buf.SetCursor(newPane.ID(), cursor)
	if s.width > 0 {
		s.paneTree.RecalcLayout(s.width, s.height)
	}
	return nil
}

func (s *State) closePane() {
	closed := s.paneTree.CloseActive()
	if closed == nil {
		s.log.Debug("refusing to close the last pane")
		return
	}
	if buf, ok := s.buffers[closed.BufferID()]; ok {
		buf.RemoveCursor(closed.ID())
	}
	if s.width > 0 {
		s.paneTree.RecalcLayout(s.width, s.height)
	}
}

// deleteBuffer removes the active pane's buffer. Every pane showing it
// is switched to a surviving buffer first, so no pane ever points at a
// dead buffer. Deleting the only buffer swaps in a fresh scratch.
func (s *State) deleteBuffer() error {
	_, buf, err := s.treeActiveBuffer()
	if err != nil {
		return err
	}
	victim := buf.ID()

	var replacement *buffer.Buffer
	for bufID, other := range s.buffers {
		if bufID != victim {
			replacement = other
			break
		}
	}
	if replacement == nil {
		replacement = buffer.NewEmpty()
		s.buffers[replacement.ID()] = replacement
	}

	for _, p := range s.paneTree.Panes() {
		if p.BufferID() == victim {
			p.SwitchBuffer(s.buffers, replacement.ID())
		}
	}

	delete(s.buffers, victim)
	return nil
}

// OpenPath loads the file at path into a new buffer and shows it in
// the active pane.
func (s *State) OpenPath(path string) error {
	return s.openFileAtPath(path)
}

func (s *State) openFileAtPath(path string) error {
	buf, err := buffer.FromPath(path)
	if err != nil {
		return err
	}
	s.buffers[buf.ID()] = buf
	s.paneTree.Active().SwitchBuffer(s.buffers, buf.ID())
	return nil
}

func (s *State) saveFile() error {
	buf, err := s.activeBuffer()
	if err != nil {
		return err
	}
	if buf.Path() == "" {
		return ErrNoPath
	}
	if err := os.WriteFile(buf.Path(), []byte(buf.Text().String()), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", buf.Path(), err)
	}
	return nil
}

// searchNext moves the active tree pane's cursor to the next match of
// the buffer's search state, if any.
func (s *State) searchNext() error {
	p, buf, err := s.treeActiveBuffer()
	if err != nil {
		return err
	}
	search := buf.SearchState()
	if search == nil {
		return nil
	}
	pos := buffer.LinePositionFromAbsChar(buf.Cursor(p.ID()), buf)
	if m, ok := search.NextMatch(pos); ok {
		cursor := m.ToAbsChar(buf)
		buf.SetCursor(p.ID(), cursor)
		p.MaybeRescroll(buf, cursor, s.lineHeight)
	}
	return nil
}

// handleConfirm commits the open overlay. Fallible effects run first
// and keep the overlay (and its typed input) alive on failure; the
// overlay closes only once the effect cannot fail anymore.
func (s *State) handleConfirm(queue *message.Queue) error {
	if s.overlay == nil {
		return nil
	}
	kind := s.overlay.Kind()
	text := s.overlay.Text()

	switch kind {
	case overlay.KindOpenFile:
		if err := s.openFileAtPath(text); err != nil {
			return err
		}
		s.closeOverlay()
		return nil

	case overlay.KindRunProcess:
		buf := buffer.NewEmpty()
		proc, err := process.Start(text, buf.ID(), queue, s.log)
		if err != nil {
			return err
		}
		s.closeOverlay()
		s.buffers[buf.ID()] = buf
		s.processes[buf.ID()] = proc
		s.paneTree.Active().SwitchBuffer(s.buffers, buf.ID())
		return nil

	case overlay.KindSearch:
		s.closeOverlay()
		if err := s.searchNext(); err != nil {
			return err
		}
		_, buf, err := s.treeActiveBuffer()
		if err != nil {
			return err
		}
		buf.ClearSearch()
		return nil
	}
	return nil
}

// handleBufferChanged runs after any action that edited a buffer. The
// open-file overlay refreshes its suggestions; the search overlay
// rescans the visible window of the pane under it.
func (s *State) handleBufferChanged() error {
	if s.overlay == nil {
		return nil
	}
	switch s.overlay.Kind() {
	case overlay.KindOpenFile:
		return s.overlay.UpdateSuggestions()
	case overlay.KindSearch:
		p, buf, err := s.treeActiveBuffer()
		if err != nil {
			return err
		}
		buf.Search(s.overlay.Text(), p.ID(), p.TopLine(), s.pageLines(p))
	}
	return nil
}

// HandleAction applies one action to the editor state. Actions are
// atomic: validation happens before any mutation, so a failed action
// leaves the state as it was. After every action the session is saved
// when persistence is enabled; save failures are logged only.
func (s *State) HandleAction(act action.Action, queue *message.Queue) error {
	s.log.Debug("handling action %T", act)

	bufferChanged := false
	var err error

	switch a := act.(type) {
	case action.Exit:
		// The handler runs on the queue's consumer goroutine, so a
		// blocking post on a full queue would never drain.
		queue.ForcePost(message.Close{})

	case action.Insert:
		err = s.insertRune(a.Rune)
		bufferChanged = true

	case action.InsertLineAfter:
		err = s.insertLineAfter()
		bufferChanged = true

	case action.Move:
		err = s.moveCursor(a.Step, a.Direction)

	case action.Delete:
		err = s.deleteText(a.Boundary, a.Direction)
		bufferChanged = true

	case action.Undo:
		var buf *buffer.Buffer
		if buf, err = s.activeBuffer(); err == nil {
			buf.Undo()
			bufferChanged = true
		}

	case action.Redo:
		var buf *buffer.Buffer
		if buf, err = s.activeBuffer(); err == nil {
			buf.Redo()
			bufferChanged = true
		}

	case action.InteractiveSearch:
		var o *overlay.Overlay
		if o, err = overlay.NewSearch(); err == nil {
			s.openOverlay(o)
		}

	case action.SearchNext:
		err = s.searchNext()

	case action.SplitPane:
		err = s.splitPane(a.Orientation)

	case action.ClosePane:
		s.closePane()

	case action.PreviousPane:
		s.paneTree.MakePreviousActive()

	case action.NextPane:
		s.paneTree.MakeNextActive()

	case action.DeleteBuffer:
		err = s.deleteBuffer()

	case action.OpenFile:
		var o *overlay.Overlay
		if o, err = overlay.NewOpenFile(s.defaultOpenDir()); err == nil {
			s.openOverlay(o)
		}

	case action.SaveFile:
		err = s.saveFile()

	case action.Confirm:
		err = s.handleConfirm(queue)

	case action.Cancel:
		if s.overlay != nil {
			s.closeOverlay()
		} else if buf, bufErr := s.activeBuffer(); bufErr == nil {
			buf.ClearSearch()
		}

	case action.Autocomplete:
		if s.overlay != nil && s.overlay.Kind() == overlay.KindOpenFile {
			err = s.overlay.Autocomplete()
			bufferChanged = true
		}

	case action.RunNonInteractiveProcess:
		var o *overlay.Overlay
		if o, err = overlay.NewRunProcess(); err == nil {
			s.openOverlay(o)
		}

	case action.AppendToBuffer:
		buf, ok := s.buffers[a.Buffer]
		if !ok {
			err = fmt.Errorf("append to unknown buffer %s", a.Buffer)
			break
		}
		buf.Append(a.Text)
		bufferChanged = true

	case action.ProcessFinished:
		delete(s.processes, a.Buffer)
		if a.Err != nil {
			s.log.Warn("process output stream for buffer %s failed: %v", a.Buffer, a.Err)
		}

	default:
		err = fmt.Errorf("unhandled action %T", act)
	}

	if err != nil {
		return err
	}
	if bufferChanged {
		if err := s.handleBufferChanged(); err != nil {
			return err
		}
	}

	s.persistState()
	return nil
}
