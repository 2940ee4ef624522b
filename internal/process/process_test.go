package process

import (
	"strings"
	"testing"
	"time"

	"github.com/dmorey/caret/internal/engine/action"
	"github.com/dmorey/caret/internal/engine/id"
	"github.com/dmorey/caret/internal/logging"
	"github.com/dmorey/caret/internal/message"
)

// drain reads messages until the finished notification, returning the
// concatenated appended text.
func drain(t *testing.T, q *message.Queue, bufID id.Buffer) (string, action.ProcessFinished) {
	t.Helper()
	var out strings.Builder
	deadline := time.After(5 * time.Second)
	for {
		select {
		case m := <-q.C():
			act, ok := m.(message.Act)
			if !ok {
				t.Fatalf("unexpected message %T", m)
			}
			switch a := act.Action.(type) {
			case action.AppendToBuffer:
				if a.Buffer != bufID {
					t.Fatalf("append for buffer %s, want %s", a.Buffer, bufID)
				}
				out.WriteString(a.Text)
			case action.ProcessFinished:
				if a.Buffer != bufID {
					t.Fatalf("finish for buffer %s, want %s", a.Buffer, bufID)
				}
				return out.String(), a
			default:
				t.Fatalf("unexpected action %T", a)
			}
		case <-deadline:
			t.Fatal("timed out waiting for process output")
		}
	}
}

func TestStartStreamsOutputThenFinishes(t *testing.T) {
	q := message.NewQueue()
	bufID := id.NewBuffer()

	p, err := Start("echo hello!", bufID, q, logging.NullLogger)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	out, fin := drain(t, q, bufID)
	if out != "hello!\n" {
		t.Errorf("output = %q, want %q", out, "hello!\n")
	}
	if fin.Err != nil {
		t.Errorf("finish error = %v, want nil", fin.Err)
	}

	<-p.Done()
	// Nothing may follow the finished notification.
	if m, ok := q.TryRecv(); ok {
		t.Errorf("unexpected message after finish: %#v", m)
	}
}

func TestStartPreservesChunkOrder(t *testing.T) {
	q := message.NewQueue()
	bufID := id.NewBuffer()

	if _, err := Start("seq 1 200", bufID, q, logging.NullLogger); err != nil {
		t.Fatalf("Start: %v", err)
	}

	out, _ := drain(t, q, bufID)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 200 {
		t.Fatalf("got %d lines, want 200", len(lines))
	}
	if lines[0] != "1" || lines[199] != "200" {
		t.Errorf("lines out of order: first %q last %q", lines[0], lines[199])
	}
}

func TestStartEmptyCommand(t *testing.T) {
	q := message.NewQueue()
	if _, err := Start("   ", id.NewBuffer(), q, logging.NullLogger); err != ErrEmptyCommand {
		t.Errorf("err = %v, want ErrEmptyCommand", err)
	}
}

func TestStartMissingProgram(t *testing.T) {
	q := message.NewQueue()
	_, err := Start("definitely-not-a-real-program-xyz", id.NewBuffer(), q, logging.NullLogger)
	if err == nil {
		t.Error("want spawn error for missing program")
	}
	if m, ok := q.TryRecv(); ok {
		t.Errorf("spawn failure should not post messages, got %#v", m)
	}
}
