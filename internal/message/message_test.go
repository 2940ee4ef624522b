package message

import (
	"sync"
	"testing"

	"github.com/dmorey/caret/internal/engine/action"
	"github.com/dmorey/caret/internal/engine/id"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	bufID := id.NewBuffer()

	chunks := []string{"one", "two", "three"}
	for _, c := range chunks {
		q.Post(Act{Action: action.AppendToBuffer{Buffer: bufID, Text: c}})
	}
	q.Post(Close{})

	for i, want := range chunks {
		m, ok := q.TryRecv()
		if !ok {
			t.Fatalf("message %d missing", i)
		}
		act, ok := m.(Act)
		if !ok {
			t.Fatalf("message %d = %T, want Act", i, m)
		}
		app := act.Action.(action.AppendToBuffer)
		if app.Text != want {
			t.Errorf("chunk %d = %q, want %q", i, app.Text, want)
		}
	}

	if m, ok := q.TryRecv(); !ok {
		t.Fatal("close message missing")
	} else if _, isClose := m.(Close); !isClose {
		t.Errorf("last message = %T, want Close", m)
	}

	if _, ok := q.TryRecv(); ok {
		t.Error("queue should be empty")
	}
}

func TestTryPostOnFullQueue(t *testing.T) {
	q := NewQueue()

	n := 0
	for q.TryPost(Close{}) {
		n++
	}
	if n != queueDepth {
		t.Fatalf("filled %d slots, want %d", n, queueDepth)
	}
	if q.TryPost(Close{}) {
		t.Error("TryPost should fail on a full queue")
	}
}

func TestForcePostNeverBlocks(t *testing.T) {
	q := NewQueue()
	bufID := id.NewBuffer()

	for q.TryPost(Act{Action: action.AppendToBuffer{Buffer: bufID}}) {
	}
	q.ForcePost(Close{})

	// The oldest message was dropped to make room; Close is the newest.
	got := 0
	var last Message
	for {
		m, ok := q.TryRecv()
		if !ok {
			break
		}
		last = m
		got++
	}
	if got != queueDepth {
		t.Errorf("drained %d messages, want %d", got, queueDepth)
	}
	if _, ok := last.(Close); !ok {
		t.Errorf("last message = %T, want Close", last)
	}
}

func TestQueueCrossGoroutine(t *testing.T) {
	q := NewQueue()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Post(Close{})
		}
	}()

	got := 0
	for got < n {
		<-q.C()
		got++
	}
	wg.Wait()
}
