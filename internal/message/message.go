// Package message carries asynchronous notifications into the editor's
// single-threaded event turn. Producers on other goroutines post into
// a queue; the event loop drains it between key presses.
package message

import "github.com/dmorey/caret/internal/engine/action"

// Message is one queued notification. The set is closed.
type Message interface {
	isMessage()
}

// Close asks the host event loop to shut the application down.
type Close struct{}

// Act asks the dispatcher to handle an action on its next turn. Used
// for subprocess output (AppendToBuffer, ProcessFinished).
type Act struct {
	Action action.Action
}

func (Close) isMessage() {}
func (Act) isMessage()   {}

// queueDepth bounds the number of undelivered messages. Subprocess
// readers block when the editor falls this far behind, which also
// throttles runaway process output.
const queueDepth = 256

// Queue is a FIFO, multi-producer single-consumer message queue.
type Queue struct {
	ch chan Message
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{ch: make(chan Message, queueDepth)}
}

// Post enqueues a message, blocking while the queue is full. Safe to
// call from any goroutine.
func (q *Queue) Post(m Message) {
	q.ch <- m
}

// TryPost enqueues without blocking. The bool is false when the queue
// is full and the message was not enqueued.
func (q *Queue) TryPost(m Message) bool {
	select {
	case q.ch <- m:
		return true
	default:
		return false
	}
}

// ForcePost enqueues without ever blocking the caller, dropping the
// oldest pending message when the queue is full. Only the consumer
// goroutine may call this: it is the one caller for which blocking in
// Post can never resolve.
func (q *Queue) ForcePost(m Message) {
	for !q.TryPost(m) {
		q.TryRecv()
	}
}

// C exposes the receive side for use in the event loop's select.
func (q *Queue) C() <-chan Message {
	return q.ch
}

// TryRecv receives without blocking. The bool is false when the queue
// is empty.
func (q *Queue) TryRecv() (Message, bool) {
	select {
	case m := <-q.ch:
		return m, true
	default:
		return nil, false
	}
}
