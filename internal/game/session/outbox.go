// Package session tracks connected players and queues the text the world
// sends them.
package session

import (
	"fmt"
	"sync"
)

// DefaultBufferSize is the outbox capacity used when none is configured.
const DefaultBufferSize = 64

// Outbox is a bounded queue of lines for one connection. The reader side
// drains Lines; the world side pushes without blocking.
type Outbox struct {
	owner  string
	lines  chan string
	mu     sync.Mutex
	closed bool
}

// NewOutbox creates an Outbox labelled owner for error messages.
//
// Postcondition: Returns an Outbox with an open channel of capacity
// bufferSize, or DefaultBufferSize when bufferSize <= 0.
func NewOutbox(owner string, bufferSize int) *Outbox {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Outbox{
		owner: owner,
		lines: make(chan string, bufferSize),
	}
}

// Push enqueues text.
//
// Postcondition: text is enqueued, or an error is returned if the outbox is
// closed or full.
func (o *Outbox) Push(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("outbox %s is closed", o.owner)
	}
	select {
	case o.lines <- text:
		return nil
	default:
		return fmt.Errorf("outbox %s buffer full", o.owner)
	}
}

// Lines returns the read side of the queue. It is closed by Close.
func (o *Outbox) Lines() <-chan string {
	return o.lines
}

// Close closes the queue. Further Push calls return an error.
func (o *Outbox) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.closed {
		o.closed = true
		close(o.lines)
	}
	return nil
}

// IsClosed reports whether the outbox has been closed.
func (o *Outbox) IsClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
