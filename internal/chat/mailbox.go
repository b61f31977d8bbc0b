package chat

import "sync"

// mailbox is an unbounded FIFO queue decoupling producers from a single
// consumer goroutine. Push never blocks; Take blocks until an item is
// queued or the mailbox is closed. Close is the one-way stop signal:
// later pushes are dropped, and Take hands out whatever is still queued
// before reporting closed, so a consumer flushes its backlog on the way
// out.
type mailbox struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	items    []string
	closed   bool
}

func newMailbox() *mailbox {
	m := &mailbox{}
	m.nonEmpty = sync.NewCond(&m.mu)
	return m
}

// Push appends msg to the queue. Dropped silently once the mailbox is
// closed.
func (m *mailbox) Push(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.items = append(m.items, msg)
	m.nonEmpty.Signal()
}

// Take removes and returns the oldest queued item, blocking while the
// queue is empty. The second return is false once the mailbox is closed
// and drained.
func (m *mailbox) Take() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.items) == 0 && !m.closed {
		m.nonEmpty.Wait()
	}
	if len(m.items) == 0 {
		return "", false
	}

	msg := m.items[0]
	m.items = m.items[1:]
	return msg, true
}

// Close wakes any blocked Take. Safe to call more than once.
func (m *mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.nonEmpty.Broadcast()
}

// Len reports how many items are queued.
func (m *mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
