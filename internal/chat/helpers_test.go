package chat

import (
	"testing"
	"time"
)

// fakeRecipient captures delivered lines on a buffered channel so tests
// can assert on both synchronous roster broadcasts and asynchronous
// room delivery.
type fakeRecipient struct {
	name  string
	inbox chan string
}

func newFakeRecipient(name string) *fakeRecipient {
	return &fakeRecipient{
		name:  name,
		inbox: make(chan string, 64),
	}
}

func (f *fakeRecipient) Name() string {
	return f.name
}

func (f *fakeRecipient) Deliver(msg string) {
	f.inbox <- msg
}

// next returns the oldest delivered line, failing the test if nothing
// arrives in time.
func (f *fakeRecipient) next(t *testing.T) string {
	t.Helper()

	select {
	case msg := <-f.inbox:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery to %q", f.name)
		return ""
	}
}

// expectNone asserts that no line is delivered within a short window.
func (f *fakeRecipient) expectNone(t *testing.T) {
	t.Helper()

	select {
	case msg := <-f.inbox:
		t.Fatalf("unexpected delivery to %q: %q", f.name, msg)
	case <-time.After(100 * time.Millisecond):
	}
}

// inboxLen reports how many lines are queued right now.
func (f *fakeRecipient) inboxLen() int {
	return len(f.inbox)
}

// drain discards everything queued so far.
func (f *fakeRecipient) drain() {
	for {
		select {
		case <-f.inbox:
		default:
			return
		}
	}
}
