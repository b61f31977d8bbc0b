package chat

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Recipient is anything that can accept outbound chat lines by name.
// Connections implement it; tests substitute in-memory fakes.
type Recipient interface {
	// Name returns the unique name the recipient is keyed by.
	Name() string
	// Deliver enqueues one line for the recipient. Must not block on
	// network I/O.
	Deliver(msg string)
}

// Roster is a thread-safe set of named recipients with sorted textual
// rendering. The server keeps one global Roster of connected users and
// each room keeps one of its members; the two differ only by label.
//
// Membership changes and Render are mutually exclusive on a single
// mutex. Delivery is not: every broadcast snapshots the member list
// under the lock and writes to mailboxes after releasing it, so a slow
// recipient never holds up roster mutation, and an add or remove racing
// a broadcast affects only later broadcasts.
type Roster struct {
	label string

	mu      sync.Mutex
	members map[string]Recipient
}

// NewRoster constructs an empty roster rendered under the given label.
func NewRoster(label string) *Roster {
	return &Roster{
		label:   label,
		members: make(map[string]Recipient),
	}
}

// Add inserts r and broadcasts the updated rendering to every member,
// the new one included. Returns ErrDuplicateName if the name is taken;
// nothing is mutated or broadcast in that case.
func (ro *Roster) Add(r Recipient) error {
	ro.mu.Lock()
	if _, ok := ro.members[r.Name()]; ok {
		ro.mu.Unlock()
		return fmt.Errorf("add %q: %w", r.Name(), ErrDuplicateName)
	}
	ro.members[r.Name()] = r
	listing := ro.renderLocked()
	snapshot := ro.snapshotLocked()
	ro.mu.Unlock()

	deliverAll(snapshot, listing)
	return nil
}

// Remove deletes the named member if present and broadcasts the updated
// rendering to the remaining members. Absent names are a no-op.
func (ro *Roster) Remove(name string) {
	ro.mu.Lock()
	if _, ok := ro.members[name]; !ok {
		ro.mu.Unlock()
		return
	}
	delete(ro.members, name)
	listing := ro.renderLocked()
	snapshot := ro.snapshotLocked()
	ro.mu.Unlock()

	deliverAll(snapshot, listing)
}

// Contains reports whether the named member is present.
func (ro *Roster) Contains(name string) bool {
	ro.mu.Lock()
	defer ro.mu.Unlock()

	_, ok := ro.members[name]
	return ok
}

// Size returns the current member count.
func (ro *Roster) Size() int {
	ro.mu.Lock()
	defer ro.mu.Unlock()
	return len(ro.members)
}

// Render returns the label followed by all member names in
// lexicographic order, space-separated. An empty roster renders as the
// bare label.
func (ro *Roster) Render() string {
	ro.mu.Lock()
	defer ro.mu.Unlock()
	return ro.renderLocked()
}

// Broadcast delivers msg to every member present when the call takes
// its snapshot. Members that leave mid-delivery still receive it;
// members added mid-delivery do not.
func (ro *Roster) Broadcast(msg string) {
	ro.mu.Lock()
	snapshot := ro.snapshotLocked()
	ro.mu.Unlock()

	deliverAll(snapshot, msg)
}

func (ro *Roster) renderLocked() string {
	if len(ro.members) == 0 {
		return ro.label
	}

	names := make([]string, 0, len(ro.members))
	for name := range ro.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return ro.label + " " + strings.Join(names, " ")
}

func (ro *Roster) snapshotLocked() []Recipient {
	snapshot := make([]Recipient, 0, len(ro.members))
	for _, r := range ro.members {
		snapshot = append(snapshot, r)
	}
	return snapshot
}

func deliverAll(recipients []Recipient, msg string) {
	for _, r := range recipients {
		r.Deliver(msg)
	}
}
