package chat

import (
	"fmt"
	"sync"
)

// Room is a named broadcast channel. It owns a roster of member
// connections, an inbound mailbox, and one delivery goroutine that
// drains the mailbox and fans each message out to the roster. A single
// consumer per mailbox is what gives a room its FIFO delivery order.
//
// A room is alive from construction until its membership drops to zero;
// the dead state is terminal. Creating a room with the id of a dead one
// yields a fresh, unrelated instance.
type Room struct {
	ID string

	registry *Registry
	members  *Roster
	inbox    *mailbox

	mu    sync.Mutex
	alive bool

	done chan struct{}
}

// NewRoom creates a room, registers it, seats the founder as its first
// member, and starts the delivery goroutine. Fails with
// ErrDuplicateRoom if the id is already registered, in which case
// nothing is mutated and no goroutine is started.
//
// Construction holds the room lock so a client that looks the room up
// mid-construction cannot join or leave before the founder is seated
// and delivery is running.
func NewRoom(id string, registry *Registry, founder Recipient) (*Room, error) {
	r := &Room{
		ID:       id,
		registry: registry,
		members:  NewRoster("members " + id),
		inbox:    newMailbox(),
		alive:    true,
		done:     make(chan struct{}),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := registry.AddRoom(r); err != nil {
		return nil, err
	}

	// The founder's name cannot collide in a roster of one.
	if err := r.members.Add(founder); err != nil {
		registry.RemoveRoom(r)
		return nil, err
	}

	go r.deliver()
	return r, nil
}

// Join adds the connection to the room and broadcasts the updated
// member listing. Fails with ErrRoomClosed once the room is dead and
// ErrAlreadyMember if the connection's name is already seated.
func (r *Room) Join(rec Recipient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.alive {
		return fmt.Errorf("join %q: %w", r.ID, ErrRoomClosed)
	}
	if r.members.Contains(rec.Name()) {
		return fmt.Errorf("join %q: %w", r.ID, ErrAlreadyMember)
	}
	return r.members.Add(rec)
}

// Leave removes the connection from the room and broadcasts the updated
// member listing. The last member out kills the room: the delivery
// goroutine is signalled to stop and, once it has, the room
// deregisters itself. The registry lock is taken after the room's own
// lock is released, sequentially, never nested.
func (r *Room) Leave(rec Recipient) {
	r.mu.Lock()
	r.members.Remove(rec.Name())

	died := false
	if r.alive && r.members.Size() == 0 {
		r.alive = false
		died = true
		r.inbox.Close()
	}
	r.mu.Unlock()

	if died {
		<-r.done
		r.registry.RemoveRoom(r)
	}
}

// Publish enqueues payload for delivery to the current membership. It
// never blocks beyond mailbox insertion; once the room is dead the
// payload is dropped.
func (r *Room) Publish(payload string) {
	r.inbox.Push(payload)
}

// IsAlive reports whether the room still accepts joins and messages.
func (r *Room) IsAlive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alive
}

// Members exposes the room's roster for inspection.
func (r *Room) Members() *Roster {
	return r.members
}

// deliver drains the inbox until the room dies, prefixing each payload
// with the room id.
func (r *Room) deliver() {
	defer close(r.done)

	for {
		payload, ok := r.inbox.Take()
		if !ok {
			return
		}
		r.members.Broadcast(r.ID + ": " + payload)
	}
}
