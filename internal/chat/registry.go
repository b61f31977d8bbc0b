package chat

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is the server-wide table of live rooms. Every mutation
// pushes the updated room-id listing to the global user roster so
// connected clients always know which rooms exist.
//
// The registry has its own mutex, separate from any room's or roster's.
// Listings are rendered under that mutex and broadcast after it is
// released, so no code path ever holds two component locks at once.
type Registry struct {
	users *Roster

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry constructs an empty registry that announces room changes
// through the given global user roster.
func NewRegistry(users *Roster) *Registry {
	return &Registry{
		users: users,
		rooms: make(map[string]*Room),
	}
}

// AddRoom stores the room and broadcasts the updated listing. Returns
// ErrDuplicateRoom if the id is taken; nothing is mutated or broadcast
// in that case.
func (g *Registry) AddRoom(room *Room) error {
	g.mu.Lock()
	if _, ok := g.rooms[room.ID]; ok {
		g.mu.Unlock()
		return fmt.Errorf("add room %q: %w", room.ID, ErrDuplicateRoom)
	}
	g.rooms[room.ID] = room
	listing := g.renderLocked()
	g.mu.Unlock()

	g.users.Broadcast(listing)
	return nil
}

// RemoveRoom deletes the room by id and broadcasts the updated listing.
// Absent ids are a no-op.
func (g *Registry) RemoveRoom(room *Room) {
	g.mu.Lock()
	if _, ok := g.rooms[room.ID]; !ok {
		g.mu.Unlock()
		return
	}
	delete(g.rooms, room.ID)
	listing := g.renderLocked()
	g.mu.Unlock()

	g.users.Broadcast(listing)
}

// Contains reports whether a room with the given id is registered.
func (g *Registry) Contains(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.rooms[id]
	return ok
}

// Lookup returns the registered room for id, or false if none exists.
func (g *Registry) Lookup(id string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[id]
	return room, ok
}

// PushListing sends the current room-id listing to a single recipient.
// Used right after a connection registers, so it sees existing rooms
// without waiting for the next create or destroy.
func (g *Registry) PushListing(r Recipient) {
	r.Deliver(g.RenderListing())
}

// RenderListing returns the listing label followed by all room ids in
// lexicographic order, space-separated. No rooms renders as the bare
// label.
func (g *Registry) RenderListing() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.renderLocked()
}

const listingLabel = "rooms"

func (g *Registry) renderLocked() string {
	if len(g.rooms) == 0 {
		return listingLabel
	}

	ids := make([]string, 0, len(g.rooms))
	for id := range g.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return listingLabel + " " + strings.Join(ids, " ")
}
