package chat

import (
	"bufio"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Connection is one client's session: the stream, an unbounded outbound
// mailbox drained by a dedicated writer goroutine, and the set of rooms
// the client currently belongs to. Rooms and the registry reach a
// connection only through Deliver, so nothing outside the writer
// goroutine ever blocks on this client's network.
type Connection struct {
	username string
	id       string

	stream   io.ReadWriteCloser
	out      *mailbox
	users    *Roster
	registry *Registry
	logger   *log.Logger

	mu    sync.Mutex
	rooms map[string]*Room

	writer   sync.WaitGroup
	teardown sync.Once
}

func newConnection(username string, stream io.ReadWriteCloser, users *Roster, registry *Registry, logger *log.Logger) *Connection {
	return &Connection{
		username: username,
		id:       uuid.NewString(),
		stream:   stream,
		out:      newMailbox(),
		users:    users,
		registry: registry,
		logger:   logger,
		rooms:    make(map[string]*Room),
	}
}

// Name returns the session username. Part of the Recipient contract.
func (c *Connection) Name() string {
	return c.username
}

// Deliver enqueues one line for the client. Part of the Recipient
// contract; never blocks on network I/O.
func (c *Connection) Deliver(msg string) {
	c.out.Push(msg)
}

// startWriter spawns the goroutine that flushes the outbound mailbox to
// the stream, one line per item, in enqueue order.
func (c *Connection) startWriter() {
	c.writer.Add(1)
	go func() {
		defer c.writer.Done()

		w := bufio.NewWriter(c.stream)
		for {
			msg, ok := c.out.Take()
			if !ok {
				return
			}
			if _, err := w.WriteString(msg + "\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}()
}

// remember records membership in a room. Reports false if the room is
// already recorded.
func (c *Connection) remember(room *Room) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.rooms[room.ID]; ok {
		return false
	}
	c.rooms[room.ID] = room
	return true
}

// forget drops the membership record for a room id, returning the room
// or nil if it was never recorded.
func (c *Connection) forget(id string) *Room {
	c.mu.Lock()
	defer c.mu.Unlock()

	room := c.rooms[id]
	delete(c.rooms, id)
	return room
}

// joined returns the recorded room for id, or nil.
func (c *Connection) joined(id string) *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms[id]
}

// close tears the session down exactly once, whatever path got us here:
// stop the writer (it drains the mailbox first), leave every joined
// room, deregister from the global roster, then close the stream. Runs
// to completion even when the peer is already gone.
func (c *Connection) close() {
	c.teardown.Do(func() {
		c.out.Close()

		c.mu.Lock()
		rooms := make([]*Room, 0, len(c.rooms))
		for _, room := range c.rooms {
			rooms = append(rooms, room)
		}
		c.rooms = make(map[string]*Room)
		c.mu.Unlock()

		for _, room := range rooms {
			room.Leave(c)
		}

		c.users.Remove(c.username)

		c.writer.Wait()
		_ = c.stream.Close()

		c.logger.Printf("chat: session %s user %q closed", c.id, c.username)
	})
}
