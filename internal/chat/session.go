package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
)

const (
	handshakePrompt = `To connect type: "connect [username]"`
	handshakeReply  = "Connected"
	disconnectReply = "disconnected"
)

// HandleSession runs one client session over any line-oriented stream:
// handshake, registration in the global roster, command dispatch until
// the client disconnects or the stream dies, then cleanup. The TCP and
// SSH front-ends both funnel accepted streams here.
//
// A failed handshake — malformed connect line, end of stream, or a
// username already online — writes the reason to the raw stream and
// closes it; nothing is registered.
func HandleSession(users *Roster, registry *Registry, stream io.ReadWriteCloser, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}

	scanner := bufio.NewScanner(stream)

	username, err := handshake(stream, scanner)
	if err != nil {
		reject(stream, err, logger)
		return
	}

	conn := newConnection(username, stream, users, registry, logger)

	// Queued ahead of the roster broadcast so it is the first line the
	// writer flushes.
	conn.Deliver(handshakeReply)

	if err := users.Add(conn); err != nil {
		reject(stream, err, logger)
		return
	}

	defer conn.close()
	conn.startWriter()
	registry.PushListing(conn)

	logger.Printf("chat: session %s user %q connected", conn.id, conn.username)

	conn.readLoop(scanner)
}

// handshake prompts for and validates the connect line, returning the
// username it carries.
func handshake(stream io.Writer, scanner *bufio.Scanner) (string, error) {
	if _, err := io.WriteString(stream, handshakePrompt+"\n"); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}

	if !scanner.Scan() {
		return "", fmt.Errorf("%w: stream closed before connect", ErrBadHandshake)
	}

	username, ok := parseConnect(scanner.Text())
	if !ok {
		return "", ErrBadHandshake
	}
	return username, nil
}

func reject(stream io.WriteCloser, err error, logger *log.Logger) {
	_, _ = io.WriteString(stream, reason(err)+"\n")
	_ = stream.Close()
	logger.Printf("chat: session rejected: %v", err)
}

// readLoop consumes one command line at a time until disconnect, end of
// stream, or an IO error. Either way the deferred close in
// HandleSession runs the full cleanup exactly once.
func (c *Connection) readLoop(scanner *bufio.Scanner) {
	for scanner.Scan() {
		reply, quit := c.dispatch(scanner.Text())
		if reply != "" {
			c.Deliver(reply)
		}
		if quit {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Printf("chat: session %s user %q connection lost: %v", c.id, c.username, err)
	}
}

// dispatch interprets one protocol line and returns at most one reply
// for the sender, plus whether the session should end. Command failures
// are converted to replies here and never escape.
func (c *Connection) dispatch(line string) (reply string, quit bool) {
	cmd, ok := parseCommand(line)
	if !ok {
		return "Unrecognized Command: " + line, false
	}

	switch cmd.verb {
	case cmdDisconnect:
		return disconnectReply, true

	case cmdMake:
		room, err := NewRoom(cmd.room, c.registry, c)
		if err != nil {
			return badRoomReply(cmd.room, err), false
		}
		c.remember(room)
		return c.registry.RenderListing(), false

	case cmdJoin:
		room, ok := c.registry.Lookup(cmd.room)
		if !ok {
			return badRoomReply(cmd.room, ErrNotFound), false
		}
		if err := room.Join(c); err != nil {
			return badRoomReply(cmd.room, err), false
		}
		c.remember(room)
		return "", false

	case cmdExit:
		room := c.forget(cmd.room)
		if room == nil {
			return badRoomReply(cmd.room, ErrNotMember), false
		}
		room.Leave(c)
		return "", false

	case cmdMessage:
		// Silently ignored unless the sender is a member.
		if room := c.joined(cmd.room); room != nil {
			room.Publish(c.username + " " + cmd.text)
		}
		return "", false
	}

	return "Unrecognized Command: " + line, false
}

// badRoomReply formats a room-command failure for the sender, keyed on
// the tagged error kind rather than wrapped message text.
func badRoomReply(id string, err error) string {
	return "badRoom " + id + " " + reason(err)
}

var errKinds = []error{
	ErrBadHandshake,
	ErrDuplicateName,
	ErrDuplicateRoom,
	ErrNotFound,
	ErrRoomClosed,
	ErrAlreadyMember,
	ErrNotMember,
}

// reason reduces an error to the text of its tagged kind, falling back
// to the full message for anything outside the taxonomy.
func reason(err error) string {
	for _, kind := range errKinds {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return err.Error()
}
