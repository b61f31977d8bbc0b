package chat

import "errors"

// Failure kinds callers are expected to branch on with errors.Is.
// Command dispatch turns these into protocol replies; nothing in the
// package compares error message text.
var (
	// ErrBadHandshake reports a malformed or absent connect line. The
	// connection must not be registered afterwards.
	ErrBadHandshake = errors.New("invalid handshake, expected: connect [username]")

	// ErrDuplicateName reports a username already present in a roster.
	ErrDuplicateName = errors.New("username already exists")

	// ErrDuplicateRoom reports a room id already present in the registry.
	ErrDuplicateRoom = errors.New("room already exists")

	// ErrNotFound reports a room id absent from the registry.
	ErrNotFound = errors.New("room does not exist")

	// ErrRoomClosed reports a join on a room that already died.
	ErrRoomClosed = errors.New("room no longer exists")

	// ErrAlreadyMember reports a join by a connection that is already
	// a member of the room.
	ErrAlreadyMember = errors.New("already a member")

	// ErrNotMember reports an exit for a room the connection never
	// joined or already left.
	ErrNotMember = errors.New("not a member")
)
