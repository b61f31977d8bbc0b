package chat

import "regexp"

// Command grammar, one line per command:
//
//	disconnect
//	make <roomId>
//	join <roomId>
//	exit <roomId>
//	message <roomId> <text>
//
// Room ids are runs of graphic (printable, non-whitespace) characters;
// message text is any printable run. Anything else is unrecognized and
// answered with an echo of the offending line.
const (
	cmdDisconnect = "disconnect"
	cmdMake       = "make"
	cmdJoin       = "join"
	cmdExit       = "exit"
	cmdMessage    = "message"
)

var (
	connectPattern = regexp.MustCompile(`^connect ([[:graph:]]+)$`)
	roomCmdPattern = regexp.MustCompile(`^(make|join|exit) ([[:graph:]]+)$`)
	messagePattern = regexp.MustCompile(`^message ([[:graph:]]+) ([[:print:]]+)$`)
)

// command is one parsed protocol line.
type command struct {
	verb string
	room string
	text string
}

// parseCommand applies the grammar to one line. ok is false for lines
// that match no production.
func parseCommand(line string) (cmd command, ok bool) {
	if line == cmdDisconnect {
		return command{verb: cmdDisconnect}, true
	}
	if m := roomCmdPattern.FindStringSubmatch(line); m != nil {
		return command{verb: m[1], room: m[2]}, true
	}
	if m := messagePattern.FindStringSubmatch(line); m != nil {
		return command{verb: cmdMessage, room: m[1], text: m[2]}, true
	}
	return command{}, false
}

// parseConnect extracts the username from a handshake line, or reports
// failure for anything that is not exactly "connect <username>".
func parseConnect(line string) (username string, ok bool) {
	m := connectPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}
