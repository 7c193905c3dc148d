package bridge

import "errors"

var (
	// ErrMalformedCommand is returned when a command payload cannot be
	// decoded or names an impossible state.
	ErrMalformedCommand = errors.New("bridge: malformed command")

	// ErrUnexpectedTopic is returned when a message arrives on a topic the
	// bridge cannot parse.
	ErrUnexpectedTopic = errors.New("bridge: unexpected topic")
)
