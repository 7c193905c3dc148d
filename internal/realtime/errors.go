package realtime

import "errors"

// Client errors.
var (
	// ErrReconnectExhausted is returned when the reconnection budget runs
	// out without re-establishing the session. The client gives up; a
	// supervisor decides whether to restart it.
	ErrReconnectExhausted = errors.New("realtime: reconnect attempts exhausted")

	// ErrClosed is returned when an operation is attempted on a client
	// that has been shut down.
	ErrClosed = errors.New("realtime: client closed")
)
