package bridge

import "errors"

// Domain-specific errors for the bridge core.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownCommand indicates a command topic payload outside the
	// fixed token vocabulary. The message is logged and dropped.
	ErrUnknownCommand = errors.New("bridge: unknown command token")

	// ErrInvalidShadeID indicates a topic shade id that is not a number,
	// optionally suffixed for the secondary rail.
	ErrInvalidShadeID = errors.New("bridge: invalid shade id")

	// ErrInvalidPercent indicates a position outside 0-100.
	ErrInvalidPercent = errors.New("bridge: position out of range")

	// ErrServerClosed indicates an enqueue after the event loop stopped.
	ErrServerClosed = errors.New("bridge: server closed")
)
