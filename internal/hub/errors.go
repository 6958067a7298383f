package hub

import "errors"

// Domain-specific errors for hub operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrHubUnresponsive indicates the hub did not answer within the request
	// timeout, or the connection could not be established. The bridge treats
	// this as a reachability change, not a fatal error.
	ErrHubUnresponsive = errors.New("hub: unresponsive")

	// ErrUnexpectedStatus indicates the hub answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("hub: unexpected response status")

	// ErrNotFound indicates the hub answered 404 for the requested
	// resource, typically a shade or scene id that no longer exists.
	ErrNotFound = errors.New("hub: not found")

	// ErrNoPosition indicates a shade has no recorded position to start from.
	ErrNoPosition = errors.New("hub: shade has no position data")

	// ErrInvalidMotion indicates an unsupported motion verb.
	ErrInvalidMotion = errors.New("hub: invalid motion")

	// ErrInvalidPowerSource indicates an unsupported power source kind.
	ErrInvalidPowerSource = errors.New("hub: invalid power source")
)
