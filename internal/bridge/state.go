package bridge

import (
	"github.com/nerrad567/shade-bridge/internal/hub"
)

// StateView is a point-in-time snapshot of the tracked hub.
//
// A view is immutable after publication: the event loop replaces the whole
// snapshot through an atomic pointer swap whenever the hub's identity or
// reachability changes, and every reader works from the snapshot it loaded.
// Nothing outside the event loop may write one.
//
// Thread Safety: safe for concurrent reads; fields must never be mutated
// after the view is published.
type StateView struct {
	// Hub is the REST client bound to the hub's current address.
	Hub *hub.Client

	// User is the hub's last known identity record.
	User hub.UserData

	// Responding reports whether the last hub interaction succeeded.
	// While false the bridge publishes degraded availability but keeps
	// all discovery registrations in place.
	Responding bool

	// FirstRun is true until the first reconciliation pass completes.
	// It gates the one-time legacy-identifier delete phase.
	FirstRun bool

	// AvailabilityTopics lists every availability topic the last
	// successful pass announced. When the hub stops responding, each one
	// is flipped to offline so entities do not keep claiming a live hub.
	AvailabilityTopics []string
}
