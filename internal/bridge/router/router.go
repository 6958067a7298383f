package router

import (
	"context"
	"fmt"
)

// Subscriber issues MQTT subscriptions for registered routes. The
// infrastructure client satisfies this through a thin adapter; tests use a
// recording fake.
type Subscriber interface {
	Subscribe(filter string) error
}

// Logger is the minimal logging surface the router needs. Compatible with
// logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
}

// Router maps topic routes to handlers over a shared state value.
//
// Registration happens once at startup; Dispatch is then called from a
// single goroutine (the bridge event loop consumer). Routes match in
// registration order and the first match wins, so registration order is
// part of the route table's contract.
//
// Thread Safety:
//   - Register is not safe concurrently with Dispatch. Finish wiring the
//     table before the first message arrives.
type Router[S any] struct {
	state  S
	sub    Subscriber
	logger Logger
	routes []boundRoute[S]
}

// boundRoute pairs a compiled pattern with its handler.
type boundRoute[S any] struct {
	pattern *Pattern
	handler Handler[S]
}

// New creates a Router dispatching to handlers with the given state.
//
// Parameters:
//   - state: Shared state passed to every handler
//   - sub: Subscription capability; one Subscribe per registered route
//   - logger: Debug logging for unmatched topics, may be nil
func New[S any](state S, sub Subscriber, logger Logger) *Router[S] {
	return &Router[S]{
		state:  state,
		sub:    sub,
		logger: logger,
	}
}

// Register compiles a route, verifies it cannot collide with any existing
// route, subscribes to its filter, and adds it to the table.
//
// A route is ambiguous when some concrete topic would match it and an
// already registered route. That is a wiring bug, so it fails loudly here
// rather than silently shadowing at dispatch time.
//
// Returns:
//   - error: ErrRouteCompile, ErrRouteAmbiguous, or the subscribe failure
func (r *Router[S]) Register(route string, handler Handler[S]) error {
	pattern, err := Compile(route)
	if err != nil {
		return err
	}

	for _, existing := range r.routes {
		if pattern.overlaps(existing.pattern) {
			return fmt.Errorf("%w: %q overlaps %q", ErrRouteAmbiguous, route, existing.pattern.Route())
		}
	}

	if err := r.sub.Subscribe(pattern.Filter()); err != nil {
		return fmt.Errorf("subscribing %q for route %q: %w", pattern.Filter(), route, err)
	}

	r.routes = append(r.routes, boundRoute[S]{pattern: pattern, handler: handler})
	return nil
}

// Dispatch routes one message to the first matching handler, synchronously.
//
// A topic that matches no route is not an error: overlapping broker
// subscriptions can deliver messages the table does not care about. Those
// are logged at debug level and dropped.
func (r *Router[S]) Dispatch(ctx context.Context, topic string, payload []byte) error {
	for _, route := range r.routes {
		params, ok := route.pattern.Match(topic)
		if !ok {
			continue
		}

		req := &Request[S]{
			Topic:   topic,
			Payload: payload,
			Params:  params,
			State:   r.state,
		}
		return route.handler(ctx, req)
	}

	if r.logger != nil {
		r.logger.Debug("no route matched topic", "topic", topic)
	}
	return nil
}

// Routes returns the registered route strings in registration order.
func (r *Router[S]) Routes() []string {
	routes := make([]string, len(r.routes))
	for i, route := range r.routes {
		routes[i] = route.pattern.Route()
	}
	return routes
}
