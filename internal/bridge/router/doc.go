// Package router maps MQTT topics to typed handlers.
//
// Routes are written like topics with named captures:
//
//	pv2mqtt/shade/:serial/:shadeID/command
//
// Registering a route subscribes to the corresponding MQTT filter (each
// capture becomes a '+' wildcard) and adds the route to an ordered table.
// Dispatch matches a concrete topic against the table, extracts the
// captured segments, and runs the first matching handler synchronously.
//
// # Typed extraction
//
// Handlers declare what they need through fixed-arity adapters instead of
// parsing topics and payloads by hand:
//
//	r.Register("pv2mqtt/shade/:serial/:shadeID/set_position",
//	    router.HandleParamsPayload(func(ctx context.Context, s *bridge.Server, p shadeParams, position int) error {
//	        ...
//	    }))
//
// Captured parameters decode into a struct via weak string conversion, so
// numeric ids land in int fields. Payloads parse by declared type: scalars
// through strconv, composites through JSON. Both failure modes carry
// context (*ParameterParseError names the field, *PayloadParseError keeps
// the offending text) and skip the handler entirely.
//
// # Ambiguity
//
// Route collisions are configuration bugs and fail at registration time:
// two routes that could both match some concrete topic produce
// ErrRouteAmbiguous, and the bridge refuses to start.
package router
