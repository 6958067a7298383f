// Package hub provides the REST client and wire types for PowerView-style
// shade hubs.
//
// The hub exposes an unauthenticated HTTP API on the local network. This
// package wraps it with:
//   - Typed records for rooms, shades, scenes, and hub identity
//     (display names arrive base64-encoded; Base64Name decodes them)
//   - Capability decomposition: the hub's closed capability enumeration
//     maps to a flag set that decides entity shape (secondary rails, tilt)
//   - Position math between the hub's raw 0-65535 scale and percentages
//   - Movement, position, scene, refresh, and power-source operations
//   - mDNS discovery of hubs advertising _powerview._tcp
//
// All operations take a context and share a generous per-request timeout;
// the hub single-threads its radio traffic and can stall for tens of
// seconds while shades move.
//
// Transport failures wrap ErrHubUnresponsive so callers can distinguish an
// unreachable hub from a rejected request (ErrUnexpectedStatus).
package hub
