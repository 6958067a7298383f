package router

import (
	"fmt"
	"strings"
)

// Pattern is a compiled topic route.
//
// Routes look like MQTT topics with named captures:
//
//	pv2mqtt/shade/:serial/:shadeID/command
//
// A segment starting with ':' captures that topic level under the given
// name. Matching is by exact segment count; no multi-level wildcards.
type Pattern struct {
	route    string
	segments []segment
}

// segment is one topic level: either a literal or a named capture.
type segment struct {
	literal string
	param   string
}

// Compile parses a route string into a Pattern.
//
// Errors (all wrapping ErrRouteCompile):
//   - empty route
//   - empty segment ("a//b")
//   - capture with no name ("a/:/b")
//   - duplicate capture names
//   - MQTT wildcard characters in literals
func Compile(route string) (*Pattern, error) {
	if route == "" {
		return nil, fmt.Errorf("%w: empty route", ErrRouteCompile)
	}

	parts := strings.Split(route, "/")
	segments := make([]segment, 0, len(parts))
	seen := make(map[string]bool)

	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment", ErrRouteCompile, route)
		}

		if name, ok := strings.CutPrefix(part, ":"); ok {
			if name == "" {
				return nil, fmt.Errorf("%w: %q has an unnamed capture", ErrRouteCompile, route)
			}
			if seen[name] {
				return nil, fmt.Errorf("%w: %q captures %q twice", ErrRouteCompile, route, name)
			}
			seen[name] = true
			segments = append(segments, segment{param: name})
			continue
		}

		if strings.ContainsAny(part, "+#") {
			return nil, fmt.Errorf("%w: %q contains an MQTT wildcard", ErrRouteCompile, route)
		}
		segments = append(segments, segment{literal: part})
	}

	return &Pattern{route: route, segments: segments}, nil
}

// Route returns the original route string.
func (p *Pattern) Route() string {
	return p.route
}

// Filter returns the MQTT subscription filter for this route: each capture
// becomes a single-level '+' wildcard. '#' is never produced.
func (p *Pattern) Filter() string {
	parts := make([]string, len(p.segments))
	for i, seg := range p.segments {
		if seg.param != "" {
			parts[i] = "+"
		} else {
			parts[i] = seg.literal
		}
	}
	return strings.Join(parts, "/")
}

// Match tests a concrete topic against the pattern.
//
// Returns the captured parameters and true on a match. The topic must have
// exactly as many segments as the route; literals compare byte-equal.
func (p *Pattern) Match(topic string) (map[string]string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != len(p.segments) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range p.segments {
		if seg.param != "" {
			if params == nil {
				params = make(map[string]string)
			}
			params[seg.param] = parts[i]
			continue
		}
		if seg.literal != parts[i] {
			return nil, false
		}
	}

	return params, true
}

// overlaps reports whether some concrete topic would match both patterns.
// Two routes overlap when they have the same segment count and every
// position is compatible: equal literals, or a capture on either side.
func (p *Pattern) overlaps(other *Pattern) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}

	for i := range p.segments {
		a, b := p.segments[i], other.segments[i]
		if a.param != "" || b.param != "" {
			continue
		}
		if a.literal != b.literal {
			return false
		}
	}

	return true
}
