package router

import (
	"errors"
	"fmt"
)

// Sentinel errors for route registration. Both are startup-fatal: a bridge
// with a bad route table must not come up half-wired.
var (
	// ErrRouteCompile indicates a route string that cannot be compiled.
	ErrRouteCompile = errors.New("router: invalid route")

	// ErrRouteAmbiguous indicates a route that overlaps an already
	// registered one: some concrete topic would match both.
	ErrRouteAmbiguous = errors.New("router: ambiguous route")
)

// PayloadParseError reports a payload that could not be converted to the
// handler's declared payload type. The offending text is carried for
// logging; it is always valid UTF-8 or a placeholder note.
type PayloadParseError struct {
	// Text is the payload as received (or a note when not UTF-8).
	Text string

	// Err is the underlying conversion failure.
	Err error
}

func (e *PayloadParseError) Error() string {
	return fmt.Sprintf("router: parsing payload %q: %v", e.Text, e.Err)
}

func (e *PayloadParseError) Unwrap() error {
	return e.Err
}

// ParameterParseError reports a captured topic parameter that could not be
// decoded into the handler's parameter struct.
type ParameterParseError struct {
	// Field names the parameter struct field that failed, when known.
	Field string

	// Err is the underlying decode failure.
	Err error
}

func (e *ParameterParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("router: decoding parameter field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("router: decoding parameters: %v", e.Err)
}

func (e *ParameterParseError) Unwrap() error {
	return e.Err
}
