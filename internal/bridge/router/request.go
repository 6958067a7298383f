package router

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-viper/mapstructure/v2"
)

// Request carries one inbound message through dispatch.
type Request[S any] struct {
	// Topic is the concrete topic the message arrived on.
	Topic string

	// Payload is the raw message payload.
	Payload []byte

	// Params holds the values captured by the matched route.
	Params map[string]string

	// State is the router's shared state.
	State S
}

// Handler processes one dispatched message. Handlers run synchronously on
// the dispatching goroutine.
type Handler[S any] func(ctx context.Context, req *Request[S]) error

// Handle adapts a state-only function into a Handler. Use for routes
// where neither the payload nor the captures matter.
func Handle[S any](fn func(ctx context.Context, state S) error) Handler[S] {
	return func(ctx context.Context, req *Request[S]) error {
		return fn(ctx, req.State)
	}
}

// HandlePayload adapts a function taking a typed payload. The raw payload
// is converted to V before the handler runs; conversion failures surface
// as *PayloadParseError without invoking the handler.
func HandlePayload[V, S any](fn func(ctx context.Context, state S, payload V) error) Handler[S] {
	return func(ctx context.Context, req *Request[S]) error {
		payload, err := decodePayload[V](req.Payload)
		if err != nil {
			return err
		}
		return fn(ctx, req.State, payload)
	}
}

// HandleParams adapts a function taking typed route parameters. The
// captured values are decoded into P; failures surface as
// *ParameterParseError without invoking the handler.
func HandleParams[P, S any](fn func(ctx context.Context, state S, params P) error) Handler[S] {
	return func(ctx context.Context, req *Request[S]) error {
		params, err := decodeParams[P](req.Params)
		if err != nil {
			return err
		}
		return fn(ctx, req.State, params)
	}
}

// HandleParamsPayload adapts a function taking both typed route parameters
// and a typed payload. Parameters are decoded first.
func HandleParamsPayload[P, V, S any](fn func(ctx context.Context, state S, params P, payload V) error) Handler[S] {
	return func(ctx context.Context, req *Request[S]) error {
		params, err := decodeParams[P](req.Params)
		if err != nil {
			return err
		}
		payload, err := decodePayload[V](req.Payload)
		if err != nil {
			return err
		}
		return fn(ctx, req.State, params, payload)
	}
}

// decodePayload converts a raw payload into V.
//
// Scalars parse from the payload text (strconv); anything else decodes as
// JSON. The payload must be valid UTF-8 either way.
func decodePayload[V any](payload []byte) (V, error) {
	var out V

	if !utf8.Valid(payload) {
		return out, &PayloadParseError{
			Text: "(invalid utf-8)",
			Err:  errInvalidUTF8,
		}
	}

	text := string(payload)
	if err := parseInto(text, &out); err != nil {
		return out, &PayloadParseError{Text: text, Err: err}
	}
	return out, nil
}

var errInvalidUTF8 = errors.New("payload is not valid utf-8")

// parseInto parses text into the scalar pointed to by out, falling back to
// JSON for composite types.
func parseInto(text string, out any) error {
	switch v := out.(type) {
	case *string:
		*v = text
	case *bool:
		parsed, err := strconv.ParseBool(text)
		if err != nil {
			return err
		}
		*v = parsed
	case *int:
		parsed, err := strconv.ParseInt(text, 10, 0)
		if err != nil {
			return err
		}
		*v = int(parsed)
	case *int8:
		parsed, err := strconv.ParseInt(text, 10, 8)
		if err != nil {
			return err
		}
		*v = int8(parsed)
	case *int16:
		parsed, err := strconv.ParseInt(text, 10, 16)
		if err != nil {
			return err
		}
		*v = int16(parsed)
	case *int32:
		parsed, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return err
		}
		*v = int32(parsed)
	case *int64:
		parsed, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return err
		}
		*v = parsed
	case *uint:
		parsed, err := strconv.ParseUint(text, 10, 0)
		if err != nil {
			return err
		}
		*v = uint(parsed)
	case *uint8:
		parsed, err := strconv.ParseUint(text, 10, 8)
		if err != nil {
			return err
		}
		*v = uint8(parsed)
	case *uint16:
		parsed, err := strconv.ParseUint(text, 10, 16)
		if err != nil {
			return err
		}
		*v = uint16(parsed)
	case *uint32:
		parsed, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return err
		}
		*v = uint32(parsed)
	case *uint64:
		parsed, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return err
		}
		*v = parsed
	case *float32:
		parsed, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return err
		}
		*v = float32(parsed)
	case *float64:
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return err
		}
		*v = parsed
	default:
		return json.Unmarshal([]byte(text), out)
	}
	return nil
}

// decodeParams decodes captured route parameters into P with weak string
// conversion, so ":shadeID" can land in an int field.
func decodeParams[P any](params map[string]string) (P, error) {
	var out P

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, &ParameterParseError{Err: err}
	}

	if err := decoder.Decode(params); err != nil {
		return out, &ParameterParseError{Field: failingField(err), Err: err}
	}
	return out, nil
}

// failingField pulls the field name out of a mapstructure decode error.
// Decode errors read like: cannot parse 'ShadeID' as int: ...
func failingField(err error) string {
	msg := err.Error()
	start := strings.Index(msg, "'")
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], "'")
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
