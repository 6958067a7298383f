package router

import (
	"context"
	"errors"
	"testing"
)

func TestDecodePayload_Scalars(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		got, err := decodePayload[string]([]byte("OPEN"))
		if err != nil {
			t.Fatalf("decodePayload() error = %v", err)
		}
		if got != "OPEN" {
			t.Errorf("got %q, want %q", got, "OPEN")
		}
	})

	t.Run("int", func(t *testing.T) {
		got, err := decodePayload[int]([]byte("42"))
		if err != nil {
			t.Fatalf("decodePayload() error = %v", err)
		}
		if got != 42 {
			t.Errorf("got %d, want 42", got)
		}
	})

	t.Run("uint8", func(t *testing.T) {
		got, err := decodePayload[uint8]([]byte("100"))
		if err != nil {
			t.Fatalf("decodePayload() error = %v", err)
		}
		if got != 100 {
			t.Errorf("got %d, want 100", got)
		}
	})

	t.Run("bool", func(t *testing.T) {
		got, err := decodePayload[bool]([]byte("true"))
		if err != nil {
			t.Fatalf("decodePayload() error = %v", err)
		}
		if !got {
			t.Error("got false, want true")
		}
	})

	t.Run("float64", func(t *testing.T) {
		got, err := decodePayload[float64]([]byte("3.5"))
		if err != nil {
			t.Fatalf("decodePayload() error = %v", err)
		}
		if got != 3.5 {
			t.Errorf("got %v, want 3.5", got)
		}
	})
}

func TestDecodePayload_JSONStruct(t *testing.T) {
	type batch struct {
		ConfigNum int `json:"configNum"`
	}

	got, err := decodePayload[batch]([]byte(`{"configNum": 9}`))
	if err != nil {
		t.Fatalf("decodePayload() error = %v", err)
	}

	if got.ConfigNum != 9 {
		t.Errorf("ConfigNum = %d, want 9", got.ConfigNum)
	}
}

func TestDecodePayload_ParseFailure(t *testing.T) {
	_, err := decodePayload[int]([]byte("not-a-number"))

	var parseErr *PayloadParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *PayloadParseError", err)
	}

	if parseErr.Text != "not-a-number" {
		t.Errorf("Text = %q, want the offending payload", parseErr.Text)
	}
}

func TestDecodePayload_OutOfRange(t *testing.T) {
	_, err := decodePayload[uint8]([]byte("300"))

	var parseErr *PayloadParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *PayloadParseError", err)
	}
}

func TestDecodePayload_InvalidUTF8(t *testing.T) {
	_, err := decodePayload[string]([]byte{0xff, 0xfe})

	var parseErr *PayloadParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *PayloadParseError", err)
	}
}

func TestDecodeParams_WeakConversion(t *testing.T) {
	type shadeParams struct {
		Serial  string `mapstructure:"serial"`
		ShadeID int    `mapstructure:"shadeID"`
	}

	got, err := decodeParams[shadeParams](map[string]string{
		"serial":  "A1B2C3",
		"shadeID": "7",
	})
	if err != nil {
		t.Fatalf("decodeParams() error = %v", err)
	}

	if got.Serial != "A1B2C3" || got.ShadeID != 7 {
		t.Errorf("decoded = %+v, want serial A1B2C3 shadeID 7", got)
	}
}

func TestDecodeParams_FailureNamesField(t *testing.T) {
	type shadeParams struct {
		ShadeID int `mapstructure:"shadeID"`
	}

	_, err := decodeParams[shadeParams](map[string]string{
		"shadeID": "not-a-number",
	})

	var paramErr *ParameterParseError
	if !errors.As(err, &paramErr) {
		t.Fatalf("error = %v, want *ParameterParseError", err)
	}

	if paramErr.Field == "" {
		t.Error("expected the failing field to be named")
	}
}

func TestHandleAdapters(t *testing.T) {
	type state struct{ calls *int }
	calls := 0
	s := state{calls: &calls}

	t.Run("Handle", func(t *testing.T) {
		h := Handle(func(_ context.Context, st state) error {
			*st.calls++
			return nil
		})
		req := &Request[state]{State: s}
		if err := h(context.Background(), req); err != nil {
			t.Fatalf("handler error = %v", err)
		}
	})

	t.Run("HandlePayload", func(t *testing.T) {
		var seen int
		h := HandlePayload(func(_ context.Context, _ state, position int) error {
			seen = position
			return nil
		})
		req := &Request[state]{State: s, Payload: []byte("42")}
		if err := h(context.Background(), req); err != nil {
			t.Fatalf("handler error = %v", err)
		}
		if seen != 42 {
			t.Errorf("payload = %d, want 42", seen)
		}
	})

	t.Run("HandleParams", func(t *testing.T) {
		type params struct {
			Serial string `mapstructure:"serial"`
		}
		var seen string
		h := HandleParams(func(_ context.Context, _ state, p params) error {
			seen = p.Serial
			return nil
		})
		req := &Request[state]{State: s, Params: map[string]string{"serial": "A1B2C3"}}
		if err := h(context.Background(), req); err != nil {
			t.Fatalf("handler error = %v", err)
		}
		if seen != "A1B2C3" {
			t.Errorf("serial = %q, want A1B2C3", seen)
		}
	})

	t.Run("HandleParamsPayload", func(t *testing.T) {
		type params struct {
			ShadeID string `mapstructure:"shadeID"`
		}
		var seenID, seenCmd string
		h := HandleParamsPayload(func(_ context.Context, _ state, p params, cmd string) error {
			seenID = p.ShadeID
			seenCmd = cmd
			return nil
		})
		req := &Request[state]{
			State:   s,
			Params:  map[string]string{"shadeID": "7_2"},
			Payload: []byte("OPEN"),
		}
		if err := h(context.Background(), req); err != nil {
			t.Fatalf("handler error = %v", err)
		}
		if seenID != "7_2" || seenCmd != "OPEN" {
			t.Errorf("got id %q cmd %q, want 7_2 OPEN", seenID, seenCmd)
		}
	})

	t.Run("HandlePayload parse failure skips handler", func(t *testing.T) {
		called := false
		h := HandlePayload(func(_ context.Context, _ state, _ int) error {
			called = true
			return nil
		})
		req := &Request[state]{State: s, Payload: []byte("junk")}
		if err := h(context.Background(), req); err == nil {
			t.Fatal("expected a parse error")
		}
		if called {
			t.Error("handler must not run on parse failure")
		}
	})
}
