package transport

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vango-dev/mvu/pkg/vdom"
)

// ErrMalformedPayload is returned when a serialized command cannot be decoded.
var ErrMalformedPayload = errors.New("transport: malformed command payload")

// Codec serializes commands to and from wire-safe strings.
type Codec interface {
	// Name identifies the codec in configuration ("json", "cbor").
	Name() string
	Encode(cmd vdom.Command) (string, error)
	Decode(s string) (vdom.Command, error)
}

// NewCodec returns the codec registered under name.
func NewCodec(name string, types *Types) (Codec, error) {
	switch name {
	case "", "json":
		return NewJSONCodec(types), nil
	case "cbor":
		return NewCBORCodec(types)
	default:
		return nil, fmt.Errorf("transport: unknown codec %q", name)
	}
}

var b64 = base64.RawURLEncoding

// JSONCodec encodes commands as a base64url JSON envelope {"t": name, "v": value}.
type JSONCodec struct {
	types *Types
}

type jsonEnvelope struct {
	Type  string          `json:"t"`
	Value json.RawMessage `json:"v"`
}

// NewJSONCodec creates a JSON codec over the given type registry.
func NewJSONCodec(types *Types) *JSONCodec {
	return &JSONCodec{types: types}
}

// Name implements Codec.
func (c *JSONCodec) Name() string { return "json" }

// Encode implements Codec.
func (c *JSONCodec) Encode(cmd vdom.Command) (string, error) {
	name, err := c.types.NameOf(cmd)
	if err != nil {
		return "", err
	}
	value, err := json.Marshal(cmd)
	if err != nil {
		return "", fmt.Errorf("transport: json encode %q: %w", name, err)
	}
	data, err := json.Marshal(jsonEnvelope{Type: name, Value: value})
	if err != nil {
		return "", fmt.Errorf("transport: json encode %q: %w", name, err)
	}
	return b64.EncodeToString(data), nil
}

// Decode implements Codec.
func (c *JSONCodec) Decode(s string) (vdom.Command, error) {
	data, err := b64.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	ptr, err := c.types.newValue(env.Type)
	if err != nil {
		return nil, err
	}
	if len(env.Value) > 0 {
		if err := json.Unmarshal(env.Value, ptr.Interface()); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedPayload, env.Type, err)
		}
	}
	return ptr.Elem().Interface(), nil
}

// CBORCodec encodes commands as base64url CBOR [name, value] arrays using
// deterministic encoding.
type CBORCodec struct {
	types *Types
	enc   cbor.EncMode
	dec   cbor.DecMode
}

type cborEnvelope struct {
	_     struct{} `cbor:",toarray"`
	Type  string
	Value cbor.RawMessage
}

// NewCBORCodec creates a CBOR codec over the given type registry.
func NewCBORCodec(types *Types) (*CBORCodec, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, err
	}
	return &CBORCodec{types: types, enc: enc, dec: dec}, nil
}

// Name implements Codec.
func (c *CBORCodec) Name() string { return "cbor" }

// Encode implements Codec.
func (c *CBORCodec) Encode(cmd vdom.Command) (string, error) {
	name, err := c.types.NameOf(cmd)
	if err != nil {
		return "", err
	}
	value, err := c.enc.Marshal(cmd)
	if err != nil {
		return "", fmt.Errorf("transport: cbor encode %q: %w", name, err)
	}
	data, err := c.enc.Marshal(cborEnvelope{Type: name, Value: value})
	if err != nil {
		return "", fmt.Errorf("transport: cbor encode %q: %w", name, err)
	}
	return b64.EncodeToString(data), nil
}

// Decode implements Codec.
func (c *CBORCodec) Decode(s string) (vdom.Command, error) {
	data, err := b64.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	var env cborEnvelope
	if err := c.dec.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	ptr, err := c.types.newValue(env.Type)
	if err != nil {
		return nil, err
	}
	if err := c.dec.Unmarshal(env.Value, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedPayload, env.Type, err)
	}
	return ptr.Elem().Interface(), nil
}
