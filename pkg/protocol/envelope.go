// Package protocol implements the AxoChat wire envelope and the typed
// payloads carried inside it.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedEnvelope reports a frame that is not valid JSON or lacks a
// string "m" field.
var ErrMalformedEnvelope = errors.New("protocol: malformed envelope")

// Envelope is the unit of wire exchange: {"m": kind, "c": payload}.
// The payload stays opaque here; kind-specific translation happens through
// the typed accessors in messages.go.
type Envelope struct {
	Kind    string          `json:"m"`
	Payload json.RawMessage `json:"c,omitempty"`
}

// Encode produces the canonical wire form of a packet. The payload's JSON
// field names are already wire-form (snake_case) at the call site; a nil
// payload omits "c" entirely.
func Encode(kind string, payload any) ([]byte, error) {
	env := Envelope{Kind: kind}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", kind, err)
		}
		env.Payload = data
	}
	return json.Marshal(env)
}

// Decode parses one wire frame. An absent "c" decodes to an empty payload.
func Decode(data []byte) (Envelope, error) {
	var wire struct {
		M json.RawMessage `json:"m"`
		C json.RawMessage `json:"c"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if wire.M == nil {
		return Envelope{}, fmt.Errorf("%w: missing \"m\" field", ErrMalformedEnvelope)
	}
	var kind string
	if err := json.Unmarshal(wire.M, &kind); err != nil {
		return Envelope{}, fmt.Errorf("%w: \"m\" is not a string", ErrMalformedEnvelope)
	}
	payload := wire.C
	if payload == nil {
		payload = json.RawMessage("{}")
	}
	return Envelope{Kind: kind, Payload: payload}, nil
}
