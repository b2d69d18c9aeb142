// Package protocol defines the line-delimited JSON wire format shared by the
// TCP and websocket transports.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcoot/wordlegame-go/internal/model"
)

// MaxLineBytes bounds a single inbound line
const MaxLineBytes = 64 * 1024

// Envelope is one line on the wire. Payload holds the JSON encoding of the
// message body as a string.
type Envelope struct {
	Type    MessageType `json:"type"`
	Payload string      `json:"payload"`
}

// NewEnvelope encodes body as the payload of a message of the given type
func NewEnvelope(t MessageType, body any) (Envelope, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return Envelope{Type: t, Payload: string(data)}, nil
}

// MarshalLine encodes the envelope as a single newline-terminated line
func MarshalLine(env Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ParseLine decodes one line into an envelope
func ParseLine(line []byte) (Envelope, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty line", model.ErrInvalidPayload)
	}

	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", model.ErrInvalidPayload, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", model.ErrInvalidPayload)
	}
	return env, nil
}

// Decode unmarshals the payload into dst and validates it. An empty payload
// decodes as an empty object.
func Decode(env Envelope, dst any) error {
	payload := env.Payload
	if payload == "" {
		payload = "{}"
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrInvalidPayload, env.Type, err)
	}
	return Validate(dst)
}
