package models

import (
	"encoding/json"

	"github.com/ffx64/discord-presence-go/internal/codec"
)

// Payload is the JSON envelope carried inside a frame. Requests fill Args,
// replies and events fill Data.
type Payload[T any] struct {
	Cmd   Command `json:"cmd"`
	Args  *T      `json:"args,omitempty"`
	Data  *T      `json:"data,omitempty"`
	Evt   *Event  `json:"evt"`
	Nonce string  `json:"nonce,omitempty"`
}

// NewPayload builds a request envelope with a fresh nonce.
func NewPayload[T any](cmd Command, args T, evt *Event) Payload[T] {
	return Payload[T]{
		Cmd:   cmd,
		Args:  &args,
		Evt:   evt,
		Nonce: codec.Nonce(),
	}
}

// RawPayload is an envelope whose data is left undecoded.
type RawPayload = Payload[json.RawMessage]

// DecodePayload parses an envelope from frame text.
func DecodePayload[T any](text string) (*Payload[T], error) {
	var p Payload[T]
	if err := codec.Unmarshal([]byte(text), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Body returns whichever of Data or Args is set, Data first.
func (p *Payload[T]) Body() *T {
	if p.Data != nil {
		return p.Data
	}
	return p.Args
}
