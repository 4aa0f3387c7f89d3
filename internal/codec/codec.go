// Package codec holds the JSON helpers shared by the transport, the manager
// and the client.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrConversion is returned when a value cannot be converted to or from its
// wire representation.
var ErrConversion = errors.New("discord: conversion failed")

// Marshal encodes v as compact JSON.
func Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return b, nil
}

// Unmarshal decodes JSON text into v.
func Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return nil
}

// Nonce returns a fresh correlation token.
func Nonce() string {
	return uuid.NewString()
}
