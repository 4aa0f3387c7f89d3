package ipc

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/ffx64/discord-presence-go/internal/codec"
)

// NewFrame serializes payload as JSON and checks that the resulting frame
// fits in MaxFrameSize.
func NewFrame(op OpCode, payload any) (Frame, error) {
	j, err := codec.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	if HeaderSize+len(j) > MaxFrameSize {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, HeaderSize+len(j))
	}
	return Frame{OpCode: op, Payload: string(j)}, nil
}

// EncodeFrame writes the header and the raw payload bytes.
func EncodeFrame(f Frame) ([]byte, error) {
	if uint64(len(f.Payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(f.Payload))
	}
	buf := make([]byte, HeaderSize, HeaderSize+len(f.Payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(f.OpCode))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(f.Payload)))
	return append(buf, f.Payload...), nil
}

// DecodeHeader reads the two little-endian fields of a header. The buffer
// must be exactly HeaderSize bytes long.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, fmt.Errorf("%w: got %d bytes", ErrHeaderLength, len(b))
	}
	h := Header{
		OpCode: OpCode(binary.LittleEndian.Uint32(b[0:4])),
		Length: binary.LittleEndian.Uint32(b[4:8]),
	}
	if !h.OpCode.Valid() {
		return Header{}, fmt.Errorf("%w: unknown opcode %d", codec.ErrConversion, uint32(h.OpCode))
	}
	return h, nil
}

// DecodeFrame is the inverse of EncodeFrame for a complete buffer.
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) < HeaderSize {
		return Frame{}, fmt.Errorf("%w: got %d bytes", ErrHeaderLength, len(b))
	}
	h, err := DecodeHeader(b[:HeaderSize])
	if err != nil {
		return Frame{}, err
	}
	body := b[HeaderSize:]
	if uint64(len(body)) != uint64(h.Length) {
		return Frame{}, fmt.Errorf("frame length mismatch: expected %d got %d", h.Length, len(body))
	}
	if !utf8.Valid(body) {
		return Frame{}, fmt.Errorf("%w: payload is not valid UTF-8", codec.ErrConversion)
	}
	return Frame{OpCode: h.OpCode, Payload: string(body)}, nil
}
