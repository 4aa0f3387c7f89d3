package ipc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrame(t *testing.T) {
	f, err := NewFrame(OpFrame, struct {
		Empty bool `json:"empty"`
	}{Empty: true})
	require.NoError(t, err)
	assert.Equal(t, `{"empty":true}`, f.Payload)

	b, err := EncodeFrame(f)
	require.NoError(t, err)

	want := append([]byte{0x01, 0, 0, 0, 0x0E, 0, 0, 0}, []byte(`{"empty":true}`)...)
	assert.Equal(t, want, b)

	decoded, err := DecodeFrame(b)
	require.NoError(t, err)
	assert.Equal(t, f, decoded)
}

func TestDecodeFrameRoundTrip(t *testing.T) {
	payloads := []string{"{}", `{"cmd":"SET_ACTIVITY","nonce":"abc"}`, `{"state":"héllo ✓"}`}
	for _, op := range []OpCode{OpHandshake, OpFrame, OpClose, OpPing, OpPong} {
		for _, p := range payloads {
			f := Frame{OpCode: op, Payload: p}
			b, err := EncodeFrame(f)
			require.NoError(t, err)
			got, err := DecodeFrame(b)
			require.NoError(t, err)
			assert.Equal(t, f, got)
		}
	}
}

func TestDecodeHeaderRejectsWrongLength(t *testing.T) {
	for _, n := range []int{0, 1, 7, 9, 16} {
		_, err := DecodeHeader(make([]byte, n))
		assert.ErrorIs(t, err, ErrHeaderLength, "length %d", n)
	}
}

func TestDecodeHeader(t *testing.T) {
	h, err := DecodeHeader([]byte{0x04, 0, 0, 0, 0x10, 0x01, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, Header{OpCode: OpPong, Length: 0x0110}, h)

	_, err = DecodeHeader([]byte{0x05, 0, 0, 0, 0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrConversion)
}

func TestDecodeFrameLengthMismatch(t *testing.T) {
	b, err := EncodeFrame(Frame{OpCode: OpFrame, Payload: "{}"})
	require.NoError(t, err)

	_, err = DecodeFrame(b[:len(b)-1])
	assert.Error(t, err)

	_, err = DecodeFrame(b[:4])
	assert.ErrorIs(t, err, ErrHeaderLength)
}

func TestNewFrameRejectsOversizedPayload(t *testing.T) {
	_, err := NewFrame(OpFrame, map[string]string{"state": strings.Repeat("a", MaxFrameSize)})
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestNewFrameRejectsUnencodableValue(t *testing.T) {
	_, err := NewFrame(OpFrame, map[string]any{"ch": make(chan int)})
	assert.ErrorIs(t, err, ErrConversion)
}

func TestOpCodeString(t *testing.T) {
	assert.Equal(t, "HANDSHAKE", OpHandshake.String())
	assert.Equal(t, "PONG", OpPong.String())
	assert.Equal(t, "OpCode(5)", OpCode(5).String())
	assert.False(t, OpCode(5).Valid())
}
