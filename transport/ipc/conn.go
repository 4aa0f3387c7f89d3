package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ffx64/discord-presence-go/internal/codec"
)

// maxSocketIndex is the highest discord-ipc-N index Discord creates.
const maxSocketIndex = 9

// Stream is the duplex byte stream a Conn runs on. net.Conn satisfies it.
type Stream interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Transport is the capability set the connection manager drives.
type Transport interface {
	Send(f Frame) error
	Receive() (Frame, error)
	Handshake(clientID uint64) (Frame, error)
	Ping() (OpCode, error)
	Close() error
}

// ConnOption configures a Conn.
type ConnOption func(*Conn)

// WithLogger sets the logger used for frame traces and shutdown failures.
func WithLogger(l *slog.Logger) ConnOption {
	return func(c *Conn) { c.logger = l }
}

// WithPollTimeout bounds how long Receive waits for the first byte of the
// next frame before reporting ErrWouldBlock.
func WithPollTimeout(d time.Duration) ConnOption {
	return func(c *Conn) { c.poll = d }
}

// WithRetryDelay sets the pause between would-block retries during the
// handshake and ping exchanges.
func WithRetryDelay(d time.Duration) ConnOption {
	return func(c *Conn) { c.retryDelay = d }
}

// WithSleep replaces time.Sleep for the retry loops.
func WithSleep(fn func(time.Duration)) ConnOption {
	return func(c *Conn) { c.sleep = fn }
}

// Conn speaks the framed IPC protocol over a Stream.
type Conn struct {
	stream     Stream
	timeout    time.Duration
	poll       time.Duration
	retryDelay time.Duration
	sleep      func(time.Duration)
	logger     *slog.Logger

	closeOnce sync.Once
}

// NewConn wraps an already open stream.
func NewConn(s Stream, opts ...ConnOption) *Conn {
	c := &Conn{
		stream:     s,
		timeout:    ReadWriteTimeout,
		poll:       100 * time.Millisecond,
		retryDelay: RetryDelay,
		sleep:      time.Sleep,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial opens the first reachable Discord IPC endpoint.
func Dial(opts ...ConnOption) (*Conn, error) {
	var lastErr error
	for n := 0; n <= maxSocketIndex; n++ {
		for _, path := range socketPaths(n) {
			s, err := dialStream(path)
			if err != nil {
				lastErr = err
				continue
			}
			c := NewConn(s, opts...)
			c.logger.Debug("connected to discord ipc", slog.String("path", path))
			return c, nil
		}
	}
	if lastErr == nil {
		return nil, ErrNoSocket
	}
	return nil, fmt.Errorf("%w: %v", ErrNoSocket, lastErr)
}

type handshakePayload struct {
	ClientID string `json:"client_id"`
	Version  int    `json:"v"`
	Nonce    string `json:"nonce"`
}

// Handshake authenticates clientID and returns the peer's reply. Would-block
// conditions are retried until ReadWriteTimeout elapses.
func (c *Conn) Handshake(clientID uint64) (Frame, error) {
	f, err := NewFrame(OpHandshake, handshakePayload{
		ClientID: strconv.FormatUint(clientID, 10),
		Version:  1,
		Nonce:    codec.Nonce(),
	})
	if err != nil {
		return Frame{}, err
	}
	if err := c.retry(func() error { return c.Send(f) }); err != nil {
		return Frame{}, err
	}

	var reply Frame
	err = c.retry(func() (err error) {
		reply, err = c.Receive()
		return err
	})
	if err != nil {
		return Frame{}, err
	}
	if reply.OpCode == OpClose {
		ce := &CloseError{}
		if err := codec.Unmarshal([]byte(reply.Payload), ce); err != nil {
			ce.Message = reply.Payload
		}
		return reply, fmt.Errorf("%w: %w", ErrHandshakeRejected, ce)
	}
	return reply, nil
}

// Ping sends a ping frame and returns the opcode of the answer.
func (c *Conn) Ping() (OpCode, error) {
	f, err := NewFrame(OpPing, struct{}{})
	if err != nil {
		return 0, err
	}
	if err := c.retry(func() error { return c.Send(f) }); err != nil {
		return 0, err
	}
	var reply Frame
	err = c.retry(func() (err error) {
		reply, err = c.Receive()
		return err
	})
	return reply.OpCode, err
}

func (c *Conn) retry(fn func() error) error {
	deadline := time.Now().Add(c.timeout)
	for {
		err := fn()
		if err == nil || !errors.Is(err, ErrWouldBlock) {
			return err
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: no answer within %s", ErrTimeout, c.timeout)
		}
		c.sleep(c.retryDelay)
	}
}

// Send writes one frame. Frames above MaxFrameSize must be rejected by the
// caller; NewFrame does so.
func (c *Conn) Send(f Frame) error {
	b, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	if len(b) > MaxFrameSize {
		panic(fmt.Sprintf("ipc: frame of %d bytes exceeds MaxFrameSize", len(b)))
	}
	if err := c.stream.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return classify("set write deadline", err, false)
	}
	n, err := c.stream.Write(b)
	if err != nil {
		if n > 0 {
			return &OpError{Op: "write", Err: err}
		}
		return classify("write", err, false)
	}
	c.logger.Debug("-> frame", slog.String("op", f.OpCode.String()), slog.String("payload", f.Payload))
	return nil
}

// Receive reads one frame. ErrWouldBlock means nothing arrived within the
// poll timeout.
func (c *Conn) Receive() (Frame, error) {
	var hdr [HeaderSize]byte
	if err := c.stream.SetReadDeadline(time.Now().Add(c.poll)); err != nil {
		return Frame{}, classify("set read deadline", err, false)
	}
	n, err := c.stream.Read(hdr[:])
	if n == 0 {
		if err == nil {
			return Frame{}, ErrWouldBlock
		}
		return Frame{}, classify("read header", err, true)
	}
	if n < HeaderSize {
		// A frame has started; the rest of it gets the full timeout.
		if err := c.stream.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return Frame{}, classify("set read deadline", err, false)
		}
		if _, err := io.ReadFull(c.stream, hdr[n:]); err != nil {
			return Frame{}, fmt.Errorf("%w: read %d of %d bytes: %v", ErrHeaderLength, n, HeaderSize, err)
		}
	}

	op := OpCode(binary.LittleEndian.Uint32(hdr[0:4]))
	length := binary.LittleEndian.Uint32(hdr[4:8])
	if length > maxReceiveSize {
		return Frame{}, fmt.Errorf("%w: peer announced %d bytes", ErrFrameTooLarge, length)
	}
	if length == 0 {
		return Frame{}, ErrNoMessage
	}

	if err := c.stream.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return Frame{}, classify("set read deadline", err, false)
	}
	payload := make([]byte, length)
	m, err := io.ReadFull(c.stream, payload)
	if err != nil {
		if m == 0 && errors.Is(err, io.EOF) {
			return Frame{}, ErrNoMessage
		}
		return Frame{}, &OpError{Op: "read payload", Err: err}
	}

	if !op.Valid() {
		return Frame{}, fmt.Errorf("%w: unknown opcode %d", ErrConversion, uint32(op))
	}
	if !utf8.Valid(payload) {
		return Frame{}, fmt.Errorf("%w: payload is not valid UTF-8", ErrConversion)
	}
	f := Frame{OpCode: op, Payload: string(payload)}
	c.logger.Debug("<- frame", slog.String("op", op.String()), slog.String("payload", f.Payload))
	return f, nil
}

// Close shuts both directions down and releases the stream. Failures are
// logged and never returned.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		if hc, ok := c.stream.(interface {
			CloseRead() error
			CloseWrite() error
		}); ok {
			if err := errors.Join(hc.CloseRead(), hc.CloseWrite()); err != nil {
				c.logger.Error("failed to shut down ipc socket", slog.Any("error", err))
			}
		}
		if err := c.stream.Close(); err != nil {
			c.logger.Error("failed to close ipc socket", slog.Any("error", err))
		}
	})
	return nil
}
