package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ffx64/discord-presence-go/models"
	"github.com/ffx64/discord-presence-go/transport/ipc"
)

// Run drives the connection until stop is signalled, a non-recoverable
// connect failure occurs, or the retry budget is spent. The transport is
// owned by this goroutine alone.
func (m *Manager) Run(stop <-chan struct{}) {
	defer close(m.done)

	ctx := context.Background()
	var conn ipc.Transport
	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	retries := m.cfg.RetryLimit
	m.logger.Debug("starting connection loop")

	for {
		select {
		case <-stop:
			m.logger.Debug("stop requested")
			return
		default:
		}

		if conn == nil {
			c, err := m.connect(ctx)
			if err == nil {
				conn = c
				retries = m.cfg.RetryLimit
				continue
			}

			recoverable := Recoverable(err)
			m.metrics.ConnectFailure(ctx, recoverable)
			m.dispatch(ctx, models.EventError, errorEvent(err))
			if !recoverable {
				m.logger.Error("giving up on discord ipc", slog.Any("error", err))
				return
			}
			m.logger.Warn("failed to connect", slog.Any("error", err))

			if retries >= 0 {
				if retries == 0 {
					m.logger.Error("connection retries exhausted", slog.Int("limit", m.cfg.RetryLimit))
					return
				}
				retries--
			}
			if !m.pause(stop, m.cfg.ErrorSleep) {
				return
			}
			continue
		}

		switch err := m.exchange(ctx, conn); classify(err) {
		case actionContinue:
			continue
		case actionDisconnect:
			m.logger.Info("disconnected from discord", slog.Any("error", err))
			conn.Close()
			conn = nil
			m.metrics.Disconnect(ctx)
			m.dispatch(ctx, models.EventDisconnected, models.NoData{})
		case actionLog:
			if err != nil {
				m.logger.Warn("discord ipc error", slog.Any("error", err))
			}
		}

		if !m.pause(stop, m.cfg.PollInterval) {
			return
		}
	}
}

// pause sleeps for d and reports false if stop fired first.
func (m *Manager) pause(stop <-chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-stop:
		return false
	case <-t.C:
		return true
	}
}

func (m *Manager) connect(ctx context.Context) (ipc.Transport, error) {
	if m.cfg.ClientID == 0 {
		return nil, ErrInvalidClientID
	}
	m.metrics.ConnectAttempt(ctx)

	conn, err := m.cfg.Dial()
	if err != nil {
		return nil, err
	}
	reply, err := conn.Handshake(m.cfg.ClientID)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p, err := models.DecodePayload[json.RawMessage](reply.Payload)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("decode handshake reply: %w", err)
	}
	data := rawData(p)
	if p.Evt != nil && *p.Evt == models.EventError {
		conn.Close()
		if ev, ok := models.EventError.ParseData(data).(models.ErrorEvent); ok {
			return nil, fmt.Errorf("%w: %w", ipc.ErrHandshakeRejected, ev)
		}
		return nil, fmt.Errorf("%w: %s", ipc.ErrHandshakeRejected, data)
	}

	if m.cfg.Ready.CompareAndSwap(false, true) {
		m.logger.Info("discord client is ready")
		m.dispatch(ctx, models.EventReady, models.EventReady.ParseData(data))
	}
	m.dispatch(ctx, models.EventConnected, models.NoData{})
	return conn, nil
}

// exchange flushes every queued request, then performs one receive.
func (m *Manager) exchange(ctx context.Context, conn ipc.Transport) error {
flush:
	for {
		select {
		case req := <-m.outbound:
			if err := conn.Send(req.Frame); err != nil {
				m.deliver(Reply{Nonce: req.Nonce, Err: err})
				return err
			}
			m.metrics.FrameSent(ctx)
		default:
			break flush
		}
	}

	f, err := conn.Receive()
	if err != nil {
		return err
	}
	m.metrics.FrameReceived(ctx)
	return m.route(ctx, conn, f)
}

func (m *Manager) route(ctx context.Context, conn ipc.Transport, f ipc.Frame) error {
	switch f.OpCode {
	case ipc.OpPing:
		return conn.Send(ipc.Frame{OpCode: ipc.OpPong, Payload: f.Payload})
	case ipc.OpPong:
		return nil
	case ipc.OpClose:
		return fmt.Errorf("%w: %s", ipc.ErrConnectionClosed, f.Payload)
	}

	p, err := models.DecodePayload[json.RawMessage](f.Payload)
	if err != nil {
		return err
	}
	// Events arrive as DISPATCH frames; anything else answers a command,
	// including ERROR replies, which belong to the waiting caller.
	if p.Evt != nil && p.Cmd == models.CommandDispatch {
		m.dispatch(ctx, *p.Evt, p.Evt.ParseData(rawData(p)))
		return nil
	}
	m.deliver(Reply{Nonce: p.Nonce, Frame: f})
	return nil
}

func (m *Manager) dispatch(ctx context.Context, evt models.Event, data models.EventData) {
	m.metrics.EventDispatched(ctx, string(evt))
	m.cfg.Registry.Dispatch(evt, data)
}

func rawData(p *models.RawPayload) json.RawMessage {
	if b := p.Body(); b != nil {
		return *b
	}
	return nil
}

func errorEvent(err error) models.ErrorEvent {
	msg := err.Error()
	ev := models.ErrorEvent{Message: &msg}
	var ce *ipc.CloseError
	if errors.As(err, &ce) {
		code := ce.Code
		ev.Code = &code
	}
	return ev
}
