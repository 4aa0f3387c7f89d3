package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ffx64/discord-presence-go/internal/manager"
	"github.com/ffx64/discord-presence-go/models"
	"github.com/ffx64/discord-presence-go/transport/ipc"
)

// execute sends one command and waits for the reply carrying its nonce.
func execute[A, E any](ctx context.Context, c *Client, cmd models.Command, args A, evt *models.Event) (*models.Payload[E], error) {
	if !c.ready.Load() {
		return nil, ErrNotStarted
	}
	m := c.currentManager()
	if m == nil {
		return nil, ErrNotStarted
	}

	c.execMu.Lock()
	defer c.execMu.Unlock()

	p := models.NewPayload(cmd, args, evt)
	f, err := ipc.NewFrame(ipc.OpFrame, p)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("executing command", slog.String("cmd", string(cmd)), slog.String("nonce", p.Nonce))
	if err := m.Send(ctx, manager.Request{Nonce: p.Nonce, Frame: f}); err != nil {
		return nil, stopped(err)
	}

	for {
		r, err := m.Recv(ctx)
		if err != nil {
			return nil, stopped(err)
		}
		// Replies to calls whose context expired can still arrive.
		if r.Nonce != "" && r.Nonce != p.Nonce {
			c.logger.Debug("discarding stale reply", slog.String("nonce", r.Nonce))
			continue
		}
		if r.Err != nil {
			return nil, r.Err
		}
		return decodeReply[E](r.Frame.Payload)
	}
}

func decodeReply[E any](text string) (*models.Payload[E], error) {
	raw, err := models.DecodePayload[json.RawMessage](text)
	if err != nil {
		return nil, err
	}
	if raw.Evt != nil && *raw.Evt == models.EventError {
		var data json.RawMessage
		if b := raw.Body(); b != nil {
			data = *b
		}
		if ev, ok := models.EventError.ParseData(data).(models.ErrorEvent); ok {
			return nil, fmt.Errorf("%w: %w", ErrSubscriptionFailed, ev)
		}
		return nil, fmt.Errorf("%w: %s", ErrSubscriptionFailed, data)
	}
	return models.DecodePayload[E](text)
}

func stopped(err error) error {
	if errors.Is(err, manager.ErrStopped) {
		return fmt.Errorf("%w: %w", ErrNotStarted, err)
	}
	return err
}

// SetActivity replaces the user's activity. The activity is normalized
// before it is sent.
func (c *Client) SetActivity(ctx context.Context, a models.Activity) (*models.Payload[models.Activity], error) {
	return execute[models.SetActivityArgs, models.Activity](ctx, c, models.CommandSetActivity, models.NewSetActivityArgs(a), nil)
}

// ClearActivity removes the user's activity.
func (c *Client) ClearActivity(ctx context.Context) (*models.Payload[models.Activity], error) {
	return execute[models.SetActivityArgs, models.Activity](ctx, c, models.CommandSetActivity, models.ClearActivityArgs(), nil)
}

// SendActivityJoinInvite accepts the join request of userID. The reply
// data is undocumented and returned raw.
func (c *Client) SendActivityJoinInvite(ctx context.Context, userID uint64) (*models.Payload[json.RawMessage], error) {
	return execute[models.SendActivityJoinInviteArgs, json.RawMessage](ctx, c, models.CommandSendActivityJoinInvite, models.NewSendActivityJoinInviteArgs(userID), nil)
}

// CloseActivityRequest rejects the join request of userID.
func (c *Client) CloseActivityRequest(ctx context.Context, userID uint64) (*models.Payload[json.RawMessage], error) {
	return execute[models.CloseActivityRequestArgs, json.RawMessage](ctx, c, models.CommandCloseActivityRequest, models.NewCloseActivityRequestArgs(userID), nil)
}

// Subscribe asks Discord to send evt. Join and spectate events are only
// delivered after subscribing.
func (c *Client) Subscribe(ctx context.Context, evt models.Event, args models.SubscriptionArgs) (*models.Payload[models.Subscription], error) {
	return execute[models.SubscriptionArgs, models.Subscription](ctx, c, models.CommandSubscribe, args, evt.Ptr())
}

func (c *Client) Unsubscribe(ctx context.Context, evt models.Event, args models.SubscriptionArgs) (*models.Payload[models.Subscription], error) {
	return execute[models.SubscriptionArgs, models.Subscription](ctx, c, models.CommandUnsubscribe, args, evt.Ptr())
}
