package client

import (
	"context"
	"fmt"

	"github.com/ffx64/discord-presence-go/event"
	"github.com/ffx64/discord-presence-go/internal/manager"
	"github.com/ffx64/discord-presence-go/models"
)

// OnEvent registers fn for evt. Call Remove on the returned handle to
// deregister it, or Persist to keep it for the life of the client.
func (c *Client) OnEvent(evt models.Event, fn event.Handler) *event.Handle {
	return c.registry.Register(evt, fn)
}

func (c *Client) OnReady(fn event.Handler) *event.Handle {
	return c.OnEvent(models.EventReady, fn)
}

func (c *Client) OnError(fn event.Handler) *event.Handle {
	return c.OnEvent(models.EventError, fn)
}

func (c *Client) OnActivityJoin(fn event.Handler) *event.Handle {
	return c.OnEvent(models.EventActivityJoin, fn)
}

func (c *Client) OnActivityJoinRequest(fn event.Handler) *event.Handle {
	return c.OnEvent(models.EventActivityJoinRequest, fn)
}

func (c *Client) OnActivitySpectate(fn event.Handler) *event.Handle {
	return c.OnEvent(models.EventActivitySpectate, fn)
}

func (c *Client) OnConnected(fn event.Handler) *event.Handle {
	return c.OnEvent(models.EventConnected, fn)
}

func (c *Client) OnDisconnected(fn event.Handler) *event.Handle {
	return c.OnEvent(models.EventDisconnected, fn)
}

// BlockUntilEvent waits for the next dispatch of evt. It is meant for
// awaiting models.EventReady right after Start; the wait also ends when ctx
// is done or the worker exits.
func (c *Client) BlockUntilEvent(ctx context.Context, evt models.Event) (event.Context, error) {
	got := make(chan event.Context, 1)
	h := c.OnEvent(evt, func(ec event.Context) {
		select {
		case got <- ec:
		default:
		}
	})
	defer h.Remove()

	var exited <-chan struct{}
	if t := c.Thread(); t != nil {
		exited = t.Done()
	}

	select {
	case ec := <-got:
		return ec, nil
	case <-exited:
		// The worker's last dispatch may be the one we wait for.
		select {
		case ec := <-got:
			return ec, nil
		default:
			return event.Context{}, fmt.Errorf("%w: %w", ErrNotStarted, manager.ErrStopped)
		}
	case <-ctx.Done():
		return event.Context{}, ctx.Err()
	}
}
