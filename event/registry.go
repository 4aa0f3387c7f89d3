// Package event holds the registry that fans Discord events out to
// callbacks.
//
// Registration returns a Handle. Call Remove (usually deferred) to stop
// receiving the event, or Persist to keep the callback for the lifetime of
// the registry. Dispatch runs callbacks synchronously on the dispatching
// goroutine, in registration order, without holding the registry lock, so a
// callback may register or remove handlers itself.
//
// Remove does not wait for a dispatch running on another goroutine. A
// dispatch that had already checked the callback before Remove returned may
// still invoke it once; every dispatch that starts after Remove returns
// skips it. Callbacks that must never run after their removal should guard
// themselves, as Client.BlockUntilEvent does with a non-blocking send.
package event

import (
	"sync"
	"sync/atomic"

	"github.com/ffx64/discord-presence-go/models"
)

// Context is passed to every callback.
type Context struct {
	Event models.Event
	Data  models.EventData
}

// Handler receives dispatched events.
type Handler func(Context)

type entry struct {
	id     uint64
	fn     Handler
	active atomic.Bool
}

// Registry maps event kinds to ordered callbacks. The zero value is not
// usable; call NewRegistry.
type Registry struct {
	mu       sync.RWMutex
	handlers map[models.Event][]*entry
	nextID   uint64
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[models.Event][]*entry)}
}

// Register appends fn to the callbacks of evt.
func (r *Registry) Register(evt models.Event, fn Handler) *Handle {
	e := &entry{fn: fn}
	e.active.Store(true)

	r.mu.Lock()
	r.nextID++
	e.id = r.nextID
	// Slices are replaced, never mutated in place, so a dispatch holding an
	// older slice is unaffected.
	old := r.handlers[evt]
	next := make([]*entry, len(old), len(old)+1)
	copy(next, old)
	r.handlers[evt] = append(next, e)
	r.mu.Unlock()

	return &Handle{registry: r, event: evt, entry: e}
}

// Deregister removes the callback behind h. It is equivalent to h.Remove.
func (r *Registry) Deregister(h *Handle) {
	h.Remove()
}

func (r *Registry) remove(evt models.Event, e *entry) {
	// Cleared before the slice changes so an in-progress dispatch skips it.
	e.active.Store(false)

	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.handlers[evt]
	next := make([]*entry, 0, len(old))
	for _, cur := range old {
		if cur != e {
			next = append(next, cur)
		}
	}
	if len(next) == 0 {
		delete(r.handlers, evt)
		return
	}
	r.handlers[evt] = next
}

// Dispatch calls every live callback of evt in registration order.
func (r *Registry) Dispatch(evt models.Event, data models.EventData) {
	r.mu.RLock()
	snapshot := r.handlers[evt]
	r.mu.RUnlock()

	ctx := Context{Event: evt, Data: data}
	for _, e := range snapshot {
		if !e.active.Load() {
			continue
		}
		e.fn(ctx)
	}
}

// Len returns the number of callbacks registered for evt.
func (r *Registry) Len(evt models.Event) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[evt])
}

// Handle owns one registration.
type Handle struct {
	registry *Registry
	event    models.Event
	entry    *entry

	mu        sync.Mutex
	released  bool
	persisted bool
}

// Event returns the event kind the handle listens to.
func (h *Handle) Event() models.Event {
	return h.event
}

// Remove deregisters the callback. Dispatches that begin after Remove
// returns do not call it; one already in progress on another goroutine may
// still do so. It is safe to call more than once, and does nothing after
// Persist.
func (h *Handle) Remove() {
	if h == nil {
		return
	}
	h.mu.Lock()
	if h.released || h.persisted {
		h.mu.Unlock()
		return
	}
	h.released = true
	h.mu.Unlock()

	h.registry.remove(h.event, h.entry)
}

// Persist keeps the callback registered for the lifetime of the registry;
// later calls to Remove are ignored.
func (h *Handle) Persist() {
	h.mu.Lock()
	h.persisted = true
	h.mu.Unlock()
}
