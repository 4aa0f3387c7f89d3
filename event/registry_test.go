package event

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffx64/discord-presence-go/models"
)

func recorder(calls *[]string, mu *sync.Mutex, name string) Handler {
	return func(Context) {
		mu.Lock()
		*calls = append(*calls, name)
		mu.Unlock()
	}
}

func TestDispatchOrderAndRemoval(t *testing.T) {
	r := NewRegistry()
	var (
		mu    sync.Mutex
		calls []string
	)

	a := r.Register(models.EventReady, recorder(&calls, &mu, "A"))
	b := r.Register(models.EventReady, recorder(&calls, &mu, "B"))
	c := r.Register(models.EventReady, recorder(&calls, &mu, "C"))
	defer a.Remove()
	defer c.Remove()

	r.Dispatch(models.EventReady, models.NoData{})
	assert.Equal(t, []string{"A", "B", "C"}, calls)

	b.Remove()
	calls = nil
	r.Dispatch(models.EventReady, models.NoData{})
	assert.Equal(t, []string{"A", "C"}, calls)
	assert.Equal(t, 2, r.Len(models.EventReady))
}

func TestDispatchOnlyMatchingEvent(t *testing.T) {
	r := NewRegistry()
	var got []Context
	h := r.Register(models.EventActivityJoin, func(ctx Context) { got = append(got, ctx) })
	defer h.Remove()

	r.Dispatch(models.EventActivitySpectate, models.ActivitySpectateEvent{Secret: "s"})
	assert.Empty(t, got)

	r.Dispatch(models.EventActivityJoin, models.ActivityJoinEvent{Secret: "j"})
	require.Len(t, got, 1)
	assert.Equal(t, models.EventActivityJoin, got[0].Event)
	assert.Equal(t, models.ActivityJoinEvent{Secret: "j"}, got[0].Data)
	assert.Equal(t, models.EventActivityJoin, h.Event())
}

func TestPersistIgnoresRemove(t *testing.T) {
	r := NewRegistry()
	var n int
	h := r.Register(models.EventConnected, func(Context) { n++ })
	h.Persist()
	h.Remove()

	r.Dispatch(models.EventConnected, models.NoData{})
	assert.Equal(t, 1, n)
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	h := r.Register(models.EventError, func(Context) {})
	h.Remove()
	h.Remove()
	r.Deregister(h)
	assert.Zero(t, r.Len(models.EventError))

	var nilHandle *Handle
	assert.NotPanics(t, nilHandle.Remove)
}

func TestCallbackCanMutateRegistry(t *testing.T) {
	r := NewRegistry()
	var self *Handle
	var extra *Handle
	var fired int
	self = r.Register(models.EventReady, func(Context) {
		fired++
		self.Remove()
		extra = r.Register(models.EventReady, func(Context) {})
	})

	done := make(chan struct{})
	go func() {
		r.Dispatch(models.EventReady, models.NoData{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch deadlocked while the callback mutated the registry")
	}
	r.Dispatch(models.EventReady, models.NoData{})
	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, r.Len(models.EventReady))
	extra.Remove()
}

func TestRemoveDuringDispatchSkipsLaterCallbacks(t *testing.T) {
	r := NewRegistry()
	var second *Handle
	var secondCalls int
	first := r.Register(models.EventReady, func(Context) { second.Remove() })
	second = r.Register(models.EventReady, func(Context) { secondCalls++ })
	defer first.Remove()

	r.Dispatch(models.EventReady, models.NoData{})
	assert.Zero(t, secondCalls)
}

func TestConcurrentRegisterDispatchRemove(t *testing.T) {
	r := NewRegistry()
	var calls atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				h := r.Register(models.EventActivityJoin, func(Context) { calls.Add(1) })
				h.Remove()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				r.Dispatch(models.EventActivityJoin, models.NoData{})
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, r.Len(models.EventActivityJoin))
	before := calls.Load()
	r.Dispatch(models.EventActivityJoin, models.NoData{})
	assert.Equal(t, before, calls.Load())
}

func TestRemoveDoesNotWaitForRunningCallback(t *testing.T) {
	r := NewRegistry()
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int64
	h := r.Register(models.EventReady, func(Context) {
		calls.Add(1)
		close(entered)
		<-release
	})

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		r.Dispatch(models.EventReady, models.NoData{})
	}()
	<-entered

	removed := make(chan struct{})
	go func() {
		defer close(removed)
		h.Remove()
	}()
	select {
	case <-removed:
	case <-time.After(5 * time.Second):
		t.Fatal("Remove blocked on a running callback")
	}

	close(release)
	<-dispatched
	r.Dispatch(models.EventReady, models.NoData{})
	assert.Equal(t, int64(1), calls.Load())
}
