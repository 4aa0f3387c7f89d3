package client

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
)

// Thread is the handle of the worker goroutine started by Client.Start.
// Client.Shutdown and Client.BlockOn use it up; Persist gives it up while
// leaving the worker running.
type Thread struct {
	stop     chan struct{}
	done     chan struct{}
	err      error
	joining  atomic.Bool
	stopped  atomic.Bool
	consumed atomic.Bool
}

func spawn(run func(stop <-chan struct{}), logger *slog.Logger) *Thread {
	t := &Thread{
		stop: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("worker panicked", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
				t.err = fmt.Errorf("%w: %v", ErrEventLoop, r)
			}
		}()
		run(t.stop)
	}()
	return t
}

// Stop asks the worker to exit and waits for it.
func (t *Thread) Stop() error {
	if err := t.signal(); err != nil {
		return err
	}
	return t.wait()
}

// Persist detaches the handle. The worker keeps running until the process
// exits, and later Stop, Join, Shutdown or BlockOn calls fail.
func (t *Thread) Persist() {
	t.consumed.Store(true)
}

// signal queues the stop request. Only the first call succeeds.
func (t *Thread) signal() error {
	if t.consumed.Load() || !t.stopped.CompareAndSwap(false, true) {
		return ErrThreadError
	}
	select {
	case t.stop <- struct{}{}:
	default:
	}
	return nil
}

// Join waits for the worker to exit and returns its failure, if any.
// Only one caller may join at a time.
func (t *Thread) Join() error {
	if t.consumed.Load() {
		return ErrThreadError
	}
	if !t.joining.CompareAndSwap(false, true) {
		return ErrThreadInUse
	}
	defer t.joining.Store(false)
	return t.wait()
}

func (t *Thread) wait() error {
	<-t.done
	return t.err
}

// IsFinished reports whether the worker has exited.
func (t *Thread) IsFinished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done is closed when the worker exits.
func (t *Thread) Done() <-chan struct{} {
	return t.done
}
