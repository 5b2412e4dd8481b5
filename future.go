package wgpuasync

import (
	"context"
	"sync"
)

// Future is a single-result awaitable bound to exactly one registered
// completion callback. It starts Pending and transitions to Completed when
// the driver invokes the callback; the transition is terminal and the stored
// result never changes afterwards.
//
// A Future is created by DoAsync and owned by the caller that received it.
// It may be awaited from multiple goroutines; all of them observe the same
// result. Abandoning a Future before it completes is safe: the registered
// callback keeps the result slot alive independently, so the driver can
// still fire it later without touching freed state.
type Future[R any] struct {
	loop *pollLoop
	slot *resultSlot[R]
}

// resultSlot carries the eventual value. It is shared between the Future
// and the completion callback rather than owned by the Future, so the
// callback outlives a dropped Future.
type resultSlot[R any] struct {
	once  sync.Once
	done  chan struct{}
	value R
}

func newFuture[R any](loop *pollLoop) *Future[R] {
	return &Future[R]{
		loop: loop,
		slot: &resultSlot[R]{done: make(chan struct{})},
	}
}

// complete is the completion callback handed to the driver. The first
// invocation stores the value and wakes all waiters; any further
// invocations are no-ops and never alter the stored result.
func (s *resultSlot[R]) complete(v R) {
	s.once.Do(func() {
		s.value = v
		close(s.done)
	})
}

// Ready reports whether the future has completed. It never polls the
// driver.
func (f *Future[R]) Ready() bool {
	select {
	case <-f.slot.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future completes or ctx is cancelled.
//
// If the result is already available it is returned immediately without
// invoking the driver's polling primitive. Otherwise the calling goroutine
// registers with the device's poll loop and helps pump the driver until the
// callback fires.
//
// On cancellation Await returns ctx.Err() and deregisters; the operation
// itself is not (and cannot be) cancelled on the device, and its callback
// may still fire later, harmlessly. A callback that never fires — a lost
// device, a caller that violated the DoAsync contract — keeps the future
// Pending forever; bounding the wait is the caller's job via ctx.
func (f *Future[R]) Await(ctx context.Context) (R, error) {
	select {
	case <-f.slot.done:
		return f.slot.value, nil
	default:
	}

	f.loop.register()
	defer f.loop.deregister()

	if err := f.loop.drive(ctx, f.slot.done); err != nil {
		var zero R
		return zero, err
	}
	return f.slot.value, nil
}
