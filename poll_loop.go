package wgpuasync

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Poller is the polling primitive of a device driver. A single call
// processes outstanding driver work once, firing whatever completion
// callbacks became ready, and reports whether anything fired.
//
// Poll may block while the driver makes progress (a wait-style driver) or
// return immediately (a check-style driver); the poll loop handles both.
// Implementations do not need to be safe for concurrent use: the poll loop
// guarantees that Poll is never invoked concurrently with itself.
type Poller interface {
	Poll() bool
}

// PollerFunc adapts a function to the Poller interface.
type PollerFunc func() bool

// Poll calls f.
func (f PollerFunc) Poll() bool { return f() }

// pollLoop is the shared driver of the polling primitive for one device.
// Every future created against the device holds a reference to the same
// loop; awaiting goroutines take turns pumping the poller through it.
//
// There is no background goroutine. Polling happens only on goroutines that
// are actively awaiting a pending future, so the loop never busy-polls when
// nothing is outstanding and needs no explicit teardown.
type pollLoop struct {
	poller Poller

	// mu serializes every invocation of poller.Poll. Two goroutines
	// awaiting distinct futures on the same device must not poll the
	// driver concurrently.
	mu sync.Mutex

	// outstanding counts futures currently registered as awaiting.
	outstanding atomic.Int64
}

func newPollLoop(p Poller) *pollLoop {
	return &pollLoop{poller: p}
}

// register records interest from a pending future that is about to be
// awaited. Paired with deregister.
func (l *pollLoop) register() {
	l.outstanding.Add(1)
}

// deregister withdraws interest, either because the future completed or
// because its waiter gave up.
func (l *pollLoop) deregister() {
	l.outstanding.Add(-1)
}

// drive pumps the poller until done is closed or ctx is cancelled. It is
// called with the caller already registered.
//
// done is re-checked after acquiring the poll mutex: while this goroutine
// was blocked on the mutex another waiter's poll may have fired our
// callback, and polling the driver again on its behalf would be wasted
// work.
func (l *pollLoop) drive(ctx context.Context, done <-chan struct{}) error {
	for {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		l.mu.Lock()
		select {
		case <-done:
			l.mu.Unlock()
			return nil
		default:
		}
		progressed := l.poller.Poll()
		l.mu.Unlock()

		if !progressed {
			// Check-style driver with nothing ready yet. Yield so
			// other goroutines (including whichever will eventually
			// make the driver progress) get scheduled.
			runtime.Gosched()
		}
	}
}
