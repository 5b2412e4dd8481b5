package wgpuasync

import (
	"sync"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// fenceWaiter is the subset of hal.Device used by FencePoller.
type fenceWaiter interface {
	Wait(fence hal.Fence, value uint64, timeout time.Duration) (bool, error)
}

// fenceWatch is one registered completion callback, waiting for a fence to
// reach a value.
type fenceWatch struct {
	fence hal.Fence
	value uint64
	fire  func(error)
}

// FencePoller adapts the gogpu HAL's fence-based completion model to the
// callback-and-poll contract consumed by the poll loop.
//
// The HAL has no callback registration of its own: work is submitted with a
// fence, and completion is observed by waiting on that fence. Watch plays
// the role of the driver's callback registration primitive, and Poll plays
// the polling primitive: it checks every watched fence with a zero timeout
// and fires the callbacks whose fences signaled.
//
// Watch is safe for concurrent use. Poll is invoked only by the poll loop,
// which serializes it.
type FencePoller struct {
	device fenceWaiter

	mu      sync.Mutex
	watches []fenceWatch
}

// NewFencePoller creates a fence poller over a device. AsyncDevice creates
// one automatically; constructing one directly is only needed when wiring a
// custom poller arrangement.
func NewFencePoller(device fenceWaiter) *FencePoller {
	return &FencePoller{device: device}
}

// Watch registers fire to be invoked once, during a later Poll, when the
// fence reaches value. If waiting on the fence fails, fire receives the
// wait error instead; a signaled fence delivers nil.
func (p *FencePoller) Watch(fence hal.Fence, value uint64, fire func(error)) {
	p.mu.Lock()
	p.watches = append(p.watches, fenceWatch{fence: fence, value: value, fire: fire})
	p.mu.Unlock()
}

// Poll checks all watched fences without blocking and fires the callbacks
// whose fences signaled or errored. It reports whether any callback fired.
//
// Callbacks run outside the internal lock, so a callback may register new
// watches (chained operations) without deadlocking.
func (p *FencePoller) Poll() bool {
	type firedWatch struct {
		fire func(error)
		err  error
	}

	p.mu.Lock()
	var fired []firedWatch
	remaining := p.watches[:0]
	for _, w := range p.watches {
		signaled, err := p.device.Wait(w.fence, w.value, 0)
		switch {
		case err != nil:
			Logger().Warn("wgpuasync: fence wait failed", "err", err)
			fired = append(fired, firedWatch{fire: w.fire, err: err})
		case signaled:
			fired = append(fired, firedWatch{fire: w.fire})
		default:
			remaining = append(remaining, w)
		}
	}
	p.watches = remaining
	p.mu.Unlock()

	for _, w := range fired {
		w.fire(w.err)
	}
	return len(fired) > 0
}
