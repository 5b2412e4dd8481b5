package wgpuasync

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// AsyncDevice wraps a hal.Device so that the driver's callback-and-poll
// operations can be awaited as futures.
//
// The underlying device is embedded: every hal.Device operation is exposed
// unchanged and *AsyncDevice satisfies hal.Device, making it a drop-in
// substitute wherever a plain device handle is expected.
//
// An AsyncDevice is a cheap handle. Copying it (or passing the pointer
// around) shares the same device, queue, and poll loop; resources created
// through the facade keep their own reference so they can originate futures
// of their own.
type AsyncDevice struct {
	hal.Device

	queue  *AsyncQueue
	loop   *pollLoop
	fences *FencePoller
}

var _ hal.Device = (*AsyncDevice)(nil)

// New creates an AsyncDevice over a HAL device and its queue.
//
// Unless overridden with WithPoller, awaited futures drive the device's
// FencePoller, which converts fence signals into completion callbacks.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*AsyncDevice, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}

	var o deviceOptions
	for _, opt := range opts {
		opt(&o)
	}

	d := &AsyncDevice{
		Device: device,
		fences: NewFencePoller(device),
	}
	poller := o.poller
	if poller == nil {
		poller = d.fences
	}
	d.loop = newPollLoop(poller)
	d.queue = &AsyncQueue{Queue: queue, device: d}

	Logger().Debug("wgpuasync: async device created")
	return d, nil
}

// DoAsync converts one callback-and-poll driver operation into a future.
//
// op is invoked immediately, before DoAsync returns, with the future's
// completion callback; it must hand that callback to the driver exactly
// once, beginning one asynchronous unit of work. Work usually starts on the
// device right away, whether or not the returned future is ever awaited;
// the driver is only polled once someone awaits.
//
// Precondition, not checked at runtime: op registers the callback exactly
// once. If it never does, the future stays Pending forever. If the driver
// fires it more than once, later invocations are ignored.
//
// DoAsync is a function rather than a method because Go methods cannot
// introduce type parameters.
//
// Example:
//
//	done, err := device.Queue().SubmitAsync(cmds) // built on DoAsync
//
//	fut := wgpuasync.DoAsync(device, func(callback func(error)) {
//	    device.Fences().Watch(fence, 1, callback)
//	})
//	werr, err := fut.Await(ctx)
func DoAsync[R any](d *AsyncDevice, op func(callback func(R))) *Future[R] {
	f := newFuture[R](d.loop)
	op(f.slot.complete)
	return f
}

// Queue returns the async wrapper around the device's queue.
func (d *AsyncDevice) Queue() *AsyncQueue {
	return d.queue
}

// Fences returns the device's fence poller. Custom operations can register
// fence watches on it and convert them to futures with DoAsync.
func (d *AsyncDevice) Fences() *FencePoller {
	return d.fences
}

// CreateAsyncBuffer creates a buffer through the underlying device and
// wraps it together with this facade, so the buffer can later originate
// async operations such as ReadAsync.
//
// This is pure delegation; no polling or async behavior happens here. The
// embedded hal.Device CreateBuffer remains available for callers that want
// the raw handle.
func (d *AsyncDevice) CreateAsyncBuffer(desc *hal.BufferDescriptor) (*AsyncBuffer, error) {
	buf, err := d.Device.CreateBuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("wgpuasync: create buffer: %w", err)
	}
	return &AsyncBuffer{
		Buffer: buf,
		device: d,
		size:   desc.Size,
	}, nil
}
