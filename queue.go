package wgpuasync

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// AsyncQueue wraps a hal.Queue so that submissions can be awaited.
//
// The underlying queue is embedded: synchronous operations (WriteBuffer,
// WriteTexture, the fence-explicit Submit) are exposed unchanged, and
// *AsyncQueue satisfies hal.Queue.
type AsyncQueue struct {
	hal.Queue

	device *AsyncDevice
}

var _ hal.Queue = (*AsyncQueue)(nil)

// Device returns the facade this queue belongs to.
func (q *AsyncQueue) Device() *AsyncDevice {
	return q.device
}

// SubmitAsync submits command buffers and returns a future that completes
// when the device has finished executing them.
//
// The submission itself happens synchronously, before SubmitAsync returns;
// only the completion wait is deferred. The future's value is the
// driver-reported completion result: nil on success, or the fence wait
// error if the device failed while the work was in flight. The returned
// error covers local failures only (fence creation, submission rejected).
func (q *AsyncQueue) SubmitAsync(cmds []hal.CommandBuffer) (*Future[error], error) {
	dev := q.device
	fence, err := dev.Device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("wgpuasync: create fence: %w", err)
	}

	if err := q.Queue.Submit(cmds, fence, 1); err != nil {
		dev.Device.DestroyFence(fence)
		return nil, fmt.Errorf("wgpuasync: submit: %w", err)
	}

	fut := DoAsync(dev, func(done func(error)) {
		dev.fences.Watch(fence, 1, func(werr error) {
			dev.Device.DestroyFence(fence)
			done(werr)
		})
	})
	return fut, nil
}
