package wgpuasync

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// halProvider is implemented by device providers that expose direct access
// to the underlying HAL handles.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// FromProvider creates an AsyncDevice from a gpucontext device provider,
// such as a running gogpu application. The provider must also expose the
// raw HAL handles via HalDevice() any and HalQueue() any.
//
// This allows sharing one GPU device between gogpu and async callers
// instead of creating a separate instance.
func FromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*AsyncDevice, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALAccess
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALAccess)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALAccess)
	}
	return New(device, queue, opts...)
}

// HalDevice returns the underlying HAL device, making AsyncDevice usable
// wherever a HAL-exposing provider is expected.
func (d *AsyncDevice) HalDevice() any { return d.Device }

// HalQueue returns the underlying HAL queue.
func (d *AsyncDevice) HalQueue() any { return d.queue.Queue }
