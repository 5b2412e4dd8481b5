package wgpuasync

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// AsyncBuffer wraps a hal.Buffer together with the AsyncDevice that created
// it, so the buffer can originate async operations of its own.
//
// The underlying buffer is embedded and exposed unchanged.
type AsyncBuffer struct {
	hal.Buffer

	device *AsyncDevice
	size   uint64
}

// Device returns the facade this buffer was created through.
func (b *AsyncBuffer) Device() *AsyncDevice {
	return b.device
}

// Size returns the buffer size in bytes.
func (b *AsyncBuffer) Size() uint64 {
	return b.size
}

// ReadResult is the value delivered by ReadAsync's future. Driver-level
// failure while the readback was in flight is carried in Err; Data is only
// valid when Err is nil.
type ReadResult struct {
	Data []byte
	Err  error
}

// ReadAsync copies size bytes starting at offset into a staging buffer on
// the GPU timeline and returns a future that completes with the data once
// the copy has executed.
//
// The copy command is encoded and submitted synchronously, before ReadAsync
// returns. The buffer must have been created with CopySrc usage. A zero
// size, or a range extending past the end of the buffer, is rejected with
// ErrInvalidReadRange.
func (b *AsyncBuffer) ReadAsync(offset, size uint64) (*Future[ReadResult], error) {
	// offset+size would wrap for ranges near the top of the uint64 space,
	// so compare against the remaining length instead.
	if size == 0 || size > b.size || offset > b.size-size {
		return nil, fmt.Errorf("%w: offset %d size %d buffer %d",
			ErrInvalidReadRange, offset, size, b.size)
	}

	dev := b.device

	staging, err := dev.Device.CreateBuffer(&hal.BufferDescriptor{
		Label: "wgpuasync-readback-staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpuasync: create staging buffer: %w", err)
	}

	encoder, err := dev.Device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "wgpuasync-readback",
	})
	if err != nil {
		dev.Device.DestroyBuffer(staging)
		return nil, fmt.Errorf("wgpuasync: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("wgpuasync-readback"); err != nil {
		dev.Device.DestroyBuffer(staging)
		return nil, fmt.Errorf("wgpuasync: begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(b.Buffer, staging, []hal.BufferCopy{
		{SrcOffset: offset, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		dev.Device.DestroyBuffer(staging)
		return nil, fmt.Errorf("wgpuasync: end encoding: %w", err)
	}

	fence, err := dev.Device.CreateFence()
	if err != nil {
		cmdBuf.Destroy()
		dev.Device.DestroyBuffer(staging)
		return nil, fmt.Errorf("wgpuasync: create fence: %w", err)
	}

	if err := dev.queue.Queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		cmdBuf.Destroy()
		dev.Device.DestroyFence(fence)
		dev.Device.DestroyBuffer(staging)
		return nil, fmt.Errorf("wgpuasync: submit readback: %w", err)
	}

	fut := DoAsync(dev, func(done func(ReadResult)) {
		dev.fences.Watch(fence, 1, func(werr error) {
			defer func() {
				cmdBuf.Destroy()
				dev.Device.DestroyFence(fence)
				dev.Device.DestroyBuffer(staging)
			}()
			if werr != nil {
				done(ReadResult{Err: werr})
				return
			}
			data := make([]byte, size)
			if rerr := dev.queue.Queue.ReadBuffer(staging, 0, data); rerr != nil {
				done(ReadResult{Err: fmt.Errorf("wgpuasync: readback: %w", rerr)})
				return
			}
			done(ReadResult{Data: data})
		})
	})
	return fut, nil
}
