// Package wgpuasync bridges the callback-and-poll completion model of the
// gogpu/wgpu HAL to ordinary blocking Go code.
//
// # Overview
//
// WebGPU-style drivers report completion of asynchronous work (queue
// submissions, buffer readback) through one-shot callbacks, and those
// callbacks only fire while application code keeps invoking the driver's
// polling primitive. wgpuasync converts that pattern into futures: start an
// operation, get a Future back, and Await it. Polling happens automatically,
// only while at least one future is being awaited, and never concurrently
// with itself.
//
// # Quick Start
//
//	import "github.com/gogpu/wgpuasync"
//
//	// Wrap a HAL device and queue.
//	device, err := wgpuasync.New(halDevice, halQueue)
//	if err != nil {
//	    return err
//	}
//
//	// Submit command buffers and wait for the GPU to finish them.
//	done, err := device.Queue().SubmitAsync(cmds)
//	if err != nil {
//	    return err
//	}
//	if werr, err := done.Await(ctx); err != nil || werr != nil {
//	    // err is a local failure (context cancelled),
//	    // werr is the driver-reported completion result.
//	}
//
// # Architecture
//
// The library is organized around three pieces:
//
//   - AsyncDevice: a facade over hal.Device. It embeds the device, so it is a
//     drop-in substitute anywhere a plain hal.Device is expected, and adds
//     DoAsync, the callback-to-future conversion point.
//   - Future: a single-result awaitable bound to exactly one completion
//     callback. Pending until the callback fires, then Completed forever.
//   - Poller and its poll loop: the shared pump for the driver's polling
//     primitive. Awaiting goroutines take turns invoking it; invocations are
//     serialized because concurrent polling of one device is a driver-level
//     hazard.
//
// The gogpu HAL signals completion through fences rather than callbacks, so
// FencePoller adapts fence waits to the callback-and-poll contract. Custom
// drivers can plug in their own Poller via WithPoller.
//
// # Caller contract
//
// The operation passed to DoAsync must hand the supplied callback to the
// driver exactly once. If it never does, the future stays Pending forever and
// Await blocks until its context is cancelled; wgpuasync imposes no timeout
// of its own. Driver-level failures (device lost, validation errors) travel
// inside the result value delivered through the callback, never as a separate
// error path.
package wgpuasync

// Version is the current version of the library.
const Version = "0.1.0"
