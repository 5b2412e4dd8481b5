package wgpuasync

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// =============================================================================
// Fake driver types for testing
// =============================================================================
//
// The HAL fakes embed the hal interfaces and override only the methods
// wgpuasync actually calls, so they stay source-compatible with the full
// interfaces.

// countingPoller counts Poll invocations and records whether Poll was ever
// re-entered concurrently. onPoll, if set, receives the 1-based invocation
// number and decides the return value.
type countingPoller struct {
	polls     atomic.Int64
	inFlight  atomic.Int64
	reentered atomic.Bool
	onPoll    func(n int64) bool
}

func (p *countingPoller) Poll() bool {
	if p.inFlight.Add(1) != 1 {
		p.reentered.Store(true)
	}
	defer p.inFlight.Add(-1)

	n := p.polls.Add(1)
	if p.onPoll != nil {
		return p.onPoll(n)
	}
	return false
}

// fakeBuffer is a test double for hal.Buffer backed by a byte slice.
type fakeBuffer struct {
	hal.Buffer
	label string
	data  []byte
}

// fakeFence is a test double for hal.Fence. remaining is the number of
// device Wait calls left until the fence signals; waitErr, if set, makes
// every Wait on this fence fail. Both are guarded by the fakeDevice mutex.
type fakeFence struct {
	hal.Fence
	remaining int
	waitErr   error
}

type fakeCommandBuffer struct {
	hal.CommandBuffer
	destroyed atomic.Int32
}

func (c *fakeCommandBuffer) Destroy() { c.destroyed.Add(1) }

// fakeEncoder applies buffer copies at encode time, which is enough for
// readback tests.
type fakeEncoder struct {
	hal.CommandEncoder
	began   bool
	lastCmd *fakeCommandBuffer
}

func (e *fakeEncoder) BeginEncoding(_ string) error {
	e.began = true
	return nil
}

func (e *fakeEncoder) CopyBufferToBuffer(src, dst hal.Buffer, copies []hal.BufferCopy) {
	s := src.(*fakeBuffer)
	d := dst.(*fakeBuffer)
	for _, c := range copies {
		copy(d.data[c.DstOffset:c.DstOffset+c.Size], s.data[c.SrcOffset:c.SrcOffset+c.Size])
	}
}

func (e *fakeEncoder) EndEncoding() (hal.CommandBuffer, error) {
	e.lastCmd = &fakeCommandBuffer{}
	return e.lastCmd, nil
}

// fakeDevice is a test double for hal.Device with fence bookkeeping.
type fakeDevice struct {
	hal.Device

	mu               sync.Mutex
	buffersCreated   int
	buffersDestroyed int
	fencesCreated    int
	fencesDestroyed  int
	waitCalls        int
	destroyCalls     int

	// signalAfter is the number of Wait calls a newly created fence needs
	// before it signals. Zero means signaled on the first wait.
	signalAfter int
	// waitErr, if set, is attached to newly created fences.
	waitErr error
}

func (d *fakeDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buffersCreated++
	return &fakeBuffer{label: desc.Label, data: make([]byte, desc.Size)}, nil
}

func (d *fakeDevice) DestroyBuffer(_ hal.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buffersDestroyed++
}

func (d *fakeDevice) CreateCommandEncoder(_ *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	return &fakeEncoder{}, nil
}

func (d *fakeDevice) CreateFence() (hal.Fence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fencesCreated++
	return &fakeFence{remaining: d.signalAfter, waitErr: d.waitErr}, nil
}

func (d *fakeDevice) DestroyFence(_ hal.Fence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fencesDestroyed++
}

func (d *fakeDevice) Wait(fence hal.Fence, _ uint64, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waitCalls++
	f := fence.(*fakeFence)
	if f.waitErr != nil {
		return false, f.waitErr
	}
	if f.remaining > 0 {
		f.remaining--
	}
	return f.remaining == 0, nil
}

func (d *fakeDevice) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyCalls++
}

// fakeQueue is a test double for hal.Queue.
type fakeQueue struct {
	hal.Queue

	mu        sync.Mutex
	submits   int
	submitErr error
	readErr   error
}

func (q *fakeQueue) Submit(_ []hal.CommandBuffer, _ hal.Fence, _ uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.submits++
	return q.submitErr
}

func (q *fakeQueue) WriteBuffer(buf hal.Buffer, offset uint64, data []byte) error {
	copy(buf.(*fakeBuffer).data[offset:], data)
	return nil
}

func (q *fakeQueue) ReadBuffer(buf hal.Buffer, offset uint64, dst []byte) error {
	q.mu.Lock()
	readErr := q.readErr
	q.mu.Unlock()
	if readErr != nil {
		return readErr
	}
	copy(dst, buf.(*fakeBuffer).data[offset:])
	return nil
}

// fakeProvider implements gpucontext.DeviceProvider plus HAL access.
type fakeProvider struct {
	gpucontext.DeviceProvider
	dev hal.Device
	q   hal.Queue
}

func (p *fakeProvider) HalDevice() any { return p.dev }
func (p *fakeProvider) HalQueue() any  { return p.q }

// bareProvider implements gpucontext.DeviceProvider without HAL access.
type bareProvider struct {
	gpucontext.DeviceProvider
}

// newTestDevice creates an AsyncDevice over fresh fakes.
func newTestDevice(t *testing.T, opts ...Option) (*AsyncDevice, *fakeDevice, *fakeQueue) {
	t.Helper()
	fd := &fakeDevice{}
	fq := &fakeQueue{}
	d, err := New(fd, fq, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return d, fd, fq
}
