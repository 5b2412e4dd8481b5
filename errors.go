package wgpuasync

import "errors"

// Package errors.
var (
	// ErrNilDevice is returned when constructing a facade without a device.
	ErrNilDevice = errors.New("wgpuasync: device is nil")

	// ErrNilQueue is returned when constructing a facade without a queue.
	ErrNilQueue = errors.New("wgpuasync: queue is nil")

	// ErrNoHALAccess is returned by FromProvider when the device provider
	// does not expose the underlying HAL device and queue.
	ErrNoHALAccess = errors.New("wgpuasync: provider does not expose HAL device and queue")

	// ErrInvalidReadRange is returned when an async read exceeds the
	// buffer bounds.
	ErrInvalidReadRange = errors.New("wgpuasync: read range out of bounds")
)
