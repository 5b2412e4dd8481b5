package wgpuasync

// Option configures an AsyncDevice during creation.
type Option func(*deviceOptions)

// deviceOptions holds optional configuration for AsyncDevice creation.
type deviceOptions struct {
	poller Poller
}

// WithPoller overrides the polling primitive driven while futures are
// awaited. By default the device's FencePoller is used, which suits the
// gogpu HAL; drivers that deliver completions through their own polling
// entry point can plug it in here.
//
// Example:
//
//	device, err := wgpuasync.New(halDevice, halQueue,
//	    wgpuasync.WithPoller(wgpuasync.PollerFunc(func() bool {
//	        return driver.ProcessEvents()
//	    })))
func WithPoller(p Poller) Option {
	return func(o *deviceOptions) {
		o.poller = p
	}
}
