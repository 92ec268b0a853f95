package audio

import (
	"fmt"
	"sync"
)

// FakeContext hands out FakeCaptures whose frames are pushed by the caller.
type FakeContext struct {
	mu       sync.Mutex
	devices  []DeviceInfo
	denied   bool
	captures []*FakeCapture
}

func NewFakeContext(devices ...DeviceInfo) *FakeContext {
	return &FakeContext{devices: devices}
}

// Deny makes subsequent NewCapture calls fail with ErrPermissionDenied.
func (f *FakeContext) Deny(denied bool) {
	f.mu.Lock()
	f.denied = denied
	f.mu.Unlock()
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]DeviceInfo(nil), f.devices...), nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denied {
		return nil, fmt.Errorf("fake device: %w", ErrPermissionDenied)
	}
	c := &FakeCapture{Device: device, Config: config}
	f.captures = append(f.captures, c)
	return c, nil
}

// Captures returns every capture opened so far, oldest first.
func (f *FakeContext) Captures() []*FakeCapture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeCapture(nil), f.captures...)
}

// Last returns the most recently opened capture, or nil.
func (f *FakeContext) Last() *FakeCapture {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.captures) == 0 {
		return nil
	}
	return f.captures[len(f.captures)-1]
}

// Open reports how many captures are started or not yet closed.
func (f *FakeContext) Open() int {
	n := 0
	for _, c := range f.Captures() {
		if !c.Closed() {
			n++
		}
	}
	return n
}

type FakeCapture struct {
	Device *DeviceInfo
	Config CaptureConfig

	mu      sync.Mutex
	cb      FrameCallback
	running bool
	closed  bool
	tail    []float32
}

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return fmt.Errorf("fake capture: start after close")
	}
	f.running = true
	return nil
}

// Stop delivers the pending tail, if any, to the registered callback the
// way a backend flushes its partially filled frame.
func (f *FakeCapture) Stop() {
	f.mu.Lock()
	cb, tail := f.cb, f.tail
	f.running = false
	f.tail = nil
	f.mu.Unlock()
	if cb != nil && len(tail) > 0 {
		cb(tail)
	}
}

// SetTail holds samples back until Stop, like a device buffer that has not
// filled a whole frame yet.
func (f *FakeCapture) SetTail(samples []float32) {
	f.mu.Lock()
	f.tail = samples
	f.mu.Unlock()
}

func (f *FakeCapture) Close() {
	f.mu.Lock()
	f.running = false
	f.closed = true
	f.mu.Unlock()
}

func (f *FakeCapture) SetCallback(cb FrameCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *FakeCapture) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Emit delivers one frame as the platform callback would. It reports whether
// a callback was registered and the device was running.
func (f *FakeCapture) Emit(frame []float32) bool {
	f.mu.Lock()
	cb, running := f.cb, f.running
	f.mu.Unlock()
	if cb == nil || !running {
		return false
	}
	cb(frame)
	return true
}

// Feed splits samples into frames of frameSize and emits them in order.
func (f *FakeCapture) Feed(samples []float32, frameSize int) int {
	n := 0
	for len(samples) > 0 {
		size := min(frameSize, len(samples))
		if f.Emit(samples[:size]) {
			n++
		}
		samples = samples[size:]
	}
	return n
}
