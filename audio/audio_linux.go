//go:build linux

package audio

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

// Software gain on top of a doubled stream volume; laptop microphones are
// quiet through pulse.
const pulseGain = 4

type pulseContext struct {
	client *pulse.Client
}

func NewContext() (Context, error) {
	c, err := pulse.NewClient(pulse.ClientApplicationName("vallet"))
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseContext{client: c}, nil
}

// Devices lists capture sources, skipping the monitors of output sinks.
func (p *pulseContext) Devices() ([]DeviceInfo, error) {
	sources, err := p.client.ListSources()
	if err != nil {
		return nil, fmt.Errorf("pulse list sources: %w", err)
	}
	devices := make([]DeviceInfo, 0, len(sources))
	for _, s := range sources {
		if strings.HasSuffix(s.ID(), ".monitor") {
			continue
		}
		devices = append(devices, DeviceInfo{ID: s.ID(), Name: s.Name()})
	}
	return devices, nil
}

func (p *pulseContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	return &pulseCapture{client: p.client, device: device, config: config}, nil
}

func (p *pulseContext) Close() { p.client.Close() }

type pulseCapture struct {
	client   *pulse.Client
	device   *DeviceInfo
	config   CaptureConfig
	callback atomic.Pointer[FrameCallback]

	mu     sync.Mutex
	stream *pulse.RecordStream

	bufMu sync.Mutex
	buf   []float32 // pending samples when FrameSize is set
}

func (c *pulseCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		return nil
	}

	opts := []pulse.RecordOption{
		pulse.RecordMono,
		pulse.RecordSampleRate(int(c.config.SampleRate)),
		pulse.RecordLatency(0.05),
		pulse.RecordRawOption(func(r *proto.CreateRecordStream) {
			r.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm) * 2}
		}),
	}
	if c.device != nil {
		source, err := c.client.SourceByID(c.device.ID)
		if err != nil {
			return denied(fmt.Sprintf("pulse source %q", c.device.Name), err)
		}
		opts = append(opts, pulse.RecordSource(source))
	}

	stream, err := c.client.NewRecord(pulse.Float32Writer(c.write), opts...)
	if err != nil {
		return denied("pulse record", err)
	}
	c.bufMu.Lock()
	c.buf = nil
	c.bufMu.Unlock()
	c.stream = stream
	stream.Start()
	return nil
}

// write runs on the pulse goroutine. Samples are amplified and, with a
// FrameSize, regrouped into frames of exactly that length.
func (c *pulseCapture) write(in []float32) (int, error) {
	cb := c.callback.Load()
	if cb == nil || len(in) == 0 {
		return len(in), nil
	}
	size := int(c.config.FrameSize)
	if size == 0 {
		frame := make([]float32, len(in))
		for i, s := range in {
			frame[i] = s * pulseGain
		}
		(*cb)(frame)
		return len(in), nil
	}
	c.bufMu.Lock()
	defer c.bufMu.Unlock()
	for _, s := range in {
		c.buf = append(c.buf, s*pulseGain)
		if len(c.buf) == size {
			(*cb)(c.buf)
			c.buf = make([]float32, 0, size)
		}
	}
	return len(in), nil
}

// Stop closes the stream and delivers the samples still short of a full
// frame, so the end of a recording is not lost.
func (c *pulseCapture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
		c.stream = nil
	}
	c.flush()
}

func (c *pulseCapture) flush() {
	c.bufMu.Lock()
	defer c.bufMu.Unlock()
	if len(c.buf) == 0 {
		return
	}
	if cb := c.callback.Load(); cb != nil {
		(*cb)(c.buf)
	}
	c.buf = nil
}

func (c *pulseCapture) Close() { c.Stop() }

func (c *pulseCapture) SetCallback(cb FrameCallback) { c.callback.Store(&cb) }
func (c *pulseCapture) ClearCallback()               { c.callback.Store(nil) }
