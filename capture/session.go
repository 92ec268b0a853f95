// Package capture owns the microphone while a recording is active and turns
// each finished recording into one encoded transmission.
package capture

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"vallet/audio"
	"vallet/encoder"
	"vallet/log"
)

var ErrPermissionDenied = audio.ErrPermissionDenied

const DefaultQueueSize = 64

type Options struct {
	Device     *audio.DeviceInfo // nil selects the system default
	SampleRate uint32
	FrameSize  uint32
	QueueSize  int // capacity of the frame channel feeding the accumulator
}

// Clip is what a stopped recording hands to its caller.
type Clip struct {
	ID       uuid.UUID
	Chunks   [][]int16
	Started  time.Time
	Duration time.Duration
	Late     int // frames that arrived after stop was requested
}

func (c Clip) Samples() int {
	return encoder.TotalSamples(c.Chunks)
}

// Session holds at most one active recording. Start and Stop are meant to be
// called from a single goroutine; frame callbacks may arrive on any.
type Session struct {
	actx audio.Context
	opts Options
	rec  *recording
}

func NewSession(actx audio.Context, opts Options) *Session {
	if opts.SampleRate == 0 {
		opts.SampleRate = encoder.SampleRate
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	return &Session{actx: actx, opts: opts}
}

type recording struct {
	id      uuid.UUID
	dev     audio.CaptureDevice
	started time.Time

	frames chan []int16
	done   chan struct{}
	chunks [][]int16 // owned by accumulate until done is closed

	mu     sync.RWMutex
	sealed bool
	late   atomic.Int64
}

func (r *recording) onFrame(frame []float32) {
	chunk := encoder.Quantize(frame)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.sealed {
		r.late.Add(1)
		return
	}
	r.frames <- chunk
}

func (r *recording) accumulate() {
	defer close(r.done)
	for c := range r.frames {
		r.chunks = append(r.chunks, c)
	}
}

// seal stops accepting frames and waits for the accumulator to drain.
func (r *recording) seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
	close(r.frames)
	<-r.done
}

// Active reports whether a recording currently holds the microphone.
func (s *Session) Active() bool {
	return s.rec != nil
}

// Start opens the microphone and begins accumulating chunks. A second Start
// while active is ignored. Any failure to acquire the device is reported as
// ErrPermissionDenied.
func (s *Session) Start() error {
	if s.rec != nil {
		log.Warn("capture already active, start ignored")
		return nil
	}

	dev, err := s.actx.NewCapture(s.opts.Device, audio.CaptureConfig{
		SampleRate: s.opts.SampleRate,
		Channels:   encoder.Channels,
		FrameSize:  s.opts.FrameSize,
	})
	if err != nil {
		return permissionError(err)
	}

	r := &recording{
		id:      uuid.New(),
		dev:     dev,
		started: time.Now(),
		frames:  make(chan []int16, s.opts.QueueSize),
		done:    make(chan struct{}),
	}
	go r.accumulate()
	dev.SetCallback(r.onFrame)

	if err := dev.Start(); err != nil {
		dev.ClearCallback()
		r.seal()
		dev.Close()
		return permissionError(err)
	}

	s.rec = r
	log.RecordingStart(r.id.String(), s.deviceName())
	return nil
}

// Stop releases the device and returns the accumulated chunks. Without an
// active recording it does nothing and returns false.
func (s *Session) Stop() (Clip, bool) {
	r := s.rec
	if r == nil {
		return Clip{}, false
	}
	s.rec = nil

	// Stopping first lets the device flush its last partial frame while the
	// recording still accepts it.
	r.dev.Stop()
	r.dev.ClearCallback()
	r.seal()
	r.dev.Close()

	clip := Clip{
		ID:       r.id,
		Chunks:   r.chunks,
		Started:  r.started,
		Duration: time.Since(r.started),
		Late:     int(r.late.Load()),
	}
	log.RecordingStop(clip.ID.String(), len(clip.Chunks), clip.Samples(), clip.Late, clip.Duration)
	return clip, true
}

func (s *Session) deviceName() string {
	if s.opts.Device != nil {
		return s.opts.Device.Name
	}
	return "system default"
}

func permissionError(err error) error {
	if errors.Is(err, ErrPermissionDenied) {
		return fmt.Errorf("opening microphone: %w", err)
	}
	return fmt.Errorf("opening microphone: %w: %w", ErrPermissionDenied, err)
}
