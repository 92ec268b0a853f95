package uistate

import (
	"context"
	"time"

	"vallet/log"
)

// Host realizes window requests. Calls are issued from the machine's loop.
type Host interface {
	Resize(size Size)
	Hide()
	ClearQuery()
}

// Capturer is the recording pipeline driven by start/stop events.
type Capturer interface {
	Start() error
	Stop()
}

const eventBuffer = 32

// Machine applies Transition to a stream of events on a single goroutine and
// executes the resulting effects.
type Machine struct {
	mode     Mode
	host     Host
	capture  Capturer
	reset    *Scheduler
	delay    time.Duration
	observer func(Mode)

	events  chan Event
	stopped chan struct{}
}

type Option func(*Machine)

func WithResetDelay(d time.Duration) Option {
	return func(m *Machine) { m.delay = d }
}

// WithAfterFunc replaces time.AfterFunc for the reset timer.
func WithAfterFunc(f AfterFunc) Option {
	return func(m *Machine) { m.reset = NewScheduler(f) }
}

// WithObserver registers f to be called with the mode after every event.
func WithObserver(f func(Mode)) Option {
	return func(m *Machine) { m.observer = f }
}

func New(host Host, capture Capturer, opts ...Option) *Machine {
	m := &Machine{
		mode:    ModeLauncher,
		host:    host,
		capture: capture,
		delay:   DefaultResetDelay,
		events:  make(chan Event, eventBuffer),
		stopped: make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	if m.reset == nil {
		m.reset = NewScheduler(nil)
	}
	return m
}

// Mode is the current mode. Only meaningful on the loop goroutine or while
// Run is not running.
func (m *Machine) Mode() Mode {
	return m.mode
}

// ResetPending reports whether a reversion to launcher is armed.
func (m *Machine) ResetPending() bool {
	return m.reset.Pending()
}

// Post queues ev for the loop. It returns false once Run has returned.
func (m *Machine) Post(ev Event) bool {
	select {
	case <-m.stopped:
		return false
	default:
	}
	select {
	case m.events <- ev:
		return true
	case <-m.stopped:
		return false
	}
}

// Run handles posted events until ctx is done. Capture still running at
// that point is stopped so the device is released.
func (m *Machine) Run(ctx context.Context) error {
	defer close(m.stopped)
	for {
		select {
		case <-ctx.Done():
			m.reset.Cancel()
			m.capture.Stop()
			return ctx.Err()
		case ev := <-m.events:
			m.Handle(ev)
		}
	}
}

// Handle applies one event synchronously.
func (m *Machine) Handle(ev Event) {
	if ev.Kind == EventResetDue && !m.reset.Claim(ev.token) {
		log.Info("stale ui reset ignored")
		return
	}

	prev := m.mode
	next, effects := Transition(prev, ev)
	m.mode = next
	for _, e := range effects {
		m.apply(e)
	}
	if prev != next {
		log.ModeChange(prev.String(), next.String(), ev.Kind.String())
	}
	if m.observer != nil {
		m.observer(next)
	}
}

func (m *Machine) apply(e Effect) {
	switch e.Kind {
	case EffectResize:
		m.host.Resize(e.Size)
	case EffectHide:
		m.host.Hide()
	case EffectClearQuery:
		m.host.ClearQuery()
	case EffectStartCapture:
		// The mode is left as is on failure; the recording indicator stays up
		// until the next stop, window-shown or escape.
		if err := m.capture.Start(); err != nil {
			log.Warnf("capture start failed: %v", err)
		}
	case EffectStopCapture:
		m.capture.Stop()
	case EffectScheduleReset:
		m.reset.Schedule(m.delay, func(token uint64) {
			m.Post(Event{Kind: EventResetDue, token: token})
		})
	case EffectCancelReset:
		m.reset.Cancel()
	}
}
