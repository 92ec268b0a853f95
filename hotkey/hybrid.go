package hotkey

import (
	"context"
	"sync/atomic"
	"time"
)

// Hybrid turns one key combo into start/stop signals: a tap starts and the
// next tap stops, while holding past the threshold stops on release.
type Hybrid struct {
	startCh chan struct{}
	stopCh  chan struct{}
	resetCh chan struct{}
	toggle  atomic.Bool
}

// NewHybrid watches hk until ctx is done. A longPress of zero disables
// push-to-talk so every press toggles.
func NewHybrid(ctx context.Context, hk Hotkey, longPress time.Duration) *Hybrid {
	h := &Hybrid{
		startCh: make(chan struct{}, 1),
		stopCh:  make(chan struct{}, 1),
		resetCh: make(chan struct{}, 1),
	}
	go h.run(ctx, hk, longPress)
	return h
}

func (h *Hybrid) Start() <-chan struct{} { return h.startCh }

func (h *Hybrid) StopChan() <-chan struct{} { return h.stopCh }

// IsToggle reports whether the current recording was started by a tap.
func (h *Hybrid) IsToggle() bool { return h.toggle.Load() }

// Reset tells h the recording was stopped by something other than the key,
// so a tap-started recording no longer waits for its stopping tap. Resets
// left over when h is already idle are dropped at the next press.
func (h *Hybrid) Reset() {
	select {
	case h.resetCh <- struct{}{}:
	default:
	}
}

func (h *Hybrid) takeReset() bool {
	select {
	case <-h.resetCh:
		return true
	default:
		return false
	}
}

type hybridState int

const (
	stIdle hybridState = iota
	stToggleRecording
)

func (h *Hybrid) run(ctx context.Context, hk Hotkey, longPress time.Duration) {
	state := stIdle
	wait := func(ch <-chan struct{}) bool {
		select {
		case <-ch:
			return true
		case <-ctx.Done():
			return false
		}
	}
	signal := func(ch chan struct{}) {
		select {
		case ch <- struct{}{}:
		case <-ctx.Done():
		}
	}

	// pressed is set when the keydown starting the next recording was
	// already consumed in stToggleRecording.
	pressed := false
	for {
		switch state {
		case stIdle:
			if !pressed && !wait(hk.Keydown()) {
				return
			}
			pressed = false
			h.takeReset()
			h.toggle.Store(longPress <= 0)
			signal(h.startCh)
			if longPress <= 0 {
				if !wait(hk.Keyup()) {
					return
				}
				state = stToggleRecording
				continue
			}
			timer := time.NewTimer(longPress)
			select {
			case <-timer.C:
				// held: push-to-talk, stop on release
				if !wait(hk.Keyup()) {
					return
				}
				signal(h.stopCh)
			case <-hk.Keyup():
				timer.Stop()
				h.toggle.Store(true)
				state = stToggleRecording
			case <-ctx.Done():
				timer.Stop()
				return
			}
		case stToggleRecording:
			select {
			case <-ctx.Done():
				return
			case <-h.resetCh:
				state = stIdle
				continue
			case <-hk.Keydown():
			}
			if h.takeReset() {
				// stopped elsewhere while the key went down: this press starts
				pressed = true
				state = stIdle
				continue
			}
			if !wait(hk.Keyup()) {
				return
			}
			signal(h.stopCh)
			state = stIdle
		}
	}
}
