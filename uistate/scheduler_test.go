package uistate

import (
	"testing"
	"time"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs every armed timer, as if their deadlines all passed.
func (c *fakeClock) fire() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			t.f()
			n++
		}
	}
	return n
}

func (c *fakeClock) active() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func TestSchedulerFire(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock.AfterFunc)

	var got []uint64
	tok := s.Schedule(1500*time.Millisecond, func(token uint64) { got = append(got, token) })
	if !s.Pending() {
		t.Fatal("expected pending after Schedule")
	}
	if clock.timers[0].d != 1500*time.Millisecond {
		t.Errorf("delay = %v, want 1.5s", clock.timers[0].d)
	}
	clock.fire()
	if len(got) != 1 || got[0] != tok {
		t.Fatalf("fired tokens = %v, want [%d]", got, tok)
	}
	if !s.Claim(tok) {
		t.Error("Claim of armed token failed")
	}
	if s.Pending() {
		t.Error("still pending after Claim")
	}
	if s.Claim(tok) {
		t.Error("second Claim succeeded")
	}
}

func TestSchedulerRescheduleCancelsPrevious(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock.AfterFunc)

	fired := 0
	first := s.Schedule(time.Second, func(uint64) { fired++ })
	second := s.Schedule(time.Second, func(uint64) { fired++ })

	if clock.active() != 1 {
		t.Fatalf("%d timers armed, want 1", clock.active())
	}
	clock.fire()
	if fired != 1 {
		t.Errorf("fired %d times, want 1", fired)
	}
	if s.Claim(first) {
		t.Error("superseded token claimed")
	}
	if !s.Claim(second) {
		t.Error("current token not claimed")
	}
}

func TestSchedulerCancelIdempotent(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock.AfterFunc)

	if s.Cancel() {
		t.Error("Cancel with nothing pending returned true")
	}
	tok := s.Schedule(time.Second, func(uint64) {})
	if !s.Cancel() {
		t.Error("Cancel of pending action returned false")
	}
	if s.Cancel() {
		t.Error("second Cancel returned true")
	}
	if clock.fire() != 0 {
		t.Error("cancelled timer fired")
	}
	if s.Claim(tok) {
		t.Error("cancelled token claimed")
	}
}

func TestSchedulerStaleFire(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock.AfterFunc)

	var fired uint64
	tok := s.Schedule(time.Second, func(token uint64) { fired = token })
	clock.fire()
	s.Cancel()
	if fired != tok {
		t.Fatalf("fired = %d, want %d", fired, tok)
	}
	if s.Claim(fired) {
		t.Error("token claimed after cancel")
	}
}

func TestSchedulerRealTimer(t *testing.T) {
	s := NewScheduler(nil)
	done := make(chan uint64, 1)
	tok := s.Schedule(time.Millisecond, func(token uint64) { done <- token })
	select {
	case got := <-done:
		if got != tok {
			t.Errorf("token = %d, want %d", got, tok)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}
