package uistate

import "time"

type Timer interface {
	Stop() bool
}

// AfterFunc arms f to run once after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Scheduler is a single-slot delayed action. Arming it cancels whatever was
// armed before, and every arming gets a fresh token so a timer that fired
// just before being cancelled can be recognized as stale by Claim.
//
// A Scheduler is not safe for concurrent use; the fire callback runs on the
// timer's goroutine and should only hand its token back to the owner.
type Scheduler struct {
	after AfterFunc
	timer Timer
	armed uint64 // token of the pending action, 0 when idle
	last  uint64
}

func NewScheduler(after AfterFunc) *Scheduler {
	if after == nil {
		after = realAfterFunc
	}
	return &Scheduler{after: after}
}

// Schedule arms fire to be called with the new token after d.
func (s *Scheduler) Schedule(d time.Duration, fire func(token uint64)) uint64 {
	s.Cancel()
	s.last++
	token := s.last
	s.armed = token
	s.timer = s.after(d, func() { fire(token) })
	return token
}

// Cancel disarms the pending action. It reports whether one was pending.
func (s *Scheduler) Cancel() bool {
	if s.armed == 0 {
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = nil
	s.armed = 0
	return true
}

func (s *Scheduler) Pending() bool {
	return s.armed != 0
}

// Claim consumes the pending action if token identifies it. A false result
// means the action was cancelled or superseded after its timer fired.
func (s *Scheduler) Claim(token uint64) bool {
	if token == 0 || token != s.armed {
		return false
	}
	s.timer = nil
	s.armed = 0
	return true
}
