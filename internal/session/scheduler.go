package session

import (
	"sync"
	"time"
)

// Scheduler runs fn once after d. The returned cancel func stops the call if
// it has not started yet and reports whether it did so.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func() bool)
}

// TimerScheduler schedules callbacks with time.AfterFunc.
type TimerScheduler struct{}

// Schedule implements Scheduler.
func (TimerScheduler) Schedule(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

// ManualScheduler holds scheduled callbacks until Fire is called.
// Used to drive the controller deterministically.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*manualTask
}

type manualTask struct {
	delay    time.Duration
	fn       func()
	canceled bool
	fired    bool
}

// Schedule implements Scheduler.
func (s *ManualScheduler) Schedule(d time.Duration, fn func()) func() bool {
	task := &manualTask{delay: d, fn: fn}

	s.mu.Lock()
	s.pending = append(s.pending, task)
	s.mu.Unlock()

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if task.fired || task.canceled {
			return false
		}
		task.canceled = true
		return true
	}
}

// Pending returns the delays of tasks that have neither fired nor been canceled.
func (s *ManualScheduler) Pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []time.Duration
	for _, t := range s.pending {
		if !t.fired && !t.canceled {
			out = append(out, t.delay)
		}
	}
	return out
}

// Scheduled returns how many tasks were ever scheduled.
func (s *ManualScheduler) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Fire runs every live task in scheduling order and returns how many ran.
func (s *ManualScheduler) Fire() int {
	s.mu.Lock()
	var due []func()
	for _, t := range s.pending {
		if !t.fired && !t.canceled {
			t.fired = true
			due = append(due, t.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range due {
		fn()
	}
	return len(due)
}

// FireAll runs every task, including canceled ones, as a timer that raced
// its own Stop would. Returns how many ran.
func (s *ManualScheduler) FireAll() int {
	s.mu.Lock()
	var due []func()
	for _, t := range s.pending {
		if !t.fired {
			t.fired = true
			due = append(due, t.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range due {
		fn()
	}
	return len(due)
}
