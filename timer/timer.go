// File: timer/timer.go
// License: Apache-2.0

package timer

import (
	"math"
	"time"

	"github.com/zenpkg/eventkit/api"
	"github.com/zenpkg/eventkit/dispatch"
)

// Timer fires a callback after an interval, once or repeatedly. All
// methods must run on the dispatcher thread; the timer holds no lock.
type Timer struct {
	callback   func()
	intervalMs uint64
	singleShot bool
	running    bool
	deadline   time.Time
	disp       *dispatch.Dispatcher
}

var _ api.Timer = (*Timer)(nil)

// New returns a recurring timer invoking callback on every expiry.
func New(callback func()) *Timer {
	return &Timer{callback: callback}
}

// NewSingleShot returns a timer that fires callback once and stops.
func NewSingleShot(callback func()) *Timer {
	return &Timer{callback: callback, singleShot: true}
}

// SetSingleShot switches between single-shot and recurring behavior.
// Takes effect on the next expiry.
func (t *Timer) SetSingleShot(single bool) {
	t.singleShot = single
}

// SingleShot reports whether the timer stops after one expiry.
func (t *Timer) SingleShot() bool {
	return t.singleShot
}

// Interval returns the configured interval in milliseconds.
func (t *Timer) Interval() uint64 {
	return t.intervalMs
}

// IsRunning reports whether the timer is started.
func (t *Timer) IsRunning() bool {
	return t.running
}

// Start arms the timer to fire in ms milliseconds and registers it with
// the calling thread's dispatcher. Starting a running timer restarts it
// with the new interval. Returns dispatch.ErrNoDispatcher when the
// thread has no dispatcher.
func (t *Timer) Start(ms uint64) error {
	d := dispatch.Instance()
	if d == nil {
		return dispatch.ErrNoDispatcher
	}
	t.intervalMs = ms
	t.deadline = time.Now().Add(time.Duration(ms) * time.Millisecond)
	if !t.running {
		d.RegisterTimer(t)
		t.disp = d
		t.running = true
	}
	return nil
}

// Stop disarms the timer and removes it from its dispatcher. Stopping a
// stopped timer is a no-op.
func (t *Timer) Stop() {
	if !t.running {
		return
	}
	t.running = false
	if t.disp != nil {
		t.disp.RemoveTimer(t)
		t.disp = nil
	}
}

// Remaining returns the milliseconds until the next expiry, rounded up,
// 0 meaning due now. A stopped timer is never due.
func (t *Timer) Remaining() uint64 {
	if !t.running {
		return math.MaxUint64
	}
	remaining := time.Until(t.deadline)
	if remaining <= 0 {
		return 0
	}
	// Round up so the dispatcher does not spin on a not-quite-due timer.
	return uint64((remaining + time.Millisecond - 1) / time.Millisecond)
}

// Expire fires the callback when the timer is actually due, guarding
// against spurious wakeups. Recurring timers rearm from the expiry
// instant so intervals do not drift; single-shot timers stop and
// deregister before the callback runs, letting the callback restart the
// timer if it wants to.
func (t *Timer) Expire() {
	if !t.running || time.Now().Before(t.deadline) {
		return
	}
	if t.singleShot {
		t.Stop()
	} else {
		interval := time.Duration(t.intervalMs) * time.Millisecond
		t.deadline = t.deadline.Add(interval)
		if !t.deadline.After(time.Now()) {
			// Expiries were missed; realign instead of firing a burst.
			t.deadline = time.Now().Add(interval)
		}
	}
	if t.callback != nil {
		t.callback()
	}
}
