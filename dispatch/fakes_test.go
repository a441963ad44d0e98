// File: dispatch/fakes_test.go
// License: Apache-2.0
//
// Hand-rolled fakes shared by the dispatcher tests: a controllable poll
// context, a recording event source and deadline-driven timers.

package dispatch

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zenpkg/eventkit/api"
)

type fakeWatch struct {
	fd      int
	req     api.Conditions
	pend    api.Conditions
	invalid bool
	removed bool
}

// fakeContext implements api.PollContext. Readiness is staged with
// signal() and becomes observable on the next Wait, like revents from a
// real poll.
type fakeContext struct {
	watches []*fakeWatch
	staged  map[int]api.Conditions

	adds    int
	mods    int
	removes int
	waits   []int

	wake        chan struct{}
	blockOnWait bool // Wait(-1) blocks until Wakeup
	sleepOnWait bool // Wait(n>0) sleeps up to n milliseconds
}

var _ api.PollContext = (*fakeContext)(nil)

func newFakeContext() *fakeContext {
	return &fakeContext{
		staged: make(map[int]api.Conditions),
		wake:   make(chan struct{}, 1),
	}
}

func (c *fakeContext) AddWatch(fd int, conds api.Conditions) api.WatchTag {
	c.adds++
	w := &fakeWatch{fd: fd, req: conds}
	c.watches = append(c.watches, w)
	return w
}

func (c *fakeContext) ModifyWatch(tag api.WatchTag, conds api.Conditions) {
	c.mods++
	if w, ok := tag.(*fakeWatch); ok && !w.removed {
		w.req = conds
	}
}

func (c *fakeContext) RemoveWatch(tag api.WatchTag) {
	if w, ok := tag.(*fakeWatch); ok && !w.removed {
		c.removes++
		w.removed = true
	}
}

func (c *fakeContext) Pending(tag api.WatchTag) (api.Conditions, bool) {
	w, ok := tag.(*fakeWatch)
	if !ok || w.removed || w.invalid {
		return 0, false
	}
	return w.pend, true
}

func (c *fakeContext) Wait(timeoutMs int) (int, error) {
	c.waits = append(c.waits, timeoutMs)
	ready := 0
	for _, w := range c.watches {
		if w.removed {
			continue
		}
		w.pend = c.staged[w.fd]
		if w.pend != 0 {
			ready++
		}
	}
	c.staged = make(map[int]api.Conditions)

	switch {
	case c.blockOnWait && timeoutMs < 0:
		<-c.wake
	case c.sleepOnWait && timeoutMs > 0:
		select {
		case <-c.wake:
		case <-time.After(time.Duration(timeoutMs) * time.Millisecond):
		}
	}
	return ready, nil
}

func (c *fakeContext) Wakeup() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *fakeContext) Close() error { return nil }

// signal stages conditions observed for fd on the next Wait.
func (c *fakeContext) signal(fd int, conds api.Conditions) {
	c.staged[fd] |= conds
}

// invalidate flags every watch of fd as natively invalid.
func (c *fakeContext) invalidate(fd int) {
	for _, w := range c.watches {
		if w.fd == fd {
			w.invalid = true
		}
	}
}

type fdEvent struct {
	fd     int
	events api.EventTypes
}

type recordingSource struct {
	calls []fdEvent
}

func (s *recordingSource) OnFdReady(fd int, events api.EventTypes) {
	s.calls = append(s.calls, fdEvent{fd: fd, events: events})
}

// deadlineTimer implements api.Timer against the real clock.
type deadlineTimer struct {
	deadline time.Time
	expired  int
	onExpire func()
}

func (t *deadlineTimer) Remaining() uint64 {
	remaining := time.Until(t.deadline)
	if remaining <= 0 {
		return 0
	}
	return uint64((remaining + time.Millisecond - 1) / time.Millisecond)
}

func (t *deadlineTimer) Expire() {
	if time.Now().Before(t.deadline) {
		return
	}
	t.expired++
	if t.onExpire != nil {
		t.onExpire()
	}
}

// dueTimer is always due.
type dueTimer struct {
	expired int
}

func (t *dueTimer) Remaining() uint64 { return 0 }
func (t *dueTimer) Expire()           { t.expired++ }

// selfRemovingSource deregisters itself from inside its own callback.
type selfRemovingSource struct {
	calls  int
	remove func()
}

func (s *selfRemovingSource) OnFdReady(fd int, events api.EventTypes) {
	s.calls++
	if s.remove != nil {
		s.remove()
	}
}

type recordCloser struct {
	fn func()
}

func (c *recordCloser) Close() error {
	if c.fn != nil {
		c.fn()
	}
	return nil
}

var _ io.Closer = (*recordCloser)(nil)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestDispatcher builds a dispatcher over ctx on the test goroutine's
// thread and closes it when the test ends.
func newTestDispatcher(t *testing.T, ctx api.PollContext) *Dispatcher {
	t.Helper()
	d, err := NewForThread(WithPollContext(ctx), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewForThread() error: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}
