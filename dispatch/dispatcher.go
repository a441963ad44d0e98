// File: dispatch/dispatcher.go
// License: Apache-2.0
//
// Dispatcher lifecycle, registration surface and the polling iteration.

package dispatch

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/eapache/queue"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zenpkg/eventkit/api"
	"github.com/zenpkg/eventkit/internal/poll"
)

// Dispatcher is a single-threaded cooperative event reactor. All methods
// except Quit must be called from the thread that constructed it.
type Dispatcher struct {
	id     uuid.UUID
	thread int

	ctx     api.PollContext
	ownsCtx bool

	logger *logrus.Logger
	log    *logrus.Entry

	sources []*fdSource    // insertion order, dispatched oldest first
	timers  []*timerSource // insertion order

	idleQ     *queue.Queue // of api.IdleFunc
	deferred  []any
	idleArmed bool

	quitReq atomic.Bool
	closed  bool
}

// NewMain constructs the dispatcher of the program's main thread. Pass
// WithPollContext to adopt an externally created context.
func NewMain(opts ...Option) (*Dispatcher, error) {
	return newDispatcher(opts)
}

// NewForThread constructs a dispatcher for the calling worker thread
// with its own poll context.
func NewForThread(opts ...Option) (*Dispatcher, error) {
	return newDispatcher(opts)
}

func newDispatcher(opts []Option) (*Dispatcher, error) {
	if !platformSupported {
		return nil, ErrUnsupported
	}
	d := &Dispatcher{
		id:      uuid.New(),
		ownsCtx: true,
		idleQ:   queue.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logrus.StandardLogger()
	}

	runtime.LockOSThread()
	tid := threadID()
	if !claimThread(tid, d) {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("thread %d: %w", tid, ErrDispatcherExists)
	}
	d.thread = tid

	if d.ctx == nil {
		ctx, err := poll.New()
		if err != nil {
			releaseThread(tid, d)
			runtime.UnlockOSThread()
			return nil, err
		}
		d.ctx = ctx
	}

	d.log = d.logger.WithFields(logrus.Fields{
		"dispatcher": d.id.String(),
		"thread":     tid,
	})
	d.log.Debug("dispatcher created")
	return d, nil
}

// Close destroys all still-registered adapters, releases an owned poll
// context and clears the thread slot. The thread lock taken at
// construction is released.
func (d *Dispatcher) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	for _, s := range d.sources {
		for _, e := range s.entries {
			if e.tag != nil {
				d.ctx.RemoveWatch(e.tag)
			}
		}
		releaseSource(s.source, d)
	}
	d.sources = nil
	for _, ts := range d.timers {
		ts.timer = nil
	}
	d.timers = nil
	d.deferred = nil
	d.idleQ = queue.New()
	d.idleArmed = false

	var err error
	if d.ownsCtx {
		err = d.ctx.Close()
	}
	releaseThread(d.thread, d)
	runtime.UnlockOSThread()
	d.log.Debug("dispatcher closed")
	return err
}

// RunOnce performs one non-blocking iteration: recompute timeouts, poll,
// dispatch every ready source, timer and idle pass. It reports whether
// anything was dispatched.
func (d *Dispatcher) RunOnce() bool {
	return d.iterate(false)
}

// Run blocks the calling thread, iterating until Quit is invoked.
func (d *Dispatcher) Run() {
	d.quitReq.Store(false)
	for !d.quitReq.Load() {
		d.iterate(true)
	}
}

// Quit requests Run to return after the iteration in flight completes.
// Safe to call from any thread.
func (d *Dispatcher) Quit() {
	d.quitReq.Store(true)
	d.ctx.Wakeup()
}

// UpdateEventSource registers or updates the watch of src on fd. When src
// has no adapter yet one is created; when fd is already watched only its
// requested mask changes. Read, Write and Exception modes implicitly
// watch the native error condition as well. Panics with ErrForeignSource
// when src is owned by a different dispatcher.
func (d *Dispatcher) UpdateEventSource(src api.EventSource, fd int, mode api.EventTypes) {
	d.ensureOwner(src)

	s := d.findSource(src)
	if s == nil {
		s = &fdSource{owner: d, source: src}
		d.sources = append(d.sources, s)
		claimSource(src, d)
		d.log.WithField("fd", fd).Debug("event source attached")
	}

	conds := requestedConditions(mode)
	for _, e := range s.entries {
		if e.fd != fd {
			continue
		}
		if e.tag == nil {
			// Removed but not yet swept. Re-adding now would leave two
			// entries for one descriptor, so refuse until the sweep ran.
			d.log.WithField("fd", fd).Warn("re-add of orphaned fd rejected before sweep")
			return
		}
		e.req = conds
		d.ctx.ModifyWatch(e.tag, conds)
		return
	}
	s.entries = append(s.entries, &watchEntry{
		req: conds,
		fd:  fd,
		tag: d.ctx.AddWatch(fd, conds),
	})
}

// RemoveEventSource stops readiness delivery for fd, or for every watch
// of src when fd is api.AllFds. Native watching stops immediately but
// the structural removal of entries and adapter is deferred to the next
// dispatch pass, because the caller may be executing inside this very
// adapter's callback. Unknown sources and descriptors are no-ops. Panics
// with ErrForeignSource when src is owned by a different dispatcher.
func (d *Dispatcher) RemoveEventSource(src api.EventSource, fd int) {
	d.ensureOwner(src)

	s := d.findSource(src)
	if s == nil {
		return
	}
	for _, e := range s.entries {
		if e.tag == nil {
			continue
		}
		if fd == api.AllFds || e.fd == fd {
			d.ctx.RemoveWatch(e.tag)
			e.tag = nil // orphan; swept on the next readiness check
			if fd != api.AllFds {
				return
			}
		}
	}
}

// RegisterTimer adds a timer source adapter for t. Registering the same
// timer twice is a no-op.
func (d *Dispatcher) RegisterTimer(t api.Timer) {
	for _, ts := range d.timers {
		if ts.timer == t {
			return
		}
	}
	d.timers = append(d.timers, &timerSource{timer: t})
}

// RemoveTimer removes the adapter of t. Unknown timers are a no-op.
func (d *Dispatcher) RemoveTimer(t api.Timer) {
	for i, ts := range d.timers {
		if ts.timer == t {
			ts.timer = nil // inert for any due-list snapshot in flight
			d.timers = append(d.timers[:i], d.timers[i+1:]...)
			return
		}
	}
}

// RunningTimers returns the count of currently registered timers.
func (d *Dispatcher) RunningTimers() int {
	return len(d.timers)
}

// InvokeOnIdle enqueues fn for the next idle pass and arms the idle
// notification.
func (d *Dispatcher) InvokeOnIdle(fn api.IdleFunc) {
	d.idleQ.Add(fn)
	d.idleArmed = true
}

// UnrefLater takes ownership of obj and releases it after the current
// dispatch and idle batch completes. Objects implementing io.Closer are
// closed at release time.
func (d *Dispatcher) UnrefLater(obj any) {
	d.deferred = append(d.deferred, obj)
	d.idleArmed = true
}

// InvokeOnIdle enqueues fn on the calling thread's dispatcher. Panics
// with ErrNoDispatcher when the thread has none.
func InvokeOnIdle(fn api.IdleFunc) {
	mustInstance().InvokeOnIdle(fn)
}

// UnrefLater hands obj to the calling thread's dispatcher for deferred
// release. Panics with ErrNoDispatcher when the thread has none.
func UnrefLater(obj any) {
	mustInstance().UnrefLater(obj)
}

func mustInstance() *Dispatcher {
	d := Instance()
	if d == nil {
		panic(ErrNoDispatcher)
	}
	return d
}

// iterate runs one polling iteration: prepare the wait budget, block in
// the poll context for at most that long, run the readiness check for
// every adapter, dispatch the ready ones oldest first, then the due
// timers, then an idle pass if armed.
func (d *Dispatcher) iterate(mayBlock bool) bool {
	timeout := -1
	if !mayBlock || d.idleArmed {
		timeout = 0
	}
	for _, ts := range d.timers {
		budget := ts.waitBudget()
		if budget >= 0 && (timeout < 0 || budget < timeout) {
			timeout = budget
		}
	}

	if _, err := d.ctx.Wait(timeout); err != nil {
		d.log.WithError(err).Warn("poll wait failed")
	}

	// Readiness-check phase. Entries are swept here, before any adapter
	// dispatches, so no in-flight iteration can be invalidated.
	var readySources []*fdSource
	for _, s := range d.sources {
		if s.check(d.ctx, d.log) {
			readySources = append(readySources, s)
		}
	}
	var dueTimers []*timerSource
	for _, ts := range d.timers {
		if ts.due() {
			dueTimers = append(dueTimers, ts)
		}
	}

	processed := false
	for _, s := range readySources {
		s.dispatch(d.ctx)
		processed = true
	}
	for _, ts := range dueTimers {
		// A timer removed by an earlier callback went inert; skip it.
		if t := ts.timer; t != nil {
			t.Expire()
			processed = true
		}
	}

	if d.idleArmed {
		if !d.runIdleTasks() {
			d.idleArmed = false
		}
		processed = true
	}
	return processed
}

// ensureOwner rejects mutating calls for sources recorded as owned by a
// different dispatcher. This is a programming defect, not a recoverable
// condition.
func (d *Dispatcher) ensureOwner(src api.EventSource) {
	if owner := sourceOwner(src); owner != nil && owner != d {
		d.log.Error("event source belongs to a foreign dispatcher")
		panic(fmt.Errorf("dispatcher %s: %w", d.id, ErrForeignSource))
	}
}

func (d *Dispatcher) findSource(src api.EventSource) *fdSource {
	for _, s := range d.sources {
		if s.source == src {
			return s
		}
	}
	return nil
}

// detachSource removes s from the adapter collection. Called only from
// the dispatch phase, never while the collection is being iterated.
func (d *Dispatcher) detachSource(s *fdSource) {
	for i, cur := range d.sources {
		if cur == s {
			d.sources = append(d.sources[:i], d.sources[i+1:]...)
			break
		}
	}
	releaseSource(s.source, d)
	d.log.Debug("event source detached")
}

// requestedConditions translates a logical mode bitmask into the native
// conditions to watch. Every readiness mode also watches the native
// error condition.
func requestedConditions(mode api.EventTypes) api.Conditions {
	var conds api.Conditions
	if mode&api.Read != 0 {
		conds |= api.ReadConditions | api.CondErr
	}
	if mode&api.Write != 0 {
		conds |= api.WriteConditions | api.CondErr
	}
	if mode&api.Exception != 0 {
		conds |= api.ExceptionConditions | api.CondErr
	}
	return conds
}
