// File: api/interfaces.go
// License: Apache-2.0

package api

// EventSource is the capability implemented by any object that wants
// fd-readiness callbacks from the dispatcher. The dispatcher keeps a
// non-owning reference only; the registrant owns the source and must
// deregister it (RemoveEventSource with AllFds) before dropping it.
type EventSource interface {
	// OnFdReady is invoked on the dispatcher thread with the logical
	// readiness set observed for fd. It must not block.
	OnFdReady(fd int, events EventTypes)
}

// Timer is the contract between the dispatcher and a registered timer.
// The dispatcher holds no expiry policy of its own: it asks Remaining to
// size its poll timeout and calls Expire when the timer reports due.
type Timer interface {
	// Remaining returns the milliseconds until the next expiry,
	// 0 meaning due now.
	Remaining() uint64

	// Expire fires the due callback and rearms the timer, or stops it
	// when single-shot.
	Expire()
}

// IdleFunc is a deferred unit of work run when the dispatcher goes idle.
// Returning true reschedules it for the next idle pass, false drops it.
type IdleFunc func() bool

// WatchTag is the opaque handle a PollContext returns for one watched
// descriptor. The dispatcher treats a nil tag as an orphaned watch.
type WatchTag any

// PollContext is the native polling collaborator the dispatcher drives.
// All methods except Wakeup must be called from the dispatcher thread.
type PollContext interface {
	// AddWatch starts watching fd for the given conditions and returns
	// the tag identifying the watch.
	AddWatch(fd int, conds Conditions) WatchTag

	// ModifyWatch replaces the requested conditions of an existing watch.
	ModifyWatch(tag WatchTag, conds Conditions)

	// RemoveWatch stops a watch. Unknown or already-removed tags are
	// ignored.
	RemoveWatch(tag WatchTag)

	// Pending reports the conditions observed for tag during the last
	// Wait. ok is false when the tag is unknown, removed, or the native
	// layer reported the watch invalid.
	Pending(tag WatchTag) (conds Conditions, ok bool)

	// Wait blocks up to timeoutMs milliseconds for readiness and records
	// observed conditions. A negative timeout blocks indefinitely, zero
	// returns immediately. It reports the number of ready watches.
	Wait(timeoutMs int) (int, error)

	// Wakeup interrupts a concurrent Wait. It is the only method safe to
	// call from a foreign thread.
	Wakeup()

	// Close releases the context. Watches still present are dropped.
	Close() error
}
