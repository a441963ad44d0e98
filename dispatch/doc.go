// File: dispatch/doc.go
// License: Apache-2.0
//
// Package dispatch implements the per-thread event dispatcher of eventkit:
// a single-threaded cooperative reactor multiplexing fd readiness, timer
// expiry and idle work over a native poll context.
//
// At most one Dispatcher exists per OS thread. The constructor locks the
// calling goroutine to its thread and registers the dispatcher in a
// thread-scoped slot, so package-level helpers (Instance, InvokeOnIdle,
// UnrefLater) can reach it without threading a handle through every call.
// All dispatcher state is mutated from that one thread only; the sole
// cross-thread entry points are Quit and the poll context wakeup it rides
// on.
//
// Registered event sources and timers stay owned by their registrants.
// The dispatcher keeps non-owning back-references and defers structural
// removal of fd watches to the next dispatch pass, so a source may remove
// itself from inside its own readiness callback without invalidating the
// iteration in flight. UnrefLater extends the same courtesy to whole
// objects: ownership is handed to the dispatcher and the object is
// released only after the current dispatch and idle batch fully unwinds.
package dispatch
