// File: dispatch/errors.go
// License: Apache-2.0

package dispatch

import "errors"

var (
	// ErrDispatcherExists is returned when constructing a second
	// dispatcher on a thread that already has a live one.
	ErrDispatcherExists = errors.New("dispatch: dispatcher already exists on this thread")

	// ErrForeignSource is the panic value raised when an event source
	// owned by one dispatcher is passed to a mutating call on another.
	ErrForeignSource = errors.New("dispatch: event source is owned by a different dispatcher")

	// ErrNoDispatcher is returned or raised when a package-level helper
	// runs on a thread without a dispatcher.
	ErrNoDispatcher = errors.New("dispatch: no dispatcher on this thread")

	// ErrUnsupported is returned by the constructors on platforms the
	// dispatcher does not run on.
	ErrUnsupported = errors.New("dispatch: this platform is not supported")
)
