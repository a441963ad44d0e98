// File: internal/poll/poll.go
// License: Apache-2.0

package poll

import "errors"

var (
	// ErrUnsupported is returned by New on platforms without poll(2).
	ErrUnsupported = errors.New("poll: this platform is not supported")

	// ErrClosed is returned by Wait after the context was closed.
	ErrClosed = errors.New("poll: context is closed")
)
