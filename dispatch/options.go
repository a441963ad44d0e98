// File: dispatch/options.go
// License: Apache-2.0
//
// Functional options for dispatcher construction.

package dispatch

import (
	"github.com/sirupsen/logrus"

	"github.com/zenpkg/eventkit/api"
)

// Option customizes dispatcher construction.
type Option func(*Dispatcher)

// WithPollContext adopts an existing poll context instead of creating
// one. The caller keeps ownership: Close will not close an adopted
// context.
func WithPollContext(ctx api.PollContext) Option {
	return func(d *Dispatcher) {
		d.ctx = ctx
		d.ownsCtx = false
	}
}

// WithLogger overrides the logger used for dispatcher diagnostics.
// Defaults to the logrus standard logger.
func WithLogger(l *logrus.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}
