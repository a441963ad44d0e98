// File: dispatch/idle.go
// License: Apache-2.0
//
// Idle pass: FIFO of reschedulable callbacks plus the deferred-release
// drain, run once per idle notification.

package dispatch

import (
	"io"

	"github.com/eapache/queue"

	"github.com/zenpkg/eventkit/api"
)

// runIdleTasks executes one idle pass. The current queue is drained into
// a working set first, so callbacks enqueued during the pass run on the
// next pass, never this one. Callbacks returning true are rescheduled in
// order; late enqueues line up behind them. Deferred-release entries are
// released strictly after every callback of this pass has returned. The
// return value reports whether the idle notification must stay armed.
func (d *Dispatcher) runIdleTasks() bool {
	pending := d.idleQ
	d.idleQ = queue.New() // collects enqueues made during this pass

	rerun := queue.New()
	for pending.Length() > 0 {
		fn := pending.Remove().(api.IdleFunc)
		if fn() {
			rerun.Add(fn)
		}
	}

	// Rescheduled callbacks first, then everything enqueued mid-pass.
	late := d.idleQ
	d.idleQ = rerun
	for late.Length() > 0 {
		d.idleQ.Add(late.Remove())
	}

	d.releaseDeferred()

	return d.idleQ.Length() > 0 || len(d.deferred) > 0
}

// releaseDeferred drops every pending deferred-release entry, closing
// the ones that know how to close themselves. Entries handed over during
// the release stay pending for the next pass.
func (d *Dispatcher) releaseDeferred() {
	if len(d.deferred) == 0 {
		return
	}
	batch := d.deferred
	d.deferred = nil
	for _, obj := range batch {
		if c, ok := obj.(io.Closer); ok {
			if err := c.Close(); err != nil {
				d.log.WithError(err).Warn("deferred release close failed")
			}
		}
	}
	d.log.WithField("released", len(batch)).Debug("deferred release drained")
}
