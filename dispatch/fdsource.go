// File: dispatch/fdsource.go
// License: Apache-2.0
//
// Fd source adapter: binds one event source to its watched descriptors
// and runs the two-phase check/dispatch protocol.

package dispatch

import (
	"github.com/sirupsen/logrus"

	"github.com/zenpkg/eventkit/api"
)

// watchEntry is one watched descriptor of an adapter. A nil tag marks
// the entry orphaned: native watching already stopped, structural
// removal waits for the next readiness check.
type watchEntry struct {
	req api.Conditions
	fd  int
	tag api.WatchTag
}

// fdSource adapts one registered event source to the poll context. The
// source reference is non-owning; the registrant must deregister before
// dropping the source.
type fdSource struct {
	owner   *Dispatcher
	source  api.EventSource
	entries []*watchEntry
}

// check is the readiness-check phase. Orphaned entries and entries whose
// native watch went invalid are swept here; no adapter is mid-dispatch
// yet, so structural removal is safe. The adapter reports ready when at
// least one live entry has matching observed conditions, or when its
// entry list ran empty, which forces a dispatch so it can self-remove.
func (s *fdSource) check(ctx api.PollContext, log *logrus.Entry) bool {
	ready := false
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.tag == nil {
			continue
		}
		pend, ok := ctx.Pending(e.tag)
		if !ok {
			// Native layer reports the watch invalid: treat as already
			// removed.
			ctx.RemoveWatch(e.tag)
			log.WithField("fd", e.fd).Warn("dropping invalid fd watch")
			continue
		}
		if pend&e.req != 0 {
			ready = true
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return ready || len(s.entries) == 0
}

// dispatch is the dispatch phase. An empty adapter detaches itself from
// the dispatcher before any entry iteration starts, never during one.
// Otherwise every live entry with observed conditions intersecting its
// requested mask triggers one OnFdReady call.
func (s *fdSource) dispatch(ctx api.PollContext) {
	if len(s.entries) == 0 {
		s.owner.detachSource(s)
		return
	}
	for _, e := range s.entries {
		if e.tag == nil {
			// Orphaned while this pass was running.
			continue
		}
		pend, ok := ctx.Pending(e.tag)
		if !ok || pend&e.req == 0 {
			continue
		}
		var events api.EventTypes
		if pend&api.ReadConditions != 0 && e.req&api.ReadConditions != 0 {
			events |= api.Read
		}
		if pend&api.WriteConditions != 0 && e.req&api.WriteConditions != 0 {
			events |= api.Write
		}
		if pend&api.ExceptionConditions != 0 && e.req&api.ExceptionConditions != 0 {
			events |= api.Exception
		}
		if pend&api.CondErr != 0 && e.req&api.CondErr != 0 {
			events |= api.Error
		}
		if events != 0 {
			s.source.OnFdReady(e.fd, events)
		}
	}
}
