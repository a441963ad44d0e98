// File: dispatch/registry.go
// License: Apache-2.0
//
// Thread-scoped dispatcher slots and event-source ownership records.
// These maps are the only dispatcher state touched from more than one
// thread, hence the only place a lock appears.

package dispatch

import (
	"sync"

	"github.com/zenpkg/eventkit/api"
)

var (
	regMu       sync.Mutex
	dispatchers = make(map[int]*Dispatcher)
	owners      = make(map[api.EventSource]*Dispatcher)
)

// Instance returns the calling thread's dispatcher, or nil if none
// exists. The caller must be locked to its OS thread for the result to
// be stable.
func Instance() *Dispatcher {
	regMu.Lock()
	defer regMu.Unlock()
	return dispatchers[threadID()]
}

// claimThread records d as the dispatcher of tid. Reports false when the
// slot is already taken.
func claimThread(tid int, d *Dispatcher) bool {
	regMu.Lock()
	defer regMu.Unlock()
	if _, exists := dispatchers[tid]; exists {
		return false
	}
	dispatchers[tid] = d
	return true
}

// releaseThread clears the thread slot held by d.
func releaseThread(tid int, d *Dispatcher) {
	regMu.Lock()
	defer regMu.Unlock()
	if dispatchers[tid] == d {
		delete(dispatchers, tid)
	}
}

// sourceOwner returns the dispatcher currently holding an adapter for
// src, or nil.
func sourceOwner(src api.EventSource) *Dispatcher {
	regMu.Lock()
	defer regMu.Unlock()
	return owners[src]
}

func claimSource(src api.EventSource, d *Dispatcher) {
	regMu.Lock()
	defer regMu.Unlock()
	owners[src] = d
}

func releaseSource(src api.EventSource, d *Dispatcher) {
	regMu.Lock()
	defer regMu.Unlock()
	if owners[src] == d {
		delete(owners, src)
	}
}
