// File: api/doc.go
// License: Apache-2.0
//
// Package api declares the capability interfaces and shared types of the
// eventkit reactor: the event-source and timer contracts, the logical
// readiness bitmask delivered to callbacks, and the native poll-context
// contract the dispatcher is layered on. Implementations live in the
// dispatch, timer and internal/poll packages.
package api
