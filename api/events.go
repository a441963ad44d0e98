// File: api/events.go
// License: Apache-2.0
//
// Logical and native readiness bitmasks shared between the dispatcher and
// the poll context.

package api

import "strings"

// EventTypes is the logical readiness set delivered to an EventSource.
// Values combine as a bitmask.
type EventTypes int

const (
	// Read reports that the descriptor has data to read or was hung up.
	Read EventTypes = 1 << iota
	// Write reports that the descriptor accepts writes without blocking.
	Write
	// Exception reports urgent out-of-band data.
	Exception
	// Error reports a native error condition on the descriptor.
	Error
)

// AllFds is the sentinel descriptor addressing every watch of a source.
const AllFds = -1

func (e EventTypes) String() string {
	if e == 0 {
		return "none"
	}
	parts := make([]string, 0, 4)
	if e&Read != 0 {
		parts = append(parts, "read")
	}
	if e&Write != 0 {
		parts = append(parts, "write")
	}
	if e&Exception != 0 {
		parts = append(parts, "exception")
	}
	if e&Error != 0 {
		parts = append(parts, "error")
	}
	return strings.Join(parts, "|")
}

// Conditions is the native readiness bitmask of the poll context, the
// eventkit equivalent of poll(2) revents. The dispatcher translates
// Conditions into EventTypes before invoking user callbacks.
type Conditions int

const (
	// CondIn signals readable data.
	CondIn Conditions = 1 << iota
	// CondOut signals writability.
	CondOut
	// CondPri signals urgent out-of-band data.
	CondPri
	// CondErr signals an error condition.
	CondErr
	// CondHup signals a hangup; readers still drain buffered data.
	CondHup
)

// ReadConditions are the native bits a Read registration watches for.
const ReadConditions = CondIn | CondHup

// WriteConditions are the native bits a Write registration watches for.
const WriteConditions = CondOut

// ExceptionConditions are the native bits an Exception registration
// watches for.
const ExceptionConditions = CondPri
