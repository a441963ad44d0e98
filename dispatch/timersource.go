// File: dispatch/timersource.go
// License: Apache-2.0
//
// Timer source adapter: binds one registered timer to the polling cycle.

package dispatch

import (
	"math"

	"github.com/zenpkg/eventkit/api"
)

// maxTimerWaitMs caps a timer's contribution to the wait budget at the
// largest representable poll timeout.
const maxTimerWaitMs = math.MaxInt32

// timerSource holds a non-owning reference to one registered timer. A
// nil timer makes the adapter inert: never ready, no wait contribution.
type timerSource struct {
	timer api.Timer
}

// waitBudget returns the milliseconds this timer contributes to the
// iteration's wait budget, or -1 for no contribution.
func (ts *timerSource) waitBudget() int {
	if ts.timer == nil {
		return -1
	}
	remaining := ts.timer.Remaining()
	if remaining > maxTimerWaitMs {
		return maxTimerWaitMs
	}
	return int(remaining)
}

// due reports whether the timer expired. The adapter holds no expiry
// policy: dispatch just calls Expire, which fires and rearms or stops.
func (ts *timerSource) due() bool {
	return ts.timer != nil && ts.timer.Remaining() == 0
}
