// File: timer/doc.go
// License: Apache-2.0
//
// Package timer provides a monotonic-clock timer driven by the thread's
// dispatcher. A started timer registers itself with the dispatcher and
// contributes its remaining time to every polling iteration's wait
// budget; Expire fires the user callback and rearms from the expiry
// instant, or stops and deregisters when single-shot.
package timer
