// File: internal/poll/doc.go
// License: Apache-2.0
//
// Package poll implements the native polling context of the eventkit
// dispatcher on top of poll(2), with an eventfd wakeup channel so a
// blocking wait can be interrupted from a foreign thread. Watches are
// identified by stable opaque tags; a descriptor the kernel reports as
// invalid (POLLNVAL) poisons its tag rather than raising an error, which
// the dispatcher treats as an already-removed watch.
package poll
