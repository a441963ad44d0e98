//go:build linux
// +build linux

// File: dispatch/thread_linux.go
// License: Apache-2.0

package dispatch

import "golang.org/x/sys/unix"

const platformSupported = true

// threadID identifies the calling OS thread. Callers must hold the
// thread via runtime.LockOSThread for the answer to stay meaningful.
func threadID() int {
	return unix.Gettid()
}
