//go:build !linux
// +build !linux

// File: dispatch/thread_stub.go
// License: Apache-2.0
//
// Stub for unsupported platforms.

package dispatch

const platformSupported = false

func threadID() int {
	return 0
}
