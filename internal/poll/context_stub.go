//go:build !linux
// +build !linux

// File: internal/poll/context_stub.go
// License: Apache-2.0
//
// Stub for unsupported platforms.

package poll

import "github.com/zenpkg/eventkit/api"

// New returns ErrUnsupported on platforms without poll(2) support.
func New() (api.PollContext, error) {
	return nil, ErrUnsupported
}
