//go:build linux
// +build linux

// File: internal/poll/context_linux.go
// License: Apache-2.0
//
// Linux poll(2)-based context with eventfd wakeup.

package poll

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/zenpkg/eventkit/api"
)

// watch is one registered descriptor. Its pointer doubles as the opaque
// tag handed back to the dispatcher.
type watch struct {
	fd      int
	req     api.Conditions
	revents api.Conditions
	invalid bool
	removed bool
}

// Context multiplexes readiness for a set of watched descriptors. All
// methods except Wakeup must run on the owning dispatcher thread.
type Context struct {
	watches []*watch
	wakeFd  int
	pfds    []unix.PollFd // scratch buffer rebuilt each Wait
	live    []*watch      // scratch, parallel to pfds[1:]
	closed  bool
}

var _ api.PollContext = (*Context)(nil)

// New creates a poll context and its wakeup eventfd.
func New() (api.PollContext, error) {
	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("poll: eventfd: %w", err)
	}
	return &Context{wakeFd: wakeFd}, nil
}

// AddWatch starts watching fd for conds and returns the watch tag.
func (c *Context) AddWatch(fd int, conds api.Conditions) api.WatchTag {
	w := &watch{fd: fd, req: conds}
	c.watches = append(c.watches, w)
	return w
}

// ModifyWatch replaces the requested conditions of tag.
func (c *Context) ModifyWatch(tag api.WatchTag, conds api.Conditions) {
	if w, ok := tag.(*watch); ok && !w.removed {
		w.req = conds
	}
}

// RemoveWatch drops tag from the watch table. Unknown tags are ignored.
func (c *Context) RemoveWatch(tag api.WatchTag) {
	w, ok := tag.(*watch)
	if !ok || w.removed {
		return
	}
	w.removed = true
	for i, cur := range c.watches {
		if cur == w {
			c.watches = append(c.watches[:i], c.watches[i+1:]...)
			break
		}
	}
}

// Pending reports the conditions observed for tag during the last Wait.
func (c *Context) Pending(tag api.WatchTag) (api.Conditions, bool) {
	w, ok := tag.(*watch)
	if !ok || w.removed || w.invalid {
		return 0, false
	}
	return w.revents, true
}

// Wait polls all live watches plus the wakeup descriptor for up to
// timeoutMs milliseconds and records observed conditions per watch.
func (c *Context) Wait(timeoutMs int) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	c.pfds = c.pfds[:0]
	c.live = c.live[:0]
	c.pfds = append(c.pfds, unix.PollFd{Fd: int32(c.wakeFd), Events: unix.POLLIN})
	for _, w := range c.watches {
		if w.invalid {
			continue
		}
		w.revents = 0
		c.pfds = append(c.pfds, unix.PollFd{Fd: int32(w.fd), Events: toPollEvents(w.req)})
		c.live = append(c.live, w)
	}

	n, err := unix.Poll(c.pfds, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("poll: wait: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	if c.pfds[0].Revents&unix.POLLIN != 0 {
		c.drainWakeup()
	}

	ready := 0
	for i, w := range c.live {
		re := c.pfds[i+1].Revents
		if re == 0 {
			continue
		}
		if re&unix.POLLNVAL != 0 {
			// Kernel says the fd is gone. Poison the tag; the
			// dispatcher sweeps it as already-removed.
			w.invalid = true
			continue
		}
		w.revents = fromPollEvents(re)
		ready++
	}
	return ready, nil
}

// Wakeup interrupts a concurrent Wait. Safe from any thread.
func (c *Context) Wakeup() {
	var buf [8]byte
	buf[7] = 1
	_, _ = unix.Write(c.wakeFd, buf[:])
}

// Close releases the context and drops all remaining watches.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	for _, w := range c.watches {
		w.removed = true
	}
	c.watches = nil
	return unix.Close(c.wakeFd)
}

func (c *Context) drainWakeup() {
	var buf [8]byte
	for {
		if _, err := unix.Read(c.wakeFd, buf[:]); err != nil {
			return
		}
	}
}

func toPollEvents(conds api.Conditions) int16 {
	var ev int16
	if conds&api.CondIn != 0 {
		ev |= unix.POLLIN
	}
	if conds&api.CondOut != 0 {
		ev |= unix.POLLOUT
	}
	if conds&api.CondPri != 0 {
		ev |= unix.POLLPRI
	}
	return ev
}

func fromPollEvents(re int16) api.Conditions {
	var conds api.Conditions
	if re&unix.POLLIN != 0 {
		conds |= api.CondIn
	}
	if re&unix.POLLOUT != 0 {
		conds |= api.CondOut
	}
	if re&unix.POLLPRI != 0 {
		conds |= api.CondPri
	}
	if re&unix.POLLERR != 0 {
		conds |= api.CondErr
	}
	if re&unix.POLLHUP != 0 {
		conds |= api.CondHup
	}
	return conds
}
