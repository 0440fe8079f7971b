// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package fdready

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// platformWait is the single-descriptor poll path: every descriptor
// kind, sockets included, can be polled directly. The worker's token
// joins the poll set so a raise wakes the syscall.
func (w *Waiter) platformWait(fd int, kind DescriptorKind, dir Direction, msecs int64, isSock bool) (Status, error) {
	_ = kind
	_ = isSock

	dl, remaining := makeDeadline(w.clock, msecs)

	events := int16(unix.POLLIN)
	if dir == Write {
		events = unix.POLLOUT
	}
	fds := make([]unix.PollFd, 1, 2)
	fds[0] = unix.PollFd{Fd: int32(fd), Events: events}
	if w.token != nil {
		fds = append(fds, unix.PollFd{Fd: int32(w.token.FD()), Events: unix.POLLIN})
	}

	// The loop exists only to split a budget wider than poll's
	// timeout range across several syscalls; no iteration gives up
	// before the deadline.
	for {
		for i := range fds {
			fds[i].Revents = 0
		}

		n, err := w.sys.poll(fds, pollTimeout(dl.infinite, remaining))
		switch {
		case err == unix.EINTR:
			return NotReady, ErrInterrupted
		case err != nil:
			return NotReady, fmt.Errorf("fdready: poll: %w", err)
		case n == 0:
			// The syscall itself timed out. A width-split timeout
			// re-arms with the recomputed budget; otherwise the
			// syscall completed at or past the deadline and
			// NotReady is truthful.
			if !dl.infinite && remaining > maxPollSpan {
				remaining = dl.remaining(w.clock)
				continue
			}
			return NotReady, nil
		}

		if len(fds) > 1 && fds[1].Revents != 0 {
			return NotReady, ErrInterrupted
		}
		if fds[0].Revents&unix.POLLNVAL != 0 {
			return NotReady, fmt.Errorf("fdready: poll descriptor %d: %w", fd, unix.EBADF)
		}
		// POLLERR and POLLHUP also count as ready: the next read or
		// write observes the condition without blocking.
		return Ready, nil
	}
}
