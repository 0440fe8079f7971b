// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdready

import (
	"fmt"
	"time"

	"golang.org/x/sys/windows"
)

// platformWait dispatches on the descriptor kind: Windows has no single
// readiness primitive, sockets go through WSAPoll and everything else
// through per-kind handle waits. On this platform the descriptor is the
// operating-system HANDLE value (or the SOCKET for isSock).
func (w *Waiter) platformWait(fd int, kind DescriptorKind, dir Direction, msecs int64, isSock bool) (Status, error) {
	dl, remaining := makeDeadline(w.clock, msecs)

	h := windows.Handle(fd)
	if isSock {
		return w.waitSocket(h, dir, dl, remaining)
	}

	switch kind {
	case KindDisk:
		// Disk reads and writes do not block in the sense this
		// primitive cares about.
		return Ready, nil
	case KindPipe:
		status, generic, err := w.waitPipe(h, dl, remaining)
		if !generic {
			return status, err
		}
		// PeekNamedPipe refused the handle: fall back to treating
		// it as a plain wait object.
		return w.waitObject(h, dl, remaining)
	case KindConsole:
		return w.waitConsole(h, dl, remaining)
	default:
		return w.waitObject(h, dl, remaining)
	}
}

// waitSocket probes the socket with WSAPoll, splitting budgets wider
// than the native timeout range exactly like the Unix poll path.
func (w *Waiter) waitSocket(s windows.Handle, dir Direction, dl deadline, remaining time.Duration) (Status, error) {
	events := int16(pollrdnorm)
	if dir == Write {
		events = pollwrnorm
	}
	fds := []wsaPollFd{{fd: uintptr(s), events: events}}

	for {
		fds[0].revents = 0

		n, err := w.sys.wsaPoll(fds, int32(pollTimeout(dl.infinite, remaining)))
		switch {
		case err != nil:
			return NotReady, fmt.Errorf("fdready: wsapoll: %w", err)
		case n == 0:
			if !dl.infinite && remaining > maxPollSpan {
				remaining = dl.remaining(w.clock)
				continue
			}
			return NotReady, nil
		}

		// WSAPoll reports an invalid socket through revents, not
		// through its return value.
		if fds[0].revents&pollnval != 0 {
			return NotReady, fmt.Errorf("fdready: wsapoll socket %d: %w", s, windows.WSAEBADF)
		}
		// POLLERR and POLLHUP also count as ready: the next read or
		// write observes the condition without blocking.
		return Ready, nil
	}
}

// waitPipe peeks the pipe's buffered byte count without blocking. The
// generic result requests the wait-object fallback.
func (w *Waiter) waitPipe(h windows.Handle, dl deadline, remaining time.Duration) (status Status, generic bool, err error) {
	avail, err := w.sys.peekPipe(h)
	if err != nil {
		if err == windows.ERROR_BROKEN_PIPE {
			// The writer is gone; a read observes end-of-stream
			// without blocking.
			return Ready, false, nil
		}
		if err == windows.ERROR_INVALID_HANDLE || err == windows.ERROR_INVALID_FUNCTION {
			return NotReady, true, nil
		}
		return NotReady, false, fmt.Errorf("fdready: peek pipe: %w", err)
	}
	if avail > 0 {
		return Ready, false, nil
	}
	if dl.infinite || remaining > 0 {
		// The caller meant to block and will retry on NotReady;
		// one quantum keeps that retry loop from spinning hot.
		w.sys.sleep(pipeBlockedQuantum)
	}
	return NotReady, false, nil
}

// waitConsole waits on the console handle and the worker's token. The
// handle signals on any queued console event, not just keyboard input,
// so every wake drains and discards the records a read would also
// discard before Ready may be reported.
func (w *Waiter) waitConsole(h windows.Handle, dl deadline, remaining time.Duration) (Status, error) {
	for {
		ev, err := w.waitOrInterrupt(h, waitObjectTimeout(dl.infinite, remaining))
		switch {
		case err != nil:
			return NotReady, fmt.Errorf("fdready: wait console: %w", err)
		case ev == windows.WAIT_TIMEOUT:
			// A budget at or above infiniteWait was clamped one
			// millisecond short; only a narrower budget may end
			// the wait here.
			if !dl.infinite && remaining < infiniteSpan {
				return NotReady, nil
			}
		case ev == windows.WAIT_OBJECT_0:
			for {
				rec, queued, err := w.sys.peekConsole(h)
				if err != nil {
					if err == windows.ERROR_INVALID_HANDLE || err == windows.ERROR_INVALID_FUNCTION {
						return Ready, nil
					}
					return NotReady, fmt.Errorf("fdready: peek console: %w", err)
				}
				if !queued {
					break // queue empty, re-arm the wait
				}
				if rec.isKeyPress() {
					return Ready, nil
				}
				if err := w.sys.readConsole(h); err != nil {
					if err == windows.ERROR_INVALID_HANDLE || err == windows.ERROR_INVALID_FUNCTION {
						return Ready, nil
					}
					return NotReady, fmt.Errorf("fdready: discard console event: %w", err)
				}
			}
		case ev == windows.WAIT_OBJECT_0+1:
			return NotReady, ErrInterrupted
		default:
			return NotReady, fmt.Errorf("fdready: unexpected console wait event %#x", ev)
		}

		// The drain consumes at most the records queued at wake-up,
		// so it terminates; the budget is recomputed only after it,
		// right before the next multi-object wait.
		if !dl.infinite {
			remaining = dl.remaining(w.clock)
		}
	}
}

// waitObject waits on a plain handle and the worker's token, with the
// same width-splitting as the other paths.
func (w *Waiter) waitObject(h windows.Handle, dl deadline, remaining time.Duration) (Status, error) {
	for {
		ev, err := w.waitOrInterrupt(h, waitObjectTimeout(dl.infinite, remaining))
		switch {
		case err != nil:
			return NotReady, fmt.Errorf("fdready: wait: %w", err)
		case ev == windows.WAIT_TIMEOUT:
			if !dl.infinite && remaining < infiniteSpan {
				return NotReady, nil
			}
		case ev == windows.WAIT_OBJECT_0:
			return Ready, nil
		case ev == windows.WAIT_OBJECT_0+1:
			return NotReady, ErrInterrupted
		default:
			return NotReady, fmt.Errorf("fdready: unexpected wait event %#x", ev)
		}

		if !dl.infinite {
			remaining = dl.remaining(w.clock)
		}
	}
}

// waitOrInterrupt waits for the handle or the worker's token, whichever
// signals first. Without a token only the handle is waited on.
func (w *Waiter) waitOrInterrupt(h windows.Handle, ms uint32) (uint32, error) {
	handles := make([]windows.Handle, 1, 2)
	handles[0] = h
	if w.token != nil {
		handles = append(handles, w.token.Handle())
	}
	return w.sys.waitMulti(handles, ms)
}
