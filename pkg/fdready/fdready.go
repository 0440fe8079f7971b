// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fdready answers the question "can this descriptor perform a
// read or write without blocking" within a caller-supplied time budget,
// while staying promptly interruptible through the worker's
// cancellation token.
//
// The central contract is the guaranteed minimum wait: Wait never
// reports NotReady until a readiness syscall has itself returned at a
// real time at or past the requested deadline. Deciding NotReady from
// an elapsed-time check after an interrupted syscall would be
// observably wrong for callers that use this primitive as a deadline or
// dead-man's switch: between the check and the report the descriptor
// may well have become ready. The implementation therefore computes the
// absolute end time once, and any internal retry re-polls with the
// recomputed remaining budget instead of giving up.
package fdready

import (
	"errors"
	"time"

	"github.com/loomrt/loom/pkg/interrupt"
)

// ErrInterrupted is returned when the wait was broken by the worker's
// cancellation token or by an asynchronous signal. It is transient: the
// caller recomputes its remaining budget and decides whether to wait
// again.
var ErrInterrupted = errors.New("fdready: wait interrupted")

// pipeBlockedQuantum is the single minimal sleep taken when a pipe has
// no buffered data and the caller intended to block. The caller retries
// on NotReady, and without this quantum that retry loop would spin hot.
const pipeBlockedQuantum = time.Millisecond

// Direction selects the readiness condition to wait for.
type Direction int

const (
	Read Direction = iota
	Write
)

func (d Direction) String() string {
	if d == Write {
		return "write"
	}
	return "read"
}

// Status is the terminal outcome of a completed wait.
type Status int

const (
	// NotReady: the deadline passed without the descriptor becoming
	// ready. This is the normal timeout outcome, not an error.
	NotReady Status = iota
	// Ready: the descriptor can perform the requested operation
	// without blocking.
	Ready
)

func (s Status) String() string {
	if s == Ready {
		return "ready"
	}
	return "not-ready"
}

// DescriptorKind classifies a descriptor for the platform dispatch and
// the wait-outcome metrics. It is resolved from the descriptor on every
// call and never cached, descriptors get recycled.
type DescriptorKind int

const (
	KindGeneric DescriptorKind = iota
	KindDisk
	KindPipe
	KindConsole
	KindSocket
)

func (k DescriptorKind) String() string {
	switch k {
	case KindDisk:
		return "disk"
	case KindPipe:
		return "pipe"
	case KindConsole:
		return "console"
	case KindSocket:
		return "socket"
	default:
		return "generic"
	}
}

// Clock interface for abstracting time operations.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the default monotonic clock.
var SystemClock Clock = systemClock{}

// Config holds the per-worker wait parameters.
type Config struct {
	// Token is the worker's cancellation channel. May be nil, in
	// which case only readiness and the deadline end a wait.
	Token *interrupt.Token
	// Clock is an optional custom clock for testing. Defaults to
	// SystemClock if nil.
	Clock Clock
}

// Waiter performs readiness waits on behalf of one worker. It blocks
// exactly the calling goroutine; there is no fan-out.
type Waiter struct {
	clock Clock
	token *interrupt.Token
	sys   sysHooks
}

// NewWaiter returns a waiter bound to the worker's cancellation token.
func NewWaiter(cfg Config) *Waiter {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}
	return &Waiter{
		clock: clock,
		token: cfg.Token,
		sys:   defaultSysHooks(),
	}
}

// Wait blocks until the descriptor is ready for the given direction,
// the time budget runs out, or the worker's token is raised.
//
// msecs is the budget in milliseconds; negative means wait
// indefinitely. isSock marks descriptors that are sockets, which take a
// dedicated path on platforms without a native poll for them.
//
// Outcomes: (Ready, nil), (NotReady, nil) only after a readiness
// syscall completed at or past the deadline, (_, ErrInterrupted) when
// the token or a signal broke the wait, or (_, err) for descriptor and
// system failures.
func (w *Waiter) Wait(fd int, dir Direction, msecs int64, isSock bool) (Status, error) {
	kind := w.kind(fd, isSock)
	start := w.clock.Now()
	status, err := w.platformWait(fd, kind, dir, msecs, isSock)
	sharedMetrics.observe(kind, status, err, w.clock.Now().Sub(start))
	return status, err
}
