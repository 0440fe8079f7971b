// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdready

import (
	"math"
	"time"
)

const (
	// maxPollSpan is the widest timeout poll(2) can represent: its
	// timeout parameter is an int of milliseconds while the caller's
	// budget is 64-bit. Wider budgets are split across several polls.
	maxPollSpan = time.Duration(math.MaxInt32) * time.Millisecond

	// infiniteWait is the sentinel the native Windows wait primitives
	// treat as "no timeout" (the API calls it INFINITE). A finite
	// budget must never be clamped onto it, or a ~49.7 day timeout
	// would silently wait forever.
	infiniteWait uint32 = 0xFFFFFFFF

	// infiniteSpan is infiniteWait expressed as a duration.
	infiniteSpan = time.Duration(infiniteWait) * time.Millisecond
)

// deadline is the absolute end of a wait, derived once from the
// caller's budget. remaining is recomputed against it on every retry so
// interruptions and scheduling jitter never shorten the total wait.
type deadline struct {
	infinite bool
	end      time.Time
}

// makeDeadline derives the deadline and the initial remaining budget.
// If the budget is infinite, end and remaining are never consulted.
func makeDeadline(clock Clock, msecs int64) (deadline, time.Duration) {
	if msecs < 0 {
		return deadline{infinite: true}, 0
	}
	remaining := time.Duration(msecs) * time.Millisecond
	return deadline{end: clock.Now().Add(remaining)}, remaining
}

func (d deadline) remaining(clock Clock) time.Duration {
	return d.end.Sub(clock.Now())
}

// pollTimeout converts the remaining budget to poll(2) milliseconds.
// A fractional millisecond part is rounded up so the timeout handed to
// the syscall is always >= remaining; budgets wider than poll's int
// range are clamped and split by the caller's retry loop.
func pollTimeout(infinite bool, remaining time.Duration) int {
	if infinite {
		return -1
	}
	if remaining < 0 {
		return 0
	}
	if remaining > maxPollSpan {
		return math.MaxInt32
	}
	ms := int(remaining / time.Millisecond)
	if remaining != time.Duration(ms)*time.Millisecond {
		return ms + 1
	}
	return ms
}

// waitObjectTimeout converts the remaining budget to the millisecond
// argument of the Windows wait primitives. Like pollTimeout it rounds
// fractions up, and it additionally keeps a finite budget strictly
// below infiniteWait: a budget of exactly infiniteWait milliseconds is
// clamped to infiniteWait-1 and the caller's loop waits the last
// millisecond in a second call.
func waitObjectTimeout(infinite bool, remaining time.Duration) uint32 {
	if infinite {
		return infiniteWait
	}
	if remaining < 0 {
		return 0
	}
	if remaining >= infiniteSpan {
		return infiniteWait - 1
	}
	ms := uint32(remaining / time.Millisecond)
	if remaining != time.Duration(ms)*time.Millisecond {
		return ms + 1
	}
	return ms
}
