// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdready

import (
	"math"
	"testing"
	"time"
)

// fakeClock lets the width-splitting tests move time exactly as far as
// each simulated wait claims to have slept.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestPollTimeout(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name      string
		infinite  bool
		remaining time.Duration
		want      int
	}{
		{name: "infinite", infinite: true, remaining: 12345, want: -1},
		{name: "negative budget", remaining: -time.Second, want: 0},
		{name: "zero", remaining: 0, want: 0},
		{name: "whole milliseconds", remaining: 2 * time.Millisecond, want: 2},
		{name: "fraction rounds up", remaining: 1500 * time.Microsecond, want: 2},
		{name: "sub-millisecond rounds up", remaining: time.Microsecond, want: 1},
		{name: "wider than poll range clamps", remaining: maxPollSpan + time.Hour, want: math.MaxInt32},
		{name: "exactly poll range", remaining: maxPollSpan, want: math.MaxInt32},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := pollTimeout(tc.infinite, tc.remaining); got != tc.want {
				t.Fatalf("pollTimeout(%v, %v) = %d, want %d", tc.infinite, tc.remaining, got, tc.want)
			}
		})
	}
}

func TestWaitObjectTimeout(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name      string
		infinite  bool
		remaining time.Duration
		want      uint32
	}{
		{name: "infinite", infinite: true, remaining: 12345, want: infiniteWait},
		{name: "negative budget", remaining: -time.Second, want: 0},
		{name: "whole milliseconds", remaining: 25 * time.Millisecond, want: 25},
		{name: "fraction rounds up", remaining: 1500 * time.Microsecond, want: 2},
		// A finite budget must never be clamped onto the INFINITE
		// sentinel, or a ~49.7 day timeout would wait forever.
		{name: "exactly the sentinel", remaining: infiniteSpan, want: infiniteWait - 1},
		{name: "above the sentinel", remaining: infiniteSpan + time.Hour, want: infiniteWait - 1},
		{name: "just below the sentinel", remaining: infiniteSpan - time.Millisecond, want: infiniteWait - 1},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := waitObjectTimeout(tc.infinite, tc.remaining); got != tc.want {
				t.Fatalf("waitObjectTimeout(%v, %v) = %d, want %d", tc.infinite, tc.remaining, got, tc.want)
			}
		})
	}
}
