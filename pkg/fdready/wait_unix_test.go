// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package fdready

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/loomrt/loom/pkg/interrupt"
	dto "github.com/prometheus/client_model/go"
	"golang.org/x/sys/unix"
)

func newPipe(t *testing.T) (r, w int) {
	t.Helper()

	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(p[0])
		unix.Close(p[1])
	})
	return p[0], p[1]
}

func TestNotReadyHonorsDeadline(t *testing.T) {
	t.Parallel()

	r, _ := newPipe(t)
	w := NewWaiter(Config{})

	const budget = 50 * time.Millisecond
	start := time.Now()
	status, err := w.Wait(r, Read, int64(budget/time.Millisecond), false)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatal(err)
	}
	if status != NotReady {
		t.Fatalf("got %s on a pipe that never becomes ready, want %s", status, NotReady)
	}
	if elapsed < budget {
		t.Fatalf("NotReady after %v, before the %v deadline", elapsed, budget)
	}
}

func TestReadyBeforeDeadline(t *testing.T) {
	t.Parallel()

	r, wr := newPipe(t)
	w := NewWaiter(Config{})

	go func() {
		time.Sleep(10 * time.Millisecond)
		unix.Write(wr, []byte{'x'})
	}()

	start := time.Now()
	status, err := w.Wait(r, Read, 5000, false)
	if err != nil {
		t.Fatal(err)
	}
	if status != Ready {
		t.Fatalf("got %s, want %s", status, Ready)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("readiness took %v, poll did not wake on data", elapsed)
	}
}

func TestZeroBudgetProbesOnce(t *testing.T) {
	t.Parallel()

	r, _ := newPipe(t)
	w := NewWaiter(Config{})

	start := time.Now()
	status, err := w.Wait(r, Read, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if status != NotReady {
		t.Fatalf("got %s from an empty pipe with a zero budget, want %s", status, NotReady)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("zero-budget probe took %v", elapsed)
	}
}

func TestWriteDirection(t *testing.T) {
	t.Parallel()

	_, wr := newPipe(t)
	w := NewWaiter(Config{})

	status, err := w.Wait(wr, Write, 1000, false)
	if err != nil {
		t.Fatal(err)
	}
	if status != Ready {
		t.Fatalf("got %s on an empty pipe's write end, want %s", status, Ready)
	}
}

func TestClosedWriterReportsReady(t *testing.T) {
	t.Parallel()

	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer unix.Close(p[0])
	unix.Close(p[1])

	w := NewWaiter(Config{})
	status, err := w.Wait(p[0], Read, 1000, false)
	if err != nil {
		t.Fatal(err)
	}
	// POLLHUP counts as ready: the read observes end-of-stream.
	if status != Ready {
		t.Fatalf("got %s on a pipe with a hung-up writer, want %s", status, Ready)
	}
}

func TestInterruptedByToken(t *testing.T) {
	t.Parallel()

	r, _ := newPipe(t)
	tok, err := interrupt.NewToken()
	if err != nil {
		t.Fatal(err)
	}
	defer tok.Close()

	w := NewWaiter(Config{Token: tok})

	go func() {
		time.Sleep(20 * time.Millisecond)
		tok.Raise()
	}()

	start := time.Now()
	_, err = w.Wait(r, Read, -1, false) // indefinite
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("got %v, want ErrInterrupted", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("cancellation took %v to break the wait", elapsed)
	}
}

func TestTokenRaisedBeforeWait(t *testing.T) {
	t.Parallel()

	r, _ := newPipe(t)
	tok, err := interrupt.NewToken()
	if err != nil {
		t.Fatal(err)
	}
	defer tok.Close()
	tok.Raise()

	w := NewWaiter(Config{Token: tok})
	if _, err := w.Wait(r, Read, -1, false); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("got %v, want ErrInterrupted", err)
	}

	// After Clear the same waiter must block again.
	tok.Clear()
	status, err := w.Wait(r, Read, 20, false)
	if err != nil {
		t.Fatal(err)
	}
	if status != NotReady {
		t.Fatalf("got %s after clearing the token, want %s", status, NotReady)
	}
}

func TestInvalidDescriptor(t *testing.T) {
	// Not parallel: the closed descriptor number must not be recycled
	// by a concurrent test before the poll observes it.
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	unix.Close(p[0])
	unix.Close(p[1])

	w := NewWaiter(Config{})
	_, err := w.Wait(p[0], Read, 100, false)
	if err == nil {
		t.Fatal("expected an error for a closed descriptor")
	}
	if errors.Is(err, ErrInterrupted) {
		t.Fatal("descriptor failure misreported as interruption")
	}
	if !errors.Is(err, unix.EBADF) {
		t.Fatalf("got %v, want EBADF", err)
	}
}

func TestWidthSplitRecomputesRemaining(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(100, 0)}
	w := NewWaiter(Config{Clock: clock})

	var timeouts []int
	w.sys.poll = func(fds []unix.PollFd, timeout int) (int, error) {
		timeouts = append(timeouts, timeout)
		clock.now = clock.now.Add(time.Duration(timeout) * time.Millisecond)
		return 0, nil
	}

	const tail = int64(4000)
	status, err := w.Wait(3, Read, math.MaxInt32+tail, false)
	if err != nil {
		t.Fatal(err)
	}
	if status != NotReady {
		t.Fatalf("got %s, want %s", status, NotReady)
	}

	want := []int{math.MaxInt32, int(tail)}
	if len(timeouts) != len(want) || timeouts[0] != want[0] || timeouts[1] != want[1] {
		t.Fatalf("got poll timeouts %v, want %v", timeouts, want)
	}
}

func TestJitterPastDeadlineStillRepolls(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(100, 0)}
	w := NewWaiter(Config{Clock: clock})

	polls := 0
	w.sys.poll = func(fds []unix.PollFd, timeout int) (int, error) {
		polls++
		// The first poll overshoots the whole deadline, as if the
		// machine had been swapping: the wait must still issue
		// another syscall rather than decide NotReady from the
		// clock alone.
		clock.now = clock.now.Add(time.Duration(timeout)*time.Millisecond + 10*time.Second)
		return 0, nil
	}

	status, err := w.Wait(3, Read, math.MaxInt32+4000, false)
	if err != nil {
		t.Fatal(err)
	}
	if status != NotReady {
		t.Fatalf("got %s, want %s", status, NotReady)
	}
	if polls != 2 {
		t.Fatalf("got %d polls, want 2: the terminal NotReady must come from a syscall completion", polls)
	}
}

func waitSecondsSum(t *testing.T) float64 {
	t.Helper()

	var m dto.Metric
	if err := sharedMetrics.WaitSeconds.Write(&m); err != nil {
		t.Fatal(err)
	}
	return m.GetHistogram().GetSampleSum()
}

func TestWaitDurationUsesInjectedClock(t *testing.T) {
	// Not parallel: the histogram is shared across waiters and must not
	// receive samples from concurrent waits while the sum is compared.
	clock := &fakeClock{now: time.Unix(100, 0)}
	w := NewWaiter(Config{Clock: clock})
	w.sys.poll = func(fds []unix.PollFd, timeout int) (int, error) {
		clock.now = clock.now.Add(time.Duration(timeout) * time.Millisecond)
		return 0, nil
	}

	before := waitSecondsSum(t)
	status, err := w.Wait(3, Read, 5000, false)
	if err != nil {
		t.Fatal(err)
	}
	if status != NotReady {
		t.Fatalf("got %s, want %s", status, NotReady)
	}

	if got := waitSecondsSum(t) - before; got < 4.9 || got > 5.1 {
		t.Fatalf("recorded %.3fs for a 5s wait on the injected clock", got)
	}
}

func TestEINTRSurfacesInterrupted(t *testing.T) {
	t.Parallel()

	w := NewWaiter(Config{})
	w.sys.poll = func(fds []unix.PollFd, timeout int) (int, error) {
		return 0, unix.EINTR
	}

	if _, err := w.Wait(3, Read, 1000, false); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("got %v, want ErrInterrupted", err)
	}
}
