// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package interrupt

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sys/unix"
)

// Token is a per-worker cancellation channel. Its read side is a plain
// file descriptor so a readiness wait can poll it together with the
// descriptor the worker is blocked on.
type Token struct {
	id     uuid.UUID
	r, w   int
	raised atomic.Bool
	closed atomic.Bool
}

// NewToken allocates the OS primitive backing the token.
func NewToken() (*Token, error) {
	r, w, err := newTokenFDs()
	if err != nil {
		return nil, fmt.Errorf("interrupt: new token: %w", err)
	}
	return &Token{
		id: uuid.New(),
		r:  r,
		w:  w,
	}, nil
}

// ID returns the token identity used in logs and diagnostics.
func (t *Token) ID() string {
	return t.id.String()
}

// FD returns the pollable read side of the token. It becomes readable
// when the token is raised and stays readable until Clear.
func (t *Token) FD() int {
	return t.r
}

// Raise signals the token. It is asynchronous, non-blocking and
// allocation-free, and may be called from the tick execution context.
// Raising an already-raised or closed token is a no-op.
func (t *Token) Raise() {
	if t.closed.Load() || t.raised.Swap(true) {
		return
	}
	signalTokenFD(t.w)
}

// Raised reports whether the token has been raised and not yet cleared.
func (t *Token) Raised() bool {
	return t.raised.Load()
}

// Clear drains the token so a subsequent wait blocks again. It must be
// called by the owning worker between waits; it is not ordered against
// a concurrent Raise.
func (t *Token) Clear() {
	if t.closed.Load() {
		return
	}
	drainTokenFD(t.r)
	t.raised.Store(false)
}

// Close releases the OS primitive. The token must already be
// deregistered so no tick callback can race the teardown.
func (t *Token) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	if err := closeTokenFDs(t.r, t.w); err != nil {
		return fmt.Errorf("interrupt: close token %s: %w", t.id, err)
	}
	return nil
}

func drainTokenFD(fd int) {
	var buf [8]byte
	for {
		_, err := unix.Read(fd, buf[:])
		if err != nil {
			return // EAGAIN: drained
		}
	}
}
