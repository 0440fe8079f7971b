// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interrupt

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sys/windows"
)

// Token is a per-worker cancellation channel. On Windows it is backed
// by a manual-reset event object, so a readiness wait can pass it to
// WaitForMultipleObjects together with the handle it is waiting on.
type Token struct {
	id     uuid.UUID
	event  windows.Handle
	raised atomic.Bool
	closed atomic.Bool
}

// NewToken allocates the event object backing the token.
func NewToken() (*Token, error) {
	// Manual reset, initially non-signalled.
	ev, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("interrupt: new token: %w", err)
	}
	return &Token{
		id:    uuid.New(),
		event: ev,
	}, nil
}

// ID returns the token identity used in logs and diagnostics.
func (t *Token) ID() string {
	return t.id.String()
}

// Handle returns the waitable event object. It is signalled while the
// token is raised and reset by Clear.
func (t *Token) Handle() windows.Handle {
	return t.event
}

// Raise signals the token. It is asynchronous, non-blocking and
// allocation-free, and may be called from the tick execution context.
// Raising an already-raised or closed token is a no-op.
func (t *Token) Raise() {
	if t.closed.Load() || t.raised.Swap(true) {
		return
	}
	_ = windows.SetEvent(t.event)
}

// Raised reports whether the token has been raised and not yet cleared.
func (t *Token) Raised() bool {
	return t.raised.Load()
}

// Clear resets the event so a subsequent wait blocks again. It must be
// called by the owning worker between waits; it is not ordered against
// a concurrent Raise.
func (t *Token) Clear() {
	if t.closed.Load() {
		return
	}
	_ = windows.ResetEvent(t.event)
	t.raised.Store(false)
}

// Close releases the event object. The token must already be
// deregistered so no tick callback can race the teardown.
func (t *Token) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	if err := windows.CloseHandle(t.event); err != nil {
		return fmt.Errorf("interrupt: close token %s: %w", t.id, err)
	}
	return nil
}
