// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package interrupt provides the per-worker cancellation channel used
// to break a worker out of a blocking readiness wait. A Token is backed
// by an OS primitive the blocking wait can observe alongside the
// descriptor it is waiting on: an eventfd on Linux, a non-blocking pipe
// pair on the other Unixes, and a manual-reset event object on Windows.
//
// Raise is safe to call from the tick execution context: it performs a
// single non-blocking write (or event signal) and never takes a lock.
// Clear belongs to the owning worker and is meant to be called between
// waits; it is not ordered against a concurrent Raise.
package interrupt
