// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interrupt

import (
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Registry tracks the tokens of all live workers so the tick callback
// can raise every one of them when a context switch must reach workers
// parked in a blocking wait.
//
// Register and Deregister hold the lock only for the map operation and
// are never called while the worker is blocked, so RaiseAll taking the
// read lock from the tick context cannot invert priorities against a
// blocked worker.
type Registry struct {
	mu     sync.RWMutex
	tokens map[*Token]struct{}
}

// NewRegistry returns an empty token registry.
func NewRegistry() *Registry {
	return &Registry{
		tokens: make(map[*Token]struct{}),
	}
}

// Register adds a worker's token. Registering the same token twice is
// a no-op.
func (r *Registry) Register(t *Token) {
	r.mu.Lock()
	r.tokens[t] = struct{}{}
	r.mu.Unlock()
}

// Deregister removes a worker's token. The caller may close the token
// once Deregister has returned; from that point no RaiseAll can reach
// it.
func (r *Registry) Deregister(t *Token) {
	r.mu.Lock()
	delete(r.tokens, t)
	r.mu.Unlock()
}

// Len returns the number of registered tokens.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

// RaiseAll raises every registered token. It is called from the tick
// execution context: each raise is a single non-blocking signal and the
// registry lock is only read-held.
func (r *Registry) RaiseAll() {
	r.mu.RLock()
	for t := range r.tokens {
		t.Raise()
	}
	r.mu.RUnlock()
}

// Close deregisters and closes all remaining tokens, aggregating any
// close errors.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs *multierror.Error
	for t := range r.tokens {
		errs = multierror.Append(errs, t.Close())
		delete(r.tokens, t)
	}
	return errs.ErrorOrNil()
}
