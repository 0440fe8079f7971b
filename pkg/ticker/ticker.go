// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ticker provides the platform timing source for the interval
// timer service. A dedicated goroutine fires a callback at a fixed
// interval; the goroutine persists across Stop/Start pairs and is torn
// down only by Exit. The package carries no scheduling policy of its
// own, that lives in pkg/itimer.
package ticker

import (
	"sync"
	"time"

	"github.com/loomrt/loom/pkg/logging"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"
)

// loggerName is the tree path name of the logger for this package.
const loggerName = "ticker"

// overrunLogInterval bounds how often the tick-overrun warning may be
// emitted, so a persistently slow callback cannot flood the log.
const overrunLogInterval = time.Minute

// Ticker invokes a callback at a fixed interval on its own goroutine.
//
// The callback runs in the tick execution context: it must not block,
// allocate on its steady-state path, or acquire a lock that a worker
// may be holding while blocked. See the itimer package for the contract
// consumers are held to.
type Ticker struct {
	interval time.Duration
	fn       func()
	logger   logging.Logger

	armed   atomic.Bool
	nudge   chan struct{}
	quit    chan struct{}
	done    chan struct{}
	exiting sync.Once

	overrunLog *rate.Limiter
}

// New returns a ticker firing fn every interval. The firing goroutine
// is started immediately but remains disarmed until Start is called.
// interval must be positive.
func New(interval time.Duration, fn func(), logger logging.Logger) *Ticker {
	t := &Ticker{
		interval:   interval,
		fn:         fn,
		logger:     logger,
		nudge:      make(chan struct{}, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		overrunLog: rate.NewLimiter(rate.Every(overrunLogInterval), 1),
	}

	go t.loop()

	return t
}

// Start arms the ticker. The callback fires every interval until Stop
// or Exit. Calling Start on an armed ticker is a no-op.
func (t *Ticker) Start() {
	t.armed.Store(true)
	t.kick()
}

// Stop disarms the ticker. The firing goroutine keeps running so a
// later Start is cheap. A callback already in flight completes.
func (t *Ticker) Stop() {
	t.armed.Store(false)
	t.kick()
}

// Running reports whether the ticker is currently armed.
func (t *Ticker) Running() bool {
	return t.armed.Load()
}

// Exit terminates the firing goroutine. If wait is true, Exit blocks
// until any in-flight callback has completed and the goroutine has
// returned. Exit may be called more than once.
func (t *Ticker) Exit(wait bool) {
	t.exiting.Do(func() {
		close(t.quit)
	})
	if wait {
		<-t.done
	}
}

func (t *Ticker) kick() {
	select {
	case t.nudge <- struct{}{}:
	default:
	}
}

func (t *Ticker) loop() {
	defer close(t.done)

	tick := time.NewTicker(t.interval)
	tick.Stop() // disarmed until the first Start
	defer tick.Stop()

	for {
		select {
		case <-t.quit:
			return
		case <-t.nudge:
			if t.armed.Load() {
				tick.Reset(t.interval)
			} else {
				tick.Stop()
			}
		case <-tick.C:
			if !t.armed.Load() {
				continue
			}
			t.fire()
		}
	}
}

func (t *Ticker) fire() {
	defer func() {
		// A panic escaping the tick context cannot safely unwind:
		// treat it as a fatal runtime-invariant violation.
		if r := recover(); r != nil {
			t.logger.Errorf("%s: tick callback panicked: %v", loggerName, r)
			panic(r)
		}
	}()

	start := time.Now()
	t.fn()
	if d := time.Since(start); d > t.interval && t.overrunLog.Allow() {
		t.logger.Warningf("%s: tick callback took %v, longer than the %v interval", loggerName, d, t.interval)
	}
}
