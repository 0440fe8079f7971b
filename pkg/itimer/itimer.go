// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package itimer provides the interval timer service that drives
// preemptive rescheduling and idle-triggered garbage collection for the
// loom runtime. One service instance exists per process; it owns the
// platform ticker and a refcounted enable/disable state so independent
// subsystems can pause the timer without coordinating with each other.
package itimer

import (
	"time"

	"github.com/loomrt/loom/pkg/interrupt"
	"github.com/loomrt/loom/pkg/logging"
	"github.com/loomrt/loom/pkg/ticker"
	"go.uber.org/atomic"
)

// loggerName is the tree path name of the logger for this package.
const loggerName = "itimer"

// Activity tracks whether the runtime has done useful work recently.
// It feeds the idle-GC countdown in the tick callback.
type Activity int32

const (
	// ActivityYes: work happened since the last tick.
	ActivityYes Activity = iota
	// ActivityMaybeNo: no work observed yet, countdown running.
	ActivityMaybeNo
	// ActivityInactive: idle GC has been requested.
	ActivityInactive
	// ActivityDoneGC: idle period handled, timer stopped.
	ActivityDoneGC
)

func (a Activity) String() string {
	switch a {
	case ActivityYes:
		return "yes"
	case ActivityMaybeNo:
		return "maybe-no"
	case ActivityInactive:
		return "inactive"
	case ActivityDoneGC:
		return "done-gc"
	default:
		return "unknown"
	}
}

// Scheduler is the scheduler collaborator. All methods are invoked from
// the tick execution context and must be non-blocking.
type Scheduler interface {
	// ContextSwitchAll asks every worker to yield its current
	// lightweight thread at the next safe point.
	ContextSwitchAll()
	// RequestIdleGC asks for a garbage collection pass after
	// sustained inactivity, used to detect deadlocks.
	RequestIdleGC()
	// ProfilerActive reports whether profiling samples are being
	// collected, in which case the timer must keep running even
	// after the idle period has been handled.
	ProfilerActive() bool
}

// Profiler receives a fire-and-forget trigger on every tick.
type Profiler interface {
	Tick()
}

// Config carries the timing parameters. It is validated by the caller
// and immutable for the process lifetime.
type Config struct {
	// TickInterval is the period of the platform ticker. Zero
	// disables the timer entirely.
	TickInterval time.Duration
	// ContextSwitchTicks is the number of ticks between preemptive
	// context switch requests. Zero disables preemption.
	ContextSwitchTicks int
	// IdleGCDelay is how long the runtime must stay inactive before
	// an idle GC is requested.
	IdleGCDelay time.Duration
	// DoIdleGC enables the idle GC request; when false the timer is
	// stopped instead once the idle period elapses.
	DoIdleGC bool
}

// Service is the interval timer service.
//
// The disabled refcount starts at one: the service is created disabled
// and the first Start arms the ticker. Start/Stop pairs nest; the
// ticker is armed exactly while the refcount is zero.
type Service struct {
	cfg    Config
	sched  Scheduler
	prof   Profiler
	tokens *interrupt.Registry
	logger logging.Logger

	disabled atomic.Int64
	activity atomic.Int32
	ticks    atomic.Int64

	// Tick countdowns, touched only from the tick callback.
	ticksToCtxtSwitch int
	ticksToGC         int

	ticker  *ticker.Ticker
	metrics metrics
}

// New creates the interval timer service in the disabled state. The
// token registry may be nil if no workers block in readiness waits.
func New(cfg Config, sched Scheduler, prof Profiler, tokens *interrupt.Registry, logger logging.Logger) *Service {
	s := &Service{
		cfg:               cfg,
		sched:             sched,
		prof:              prof,
		tokens:            tokens,
		logger:            logger,
		ticksToCtxtSwitch: cfg.ContextSwitchTicks,
		metrics:           newMetrics(),
	}
	s.disabled.Store(1)
	s.activity.Store(int32(ActivityYes))

	if cfg.TickInterval != 0 {
		s.ticker = ticker.New(cfg.TickInterval, s.tick, logger)
	}

	return s
}

// Start decrements the disable refcount and arms the ticker on the
// transition to zero. Start/Stop pairs from independent subsystems nest
// correctly under concurrency.
func (s *Service) Start() {
	if s.disabled.Dec() == 0 && s.ticker != nil {
		s.ticker.Start()
	}
}

// Stop increments the disable refcount and disarms the ticker on the
// transition from zero.
func (s *Service) Stop() {
	if s.disabled.Inc() == 1 && s.ticker != nil {
		s.ticker.Stop()
	}
}

// Exit tears down the ticker. If wait is true it blocks until any
// in-flight tick callback has completed.
func (s *Service) Exit(wait bool) {
	if s.ticker != nil {
		s.ticker.Exit(wait)
	}
}

// MarkActivity records that the runtime has done useful work, resetting
// the idle-GC state machine. Called by the scheduler collaborator
// whenever a lightweight thread runs.
func (s *Service) MarkActivity() {
	s.activity.Store(int32(ActivityYes))
}

// Activity returns the current idle-detection state.
func (s *Service) Activity() Activity {
	return Activity(s.activity.Load())
}

// TickCount returns the number of tick callbacks handled so far.
func (s *Service) TickCount() int64 {
	return s.ticks.Load()
}

// TickerArmed reports whether the platform ticker is currently armed.
// It is true exactly while the net outstanding Stop count is zero.
func (s *Service) TickerArmed() bool {
	return s.ticker != nil && s.ticker.Running()
}

// tick is the platform ticker callback. It runs in the tick execution
// context: everything here is atomics and non-blocking signals; the
// heavy work (the context switch itself, the GC) is performed later by
// the scheduler consuming the requests made here.
func (s *Service) tick() {
	if s.prof != nil {
		s.prof.Tick()
	}

	if s.cfg.ContextSwitchTicks > 0 {
		s.ticksToCtxtSwitch--
		if s.ticksToCtxtSwitch <= 0 {
			s.ticksToCtxtSwitch = s.cfg.ContextSwitchTicks
			s.sched.ContextSwitchAll()

			// The ticker runs on its own goroutine and can never
			// interrupt a blocking syscall the way a POSIX signal
			// would, so a worker parked in a readiness wait would
			// miss the switch request until natural readiness.
			// Raise every worker's token so the wait returns and
			// the worker reaches a safe point.
			if s.tokens != nil {
				s.tokens.RaiseAll()
			}
			s.metrics.ContextSwitchRequests.Inc()
		}
	}

	switch Activity(s.activity.Load()) {
	case ActivityYes:
		s.activity.Store(int32(ActivityMaybeNo))
		s.ticksToGC = int(s.cfg.IdleGCDelay / s.cfg.TickInterval)
	case ActivityMaybeNo:
		if s.ticksToGC == 0 {
			if s.cfg.DoIdleGC {
				s.activity.Store(int32(ActivityInactive))
				// The scheduler stops the timer itself once the
				// GC has run.
				s.sched.RequestIdleGC()
				s.metrics.IdleGCRequests.Inc()
			} else {
				s.activity.Store(int32(ActivityDoneGC))
				// Keep the timer running while profiling so
				// samples continue to be collected.
				if !s.sched.ProfilerActive() {
					s.Stop()
				}
			}
		} else {
			s.ticksToGC--
		}
	}

	s.ticks.Inc()
	s.metrics.TicksTotal.Inc()
}
