// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package itimer

import (
	m "github.com/loomrt/loom/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	// all metrics fields must be exported
	// to be able to return them by Metrics()
	// using reflection
	TicksTotal            prometheus.Counter
	ContextSwitchRequests prometheus.Counter
	IdleGCRequests        prometheus.Counter
}

func newMetrics() metrics {
	subsystem := "itimer"

	return metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "ticks_total",
			Help:      "Total platform ticker callbacks handled.",
		}),
		ContextSwitchRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "context_switch_requests_total",
			Help:      "Total preemptive context switch requests issued.",
		}),
		IdleGCRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "idle_gc_requests_total",
			Help:      "Total idle garbage collections requested.",
		}),
	}
}

// Metrics returns the prometheus collectors of the service.
func (s *Service) Metrics() []prometheus.Collector {
	return m.PrometheusCollectorsFromFields(s.metrics)
}
