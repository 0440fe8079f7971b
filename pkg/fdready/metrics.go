// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdready

import (
	"errors"
	"time"

	m "github.com/loomrt/loom/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	// all metrics fields must be exported
	// to be able to return them by Metrics()
	// using reflection
	WaitsTotal  *prometheus.CounterVec
	WaitSeconds prometheus.Histogram
}

// Waiters are per worker, so the collectors are shared at package level
// rather than allocated per instance.
var sharedMetrics = newMetrics()

func newMetrics() metrics {
	subsystem := "fdready"

	return metrics{
		WaitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "waits_total",
			Help:      "Completed readiness waits by descriptor kind and outcome.",
		}, []string{"kind", "outcome"}),
		WaitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "wait_seconds",
			Help:      "Histogram of time spent blocked in a readiness wait.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 60},
		}),
	}
}

func (mt metrics) observe(kind DescriptorKind, status Status, err error, took time.Duration) {
	outcome := status.String()
	switch {
	case errors.Is(err, ErrInterrupted):
		outcome = "interrupted"
	case err != nil:
		outcome = "error"
	}
	mt.WaitsTotal.WithLabelValues(kind.String(), outcome).Inc()
	mt.WaitSeconds.Observe(took.Seconds())
}

// Metrics returns the prometheus collectors of the package.
func Metrics() []prometheus.Collector {
	return m.PrometheusCollectorsFromFields(sharedMetrics)
}
