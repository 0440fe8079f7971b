// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics_test

import (
	"testing"

	"github.com/loomrt/loom/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusCollectorsFromFields(t *testing.T) {
	t.Parallel()

	s := struct {
		Counter    prometheus.Counter
		Gauge      prometheus.Gauge
		NotMetric  string
		unexported prometheus.Counter
	}{
		Counter:   prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter"}),
		Gauge:     prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge"}),
		NotMetric: "skipped",
	}

	cs := metrics.PrometheusCollectorsFromFields(s)
	if len(cs) != 2 {
		t.Fatalf("got %d collectors, want 2", len(cs))
	}
}
