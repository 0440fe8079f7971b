// Copyright 2026 The Loom Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics provides the prometheus glue shared by the
// loom packages. Every package that exposes metrics declares a
// metrics struct with exported prometheus collector fields and
// harvests them with PrometheusCollectorsFromFields.
package metrics

import (
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is prefixed before every metric. If it is changed, it must be
// done before any metrics collector is registered.
const Namespace = "loom"

// Collector is the interface implemented by components
// that expose prometheus collectors.
type Collector interface {
	Metrics() []prometheus.Collector
}

// PrometheusCollectorsFromFields returns the exported prometheus.Collector
// fields of i, using reflection.
func PrometheusCollectorsFromFields(i interface{}) (cs []prometheus.Collector) {
	v := reflect.Indirect(reflect.ValueOf(i))
	for i := 0; i < v.NumField(); i++ {
		if !v.Field(i).CanInterface() {
			continue
		}
		if u, ok := v.Field(i).Interface().(prometheus.Collector); ok {
			cs = append(cs, u)
		}
	}
	return cs
}
