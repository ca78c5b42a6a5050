/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics registers the Prometheus instrumentation the engine emits
// for composite operations, the lock manager and the periodic sweep.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

const prefix = "cluster_operator"

var (
	// Operations counts composite-operation invocations per cluster type,
	// operation kind (create/update/delete, or unknown when the operation
	// could not be built) and outcome.
	Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_operations_total",
			Help: "Total number of composite operations per cluster type, operation and outcome",
		},
		[]string{"clusterType", "operation", "outcome"},
	)
	// OperationDuration observes wall-clock time from the start of a dispatch
	// to the operation's completion, lock wait time included.
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_operation_duration_seconds",
			Help:    "Duration of composite operations per cluster type and operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"clusterType", "operation"},
	)
	// LockWaitDuration observes time spent waiting to acquire a cluster lock.
	LockWaitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_lock_wait_seconds",
			Help:    "Time spent waiting to acquire a cluster lock",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"clusterType"},
	)
	// LockTimeouts counts lock acquisitions that gave up without succeeding.
	LockTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_lock_timeouts_total",
			Help: "Total number of lock acquisitions that timed out",
		},
		[]string{"clusterType"},
	)
	// Sweeps counts full periodic reconciliation sweeps.
	Sweeps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_sweeps_total",
			Help: "Total number of full reconciliation sweeps per outcome",
		},
		[]string{"outcome"},
	)
	// SweepDuration observes wall-clock time spent in a full sweep.
	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_sweep_duration_seconds",
			Help:    "Duration of a full reconciliation sweep",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	metrics.Registry.MustRegister(
		Operations,
		OperationDuration,
		LockWaitDuration,
		LockTimeouts,
		Sweeps,
		SweepDuration,
	)
}
