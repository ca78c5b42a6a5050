/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package engine implements the reconciliation engine (§4.5): the control
// loop that reacts to configuration-object events and a periodic full sweep,
// dispatching each cluster's work through the per-cluster serializer to a
// composite operation.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/strimzi-go/cluster-operator/internal/backoff"
	"github.com/strimzi-go/cluster-operator/pkg/adapter"
	"github.com/strimzi-go/cluster-operator/pkg/clusterkey"
	"github.com/strimzi-go/cluster-operator/pkg/composite"
	"github.com/strimzi-go/cluster-operator/pkg/events"
	"github.com/strimzi-go/cluster-operator/pkg/lock"
	"github.com/strimzi-go/cluster-operator/pkg/metrics"
	"github.com/strimzi-go/cluster-operator/pkg/operrors"
)

// lockTimeout is the fixed 60 s lock-acquisition timeout from §4.4/§4.5.
const lockTimeout = 60 * time.Second

// maxRetryBackoff caps the retry delay applied to a cluster key after a
// retryable failure. The periodic full sweep dispatches through
// OnConfigObjectEvent as well, so a sweep-triggered attempt also waits out
// any delay still pending for its key.
const maxRetryBackoff = 5 * time.Minute

// Config bundles the engine's environment-derived settings (§6).
type Config struct {
	Namespace                  string
	ConfigMapLabels            map[string]string
	FullReconciliationInterval time.Duration
}

// Engine is the reconciliation engine. The zero value is not usable; use
// New.
type Engine struct {
	client   adapter.Client
	recorder *events.DeduplicatingRecorder
	locks    *lock.Manager
	config   Config
	log      logr.Logger

	pendingMutex sync.Mutex
	pending      map[clusterkey.Key]struct{}

	retryMutex  sync.Mutex
	retry       *backoff.Backoff
	nextAttempt map[clusterkey.Key]time.Time

	healthMutex   sync.Mutex
	running       bool
	lastSweepOK   time.Time
	sweepInterval time.Duration
}

// New creates an Engine. It wraps the client's event recorder in a
// deduplicating layer and keeps it in the recorder field; the engine itself
// records no events through it.
func New(client adapter.Client, config Config, log logr.Logger) *Engine {
	return &Engine{
		client:        client,
		recorder:      events.NewDeduplicatingRecorder(client.EventRecorder()),
		locks:         lock.NewManager(),
		config:        config,
		log:           log,
		pending:       make(map[clusterkey.Key]struct{}),
		retry:         backoff.NewBackoff(maxRetryBackoff),
		nextAttempt:   make(map[clusterkey.Key]time.Time),
		sweepInterval: config.FullReconciliationInterval,
	}
}

// OnConfigObjectEvent classifies and dispatches a single add/modify/delete
// notification on a configuration object (§4.5 "Event trigger"). It returns
// immediately; the actual dispatch (lock acquisition, decode, composite
// execution) happens on a worker goroutine. Rapid bursts on the same key
// coalesce onto a single pending token (§4.5 "Event coalescing").
func (e *Engine) OnConfigObjectEvent(clusterType clusterkey.Type, namespace, name string) {
	key := clusterkey.New(clusterType, namespace, name)

	e.pendingMutex.Lock()
	if _, already := e.pending[key]; already {
		e.pendingMutex.Unlock()
		return
	}
	e.pending[key] = struct{}{}
	e.pendingMutex.Unlock()

	go func() {
		defer func() {
			e.pendingMutex.Lock()
			delete(e.pending, key)
			e.pendingMutex.Unlock()
		}()
		ctx := context.Background()
		e.waitForRetryBackoff(key)
		e.dispatch(ctx, key)
	}()
}

// waitForRetryBackoff blocks until any delay accumulated by a prior
// retryable failure of key (§7 item 3) has elapsed. A key that has never
// failed, or last succeeded, returns immediately.
func (e *Engine) waitForRetryBackoff(key clusterkey.Key) {
	e.retryMutex.Lock()
	until, ok := e.nextAttempt[key]
	e.retryMutex.Unlock()
	if !ok {
		return
	}
	if wait := time.Until(until); wait > 0 {
		time.Sleep(wait)
	}
}

// dispatch implements §4.5 "Dispatch": acquire the per-key lock, build the
// ClusterOperation, run its plan, release the lock, and report the outcome.
func (e *Engine) dispatch(ctx context.Context, key clusterkey.Key) {
	start := time.Now()
	lockName := key.LockName()

	waitStart := time.Now()
	lease, err := e.locks.Acquire(ctx, lockName, lockTimeout)
	metrics.LockWaitDuration.WithLabelValues(string(key.Type)).Observe(time.Since(waitStart).Seconds())
	if err != nil {
		metrics.LockTimeouts.WithLabelValues(string(key.Type)).Inc()
		e.log.Error(err, "failed to acquire cluster lock", "key", key.String())
		return
	}
	defer lease.Release()

	op, err := composite.GetCluster(ctx, e.client, key.Type, key.Namespace, key.Name)
	if err != nil {
		e.reportOutcome(key, "unknown", err, start)
		return
	}

	err = op.Plan.Run(ctx)
	e.reportOutcome(key, string(op.Operation), err, start)
}

func (e *Engine) reportOutcome(key clusterkey.Key, operation string, err error, start time.Time) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.Operations.WithLabelValues(string(key.Type), operation, outcome).Inc()
	metrics.OperationDuration.WithLabelValues(string(key.Type), operation).Observe(time.Since(start).Seconds())

	if err == nil {
		e.retryMutex.Lock()
		delete(e.nextAttempt, key)
		e.retryMutex.Unlock()
		e.retry.Forget(key)

		e.log.Info("reconciled cluster", "key", key.String(), "operation", operation)
		return
	}

	if operrors.Retryable(err) {
		delay := e.retry.Next(key, "dispatch")
		e.retryMutex.Lock()
		e.nextAttempt[key] = time.Now().Add(delay)
		e.retryMutex.Unlock()
		e.log.Error(err, "cluster reconciliation failed, retrying with backoff", "key", key.String(), "operation", operation, "delay", delay.String())
	} else {
		e.log.Error(err, "fatal error reconciling cluster", "key", key.String(), "operation", operation)
	}
}

// Start runs the periodic full sweep until ctx is cancelled, then marks the
// engine as not running and returns at once. It does not wait for
// operations already handed to worker goroutines, and OnConfigObjectEvent
// keeps accepting events after Start has returned.
func (e *Engine) Start(ctx context.Context) error {
	e.healthMutex.Lock()
	e.running = true
	e.healthMutex.Unlock()

	ticker := time.NewTicker(e.sweepInterval)
	defer ticker.Stop()

	if err := e.sweep(ctx); err != nil {
		e.log.Error(err, "initial sweep failed")
	}

	for {
		select {
		case <-ctx.Done():
			e.healthMutex.Lock()
			e.running = false
			e.healthMutex.Unlock()
			return nil
		case <-ticker.C:
			if err := e.sweep(ctx); err != nil {
				e.log.Error(err, "periodic sweep failed")
			}
		}
	}
}

// Healthy reports whether the engine is running. Ready additionally
// requires the last full sweep to have succeeded within one interval (§6
// "Health endpoints").
func (e *Engine) Healthy() bool {
	e.healthMutex.Lock()
	defer e.healthMutex.Unlock()
	return e.running
}

func (e *Engine) Ready() bool {
	e.healthMutex.Lock()
	defer e.healthMutex.Unlock()
	if !e.running {
		return false
	}
	return time.Since(e.lastSweepOK) <= e.sweepInterval
}

func (e *Engine) markSweepOK() {
	e.healthMutex.Lock()
	e.lastSweepOK = time.Now()
	e.healthMutex.Unlock()
}
