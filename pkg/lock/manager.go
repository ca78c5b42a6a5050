/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package lock implements the per-cluster serializer (§4.4): a named, timed,
// process-local advisory lock keyed by a cluster's identity, guaranteeing at
// most one in-flight composite operation per key while leaving distinct keys
// free to proceed concurrently (P1, P2).
//
// A process-local keyed mutex is sufficient for a single-replica deployment
// of this engine; an HA deployment would substitute leader election instead
// of trying to make this lock table distributed.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/strimzi-go/cluster-operator/pkg/operrors"
)

// Manager hands out named advisory locks. The zero value is not usable; use
// NewManager.
type Manager struct {
	mutex   sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mutex    sync.Mutex
	waiters  int
}

// NewManager creates an empty lock manager.
func NewManager() *Manager {
	return &Manager{entries: make(map[string]*entry)}
}

// Lease represents a held lock. Release is idempotent; calling it more than
// once, or from a goroutine other than the one that acquired it, is safe
// but must still happen exactly once logically (callers should defer it
// immediately after a successful Acquire).
type Lease struct {
	release func()
	once    sync.Once
}

// Release unlocks the key the lease was acquired for. Safe to call multiple
// times.
func (l *Lease) Release() {
	l.once.Do(l.release)
}

// Acquire blocks until the named lock is held, ctx is done, or timeout
// elapses, whichever comes first. On success it returns a Lease that the
// caller must Release exactly once. On timeout it returns
// operrors.NewLockTimeout, matching the "lock acquisition has a 60s timeout;
// on timeout the operation is abandoned" rule (§4.4).
func (m *Manager) Acquire(ctx context.Context, name string, timeout time.Duration) (*Lease, error) {
	e := m.entryFor(name)

	acquired := make(chan struct{})
	go func() {
		e.mutex.Lock()
		close(acquired)
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-acquired:
		// The waiter reference taken above is now owned by the returned
		// Lease; it is only released, and the entry only reaped, once the
		// caller actually releases the lock.
		return &Lease{release: func() {
			e.mutex.Unlock()
			m.forget(name, e)
		}}, nil
	case <-timeoutCtx.Done():
		// This goroutine is giving up without ever holding e.mutex, so its
		// waiter reference is dropped now. A later, delayed acquisition by
		// the still-running goroutine above just unlocks and walks away.
		go func() {
			<-acquired
			e.mutex.Unlock()
		}()
		m.forget(name, e)
		if ctx.Err() != nil {
			return nil, operrors.NewTransient(ctx.Err())
		}
		return nil, operrors.NewLockTimeout(name, timeout.String())
	}
}

// forget drops one waiter reference to e, removing it from the entry table
// once nobody is waiting on or holding it. It is called both when a waiter
// gives up (ctx cancellation or timeout) and, via Lease.Release, once a
// holder is done with the lock — never merely because Acquire returned.
func (m *Manager) forget(name string, e *entry) {
	m.mutex.Lock()
	e.waiters--
	if e.waiters == 0 && m.entries[name] == e {
		delete(m.entries, name)
	}
	m.mutex.Unlock()
}

// entryFor returns the (possibly newly created) entry for name, reusing an
// existing one if another goroutine is already waiting on or holding it so
// that distinct Acquire calls for the same key always contend on the same
// underlying mutex. It registers the caller as a waiter under the same table
// lock, so the entry cannot be reaped between lookup and registration.
func (m *Manager) entryFor(name string) *entry {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	e, ok := m.entries[name]
	if !ok {
		e = &entry{}
		m.entries[name] = e
	}
	e.waiters++
	return e
}
