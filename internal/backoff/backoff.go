/*
Copyright 2023.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package backoff tracks a per-key exponential retry delay, used by the
// engine to slow down re-dispatch of a cluster key that just failed with a
// retryable error, without blocking any other key. Event-triggered and
// sweep-triggered dispatches of that key both wait out the delay.
package backoff

import (
	"sync"
	"time"

	"k8s.io/client-go/util/workqueue"
)

// Backoff hands out an increasing delay for repeated failures of the same
// key, and forgets it once the key succeeds or moves on to a different
// activity.
type Backoff struct {
	lock       sync.Mutex
	activities map[any]any
	limiter    workqueue.RateLimiter
}

// NewBackoff creates a Backoff whose delay starts at 20ms and never exceeds
// maxDelay.
func NewBackoff(maxDelay time.Duration) *Backoff {
	return &Backoff{
		activities: make(map[any]any),
		limiter:    workqueue.NewItemExponentialFailureRateLimiter(20*time.Millisecond, maxDelay),
	}
}

// Next returns how long to wait before retrying item's activity. Calling it
// again with the same item and activity returns an increasing delay;
// calling it with a different activity for the same item resets the delay.
func (b *Backoff) Next(item any, activity any) time.Duration {
	b.lock.Lock()
	defer b.lock.Unlock()

	if act, ok := b.activities[item]; ok && act != activity {
		b.limiter.Forget([2]any{item, act})
	}

	b.activities[item] = activity
	return b.limiter.When([2]any{item, activity})
}

// Forget clears any accumulated delay for item, e.g. after it succeeds.
func (b *Backoff) Forget(item any) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if act, ok := b.activities[item]; ok {
		b.limiter.Forget([2]any{item, act})
	}

	delete(b.activities, item)
}
