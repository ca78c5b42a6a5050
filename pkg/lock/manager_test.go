/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package lock_test

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/strimzi-go/cluster-operator/pkg/lock"
	"github.com/strimzi-go/cluster-operator/pkg/operrors"
)

var _ = Describe("testing: manager.go", func() {
	var manager *lock.Manager
	var ctx context.Context

	BeforeEach(func() {
		manager = lock.NewManager()
		ctx = context.Background()
	})

	Context("testing: Acquire()/Release()", func() {
		It("should grant the lock immediately when uncontended", func() {
			lease, err := manager.Acquire(ctx, "kafka::ns::cluster-a", time.Second)
			Expect(err).NotTo(HaveOccurred())
			Expect(lease).NotTo(BeNil())
			lease.Release()
		})

		It("should serialize two acquisitions of the same key", func() {
			lease1, err := manager.Acquire(ctx, "kafka::ns::cluster-a", time.Second)
			Expect(err).NotTo(HaveOccurred())

			var secondAcquired int32
			done := make(chan struct{})
			go func() {
				defer close(done)
				lease2, err := manager.Acquire(ctx, "kafka::ns::cluster-a", 2*time.Second)
				Expect(err).NotTo(HaveOccurred())
				atomic.StoreInt32(&secondAcquired, 1)
				lease2.Release()
			}()

			Consistently(func() int32 { return atomic.LoadInt32(&secondAcquired) }, "200ms", "20ms").Should(Equal(int32(0)))
			lease1.Release()
			Eventually(done, "2s").Should(BeClosed())
		})

		It("should not block acquisitions of distinct keys", func() {
			lease1, err := manager.Acquire(ctx, "kafka::ns::cluster-a", time.Second)
			Expect(err).NotTo(HaveOccurred())
			defer lease1.Release()

			lease2, err := manager.Acquire(ctx, "kafka::ns::cluster-b", time.Second)
			Expect(err).NotTo(HaveOccurred())
			defer lease2.Release()
		})

		It("should time out and report operrors.LockTimeout when held too long", func() {
			lease1, err := manager.Acquire(ctx, "kafka::ns::cluster-a", time.Second)
			Expect(err).NotTo(HaveOccurred())
			defer lease1.Release()

			_, err = manager.Acquire(ctx, "kafka::ns::cluster-a", 50*time.Millisecond)
			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(operrors.LockTimeout{}))
		})

		It("should allow Release to be called more than once", func() {
			lease, err := manager.Acquire(ctx, "kafka::ns::cluster-a", time.Second)
			Expect(err).NotTo(HaveOccurred())
			lease.Release()
			Expect(lease.Release).NotTo(Panic())
		})
	})
})
