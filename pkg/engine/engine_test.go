/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package engine_test

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/record"
	fakeclient "sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/go-logr/logr"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/strimzi-go/cluster-operator/pkg/adapter"
	"github.com/strimzi-go/cluster-operator/pkg/engine"
)

func newEngineTestClient(initObjects ...runtime.Object) adapter.Client {
	scheme := runtime.NewScheme()
	Expect(clientgoscheme.AddToScheme(scheme)).To(Succeed())
	builder := fakeclient.NewClientBuilder().WithScheme(scheme).WithRuntimeObjects(initObjects...)
	return adapter.NewClient(builder.Build(), nil, record.NewFakeRecorder(100))
}

var _ = Describe("testing: engine.go", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("testing: New()/Healthy()/Ready()", func() {
		It("should report not healthy before Start and healthy while running", func() {
			c := newEngineTestClient()
			e := engine.New(c, engine.Config{
				Namespace:                  "ns",
				ConfigMapLabels:            map[string]string{"kind": "cluster"},
				FullReconciliationInterval: 50 * time.Millisecond,
			}, logr.Discard())

			Expect(e.Healthy()).To(BeFalse())

			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})
			go func() {
				defer close(done)
				_ = e.Start(runCtx)
			}()

			Eventually(e.Healthy, "1s").Should(BeTrue())
			Eventually(e.Ready, "1s").Should(BeTrue())

			cancel()
			Eventually(done, "1s").Should(BeClosed())
			Expect(e.Healthy()).To(BeFalse())
		})
	})

	Context("testing: OnConfigObjectEvent()", func() {
		It("should create the cluster's resources for a fresh config object", func() {
			cm := &corev1.ConfigMap{
				ObjectMeta: metav1.ObjectMeta{
					Name:      "my-cluster",
					Namespace: "ns",
					Labels:    map[string]string{"kind": "cluster", "type": "kafka"},
				},
				Data: map[string]string{
					"kafka-nodes":       "3",
					"zookeeper-nodes":   "3",
					"kafka-storage":     `{"type":"ephemeral"}`,
					"zookeeper-storage": `{"type":"ephemeral"}`,
				},
			}
			c := newEngineTestClient(cm)
			e := engine.New(c, engine.Config{
				Namespace:                  "ns",
				ConfigMapLabels:            map[string]string{"kind": "cluster"},
				FullReconciliationInterval: time.Hour,
			}, logr.Discard())

			e.OnConfigObjectEvent("kafka", "ns", "my-cluster")

			Eventually(func() error {
				metricsCM := &corev1.ConfigMap{}
				return c.Get(ctx, types.NamespacedName{Namespace: "ns", Name: "my-cluster-kafka-metrics-config"}, metricsCM)
			}, "1s").ShouldNot(HaveOccurred())
		})
	})
})
