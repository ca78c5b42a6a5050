/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package engine_test

import (
	"context"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	"github.com/go-logr/logr"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/strimzi-go/cluster-operator/pkg/engine"
)

var _ = Describe("testing: sweep.go", func() {
	Context("testing: periodic sweep partitioning", func() {
		It("dispatches a config object with no representative resource as a create", func() {
			cm := &corev1.ConfigMap{
				ObjectMeta: metav1.ObjectMeta{
					Name:      "swept-cluster",
					Namespace: "ns",
					Labels:    map[string]string{"kind": "cluster", "type": "kafka"},
				},
				Data: map[string]string{
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

			runCtx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() { _ = e.Start(runCtx) }()

			Eventually(func() bool { return e.Ready() }, "2s").Should(BeTrue())
			Eventually(func() error {
				sts := &appsv1.StatefulSet{}
				return c.Get(context.Background(), types.NamespacedName{Namespace: "ns", Name: "swept-cluster-kafka"}, sts)
			}, "2s").ShouldNot(HaveOccurred())
		})
	})
})
