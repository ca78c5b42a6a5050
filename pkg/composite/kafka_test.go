/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package composite_test

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/record"
	fakeclient "sigs.k8s.io/controller-runtime/pkg/client/fake"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/strimzi-go/cluster-operator/pkg/adapter"
	"github.com/strimzi-go/cluster-operator/pkg/clusterspec"
	"github.com/strimzi-go/cluster-operator/pkg/composite"
)

func newTestClient(initObjects ...runtime.Object) adapter.Client {
	scheme := runtime.NewScheme()
	Expect(clientgoscheme.AddToScheme(scheme)).To(Succeed())
	builder := fakeclient.NewClientBuilder().WithScheme(scheme).WithRuntimeObjects(initObjects...)
	return adapter.NewClient(builder.Build(), nil, record.NewFakeRecorder(100))
}

func minimalKafkaSpec(namespace, name string) clusterspec.KafkaSpec {
	spec := clusterspec.KafkaSpec{}
	spec.Namespace = namespace
	spec.Name = name
	spec.Replicas = 3
	spec.Image = "strimzi/kafka:latest"
	spec.ZookeeperReplicas = 3
	spec.ZookeeperImage = "strimzi/zookeeper:latest"
	spec.KafkaStorage = clusterspec.StorageSpec{Type: clusterspec.StorageEphemeral}
	spec.ZookeeperStorage = clusterspec.StorageSpec{Type: clusterspec.StorageEphemeral}
	return spec
}

var _ = Describe("testing: kafka.go", func() {
	var ctx context.Context
	var c adapter.Client
	var spec clusterspec.KafkaSpec

	BeforeEach(func() {
		ctx = context.Background()
		c = newTestClient()
		spec = minimalKafkaSpec("ns", "my-cluster")
	})

	Context("testing: KafkaCreate()", func() {
		It("should create every resource in the declared order", func() {
			plan := composite.KafkaCreate(c, spec)
			names := make([]string, len(plan))
			for i, step := range plan {
				names[i] = step.Name
			}
			Expect(names).To(Equal([]string{
				"zookeeper-headless-service",
				"kafka-headless-service",
				"zookeeper-client-service",
				"kafka-client-service",
				"zookeeper-metrics-config",
				"kafka-metrics-config",
				"zookeeper-stateful-set",
				"kafka-stateful-set",
			}))

			Expect(plan.Run(ctx)).To(Succeed())

			sts := &appsv1.StatefulSet{}
			Expect(c.Get(ctx, nsName("ns", "my-cluster-kafka"), sts)).To(Succeed())
			Expect(*sts.Spec.Replicas).To(Equal(int32(3)))

			svc := &corev1.Service{}
			Expect(c.Get(ctx, nsName("ns", "my-cluster-zookeeper-headless"), svc)).To(Succeed())
		})
	})

	Context("testing: KafkaDelete()", func() {
		It("should tear down resources created by KafkaCreate", func() {
			Expect(composite.KafkaCreate(c, spec).Run(ctx)).To(Succeed())

			Expect(composite.KafkaDelete(c, spec).Run(ctx)).To(Succeed())

			sts := &appsv1.StatefulSet{}
			err := c.Get(ctx, nsName("ns", "my-cluster-kafka"), sts)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("testing: KafkaUpdate()", func() {
		It("should omit the stateful set steps when only metrics changed", func() {
			current := spec
			desired := spec
			desired.KafkaMetricsConfig = clusterspec.MetricsConfig{Enabled: true, Raw: `{"rules":[]}`}
			diff, err := clusterspec.DiffKafka(current, desired)
			Expect(err).NotTo(HaveOccurred())
			Expect(diff.MetricsChanged).To(BeTrue())
			Expect(diff.RollingUpdate).To(BeFalse())

			plan, err := composite.KafkaUpdate(c, current, desired, diff)
			Expect(err).NotTo(HaveOccurred())

			for _, step := range plan {
				Expect(step.Name).NotTo(Equal("kafka-stateful-set"))
				Expect(step.Name).NotTo(Equal("zookeeper-stateful-set"))
			}
		})

		It("should include the stateful set steps on a rolling update", func() {
			current := spec
			desired := spec
			desired.Image = "strimzi/kafka:2.8.0"
			diff, err := clusterspec.DiffKafka(current, desired)
			Expect(err).NotTo(HaveOccurred())
			Expect(diff.RollingUpdate).To(BeTrue())

			plan, err := composite.KafkaUpdate(c, current, desired, diff)
			Expect(err).NotTo(HaveOccurred())

			var sawKafkaSts bool
			for _, step := range plan {
				if step.Name == "kafka-stateful-set" {
					sawKafkaSts = true
				}
			}
			Expect(sawKafkaSts).To(BeTrue())
		})
	})
})
