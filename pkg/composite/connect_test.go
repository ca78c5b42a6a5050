/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package composite_test

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/strimzi-go/cluster-operator/pkg/clusterkey"
	"github.com/strimzi-go/cluster-operator/pkg/clusterspec"
	"github.com/strimzi-go/cluster-operator/pkg/composite"
)

func minimalConnectSpec(namespace, name string) clusterspec.ConnectSpec {
	spec := clusterspec.ConnectSpec{}
	spec.Namespace = namespace
	spec.Name = name
	spec.Replicas = 1
	spec.Image = "strimzi/kafka-connect:latest"
	spec.ClusterType = clusterkey.KafkaConnect
	spec.BootstrapServers = "my-cluster-kafka:9092"
	spec.GroupID = "my-connect-cluster"
	spec.KeyConverterClass = "org.apache.kafka.connect.json.JsonConverter"
	spec.ValueConverterClass = "org.apache.kafka.connect.json.JsonConverter"
	return spec
}

var _ = Describe("testing: connect.go", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("testing: ConnectCreate()/ConnectDelete()", func() {
		It("should create the deployment before the service, and delete in reverse", func() {
			c := newTestClient()
			spec := minimalConnectSpec("ns", "my-connect")

			createPlan := composite.ConnectCreate(c, spec)
			Expect(createPlan[0].Name).To(Equal("connect-deployment"))
			Expect(createPlan[1].Name).To(Equal("connect-service"))
			Expect(createPlan.Run(ctx)).To(Succeed())

			deploy := &appsv1.Deployment{}
			Expect(c.Get(ctx, nsName("ns", "my-connect-connect"), deploy)).To(Succeed())

			deletePlan := composite.ConnectDelete(c, spec)
			Expect(deletePlan[0].Name).To(Equal("connect-service"))
			Expect(deletePlan[1].Name).To(Equal("connect-deployment"))
			Expect(deletePlan.Run(ctx)).To(Succeed())

			err := c.Get(ctx, nsName("ns", "my-connect-connect"), deploy)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("testing: ConnectUpdate()", func() {
		It("should omit the deployment step when nothing differs", func() {
			c := newTestClient()
			spec := minimalConnectSpec("ns", "my-connect")
			diff := clusterspec.ClusterDiff{}

			plan := composite.ConnectUpdate(c, spec, diff)
			Expect(plan).To(HaveLen(1))
			Expect(plan[0].Name).To(Equal("connect-service"))
		})
	})
})
