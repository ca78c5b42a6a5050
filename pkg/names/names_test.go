/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package names_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/strimzi-go/cluster-operator/pkg/names"
)

var _ = Describe("testing: names.go", func() {
	DescribeTable("resource name builders",
		func(got, want string) {
			Expect(got).To(Equal(want))
		},
		Entry("kafka sts", names.KafkaStatefulSet("my-cluster"), "my-cluster-kafka"),
		Entry("zookeeper sts", names.ZookeeperStatefulSet("my-cluster"), "my-cluster-zookeeper"),
		Entry("kafka headless svc", names.KafkaHeadlessService("my-cluster"), "my-cluster-kafka-headless"),
		Entry("zookeeper headless svc", names.ZookeeperHeadlessService("my-cluster"), "my-cluster-zookeeper-headless"),
		Entry("kafka client svc", names.KafkaClientService("my-cluster"), "my-cluster-kafka"),
		Entry("zookeeper client svc", names.ZookeeperClientService("my-cluster"), "my-cluster-zookeeper"),
		Entry("kafka metrics config", names.KafkaMetricsConfig("my-cluster"), "my-cluster-kafka-metrics-config"),
		Entry("zookeeper metrics config", names.ZookeeperMetricsConfig("my-cluster"), "my-cluster-zookeeper-metrics-config"),
		Entry("connect deployment", names.ConnectDeployment("my-cluster"), "my-cluster-connect"),
		Entry("connect service", names.ConnectService("my-cluster"), "my-cluster-connect"),
		Entry("kafka storage claim", names.KafkaStorageClaim("my-cluster", 2), "kafka-storage-my-cluster-kafka-2"),
		Entry("zookeeper storage claim", names.ZookeeperStorageClaim("my-cluster", 0), "zookeeper-storage-my-cluster-zookeeper-0"),
	)

	// Locks in the naming property the composite layer's vacated-claim
	// cleanup depends on: a storage claim's name must equal
	// "<claimTemplateName>-<statefulSetName>-<ordinal>", the convention
	// Kubernetes itself uses for StatefulSet volume claim templates.
	Context("testing: storage claim naming convention", func() {
		It("matches <claimTemplateName>-<statefulSetName>-<ordinal>", func() {
			cluster := "my-cluster"
			sts := names.KafkaStatefulSet(cluster)
			Expect(names.KafkaStorageClaim(cluster, 3)).To(Equal("kafka-storage-" + sts + "-3"))
		})
	})

	Context("testing: Labels()", func() {
		It("sets the cluster and cluster-type labels", func() {
			labels := names.Labels("kafka", "my-cluster")
			Expect(labels[names.LabelCluster]).To(Equal("my-cluster"))
			Expect(labels[names.LabelClusterType]).To(Equal("kafka"))
		})
	})
})
