/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package names computes the deterministic orchestrator resource names the
// engine must agree on across decode, diff and composite-operation apply, so
// that two independent reconciliations of the same cluster always name the
// same set of objects (invariant I1/I2 in the cluster model).
package names

import "fmt"

// KafkaStatefulSet returns the name of the Kafka broker stateful workload set.
func KafkaStatefulSet(cluster string) string {
	return cluster + "-kafka"
}

// ZookeeperStatefulSet returns the name of the Zookeeper stateful workload set.
func ZookeeperStatefulSet(cluster string) string {
	return cluster + "-zookeeper"
}

// KafkaHeadlessService returns the name of the Kafka per-pod DNS service.
func KafkaHeadlessService(cluster string) string {
	return cluster + "-kafka-headless"
}

// ZookeeperHeadlessService returns the name of the Zookeeper per-pod DNS service.
func ZookeeperHeadlessService(cluster string) string {
	return cluster + "-zookeeper-headless"
}

// KafkaClientService returns the name of the Kafka client-access service.
func KafkaClientService(cluster string) string {
	return cluster + "-kafka"
}

// ZookeeperClientService returns the name of the Zookeeper client-access service.
func ZookeeperClientService(cluster string) string {
	return cluster + "-zookeeper"
}

// KafkaMetricsConfig returns the name of the Kafka metrics config object.
func KafkaMetricsConfig(cluster string) string {
	return cluster + "-kafka-metrics-config"
}

// ZookeeperMetricsConfig returns the name of the Zookeeper metrics config object.
func ZookeeperMetricsConfig(cluster string) string {
	return cluster + "-zookeeper-metrics-config"
}

// ConnectDeployment returns the name of the Kafka Connect worker deployment.
func ConnectDeployment(cluster string) string {
	return cluster + "-connect"
}

// ConnectService returns the name of the Kafka Connect REST service.
func ConnectService(cluster string) string {
	return cluster + "-connect"
}

// KafkaStorageClaim returns the name of the per-broker persistent claim for
// broker index i.
func KafkaStorageClaim(cluster string, i int) string {
	return fmt.Sprintf("kafka-storage-%s-kafka-%d", cluster, i)
}

// ZookeeperStorageClaim returns the name of the per-node persistent claim for
// Zookeeper node index i.
func ZookeeperStorageClaim(cluster string, i int) string {
	return fmt.Sprintf("zookeeper-storage-%s-zookeeper-%d", cluster, i)
}

// Labels returns the label set every engine-owned resource for clusterName
// must carry, per invariant I1: clusterLabel and clusterType.
func Labels(clusterType, clusterName string) map[string]string {
	return map[string]string{
		LabelCluster:     clusterName,
		LabelClusterType: clusterType,
	}
}

const (
	// LabelCluster is the label key whose value is the owning cluster's name.
	LabelCluster = "clusterLabel"
	// LabelClusterType is the label key whose value is the cluster's type.
	LabelClusterType = "clusterType"
)
