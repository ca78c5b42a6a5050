/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package clusterspec holds the typed, in-memory representation of a desired
// Kafka or Kafka-Connect cluster, decoded from a configuration object's data
// map, together with the differ that compares a decoded (or recovered)
// ClusterSpec against another one and produces a ClusterDiff.
package clusterspec

import "github.com/strimzi-go/cluster-operator/pkg/clusterkey"

// StorageType discriminates the two StorageSpec variants.
type StorageType string

const (
	StorageEphemeral       StorageType = "ephemeral"
	StoragePersistentClaim StorageType = "persistent-claim"
)

// StorageSelector mirrors a label selector embedded in a persistent claim's
// storage spec (matchLabels only; the input schema does not support
// matchExpressions).
type StorageSelector struct {
	MatchLabels map[string]string `json:"matchLabels,omitempty"`
}

// StorageSpec is the tagged variant decoded from the "kafka-storage" /
// "zookeeper-storage" JSON data keys. Once a cluster exists, its Type is
// immutable: the differ never produces a plan that changes it (invariant I4).
type StorageSpec struct {
	Type StorageType `json:"type"`

	// Fields below apply only when Type == StoragePersistentClaim.
	Size         string           `json:"size,omitempty"`
	Class        string           `json:"class,omitempty"`
	Selector     *StorageSelector `json:"selector,omitempty"`
	DeleteClaim  bool             `json:"delete-claim,omitempty"`
}

// Equal reports whether two StorageSpecs are identical in every field that
// matters for diffing (DeleteClaim is a delete-time policy switch, not a
// pod-template-affecting field, but it is still part of cluster identity).
func (s StorageSpec) Equal(other StorageSpec) bool {
	if s.Type != other.Type {
		return false
	}
	if s.Type != StoragePersistentClaim {
		return true
	}
	if s.Size != other.Size || s.Class != other.Class || s.DeleteClaim != other.DeleteClaim {
		return false
	}
	return selectorsEqual(s.Selector, other.Selector)
}

func selectorsEqual(a, b *StorageSelector) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.MatchLabels) != len(b.MatchLabels) {
		return false
	}
	for k, v := range a.MatchLabels {
		if b.MatchLabels[k] != v {
			return false
		}
	}
	return true
}

// MetricsConfig is an opaque, structured set of metrics rules mounted into
// the workload's pods via a config object. Its JSON shape is defined by the
// metrics exporter, which is out of scope for this operator (§1); the engine
// only needs to detect whether the rules changed, not interpret them.
type MetricsConfig struct {
	// Raw holds the metrics-config JSON verbatim, so the differ can compare
	// byte-for-byte without needing to understand the exporter's schema.
	Raw string
	// Enabled is false when no metrics-config key was supplied at all (data
	// key omitted ⇒ no metrics, per §6).
	Enabled bool
}

// Equal reports whether two MetricsConfigs are the same.
func (m MetricsConfig) Equal(other MetricsConfig) bool {
	return m.Enabled == other.Enabled && m.Raw == other.Raw
}

// CommonSpec holds the fields shared by every cluster type variant.
type CommonSpec struct {
	Name                           string
	Namespace                      string
	Labels                         map[string]string
	Replicas                       int32
	Image                          string
	HealthcheckInitialDelaySeconds int32
	HealthcheckTimeoutSeconds      int32
}

// KafkaSpec is the decoded desired state of a Kafka cluster.
type KafkaSpec struct {
	CommonSpec

	ZookeeperReplicas                       int32
	ZookeeperImage                          string
	ZookeeperHealthcheckInitialDelaySeconds int32
	ZookeeperHealthcheckTimeoutSeconds      int32

	KafkaStorage     StorageSpec
	ZookeeperStorage StorageSpec

	KafkaMetricsConfig     MetricsConfig
	ZookeeperMetricsConfig MetricsConfig

	DefaultReplicationFactor            int32
	OffsetsTopicReplicationFactor       int32
	TransactionStateLogReplicationFactor int32
}

func (s KafkaSpec) Key() clusterkey.Key {
	return clusterkey.New(clusterkey.Kafka, s.Namespace, s.Name)
}

// ConnectSpec is the decoded desired state of a Kafka-Connect (or
// Kafka-Connect-with-build, i.e. S2I) cluster. The two variants share this
// type; build-specific details (source image, build strategy) are handled by
// the orchestrator's build subsystem and are out of scope here (§1).
type ConnectSpec struct {
	CommonSpec

	ClusterType clusterkey.Type // KafkaConnect or KafkaConnectS2I

	BootstrapServers string
	GroupID          string

	KeyConverterClass            string
	ValueConverterClass          string
	KeyConverterSchemasEnable    bool
	ValueConverterSchemasEnable  bool

	ConfigStorageReplicationFactor int32
	OffsetStorageReplicationFactor int32
	StatusStorageReplicationFactor int32
}

func (s ConnectSpec) Key() clusterkey.Key {
	return clusterkey.New(s.ClusterType, s.Namespace, s.Name)
}

// ClusterDiff records which facets changed between a current and a desired
// ClusterSpec. Composite operations use it to select the minimal sequence of
// resource reconciliations (§4.3).
type ClusterDiff struct {
	ScaleUp        bool
	ScaleDown      bool
	RollingUpdate  bool
	MetricsChanged bool
	// Different is true whenever any of the above is true, or any other
	// non-pod-template-affecting, non-metrics field changed (e.g. replication
	// factors, which take effect only for newly created topics and therefore
	// never require a rolling update or a scale).
	Different bool
}

// Empty reports whether the diff represents no change at all (law P5:
// diff(x, x) == Empty()).
func (d ClusterDiff) Empty() bool {
	return !d.Different
}
