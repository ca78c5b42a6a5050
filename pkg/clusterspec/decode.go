/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package clusterspec

import (
	"strconv"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/strimzi-go/cluster-operator/pkg/clusterkey"
	"github.com/strimzi-go/cluster-operator/pkg/operrors"
)

// ConfigObject is the minimal view of a configuration object the decoder
// needs: its identity, labels and string-valued data map. Production callers
// satisfy this from the orchestrator's native config-object type through the
// resource adapter; tests construct it directly.
type ConfigObject struct {
	Name      string
	Namespace string
	Labels    map[string]string
	Data      map[string]string
}

// defaults table, see spec §6.
const (
	defaultKafkaNodes                   = 3
	defaultKafkaImage                   = "strimzi/kafka:latest"
	defaultKafkaHealthcheckDelay        = 15
	defaultKafkaHealthcheckTimeout      = 5
	defaultZookeeperNodes               = 3
	defaultZookeeperImage               = "strimzi/zookeeper:latest"
	defaultZookeeperHealthcheckDelay    = 15
	defaultZookeeperHealthcheckTimeout  = 5
	defaultReplicationFactor            = 3
	defaultOffsetsTopicReplicationFactor = 3
	defaultTxnStateLogReplicationFactor  = 3

	defaultConnectNodes               = 1
	defaultConnectImage               = "strimzi/kafka-connect:latest"
	defaultConnectHealthcheckDelay    = 60
	defaultConnectHealthcheckTimeout  = 5
	defaultConnectBootstrapServers   = "my-cluster-kafka:9092"
	defaultConnectGroupID            = "my-connect-cluster"
	defaultConnectStorageReplication = 3
)

// DecodeKafka parses a Kafka configuration object's data map into a
// KafkaSpec. Decoding is pure (law P4): calling it twice on the same input
// yields equal specs.
func DecodeKafka(obj ConfigObject) (KafkaSpec, error) {
	spec := KafkaSpec{
		CommonSpec: CommonSpec{
			Name:      obj.Name,
			Namespace: obj.Namespace,
			Labels:    obj.Labels,
		},
	}

	var err error
	if spec.Replicas, err = intField(obj.Data, "kafka-nodes", defaultKafkaNodes); err != nil {
		return spec, err
	}
	spec.Image = stringField(obj.Data, "kafka-image", defaultKafkaImage)
	if spec.HealthcheckInitialDelaySeconds, err = intField(obj.Data, "kafka-healthcheck-delay", defaultKafkaHealthcheckDelay); err != nil {
		return spec, err
	}
	if spec.HealthcheckTimeoutSeconds, err = intField(obj.Data, "kafka-healthcheck-timeout", defaultKafkaHealthcheckTimeout); err != nil {
		return spec, err
	}

	if spec.ZookeeperReplicas, err = intField(obj.Data, "zookeeper-nodes", defaultZookeeperNodes); err != nil {
		return spec, err
	}
	spec.ZookeeperImage = stringField(obj.Data, "zookeeper-image", defaultZookeeperImage)
	if spec.ZookeeperHealthcheckInitialDelaySeconds, err = intField(obj.Data, "zookeeper-healthcheck-delay", defaultZookeeperHealthcheckDelay); err != nil {
		return spec, err
	}
	if spec.ZookeeperHealthcheckTimeoutSeconds, err = intField(obj.Data, "zookeeper-healthcheck-timeout", defaultZookeeperHealthcheckTimeout); err != nil {
		return spec, err
	}

	if spec.DefaultReplicationFactor, err = intField(obj.Data, "KAFKA_DEFAULT_REPLICATION_FACTOR", defaultReplicationFactor); err != nil {
		return spec, err
	}
	if spec.OffsetsTopicReplicationFactor, err = intField(obj.Data, "KAFKA_OFFSETS_TOPIC_REPLICATION_FACTOR", defaultOffsetsTopicReplicationFactor); err != nil {
		return spec, err
	}
	if spec.TransactionStateLogReplicationFactor, err = intField(obj.Data, "KAFKA_TRANSACTION_STATE_LOG_REPLICATION_FACTOR", defaultTxnStateLogReplicationFactor); err != nil {
		return spec, err
	}

	kafkaStorage, ok := obj.Data["kafka-storage"]
	if !ok {
		return spec, operrors.NewDecode(errors.New(`missing required field "kafka-storage"`))
	}
	if spec.KafkaStorage, err = decodeStorage(kafkaStorage); err != nil {
		return spec, operrors.NewDecode(errors.Wrap(err, `decoding "kafka-storage"`))
	}

	zookeeperStorage, ok := obj.Data["zookeeper-storage"]
	if !ok {
		return spec, operrors.NewDecode(errors.New(`missing required field "zookeeper-storage"`))
	}
	if spec.ZookeeperStorage, err = decodeStorage(zookeeperStorage); err != nil {
		return spec, operrors.NewDecode(errors.Wrap(err, `decoding "zookeeper-storage"`))
	}

	spec.KafkaMetricsConfig = decodeMetrics(obj.Data["kafka-metrics-config"])
	spec.ZookeeperMetricsConfig = decodeMetrics(obj.Data["zookeeper-metrics-config"])

	return spec, nil
}

// DecodeConnect parses a Kafka-Connect configuration object's data map into a
// ConnectSpec. clusterType must be clusterkey.KafkaConnect or
// clusterkey.KafkaConnectS2I; the data schema is the same for both.
func DecodeConnect(obj ConfigObject, clusterType clusterkey.Type) (ConnectSpec, error) {
	spec := ConnectSpec{
		CommonSpec: CommonSpec{
			Name:      obj.Name,
			Namespace: obj.Namespace,
			Labels:    obj.Labels,
		},
		ClusterType: clusterType,
	}

	var err error
	if spec.Replicas, err = intField(obj.Data, "nodes", defaultConnectNodes); err != nil {
		return spec, err
	}
	spec.Image = stringField(obj.Data, "image", defaultConnectImage)
	if spec.HealthcheckInitialDelaySeconds, err = intField(obj.Data, "healthcheck-delay", defaultConnectHealthcheckDelay); err != nil {
		return spec, err
	}
	if spec.HealthcheckTimeoutSeconds, err = intField(obj.Data, "healthcheck-timeout", defaultConnectHealthcheckTimeout); err != nil {
		return spec, err
	}

	spec.BootstrapServers = stringField(obj.Data, "KAFKA_CONNECT_BOOTSTRAP_SERVERS", defaultConnectBootstrapServers)
	spec.GroupID = stringField(obj.Data, "KAFKA_CONNECT_GROUP_ID", defaultConnectGroupID)

	spec.KeyConverterClass = stringField(obj.Data, "KAFKA_CONNECT_KEY_CONVERTER", "org.apache.kafka.connect.json.JsonConverter")
	spec.ValueConverterClass = stringField(obj.Data, "KAFKA_CONNECT_VALUE_CONVERTER", "org.apache.kafka.connect.json.JsonConverter")
	if spec.KeyConverterSchemasEnable, err = boolField(obj.Data, "KAFKA_CONNECT_KEY_CONVERTER_SCHEMAS_ENABLE", false); err != nil {
		return spec, err
	}
	if spec.ValueConverterSchemasEnable, err = boolField(obj.Data, "KAFKA_CONNECT_VALUE_CONVERTER_SCHEMAS_ENABLE", false); err != nil {
		return spec, err
	}

	if spec.ConfigStorageReplicationFactor, err = intField(obj.Data, "KAFKA_CONNECT_CONFIG_STORAGE_REPLICATION_FACTOR", defaultConnectStorageReplication); err != nil {
		return spec, err
	}
	if spec.OffsetStorageReplicationFactor, err = intField(obj.Data, "KAFKA_CONNECT_OFFSET_STORAGE_REPLICATION_FACTOR", defaultConnectStorageReplication); err != nil {
		return spec, err
	}
	if spec.StatusStorageReplicationFactor, err = intField(obj.Data, "KAFKA_CONNECT_STATUS_STORAGE_REPLICATION_FACTOR", defaultConnectStorageReplication); err != nil {
		return spec, err
	}

	return spec, nil
}

func decodeStorage(raw string) (StorageSpec, error) {
	var spec StorageSpec
	if err := yaml.Unmarshal([]byte(raw), &spec); err != nil {
		return spec, err
	}
	switch spec.Type {
	case StorageEphemeral, StoragePersistentClaim:
	default:
		return spec, errors.Errorf("unknown storage type %q", spec.Type)
	}
	if spec.Type == StoragePersistentClaim && spec.Size == "" {
		return spec, errors.New(`persistent-claim storage requires "size"`)
	}
	return spec, nil
}

func decodeMetrics(raw string) MetricsConfig {
	if raw == "" {
		return MetricsConfig{Enabled: false}
	}
	return MetricsConfig{Enabled: true, Raw: raw}
}

func stringField(data map[string]string, key, def string) string {
	if v, ok := data[key]; ok && v != "" {
		return v
	}
	return def
}

func intField(data map[string]string, key string, def int32) (int32, error) {
	v, ok := data[key]
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, operrors.NewDecode(errors.Wrapf(err, "parsing field %q", key))
	}
	return int32(n), nil
}

func boolField(data map[string]string, key string, def bool) (bool, error) {
	v, ok := data[key]
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, operrors.NewDecode(errors.Wrapf(err, "parsing field %q", key))
	}
	return b, nil
}
