/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package adapter

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/strimzi-go/cluster-operator/pkg/clusterkey"
	"github.com/strimzi-go/cluster-operator/pkg/clusterspec"
	"github.com/strimzi-go/cluster-operator/pkg/names"
	"github.com/strimzi-go/cluster-operator/pkg/operrors"
)

const (
	kafkaClientPort     = 9092
	kafkaReplicationPort = 9091
	zookeeperClientPort = 2181
	zookeeperPeerPort   = 2888
	zookeeperLeaderPort = 3888
)

// BuildKafkaHeadlessService returns the desired per-pod DNS service for the
// Kafka broker stateful workload set.
func BuildKafkaHeadlessService(spec clusterspec.KafkaSpec) *corev1.Service {
	labels := names.Labels(string(clusterkey.Kafka), spec.Name)
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      names.KafkaHeadlessService(spec.Name),
			Namespace: spec.Namespace,
			Labels:    labels,
		},
		Spec: corev1.ServiceSpec{
			ClusterIP: corev1.ClusterIPNone,
			Selector:  podSelector(names.KafkaStatefulSet(spec.Name)),
			Ports: []corev1.ServicePort{
				{Name: "replication", Port: kafkaReplicationPort, TargetPort: intstr.FromInt(kafkaReplicationPort)},
				{Name: "clients", Port: kafkaClientPort, TargetPort: intstr.FromInt(kafkaClientPort)},
			},
		},
	}
}

// BuildKafkaClientService returns the desired client-access service for Kafka.
func BuildKafkaClientService(spec clusterspec.KafkaSpec) *corev1.Service {
	labels := names.Labels(string(clusterkey.Kafka), spec.Name)
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      names.KafkaClientService(spec.Name),
			Namespace: spec.Namespace,
			Labels:    labels,
		},
		Spec: corev1.ServiceSpec{
			Selector: podSelector(names.KafkaStatefulSet(spec.Name)),
			Ports: []corev1.ServicePort{
				{Name: "clients", Port: kafkaClientPort, TargetPort: intstr.FromInt(kafkaClientPort)},
			},
		},
	}
}

// BuildZookeeperHeadlessService returns the desired per-pod DNS service for Zookeeper.
func BuildZookeeperHeadlessService(spec clusterspec.KafkaSpec) *corev1.Service {
	labels := names.Labels(string(clusterkey.Kafka), spec.Name)
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      names.ZookeeperHeadlessService(spec.Name),
			Namespace: spec.Namespace,
			Labels:    labels,
		},
		Spec: corev1.ServiceSpec{
			ClusterIP: corev1.ClusterIPNone,
			Selector:  podSelector(names.ZookeeperStatefulSet(spec.Name)),
			Ports: []corev1.ServicePort{
				{Name: "peer", Port: zookeeperPeerPort, TargetPort: intstr.FromInt(zookeeperPeerPort)},
				{Name: "leader-election", Port: zookeeperLeaderPort, TargetPort: intstr.FromInt(zookeeperLeaderPort)},
				{Name: "clients", Port: zookeeperClientPort, TargetPort: intstr.FromInt(zookeeperClientPort)},
			},
		},
	}
}

// BuildZookeeperClientService returns the desired client-access service for Zookeeper.
func BuildZookeeperClientService(spec clusterspec.KafkaSpec) *corev1.Service {
	labels := names.Labels(string(clusterkey.Kafka), spec.Name)
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      names.ZookeeperClientService(spec.Name),
			Namespace: spec.Namespace,
			Labels:    labels,
		},
		Spec: corev1.ServiceSpec{
			Selector: podSelector(names.ZookeeperStatefulSet(spec.Name)),
			Ports: []corev1.ServicePort{
				{Name: "clients", Port: zookeeperClientPort, TargetPort: intstr.FromInt(zookeeperClientPort)},
			},
		},
	}
}

// BuildKafkaMetricsConfig returns the desired Kafka metrics config object, or
// nil if no metrics config was supplied (omit ⇒ no metrics, §6).
func BuildKafkaMetricsConfig(spec clusterspec.KafkaSpec) *corev1.ConfigMap {
	if !spec.KafkaMetricsConfig.Enabled {
		return nil
	}
	return metricsConfigMap(names.KafkaMetricsConfig(spec.Name), spec.Namespace, string(clusterkey.Kafka), spec.Name, spec.KafkaMetricsConfig.Raw)
}

// BuildZookeeperMetricsConfig returns the desired Zookeeper metrics config object.
func BuildZookeeperMetricsConfig(spec clusterspec.KafkaSpec) *corev1.ConfigMap {
	if !spec.ZookeeperMetricsConfig.Enabled {
		return nil
	}
	return metricsConfigMap(names.ZookeeperMetricsConfig(spec.Name), spec.Namespace, string(clusterkey.Kafka), spec.Name, spec.ZookeeperMetricsConfig.Raw)
}

func metricsConfigMap(name, namespace, clusterType, clusterName, rules string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    names.Labels(clusterType, clusterName),
		},
		Data: map[string]string{"metrics-config.json": rules},
	}
}

// BuildZookeeperStatefulSet returns the desired Zookeeper stateful workload set.
func BuildZookeeperStatefulSet(spec clusterspec.KafkaSpec) (*appsv1.StatefulSet, error) {
	name := names.ZookeeperStatefulSet(spec.Name)
	labels := podSelector(name)
	probe := &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			Exec: &corev1.ExecAction{Command: []string{"/opt/zookeeper/bin/zookeeper-ready.sh"}},
		},
		InitialDelaySeconds: spec.ZookeeperHealthcheckInitialDelaySeconds,
		TimeoutSeconds:      spec.ZookeeperHealthcheckTimeoutSeconds,
	}

	volumeMounts, volumes, claimTemplates, err := storageVolumes("zookeeper-storage", spec.ZookeeperStorage, names.Labels(string(clusterkey.Kafka), spec.Name))
	if err != nil {
		return nil, err
	}

	sts := &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: spec.Namespace,
			Labels:    names.Labels(string(clusterkey.Kafka), spec.Name),
		},
		Spec: appsv1.StatefulSetSpec{
			ServiceName: names.ZookeeperHeadlessService(spec.Name),
			Replicas:    ref(spec.ZookeeperReplicas),
			Selector:    &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:           "zookeeper",
							Image:          spec.ZookeeperImage,
							Ports:          []corev1.ContainerPort{{Name: "clients", ContainerPort: zookeeperClientPort}, {Name: "peer", ContainerPort: zookeeperPeerPort}, {Name: "leader-election", ContainerPort: zookeeperLeaderPort}},
							ReadinessProbe: probe,
							LivenessProbe:  probe,
							VolumeMounts:   volumeMounts,
						},
					},
					Volumes: volumes,
				},
			},
			VolumeClaimTemplates: claimTemplates,
		},
	}
	return sts, nil
}

// BuildKafkaStatefulSet returns the desired Kafka broker stateful workload set.
func BuildKafkaStatefulSet(spec clusterspec.KafkaSpec) (*appsv1.StatefulSet, error) {
	name := names.KafkaStatefulSet(spec.Name)
	labels := podSelector(name)
	probe := &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			Exec: &corev1.ExecAction{Command: []string{"/opt/kafka/bin/kafka-ready.sh"}},
		},
		InitialDelaySeconds: spec.HealthcheckInitialDelaySeconds,
		TimeoutSeconds:      spec.HealthcheckTimeoutSeconds,
	}

	volumeMounts, volumes, claimTemplates, err := storageVolumes("kafka-storage", spec.KafkaStorage, names.Labels(string(clusterkey.Kafka), spec.Name))
	if err != nil {
		return nil, err
	}
	if spec.KafkaMetricsConfig.Enabled {
		volumeMounts = append(volumeMounts, corev1.VolumeMount{Name: "metrics-config", MountPath: "/opt/kafka/custom-config"})
		volumes = append(volumes, corev1.Volume{
			Name: "metrics-config",
			VolumeSource: corev1.VolumeSource{
				ConfigMap: &corev1.ConfigMapVolumeSource{LocalObjectReference: corev1.LocalObjectReference{Name: names.KafkaMetricsConfig(spec.Name)}},
			},
		})
	}

	sts := &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: spec.Namespace,
			Labels:    names.Labels(string(clusterkey.Kafka), spec.Name),
		},
		Spec: appsv1.StatefulSetSpec{
			ServiceName: names.KafkaHeadlessService(spec.Name),
			Replicas:    ref(spec.Replicas),
			Selector:    &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:  "kafka",
							Image: spec.Image,
							Ports: []corev1.ContainerPort{
								{Name: "replication", ContainerPort: kafkaReplicationPort},
								{Name: "clients", ContainerPort: kafkaClientPort},
							},
							Env: []corev1.EnvVar{
								{Name: "KAFKA_DEFAULT_REPLICATION_FACTOR", Value: fmt.Sprint(spec.DefaultReplicationFactor)},
								{Name: "KAFKA_OFFSETS_TOPIC_REPLICATION_FACTOR", Value: fmt.Sprint(spec.OffsetsTopicReplicationFactor)},
								{Name: "KAFKA_TRANSACTION_STATE_LOG_REPLICATION_FACTOR", Value: fmt.Sprint(spec.TransactionStateLogReplicationFactor)},
								{Name: "KAFKA_ZOOKEEPER_CONNECT", Value: fmt.Sprintf("%s:%d", names.ZookeeperClientService(spec.Name), zookeeperClientPort)},
							},
							ReadinessProbe: probe,
							LivenessProbe:  probe,
							VolumeMounts:   volumeMounts,
						},
					},
					Volumes: volumes,
				},
			},
			VolumeClaimTemplates: claimTemplates,
		},
	}

	if err := clusterspec.AnnotateKafka(sts, spec); err != nil {
		return nil, err
	}
	return sts, nil
}

func podSelector(stsName string) map[string]string {
	return map[string]string{"statefulset": stsName}
}

// storageVolumes returns the volume mounts, ephemeral volumes and persistent
// volume claim templates implied by a StorageSpec. Ephemeral storage uses an
// EmptyDir volume; persistent-claim storage declares a VolumeClaimTemplate,
// whose per-pod claims the orchestrator creates following the
// "<prefix>-<stsName>-<i>" naming convention the engine also uses for its
// own bookkeeping (§3).
func storageVolumes(volumeName string, storage clusterspec.StorageSpec, labels map[string]string) ([]corev1.VolumeMount, []corev1.Volume, []corev1.PersistentVolumeClaim, error) {
	mount := corev1.VolumeMount{Name: volumeName, MountPath: "/var/lib/" + volumeName}

	switch storage.Type {
	case clusterspec.StorageEphemeral:
		return []corev1.VolumeMount{mount}, []corev1.Volume{{
			Name:         volumeName,
			VolumeSource: corev1.VolumeSource{EmptyDir: &corev1.EmptyDirVolumeSource{}},
		}}, nil, nil
	case clusterspec.StoragePersistentClaim:
		quantity, err := parseQuantity(storage.Size)
		if err != nil {
			return nil, nil, nil, err
		}
		claim := corev1.PersistentVolumeClaim{
			ObjectMeta: metav1.ObjectMeta{Name: volumeName, Labels: labels},
			Spec: corev1.PersistentVolumeClaimSpec{
				AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce},
				Resources:   corev1.VolumeResourceRequirements{Requests: corev1.ResourceList{corev1.ResourceStorage: quantity}},
			},
		}
		if storage.Class != "" {
			claim.Spec.StorageClassName = &storage.Class
		}
		if storage.Selector != nil {
			claim.Spec.Selector = &metav1.LabelSelector{MatchLabels: storage.Selector.MatchLabels}
		}
		return []corev1.VolumeMount{mount}, nil, []corev1.PersistentVolumeClaim{claim}, nil
	default:
		return nil, nil, nil, operrors.NewDecode(fmt.Errorf("unknown storage type %q", storage.Type))
	}
}
