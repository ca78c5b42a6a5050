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

	"github.com/strimzi-go/cluster-operator/pkg/clusterspec"
	"github.com/strimzi-go/cluster-operator/pkg/names"
)

const connectRestPort = 8083

// BuildConnectDeployment returns the desired Kafka Connect worker deployment.
// Unlike the Kafka/Zookeeper stateful workload sets, Connect workers are
// stateless with respect to the orchestrator (offsets/config/status live in
// Kafka topics), so a Deployment is the right workload kind (§3).
func BuildConnectDeployment(spec clusterspec.ConnectSpec) (*appsv1.Deployment, error) {
	name := names.ConnectDeployment(spec.Name)
	labels := podSelector(name)
	clusterLabels := names.Labels(string(spec.ClusterType), spec.Name)

	probe := &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			HTTPGet: &corev1.HTTPGetAction{Path: "/", Port: intstr.FromInt(connectRestPort)},
		},
		InitialDelaySeconds: spec.HealthcheckInitialDelaySeconds,
		TimeoutSeconds:      spec.HealthcheckTimeoutSeconds,
	}

	deploy := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: spec.Namespace,
			Labels:    clusterLabels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ref(spec.Replicas),
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:  "connect",
							Image: spec.Image,
							Ports: []corev1.ContainerPort{{Name: "rest-api", ContainerPort: connectRestPort}},
							Env: []corev1.EnvVar{
								{Name: "KAFKA_CONNECT_BOOTSTRAP_SERVERS", Value: spec.BootstrapServers},
								{Name: "KAFKA_CONNECT_GROUP_ID", Value: spec.GroupID},
								{Name: "KAFKA_CONNECT_KEY_CONVERTER", Value: spec.KeyConverterClass},
								{Name: "KAFKA_CONNECT_VALUE_CONVERTER", Value: spec.ValueConverterClass},
								{Name: "KAFKA_CONNECT_KEY_CONVERTER_SCHEMAS_ENABLE", Value: fmt.Sprint(spec.KeyConverterSchemasEnable)},
								{Name: "KAFKA_CONNECT_VALUE_CONVERTER_SCHEMAS_ENABLE", Value: fmt.Sprint(spec.ValueConverterSchemasEnable)},
								{Name: "KAFKA_CONNECT_CONFIG_STORAGE_REPLICATION_FACTOR", Value: fmt.Sprint(spec.ConfigStorageReplicationFactor)},
								{Name: "KAFKA_CONNECT_OFFSET_STORAGE_REPLICATION_FACTOR", Value: fmt.Sprint(spec.OffsetStorageReplicationFactor)},
								{Name: "KAFKA_CONNECT_STATUS_STORAGE_REPLICATION_FACTOR", Value: fmt.Sprint(spec.StatusStorageReplicationFactor)},
							},
							ReadinessProbe: probe,
							LivenessProbe:  probe,
						},
					},
				},
			},
		},
	}

	if err := clusterspec.AnnotateConnect(deploy, spec); err != nil {
		return nil, err
	}
	return deploy, nil
}

// BuildConnectService returns the desired REST-access service fronting the
// Connect worker deployment's pods.
func BuildConnectService(spec clusterspec.ConnectSpec) *corev1.Service {
	name := names.ConnectService(spec.Name)
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: spec.Namespace,
			Labels:    names.Labels(string(spec.ClusterType), spec.Name),
		},
		Spec: corev1.ServiceSpec{
			Selector: podSelector(names.ConnectDeployment(spec.Name)),
			Ports: []corev1.ServicePort{
				{Name: "rest-api", Port: connectRestPort, TargetPort: intstr.FromInt(connectRestPort)},
			},
		},
	}
}
