/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package composite

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"

	"github.com/strimzi-go/cluster-operator/pkg/adapter"
	"github.com/strimzi-go/cluster-operator/pkg/clusterspec"
	"github.com/strimzi-go/cluster-operator/pkg/names"
	"github.com/strimzi-go/cluster-operator/pkg/operrors"
)

// KafkaCreate returns the ordered plan for bringing a brand-new Kafka
// cluster into existence: headless services, then client services, then
// metrics config objects, then the Zookeeper stateful workload set, then the
// Kafka stateful workload set (§4.3 "Create (Kafka)"). Claims are not
// reconciled directly; they are implicit children of the Kafka/Zookeeper
// stateful workload sets' volume claim templates.
func KafkaCreate(c adapter.Client, spec clusterspec.KafkaSpec) Plan {
	return Plan{
		reconcileService("zookeeper-headless-service", c, spec.Namespace, names.ZookeeperHeadlessService(spec.Name), adapter.BuildZookeeperHeadlessService(spec)),
		reconcileService("kafka-headless-service", c, spec.Namespace, names.KafkaHeadlessService(spec.Name), adapter.BuildKafkaHeadlessService(spec)),
		reconcileService("zookeeper-client-service", c, spec.Namespace, names.ZookeeperClientService(spec.Name), adapter.BuildZookeeperClientService(spec)),
		reconcileService("kafka-client-service", c, spec.Namespace, names.KafkaClientService(spec.Name), adapter.BuildKafkaClientService(spec)),
		reconcileConfigMap("zookeeper-metrics-config", c, spec.Namespace, names.ZookeeperMetricsConfig(spec.Name), adapter.BuildZookeeperMetricsConfig(spec)),
		reconcileConfigMap("kafka-metrics-config", c, spec.Namespace, names.KafkaMetricsConfig(spec.Name), adapter.BuildKafkaMetricsConfig(spec)),
		{
			Name: "zookeeper-stateful-set",
			Run: func(ctx context.Context) error {
				sts, err := adapter.BuildZookeeperStatefulSet(spec)
				if err != nil {
					return err
				}
				_, err = adapter.Reconcile[appsv1.StatefulSet](ctx, c, spec.Namespace, names.ZookeeperStatefulSet(spec.Name), sts, nil)
				return err
			},
		},
		{
			Name: "kafka-stateful-set",
			Run: func(ctx context.Context) error {
				sts, err := adapter.BuildKafkaStatefulSet(spec)
				if err != nil {
					return err
				}
				_, err = adapter.Reconcile[appsv1.StatefulSet](ctx, c, spec.Namespace, names.KafkaStatefulSet(spec.Name), sts, nil)
				return err
			},
		},
	}
}

// KafkaDelete returns the plan for tearing down a Kafka cluster: the reverse
// of creation order, with the stateful workload sets deleted first so the
// orchestrator stops scheduling new pods before DNS and client access
// disappear. Persistent claims are deleted only when the corresponding
// storage spec has deleteClaim = true (invariant I3).
func KafkaDelete(c adapter.Client, spec clusterspec.KafkaSpec) Plan {
	plan := Plan{
		{
			Name: "kafka-stateful-set",
			Run: func(ctx context.Context) error {
				_, err := adapter.Reconcile[appsv1.StatefulSet](ctx, c, spec.Namespace, names.KafkaStatefulSet(spec.Name), nil, nil)
				return err
			},
		},
		{
			Name: "zookeeper-stateful-set",
			Run: func(ctx context.Context) error {
				_, err := adapter.Reconcile[appsv1.StatefulSet](ctx, c, spec.Namespace, names.ZookeeperStatefulSet(spec.Name), nil, nil)
				return err
			},
		},
		reconcileConfigMap("kafka-metrics-config", c, spec.Namespace, names.KafkaMetricsConfig(spec.Name), nil),
		reconcileConfigMap("zookeeper-metrics-config", c, spec.Namespace, names.ZookeeperMetricsConfig(spec.Name), nil),
		reconcileService("kafka-client-service", c, spec.Namespace, names.KafkaClientService(spec.Name), nil),
		reconcileService("zookeeper-client-service", c, spec.Namespace, names.ZookeeperClientService(spec.Name), nil),
		reconcileService("kafka-headless-service", c, spec.Namespace, names.KafkaHeadlessService(spec.Name), nil),
		reconcileService("zookeeper-headless-service", c, spec.Namespace, names.ZookeeperHeadlessService(spec.Name), nil),
	}

	if spec.KafkaStorage.DeleteClaim {
		plan = append(plan, deleteClaimsStep("kafka-storage-claims", c, spec.Namespace, spec.Name, spec.Replicas, names.KafkaStorageClaim))
	}
	if spec.ZookeeperStorage.DeleteClaim {
		plan = append(plan, deleteClaimsStep("zookeeper-storage-claims", c, spec.Namespace, spec.Name, spec.ZookeeperReplicas, names.ZookeeperStorageClaim))
	}
	return plan
}

// KafkaUpdate returns the plan for reconciling an existing Kafka cluster
// whose decoded desired spec differs from its recovered current spec,
// following §4.3 "Update": metrics config objects first, then services,
// then the stateful workload sets themselves — omitted entirely when the
// diff is metrics-only, since no rolling update is required in that case.
// On scale-down with deleteClaim = true, the vacated claims are deleted only
// after the Kafka stateful workload set reports its replica count has
// converged (resolving the open question in §9 in favor of waiting).
func KafkaUpdate(c adapter.Client, current, desired clusterspec.KafkaSpec, diff clusterspec.ClusterDiff) (Plan, error) {
	if diff.Different && desired.KafkaStorage.Type != current.KafkaStorage.Type {
		reason := fmt.Sprintf("kafka storage type change from %q to %q is not permitted", current.KafkaStorage.Type, desired.KafkaStorage.Type)
		return nil, operrors.NewIllegalTransition(reason)
	}
	if diff.Different && desired.ZookeeperStorage.Type != current.ZookeeperStorage.Type {
		reason := fmt.Sprintf("zookeeper storage type change from %q to %q is not permitted", current.ZookeeperStorage.Type, desired.ZookeeperStorage.Type)
		return nil, operrors.NewIllegalTransition(reason)
	}

	plan := Plan{
		reconcileConfigMap("zookeeper-metrics-config", c, desired.Namespace, names.ZookeeperMetricsConfig(desired.Name), adapter.BuildZookeeperMetricsConfig(desired)),
		reconcileConfigMap("kafka-metrics-config", c, desired.Namespace, names.KafkaMetricsConfig(desired.Name), adapter.BuildKafkaMetricsConfig(desired)),
		reconcileService("zookeeper-headless-service", c, desired.Namespace, names.ZookeeperHeadlessService(desired.Name), adapter.BuildZookeeperHeadlessService(desired)),
		reconcileService("kafka-headless-service", c, desired.Namespace, names.KafkaHeadlessService(desired.Name), adapter.BuildKafkaHeadlessService(desired)),
		reconcileService("zookeeper-client-service", c, desired.Namespace, names.ZookeeperClientService(desired.Name), adapter.BuildZookeeperClientService(desired)),
		reconcileService("kafka-client-service", c, desired.Namespace, names.KafkaClientService(desired.Name), adapter.BuildKafkaClientService(desired)),
	}

	if !diff.Different {
		return plan, nil
	}

	onlyMetrics := diff.MetricsChanged && !diff.ScaleUp && !diff.ScaleDown && !diff.RollingUpdate
	if onlyMetrics {
		return plan, nil
	}

	plan = append(plan,
		Step{
			Name: "zookeeper-stateful-set",
			Run: func(ctx context.Context) error {
				sts, err := adapter.BuildZookeeperStatefulSet(desired)
				if err != nil {
					return err
				}
				_, err = adapter.Reconcile[appsv1.StatefulSet](ctx, c, desired.Namespace, names.ZookeeperStatefulSet(desired.Name), sts, nil)
				return err
			},
		},
		Step{
			Name: "kafka-stateful-set",
			Run: func(ctx context.Context) error {
				sts, err := adapter.BuildKafkaStatefulSet(desired)
				if err != nil {
					return err
				}
				_, err = adapter.Reconcile[appsv1.StatefulSet](ctx, c, desired.Namespace, names.KafkaStatefulSet(desired.Name), sts, nil)
				return err
			},
		},
	)

	if diff.ScaleDown && desired.KafkaStorage.DeleteClaim {
		plan = append(plan, Step{
			Name: "kafka-storage-claims-scale-down",
			Run: func(ctx context.Context) error {
				converged, err := adapter.StatefulSetReplicasConverged(ctx, c, desired.Namespace, names.KafkaStatefulSet(desired.Name))
				if err != nil {
					return err
				}
				if !converged {
					return operrors.NewTransient(errors.New("kafka stateful workload set has not yet converged to its new replica count"))
				}
				return deleteVacatedClaims(ctx, c, desired.Namespace, desired.Name, desired.Replicas, current.Replicas, names.KafkaStorageClaim)
			},
		})
	}
	if diff.ScaleDown && desired.ZookeeperStorage.DeleteClaim {
		plan = append(plan, Step{
			Name: "zookeeper-storage-claims-scale-down",
			Run: func(ctx context.Context) error {
				converged, err := adapter.StatefulSetReplicasConverged(ctx, c, desired.Namespace, names.ZookeeperStatefulSet(desired.Name))
				if err != nil {
					return err
				}
				if !converged {
					return operrors.NewTransient(errors.New("zookeeper stateful workload set has not yet converged to its new replica count"))
				}
				return deleteVacatedClaims(ctx, c, desired.Namespace, desired.Name, desired.ZookeeperReplicas, current.ZookeeperReplicas, names.ZookeeperStorageClaim)
			},
		})
	}

	return plan, nil
}

func reconcileService(name string, c adapter.Client, namespace, resourceName string, desired *corev1.Service) Step {
	return Step{
		Name: name,
		Run: func(ctx context.Context) error {
			_, err := adapter.Reconcile[corev1.Service](ctx, c, namespace, resourceName, desired, func(existing, desired *corev1.Service) {
				desired.Spec.ClusterIP = existing.Spec.ClusterIP
			})
			return err
		},
	}
}

func reconcileConfigMap(name string, c adapter.Client, namespace, resourceName string, desired *corev1.ConfigMap) Step {
	return Step{
		Name: name,
		Run: func(ctx context.Context) error {
			_, err := adapter.Reconcile[corev1.ConfigMap](ctx, c, namespace, resourceName, desired, nil)
			return err
		},
	}
}

func deleteClaimsStep(name string, c adapter.Client, namespace, cluster string, replicas int32, claimName func(string, int) string) Step {
	return Step{
		Name: name,
		Run: func(ctx context.Context) error {
			return deleteVacatedClaims(ctx, c, namespace, cluster, 0, replicas, claimName)
		},
	}
}

// deleteVacatedClaims deletes claims for indices in [newReplicas, oldReplicas),
// i.e. the ones a scale-down (or full teardown, with newReplicas = 0) leaves
// behind.
func deleteVacatedClaims(ctx context.Context, c adapter.Client, namespace, cluster string, newReplicas, oldReplicas int32, claimName func(string, int) string) error {
	for i := int(newReplicas); i < int(oldReplicas); i++ {
		if _, err := adapter.Reconcile[corev1.PersistentVolumeClaim](ctx, c, namespace, claimName(cluster, i), nil, nil); err != nil {
			return err
		}
	}
	return nil
}
