/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"

	"github.com/sap/go-generics/sets"
	"github.com/sap/go-generics/slices"

	"github.com/strimzi-go/cluster-operator/pkg/adapter"
	"github.com/strimzi-go/cluster-operator/pkg/clusterkey"
	"github.com/strimzi-go/cluster-operator/pkg/metrics"
	"github.com/strimzi-go/cluster-operator/pkg/names"
)

// sweep runs one periodic full reconciliation pass (§4.5 "Periodic sweep"):
// for every supported cluster type, enumerate label-selected configuration
// objects and label-selected representative resources in the watched
// namespace, partition by name-set, and dispatch each element to its
// corresponding operation.
func (e *Engine) sweep(ctx context.Context) error {
	start := time.Now()
	var result *multierror.Error

	for _, clusterType := range clusterkey.All {
		if err := e.sweepClusterType(ctx, clusterType); err != nil {
			result = multierror.Append(result, fmt.Errorf("sweeping cluster type %s: %w", clusterType, err))
		}
	}

	outcome := "success"
	if result.ErrorOrNil() != nil {
		outcome = "failure"
	}
	metrics.Sweeps.WithLabelValues(outcome).Inc()
	metrics.SweepDuration.Observe(time.Since(start).Seconds())

	if result.ErrorOrNil() == nil {
		e.markSweepOK()
		return nil
	}
	return result.ErrorOrNil()
}

func (e *Engine) sweepClusterType(ctx context.Context, clusterType clusterkey.Type) error {
	configNames, err := e.listConfigObjectNames(ctx, clusterType)
	if err != nil {
		return err
	}
	resourceNames, err := e.listResourceNames(ctx, clusterType)
	if err != nil {
		return err
	}

	configSet := sets.New[string]()
	for _, n := range configNames {
		sets.Add(configSet, n)
	}
	resourceSet := sets.New[string]()
	for _, n := range resourceNames {
		sets.Add(resourceSet, n)
	}

	add := slices.Select(configNames, func(n string) bool { return !sets.Contains(resourceSet, n) })
	update := slices.Select(configNames, func(n string) bool { return sets.Contains(resourceSet, n) })
	del := slices.Select(resourceNames, func(n string) bool { return !sets.Contains(configSet, n) })

	for _, n := range add {
		e.OnConfigObjectEvent(clusterType, e.config.Namespace, n)
	}
	for _, n := range update {
		e.OnConfigObjectEvent(clusterType, e.config.Namespace, n)
	}
	for _, n := range del {
		e.OnConfigObjectEvent(clusterType, e.config.Namespace, n)
	}
	return nil
}

func (e *Engine) listConfigObjectNames(ctx context.Context, clusterType clusterkey.Type) ([]string, error) {
	list := &corev1.ConfigMapList{}
	selector := mergeLabels(e.config.ConfigMapLabels, map[string]string{"type": string(clusterType)})
	if err := adapter.List(ctx, e.client, e.config.Namespace, selector, list); err != nil {
		return nil, err
	}
	return slices.Collect(list.Items, func(cm corev1.ConfigMap) string { return cm.Name }), nil
}

// listResourceNames enumerates the workloads carrying clusterType's
// cluster-type label (stateful workload sets for kafka, Deployments for
// Connect variants) and maps each back to its owning cluster's name by
// reading its cluster label. For kafka the Zookeeper stateful workload set
// carries the same labels as the Kafka one, so a cluster's name can appear
// twice.
func (e *Engine) listResourceNames(ctx context.Context, clusterType clusterkey.Type) ([]string, error) {
	selector := names.Labels(string(clusterType), "")
	delete(selector, names.LabelCluster)

	switch clusterType {
	case clusterkey.Kafka:
		list := &appsv1.StatefulSetList{}
		if err := adapter.List(ctx, e.client, e.config.Namespace, selector, list); err != nil {
			return nil, err
		}
		return slices.Collect(list.Items, func(sts appsv1.StatefulSet) string { return sts.Labels[names.LabelCluster] }), nil
	default:
		list := &appsv1.DeploymentList{}
		if err := adapter.List(ctx, e.client, e.config.Namespace, selector, list); err != nil {
			return nil, err
		}
		return slices.Collect(list.Items, func(d appsv1.Deployment) string { return d.Labels[names.LabelCluster] }), nil
	}
}

func mergeLabels(base, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
