/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package composite

import (
	"context"

	"github.com/pkg/errors"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/strimzi-go/cluster-operator/pkg/adapter"
	"github.com/strimzi-go/cluster-operator/pkg/clusterkey"
	"github.com/strimzi-go/cluster-operator/pkg/clusterspec"
	"github.com/strimzi-go/cluster-operator/pkg/names"
	"github.com/strimzi-go/cluster-operator/pkg/operrors"
)

// GetCluster builds the ClusterOperation for a (clusterType, namespace,
// name) tuple by decoding the config object (if present), recovering the
// current spec from the representative resource (if present), diffing them,
// and selecting the corresponding operation kind and plan (§4.5 step 3).
//
// Exactly one of the config object or the representative resource may be
// absent: absent config object ⇒ delete; absent representative resource ⇒
// create. Both absent is a caller error — the engine's partition logic
// (§4.5) never dispatches a key with neither.
func GetCluster(ctx context.Context, c adapter.Client, clusterType clusterkey.Type, namespace, name string) (ClusterOperation, error) {
	switch clusterType {
	case clusterkey.Kafka:
		return getKafkaCluster(ctx, c, namespace, name)
	case clusterkey.KafkaConnect, clusterkey.KafkaConnectS2I:
		return getConnectCluster(ctx, c, clusterType, namespace, name)
	default:
		return ClusterOperation{}, operrors.NewDecode(errors.Errorf("unknown cluster type %q", clusterType))
	}
}

func getKafkaCluster(ctx context.Context, c adapter.Client, namespace, name string) (ClusterOperation, error) {
	key := clusterkey.New(clusterkey.Kafka, namespace, name)

	configObj, configExists, err := getConfigObject(ctx, c, namespace, name)
	if err != nil {
		return ClusterOperation{}, err
	}

	sts := &appsv1.StatefulSet{}
	stsExists, err := getOptional(ctx, c, namespace, names.KafkaStatefulSet(name), sts)
	if err != nil {
		return ClusterOperation{}, err
	}

	switch {
	case configExists && !stsExists:
		desired, err := clusterspec.DecodeKafka(configObj)
		if err != nil {
			return ClusterOperation{}, err
		}
		return ClusterOperation{Key: key, Operation: OperationCreate, Plan: KafkaCreate(c, desired)}, nil

	case !configExists && stsExists:
		current, err := clusterspec.RecoverKafka(sts)
		if err != nil {
			return ClusterOperation{}, err
		}
		return ClusterOperation{Key: key, Operation: OperationDelete, Plan: KafkaDelete(c, current)}, nil

	case configExists && stsExists:
		desired, err := clusterspec.DecodeKafka(configObj)
		if err != nil {
			return ClusterOperation{}, err
		}
		current, err := clusterspec.RecoverKafka(sts)
		if err != nil {
			return ClusterOperation{}, err
		}
		diff, err := clusterspec.DiffKafka(current, desired)
		if err != nil {
			return ClusterOperation{}, err
		}
		plan, err := KafkaUpdate(c, current, desired, diff)
		if err != nil {
			return ClusterOperation{}, err
		}
		return ClusterOperation{Key: key, Operation: OperationUpdate, Diff: diff, Plan: plan}, nil

	default:
		return ClusterOperation{}, operrors.NewFatal(errors.Errorf("getCluster called for %s with neither config object nor representative resource present", key))
	}
}

func getConnectCluster(ctx context.Context, c adapter.Client, clusterType clusterkey.Type, namespace, name string) (ClusterOperation, error) {
	key := clusterkey.New(clusterType, namespace, name)

	configObj, configExists, err := getConfigObject(ctx, c, namespace, name)
	if err != nil {
		return ClusterOperation{}, err
	}

	deploy := &appsv1.Deployment{}
	deployExists, err := getOptional(ctx, c, namespace, names.ConnectDeployment(name), deploy)
	if err != nil {
		return ClusterOperation{}, err
	}

	switch {
	case configExists && !deployExists:
		desired, err := clusterspec.DecodeConnect(configObj, clusterType)
		if err != nil {
			return ClusterOperation{}, err
		}
		return ClusterOperation{Key: key, Operation: OperationCreate, Plan: ConnectCreate(c, desired)}, nil

	case !configExists && deployExists:
		current, err := clusterspec.RecoverConnect(deploy)
		if err != nil {
			return ClusterOperation{}, err
		}
		return ClusterOperation{Key: key, Operation: OperationDelete, Plan: ConnectDelete(c, current)}, nil

	case configExists && deployExists:
		desired, err := clusterspec.DecodeConnect(configObj, clusterType)
		if err != nil {
			return ClusterOperation{}, err
		}
		current, err := clusterspec.RecoverConnect(deploy)
		if err != nil {
			return ClusterOperation{}, err
		}
		diff, err := clusterspec.DiffConnect(current, desired)
		if err != nil {
			return ClusterOperation{}, err
		}
		return ClusterOperation{Key: key, Operation: OperationUpdate, Diff: diff, Plan: ConnectUpdate(c, desired, diff)}, nil

	default:
		return ClusterOperation{}, operrors.NewFatal(errors.Errorf("getCluster called for %s with neither config object nor representative resource present", key))
	}
}

func getConfigObject(ctx context.Context, c adapter.Client, namespace, name string) (clusterspec.ConfigObject, bool, error) {
	cm := &corev1.ConfigMap{}
	exists, err := getOptional(ctx, c, namespace, name, cm)
	if err != nil || !exists {
		return clusterspec.ConfigObject{}, exists, err
	}
	return clusterspec.ConfigObject{
		Name:      cm.Name,
		Namespace: cm.Namespace,
		Labels:    cm.Labels,
		Data:      cm.Data,
	}, true, nil
}

func getOptional(ctx context.Context, c adapter.Client, namespace, name string, obj client.Object) (bool, error) {
	err := c.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, obj)
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, operrors.NewTransient(errors.Wrapf(err, "reading %T %s/%s", obj, namespace, name))
	}
	return true, nil
}
