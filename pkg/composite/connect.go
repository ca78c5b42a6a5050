/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package composite

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"

	"github.com/strimzi-go/cluster-operator/pkg/adapter"
	"github.com/strimzi-go/cluster-operator/pkg/clusterspec"
	"github.com/strimzi-go/cluster-operator/pkg/names"
)

// ConnectCreate returns the plan for a brand-new Connect cluster: the
// Deployment, then its REST-access Service (§4.3 "Create (Connect)").
func ConnectCreate(c adapter.Client, spec clusterspec.ConnectSpec) Plan {
	return Plan{
		{
			Name: "connect-deployment",
			Run: func(ctx context.Context) error {
				deploy, err := adapter.BuildConnectDeployment(spec)
				if err != nil {
					return err
				}
				_, err = adapter.Reconcile[appsv1.Deployment](ctx, c, spec.Namespace, names.ConnectDeployment(spec.Name), deploy, nil)
				return err
			},
		},
		reconcileConnectService(c, spec.Namespace, names.ConnectService(spec.Name), adapter.BuildConnectService(spec)),
	}
}

// ConnectDelete returns the plan for tearing down a Connect cluster: the
// reverse of creation order. Connect workers hold no persistent state of
// their own (offsets/config/status live in Kafka topics), so there are no
// claims to consider.
func ConnectDelete(c adapter.Client, spec clusterspec.ConnectSpec) Plan {
	return Plan{
		reconcileConnectService(c, spec.Namespace, names.ConnectService(spec.Name), nil),
		{
			Name: "connect-deployment",
			Run: func(ctx context.Context) error {
				_, err := adapter.Reconcile[appsv1.Deployment](ctx, c, spec.Namespace, names.ConnectDeployment(spec.Name), nil, nil)
				return err
			},
		},
	}
}

// ConnectUpdate returns the plan for reconciling an existing Connect
// cluster. Connect has no cluster-owned metrics config object in this data
// model (§4.2 "DiffConnect" never sets MetricsChanged), so the update plan
// is simply "patch the service, then patch the deployment" whenever
// anything differs.
func ConnectUpdate(c adapter.Client, desired clusterspec.ConnectSpec, diff clusterspec.ClusterDiff) Plan {
	plan := Plan{
		reconcileConnectService(c, desired.Namespace, names.ConnectService(desired.Name), adapter.BuildConnectService(desired)),
	}
	if !diff.Different {
		return plan
	}
	return append(plan, Step{
		Name: "connect-deployment",
		Run: func(ctx context.Context) error {
			deploy, err := adapter.BuildConnectDeployment(desired)
			if err != nil {
				return err
			}
			_, err = adapter.Reconcile[appsv1.Deployment](ctx, c, desired.Namespace, names.ConnectDeployment(desired.Name), deploy, nil)
			return err
		},
	})
}

func reconcileConnectService(c adapter.Client, namespace, resourceName string, desired *corev1.Service) Step {
	return Step{
		Name: "connect-service",
		Run: func(ctx context.Context) error {
			_, err := adapter.Reconcile[corev1.Service](ctx, c, namespace, resourceName, desired, func(existing, desired *corev1.Service) {
				desired.Spec.ClusterIP = existing.Spec.ClusterIP
			})
			return err
		},
	}
}
