/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package engine

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/tools/cache"

	"github.com/strimzi-go/cluster-operator/pkg/clusterkey"
)

// ConfigObjectEventHandler adapts configuration-object add/update/delete
// notifications from an orchestrator watch (e.g. a client-go shared
// informer) into Engine.OnConfigObjectEvent calls (§4.5 "Event trigger").
// Objects without a recognized "type" label, or outside the configured
// label selector, are ignored — the periodic sweep is the backstop for
// anything the event stream misses.
func (e *Engine) ConfigObjectEventHandler() cache.ResourceEventHandler {
	return cache.ResourceEventHandlerFuncs{
		AddFunc: func(obj any) {
			e.handleConfigObjectEvent(obj)
		},
		UpdateFunc: func(oldObj, newObj any) {
			e.handleConfigObjectEvent(newObj)
		},
		DeleteFunc: func(obj any) {
			if tombstone, ok := obj.(cache.DeletedFinalStateUnknown); ok {
				obj = tombstone.Obj
			}
			e.handleConfigObjectEvent(obj)
		},
	}
}

func (e *Engine) handleConfigObjectEvent(obj any) {
	cm, ok := obj.(*corev1.ConfigMap)
	if !ok {
		return
	}
	if !matchesLabels(cm.Labels, e.config.ConfigMapLabels) {
		return
	}
	clusterType := clusterkey.ParseType(cm.Labels["type"])
	if !clusterkey.Valid(clusterType) {
		return
	}
	e.OnConfigObjectEvent(clusterType, cm.Namespace, cm.Name)
}

func matchesLabels(objLabels, selector map[string]string) bool {
	for k, v := range selector {
		if objLabels[k] != v {
			return false
		}
	}
	return true
}
