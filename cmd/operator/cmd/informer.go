/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/cache"

	"github.com/strimzi-go/cluster-operator/pkg/engine"
)

// startConfigObjectInformer starts a shared index informer over configuration
// objects (ConfigMaps) in namespace matching selectorLabels, feeding every
// add/update/delete notification into eng's event trigger (§4.5). The
// returned stop function signals the informer to stop and returns without
// waiting for its processing loop to finish.
func startConfigObjectInformer(ctx context.Context, clientset kubernetes.Interface, namespace string, selectorLabels map[string]string, eng *engine.Engine) (func(), error) {
	selector := labels.SelectorFromSet(selectorLabels).String()

	listWatch := &cache.ListWatch{
		ListFunc: func(options metav1.ListOptions) (runtime.Object, error) {
			options.LabelSelector = selector
			return clientset.CoreV1().ConfigMaps(namespace).List(ctx, options)
		},
		WatchFunc: func(options metav1.ListOptions) (watch.Interface, error) {
			options.LabelSelector = selector
			return clientset.CoreV1().ConfigMaps(namespace).Watch(ctx, options)
		},
	}

	informer := cache.NewSharedIndexInformer(listWatch, &corev1.ConfigMap{}, 0, cache.Indexers{})
	if _, err := informer.AddEventHandler(eng.ConfigObjectEventHandler()); err != nil {
		return nil, err
	}

	stopCh := make(chan struct{})
	go informer.Run(stopCh)

	synced := make(chan struct{})
	go func() {
		cache.WaitForCacheSync(stopCh, informer.HasSynced)
		close(synced)
	}()
	select {
	case <-synced:
	case <-time.After(30 * time.Second):
	}

	return func() { close(stopCh) }, nil
}
