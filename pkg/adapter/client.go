/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package adapter implements the Resource Client Adapter (§4.1): a thin,
// uniform capability surface over the orchestrator API for each resource
// kind the engine manipulates. The adapters are the only part of the engine
// that talks to the orchestrator client library; everything above this
// package works with the adapters' get/list/create/patch/delete/reconcile
// contract instead.
package adapter

import (
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/tools/record"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Client extends the orchestrator's controller-runtime client with discovery
// and event-recording capabilities, exactly the surface every resource
// adapter needs and nothing more.
type Client interface {
	client.Client
	DiscoveryClient() discovery.DiscoveryInterface
	EventRecorder() record.EventRecorder
}

// NewClient wraps a controller-runtime client, discovery client and event
// recorder into a single Client, as used by cmd/operator's bootstrap.
func NewClient(c client.Client, discoveryClient discovery.DiscoveryInterface, recorder record.EventRecorder) Client {
	return &clientImpl{Client: c, discoveryClient: discoveryClient, recorder: recorder}
}

type clientImpl struct {
	client.Client
	discoveryClient discovery.DiscoveryInterface
	recorder        record.EventRecorder
}

func (c *clientImpl) DiscoveryClient() discovery.DiscoveryInterface { return c.discoveryClient }
func (c *clientImpl) EventRecorder() record.EventRecorder           { return c.recorder }
