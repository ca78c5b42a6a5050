/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package composite assembles and executes the ordered per-resource plans
// (§4.3) that bring a cluster's actual orchestrator resources to its desired
// state: a composite operation is a sequence of steps, each a single
// resource-adapter call, joined into one completion that fails with the
// first step's cause and never attempts compensation.
package composite

import (
	"context"

	"github.com/pkg/errors"

	"github.com/strimzi-go/cluster-operator/pkg/clusterkey"
	"github.com/strimzi-go/cluster-operator/pkg/clusterspec"
)

// Step is a single resource-adapter call participating in a composite
// operation's plan.
type Step struct {
	// Name identifies the step for logging and events, e.g.
	// "kafka-headless-service".
	Name string
	Run  func(ctx context.Context) error
}

// Plan is the ordered sequence of steps a composite operation executes.
type Plan []Step

// Run executes every step of p in order, stopping at (and returning) the
// first failure. It does not attempt compensation for already-applied
// steps: the next sweep or event is expected to retry and converge.
func (p Plan) Run(ctx context.Context) error {
	for _, step := range p {
		if err := step.Run(ctx); err != nil {
			return errors.Wrapf(err, "step %s", step.Name)
		}
	}
	return nil
}

// OperationType is one of the three composite operation kinds the engine
// dispatches (§2 item 3).
type OperationType string

const (
	OperationCreate OperationType = "create"
	OperationUpdate OperationType = "update"
	OperationDelete OperationType = "delete"
)

// ClusterOperation bundles a cluster's identity, the operation to perform,
// and the plan the engine's dispatch loop executes under the cluster's lock
// (§4.5 step 3-4).
type ClusterOperation struct {
	Key       clusterkey.Key
	Operation OperationType
	Diff      clusterspec.ClusterDiff
	Plan      Plan
}
