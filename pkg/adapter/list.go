/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package adapter

import (
	"context"

	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/labels"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/strimzi-go/cluster-operator/pkg/operrors"
)

// List returns all objects of list's element type in namespace matching
// every key=value pair in selector (§4.1). Order is unspecified; callers
// must not rely on it, exactly as the orchestrator API itself does not
// guarantee one.
func List(ctx context.Context, c Client, namespace string, selector map[string]string, list client.ObjectList) error {
	opts := []client.ListOption{
		client.InNamespace(namespace),
		client.MatchingLabelsSelector{Selector: labels.SelectorFromSet(selector)},
	}
	if err := c.List(ctx, list, opts...); err != nil {
		return operrors.NewTransient(errors.Wrap(err, "listing resources"))
	}
	return nil
}
