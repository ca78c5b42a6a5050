/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package adapter

import (
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/strimzi-go/cluster-operator/pkg/operrors"
)

// ref returns a pointer to v, for the handful of orchestrator API fields
// (replica counts, etc.) that are declared as pointers so that "unset" and
// "zero" can be told apart.
func ref[T any](v T) *T {
	return &v
}

// parseQuantity parses a persistent claim's requested size, wrapping parse
// failures as a decode-shaped error since a malformed size string originates
// from the configuration object's data, not from the orchestrator API.
func parseQuantity(size string) (resource.Quantity, error) {
	q, err := resource.ParseQuantity(size)
	if err != nil {
		return resource.Quantity{}, operrors.NewDecode(errors.Wrapf(err, "parsing storage size %q", size))
	}
	return q, nil
}
