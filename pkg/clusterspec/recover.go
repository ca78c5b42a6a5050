/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package clusterspec

import (
	"encoding/json"

	"github.com/pkg/errors"
	appsv1 "k8s.io/api/apps/v1"

	"github.com/strimzi-go/cluster-operator/pkg/operrors"
)

// lastAppliedAnnotation stores the full last-applied ClusterSpec as JSON on
// the representative resource (the Kafka stateful workload set, or the
// Connect deployment), so a later reconciliation can recover a pre-change
// snapshot to diff against without needing to re-derive it field-by-field
// from the live pod template.
const lastAppliedAnnotation = "strimzi-go.io/last-applied-cluster-spec"

// RecoverKafka reconstructs the last-applied KafkaSpec from the Kafka
// stateful workload set's annotations (§4.2 "Recover from actual"). It
// returns operrors.Decode if the annotation is missing or malformed, which
// the caller should treat as "no prior state" only for a cluster that is
// genuinely new; for an existing resource it indicates the resource was not
// created by this operator or was corrupted.
func RecoverKafka(sts *appsv1.StatefulSet) (KafkaSpec, error) {
	var spec KafkaSpec
	raw, ok := sts.Annotations[lastAppliedAnnotation]
	if !ok {
		return spec, operrors.NewDecode(errors.New("missing last-applied-cluster-spec annotation"))
	}
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return spec, operrors.NewDecode(errors.Wrap(err, "unmarshalling last-applied-cluster-spec"))
	}
	return spec, nil
}

// RecoverConnect reconstructs the last-applied ConnectSpec from the Connect
// deployment's annotations.
func RecoverConnect(deploy *appsv1.Deployment) (ConnectSpec, error) {
	var spec ConnectSpec
	raw, ok := deploy.Annotations[lastAppliedAnnotation]
	if !ok {
		return spec, operrors.NewDecode(errors.New("missing last-applied-cluster-spec annotation"))
	}
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return spec, operrors.NewDecode(errors.Wrap(err, "unmarshalling last-applied-cluster-spec"))
	}
	return spec, nil
}

// AnnotateKafka stamps the given KafkaSpec onto the stateful workload set's
// annotations, so that the next reconciliation's RecoverKafka call can see
// it. Composite operations call this as part of every create/update step.
func AnnotateKafka(sts *appsv1.StatefulSet, spec KafkaSpec) error {
	raw, err := json.Marshal(spec)
	if err != nil {
		return errors.Wrap(err, "marshalling cluster spec")
	}
	if sts.Annotations == nil {
		sts.Annotations = map[string]string{}
	}
	sts.Annotations[lastAppliedAnnotation] = string(raw)
	return nil
}

// AnnotateConnect stamps the given ConnectSpec onto the deployment's
// annotations.
func AnnotateConnect(deploy *appsv1.Deployment, spec ConnectSpec) error {
	raw, err := json.Marshal(spec)
	if err != nil {
		return errors.Wrap(err, "marshalling cluster spec")
	}
	if deploy.Annotations == nil {
		deploy.Annotations = map[string]string{}
	}
	deploy.Annotations[lastAppliedAnnotation] = string(raw)
	return nil
}
