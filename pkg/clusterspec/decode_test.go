/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package clusterspec_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/strimzi-go/cluster-operator/pkg/clusterkey"
	"github.com/strimzi-go/cluster-operator/pkg/clusterspec"
	"github.com/strimzi-go/cluster-operator/pkg/operrors"
)

func minimalConfigObject() clusterspec.ConfigObject {
	return clusterspec.ConfigObject{
		Name:      "my-cluster",
		Namespace: "ns",
		Labels:    map[string]string{"type": "kafka"},
		Data: map[string]string{
			"kafka-storage":     `{"type":"ephemeral"}`,
			"zookeeper-storage": `{"type":"ephemeral"}`,
		},
	}
}

var _ = Describe("testing: decode.go", func() {
	Context("testing: DecodeKafka()", func() {
		It("applies the documented defaults", func() {
			spec, err := clusterspec.DecodeKafka(minimalConfigObject())
			Expect(err).NotTo(HaveOccurred())
			Expect(spec.Replicas).To(Equal(int32(3)), "default kafka-nodes")
			Expect(spec.ZookeeperReplicas).To(Equal(int32(3)), "default zookeeper-nodes")
			Expect(spec.Image).To(Equal("strimzi/kafka:latest"))
			Expect(spec.KafkaStorage.Type).To(Equal(clusterspec.StorageEphemeral))
		})

		It("returns operrors.Decode when kafka-storage is missing", func() {
			obj := minimalConfigObject()
			delete(obj.Data, "kafka-storage")

			_, err := clusterspec.DecodeKafka(obj)
			Expect(err).To(HaveOccurred())
			var decodeErr operrors.Decode
			Expect(errors.As(err, &decodeErr)).To(BeTrue(), "expected operrors.Decode, got %T: %v", err, err)
		})

		It("requires a size for persistent-claim storage", func() {
			obj := minimalConfigObject()
			obj.Data["kafka-storage"] = `{"type":"persistent-claim"}`

			_, err := clusterspec.DecodeKafka(obj)
			Expect(err).To(HaveOccurred())
		})

		It("is pure: decoding the same object twice yields equal specs", func() {
			obj := minimalConfigObject()
			a, err := clusterspec.DecodeKafka(obj)
			Expect(err).NotTo(HaveOccurred())
			b, err := clusterspec.DecodeKafka(obj)
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(Equal(b))
		})

		It("returns operrors.Decode for a non-numeric kafka-nodes value", func() {
			obj := minimalConfigObject()
			obj.Data["kafka-nodes"] = "not-a-number"

			_, err := clusterspec.DecodeKafka(obj)
			Expect(err).To(HaveOccurred())
			var decodeErr operrors.Decode
			Expect(errors.As(err, &decodeErr)).To(BeTrue(), "expected operrors.Decode, got %T: %v", err, err)
		})
	})

	Context("testing: DecodeConnect()", func() {
		It("applies the documented defaults", func() {
			obj := clusterspec.ConfigObject{Name: "my-connect", Namespace: "ns"}
			spec, err := clusterspec.DecodeConnect(obj, clusterkey.KafkaConnect)
			Expect(err).NotTo(HaveOccurred())
			Expect(spec.Replicas).To(Equal(int32(1)), "default nodes")
			Expect(spec.GroupID).To(Equal("my-connect-cluster"))
			Expect(spec.ClusterType).To(Equal(clusterkey.KafkaConnect))
		})
	})
})
