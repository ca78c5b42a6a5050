/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package clusterspec_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/strimzi-go/cluster-operator/pkg/clusterspec"
	"github.com/strimzi-go/cluster-operator/pkg/operrors"
)

func minimalKafkaSpec() clusterspec.KafkaSpec {
	spec, err := clusterspec.DecodeKafka(minimalConfigObject())
	Expect(err).NotTo(HaveOccurred())
	return spec
}

var _ = Describe("testing: diff.go", func() {
	Context("testing: DiffKafka()", func() {
		It("reports no change for diff(x, x) (law P5)", func() {
			spec := minimalKafkaSpec()
			diff, err := clusterspec.DiffKafka(spec, spec)
			Expect(err).NotTo(HaveOccurred())
			Expect(diff.Empty()).To(BeTrue())
		})

		It("reports ScaleUp only when replicas increase", func() {
			current := minimalKafkaSpec()
			up := current
			up.Replicas = current.Replicas + 1

			diff, err := clusterspec.DiffKafka(current, up)
			Expect(err).NotTo(HaveOccurred())
			Expect(diff.ScaleUp).To(BeTrue())
			Expect(diff.ScaleDown).To(BeFalse())
		})

		It("reports ScaleDown only when replicas decrease", func() {
			current := minimalKafkaSpec()
			down := current
			down.Replicas = current.Replicas - 1

			diff, err := clusterspec.DiffKafka(current, down)
			Expect(err).NotTo(HaveOccurred())
			Expect(diff.ScaleDown).To(BeTrue())
			Expect(diff.ScaleUp).To(BeFalse())
		})

		It("reports a rolling update, not a scale, for an image change", func() {
			current := minimalKafkaSpec()
			desired := current
			desired.Image = "strimzi/kafka:2.8.0"

			diff, err := clusterspec.DiffKafka(current, desired)
			Expect(err).NotTo(HaveOccurred())
			Expect(diff.RollingUpdate).To(BeTrue())
			Expect(diff.Different).To(BeTrue())
			Expect(diff.ScaleUp).To(BeFalse())
			Expect(diff.ScaleDown).To(BeFalse())
		})

		// Guards against kafkaPodTemplateFields drifting out of sync with
		// the field it's meant to be the single source of truth for.
		It("reports a rolling update when ZookeeperReplicas changes", func() {
			current := minimalKafkaSpec()
			desired := current
			desired.ZookeeperReplicas = current.ZookeeperReplicas + 1

			diff, err := clusterspec.DiffKafka(current, desired)
			Expect(err).NotTo(HaveOccurred())
			Expect(diff.RollingUpdate).To(BeTrue())
		})

		It("rejects a kafka-storage type change as an illegal transition", func() {
			current := minimalKafkaSpec()
			desired := current
			desired.KafkaStorage.Type = clusterspec.StoragePersistentClaim
			desired.KafkaStorage.Size = "10Gi"

			_, err := clusterspec.DiffKafka(current, desired)
			Expect(err).To(HaveOccurred())
			var illegal operrors.IllegalTransition
			Expect(errors.As(err, &illegal)).To(BeTrue(), "expected operrors.IllegalTransition, got %T: %v", err, err)
		})

		It("reports a metrics-only change without a rolling update or scale", func() {
			current := minimalKafkaSpec()
			desired := current
			desired.KafkaMetricsConfig = clusterspec.MetricsConfig{Enabled: true, Raw: `{"rules":[]}`}

			diff, err := clusterspec.DiffKafka(current, desired)
			Expect(err).NotTo(HaveOccurred())
			Expect(diff.MetricsChanged).To(BeTrue())
			Expect(diff.Different).To(BeTrue())
			Expect(diff.RollingUpdate).To(BeFalse())
			Expect(diff.ScaleUp).To(BeFalse())
			Expect(diff.ScaleDown).To(BeFalse())
		})
	})

	Context("testing: DiffConnect()", func() {
		It("reports no change for diff(x, x) (law P5)", func() {
			spec, err := clusterspec.DecodeConnect(clusterspec.ConfigObject{Name: "c", Namespace: "ns"}, "kafka-connect")
			Expect(err).NotTo(HaveOccurred())

			diff, err := clusterspec.DiffConnect(spec, spec)
			Expect(err).NotTo(HaveOccurred())
			Expect(diff.Empty()).To(BeTrue())
		})
	})
})
