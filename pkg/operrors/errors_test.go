/*
SPDX-FileCopyrightText: 2024 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package operrors_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	pkgerrors "github.com/pkg/errors"

	"github.com/strimzi-go/cluster-operator/pkg/operrors"
)

var _ = Describe("testing: errors.go", func() {
	Context("testing: Retryable()", func() {
		DescribeTable("classifying an error as retryable or fatal",
			func(err error, want bool) {
				Expect(operrors.Retryable(err)).To(Equal(want))
			},
			Entry("transient", operrors.NewTransient(errors.New("conflict")), true),
			Entry("decode", operrors.NewDecode(errors.New("bad json")), true),
			Entry("illegal transition", operrors.NewIllegalTransition("storage type changed"), true),
			Entry("lock timeout", operrors.NewLockTimeout("lock::kafka::ns::name", "60s"), true),
			Entry("fatal", operrors.NewFatal(errors.New("unreachable")), false),
			Entry("fatal wrapped by pkg/errors", pkgerrors.Wrap(operrors.NewFatal(errors.New("unreachable")), "step kafka-stateful-set"), false),
			Entry("transient wrapped by pkg/errors", pkgerrors.Wrap(operrors.NewTransient(errors.New("conflict")), "step kafka-service"), true),
		)
	})

	Context("testing: Unwrap()/Cause()", func() {
		type causer interface{ Cause() error }
		inner := errors.New("boom")

		DescribeTable("unwrapping to the original inner error",
			func(err error) {
				c, ok := err.(causer)
				Expect(ok).To(BeTrue(), "%T does not implement Cause()", err)
				Expect(c.Cause()).To(Equal(inner))
				Expect(errors.Unwrap(err)).To(Equal(inner))
			},
			Entry("transient", operrors.NewTransient(inner)),
			Entry("decode", operrors.NewDecode(inner)),
			Entry("fatal", operrors.NewFatal(inner)),
		)
	})
})
