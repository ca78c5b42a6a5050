/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

package health_test

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/strimzi-go/cluster-operator/pkg/health"
)

type fakeChecker struct {
	healthy bool
	ready   bool
}

func (f fakeChecker) Healthy() bool { return f.healthy }
func (f fakeChecker) Ready() bool   { return f.ready }

func serve(srv *http.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

var _ = Describe("testing: health.go", func() {
	Context("testing: NewServer()'s /healthy endpoint", func() {
		It("returns 200 when the checker reports healthy", func() {
			srv := health.NewServer(":0", fakeChecker{healthy: true, ready: false})
			Expect(serve(srv, "/healthy").Code).To(Equal(http.StatusOK))
		})

		It("returns 503 when the checker reports unhealthy", func() {
			srv := health.NewServer(":0", fakeChecker{healthy: false, ready: false})
			Expect(serve(srv, "/healthy").Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Context("testing: NewServer()'s /ready endpoint", func() {
		It("reflects the checker's readiness state", func() {
			srv := health.NewServer(":0", fakeChecker{healthy: true, ready: false})
			Expect(serve(srv, "/ready").Code).To(Equal(http.StatusServiceUnavailable))
		})
	})
})
