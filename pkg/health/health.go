/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package health exposes the engine's liveness and readiness as HTTP
// endpoints (§2 item 6, §6), using controller-runtime's healthz.Handler so
// the probes compose the same way a kubebuilder-scaffolded manager's would.
package health

import (
	"net/http"

	"github.com/pkg/errors"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
)

var (
	errNotHealthy = errors.New("engine is not running")
	errNotReady   = errors.New("engine's last full sweep did not complete within one reconciliation interval")
)

// Checker is satisfied by *engine.Engine; kept narrow so this package
// doesn't need to import engine.
type Checker interface {
	Healthy() bool
	Ready() bool
}

// NewServer builds an *http.Server serving "/healthy" and "/ready" on addr,
// backed by c. The server is not started; callers run it alongside the
// engine and shut it down on the same context cancellation.
func NewServer(addr string, c Checker) *http.Server {
	mux := http.NewServeMux()

	healthChecks := healthz.Handler{Checks: map[string]healthz.Checker{
		"engine": func(_ *http.Request) error {
			if !c.Healthy() {
				return errNotHealthy
			}
			return nil
		},
	}}
	readyChecks := healthz.Handler{Checks: map[string]healthz.Checker{
		"engine": func(_ *http.Request) error {
			if !c.Ready() {
				return errNotReady
			}
			return nil
		},
	}}

	mux.Handle("/healthy", http.StripPrefix("/healthy", &healthChecks))
	mux.Handle("/ready", http.StripPrefix("/ready", &readyChecks))

	return &http.Server{Addr: addr, Handler: mux}
}
