/*
SPDX-FileCopyrightText: 2024 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package operrors classifies the failure taxonomy used across the engine,
// composite operations and the differ, so that the reconciliation engine can
// decide whether to retry on the next sweep, surface a user-facing event, or
// terminate the process.
package operrors

import (
	"errors"
	"fmt"
)

// Transient wraps an orchestrator-side failure (conflict, timeout, 5xx) that
// is expected to resolve itself; the composite fails and the next sweep
// retries without any special handling.
type Transient struct {
	err error
}

func NewTransient(err error) Transient {
	return Transient{err: err}
}

func (e Transient) Error() string { return e.err.Error() }
func (e Transient) Unwrap() error { return e.err }
func (e Transient) Cause() error  { return e.err }

// Decode wraps a failure to parse a config object's data map into a
// ClusterSpec; it carries no retry value until the user edits the input.
type Decode struct {
	err error
}

func NewDecode(err error) Decode {
	return Decode{err: err}
}

func (e Decode) Error() string { return "decode error: " + e.err.Error() }
func (e Decode) Unwrap() error { return e.err }
func (e Decode) Cause() error  { return e.err }

// IllegalTransition wraps a diff that would require an update the engine
// refuses to perform, e.g. a storage type change. Treated identically to
// Decode for retry purposes, but logged as an explicit user error.
type IllegalTransition struct {
	reason string
}

func NewIllegalTransition(reason string) IllegalTransition {
	return IllegalTransition{reason: reason}
}

func (e IllegalTransition) Error() string {
	return fmt.Sprintf("illegal transition: %s", e.reason)
}

// LockTimeout is returned when a lock could not be acquired within the
// configured timeout; the operation is abandoned and the next sweep retries.
type LockTimeout struct {
	key     string
	timeout string
}

func NewLockTimeout(key, timeout string) LockTimeout {
	return LockTimeout{key: key, timeout: timeout}
}

func (e LockTimeout) Error() string {
	return fmt.Sprintf("timed out acquiring lock %q after %s", e.key, e.timeout)
}

// Fatal wraps a failure that is not worth a backoff retry: the orchestrator
// client is unreachable beyond its own retry budget, or an invariant was
// violated. The engine logs it as fatal; it does not terminate the process.
type Fatal struct {
	err error
}

func NewFatal(err error) Fatal {
	return Fatal{err: err}
}

func (e Fatal) Error() string { return "fatal: " + e.err.Error() }
func (e Fatal) Unwrap() error { return e.err }
func (e Fatal) Cause() error  { return e.err }

// Retryable reports whether a given error is of a class the engine should
// treat as worth retrying with backoff on the next sweep or event, as opposed
// to Fatal, which the engine only logs. It walks err's wrap chain
// (via errors.As) rather than only inspecting its top-level type, since
// composite operations wrap step failures with github.com/pkg/errors before
// they reach the engine.
func Retryable(err error) bool {
	var fatal Fatal
	return !errors.As(err, &fatal)
}
