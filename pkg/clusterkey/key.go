/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package clusterkey defines the identity used throughout the operator to
// name a single Kafka or Kafka-Connect cluster: its type, namespace and name.
package clusterkey

import (
	"fmt"

	"github.com/iancoleman/strcase"
)

// Type discriminates the cluster flavor carried by a config object's "type" label.
type Type string

const (
	Kafka          Type = "kafka"
	KafkaConnect   Type = "kafka-connect"
	KafkaConnectS2I Type = "kafka-connect-s2i"
)

// All is the set of cluster types the engine watches and dispatches.
var All = []Type{Kafka, KafkaConnect, KafkaConnectS2I}

// Valid reports whether t is a known cluster type.
func Valid(t Type) bool {
	for _, known := range All {
		if known == t {
			return true
		}
	}
	return false
}

// ParseType normalizes a config object's raw "type" label value into a Type,
// so that "KafkaConnect", "kafkaConnect" and "kafka-connect" all resolve to
// the same dispatch-table key. A value that already is a known Type is
// returned as is (strcase would split "s2i" into "s-2-i"). Unrecognized input
// comes back kebab-cased and fails Valid, which callers are expected to check.
func ParseType(raw string) Type {
	if t := Type(raw); Valid(t) {
		return t
	}
	return Type(strcase.ToKebab(raw))
}

// Key identifies one cluster: its type, namespace and name. It is used both
// as the lock manager's key and as the primary identity of a cluster
// throughout decode, diff and composite-operation dispatch.
type Key struct {
	Type      Type
	Namespace string
	Name      string
}

// New builds a Key, normalizing nothing; callers are expected to pass a
// namespace and name as taken from the config object being reconciled.
func New(clusterType Type, namespace, name string) Key {
	return Key{Type: clusterType, Namespace: namespace, Name: name}
}

// String renders the key as "clusterType/namespace/name", used for logging.
// The lock name is built by LockName, not from String.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Type, k.Namespace, k.Name)
}

// LockName returns the fully qualified lock name for this key, matching the
// "lock::"+clusterType+"::"+namespace+"::"+name scheme.
func (k Key) LockName() string {
	return fmt.Sprintf("lock::%s::%s::%s", k.Type, k.Namespace, k.Name)
}
