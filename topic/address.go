// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package topic parses and formats Pulsar topic addresses.
package topic

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Persistence is the durability mode of a topic.
type Persistence int

// Persistence modes.
const (
	Persistent Persistence = iota
	NonPersistent
)

// String returns the mode as it appears in a fully-qualified address.
func (p Persistence) String() string {
	if p == NonPersistent {
		return "non-persistent"
	}
	return "persistent"
}

// Address is a parsed topic address. Addresses are immutable values;
// LocalName never carries a partition suffix, partitions are split out
// into Partition (-1 when the address names the whole topic).
type Address struct {
	Persistence Persistence
	Tenant      string
	Namespace   string
	LocalName   string
	Partition   int

	// Guessed is true when the input carried no tenant/namespace and the
	// public/default fallback was applied.
	Guessed bool
}

var qualifiedRe = regexp.MustCompile(`^(persistent|non-persistent)://([^/]+)/([^/]+)/(.+)$`)

// Parse interprets a topic address in any of the three accepted forms:
// fully-qualified ("persistent://tenant/ns/name"), short ("tenant/ns/name",
// assumed persistent) or a bare local name (assumed persistent under
// public/default). Parse never fails; malformed input degrades to the
// bare-name fallback with Guessed set.
func Parse(s string) Address {
	if m := qualifiedRe.FindStringSubmatch(s); m != nil {
		mode := Persistent
		if m[1] == "non-persistent" {
			mode = NonPersistent
		}
		return newAddress(mode, m[2], m[3], m[4], false)
	}

	if parts := strings.Split(s, "/"); len(parts) == 3 &&
		parts[0] != "" && parts[1] != "" && parts[2] != "" {
		return newAddress(Persistent, parts[0], parts[1], parts[2], false)
	}

	return newAddress(Persistent, "public", "default", s, true)
}

func newAddress(mode Persistence, tenant, namespace, local string, guessed bool) Address {
	partition := -1
	if base, idx, ok := SplitPartition(local); ok {
		local = base
		partition = idx
	}
	return Address{
		Persistence: mode,
		Tenant:      tenant,
		Namespace:   namespace,
		LocalName:   local,
		Partition:   partition,
		Guessed:     guessed,
	}
}

// Partitioned reports whether the address names a single partition rather
// than the whole topic.
func (a Address) Partitioned() bool {
	return a.Partition >= 0
}

// Child returns the address of partition i of this topic.
func (a Address) Child(i int) Address {
	a.Partition = i
	return a
}

// String reconstructs the fully-qualified form, including the partition
// suffix when the address names a partition.
func (a Address) String() string {
	return fmt.Sprintf("%s://%s/%s/%s", a.Persistence, a.Tenant, a.Namespace, a.fullLocal())
}

// Path returns the percent-encoded "mode/tenant/namespace/name" form used
// to build admin REST and websocket request paths.
func (a Address) Path() string {
	return fmt.Sprintf("%s/%s/%s/%s",
		a.Persistence,
		url.PathEscape(a.Tenant),
		url.PathEscape(a.Namespace),
		url.PathEscape(a.fullLocal()))
}

func (a Address) fullLocal() string {
	if a.Partition >= 0 {
		return fmt.Sprintf("%s-partition-%d", a.LocalName, a.Partition)
	}
	return a.LocalName
}
