// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package topic_test

import (
	"testing"

	"github.com/absmach/pulsarview/topic"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		mode    topic.Persistence
		tenant  string
		ns      string
		local   string
		part    int
		guessed bool
	}{
		{"persistent://acme/billing/orders", topic.Persistent, "acme", "billing", "orders", -1, false},
		{"non-persistent://acme/billing/events", topic.NonPersistent, "acme", "billing", "events", -1, false},
		{"acme/billing/orders", topic.Persistent, "acme", "billing", "orders", -1, false},
		{"orders", topic.Persistent, "public", "default", "orders", -1, true},
		{"persistent://acme/billing/orders-partition-3", topic.Persistent, "acme", "billing", "orders", 3, false},
		{"orders-partition-0", topic.Persistent, "public", "default", "orders", 0, true},
		// Malformed inputs degrade to the bare-name fallback.
		{"a/b", topic.Persistent, "public", "default", "a/b", -1, true},
		{"a/b/c/d", topic.Persistent, "public", "default", "a/b/c/d", -1, true},
		{"", topic.Persistent, "public", "default", "", -1, true},
	}

	for _, tt := range tests {
		got := topic.Parse(tt.in)
		if got.Persistence != tt.mode || got.Tenant != tt.tenant ||
			got.Namespace != tt.ns || got.LocalName != tt.local ||
			got.Partition != tt.part || got.Guessed != tt.guessed {
			t.Errorf("Parse(%q) = %+v", tt.in, got)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, in := range []string{
		"persistent://acme/billing/orders",
		"non-persistent://acme/billing/events",
		"persistent://public/default/orders-partition-2",
	} {
		if got := topic.Parse(in).String(); got != in {
			t.Errorf("Parse(%q).String() = %q", in, got)
		}
	}
}

func TestShortFormNormalizes(t *testing.T) {
	a := topic.Parse("acme/billing/orders")
	if got, want := a.String(), "persistent://acme/billing/orders"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestChild(t *testing.T) {
	a := topic.Parse("persistent://acme/billing/orders")
	c := a.Child(4)
	if !c.Partitioned() || c.LocalName != "orders" || c.Partition != 4 {
		t.Fatalf("Child(4) = %+v", c)
	}
	if got, want := c.String(), "persistent://acme/billing/orders-partition-4"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if a.Partitioned() {
		t.Error("Child mutated the parent address")
	}
}

func TestPathEscapes(t *testing.T) {
	a := topic.Address{Persistence: topic.Persistent, Tenant: "acme", Namespace: "bill ing", LocalName: "ord/ers", Partition: -1}
	if got, want := a.Path(), "persistent/acme/bill%20ing/ord%2Fers"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}
