// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry_test

import (
	"testing"

	"github.com/absmach/pulsarview/registry"
)

func TestStreamURL(t *testing.T) {
	tests := []struct {
		name string
		conn registry.Connection
		want string
	}{
		{
			name: "derived from http",
			conn: registry.Connection{WebServiceURL: "http://broker:8080"},
			want: "ws://broker:8080",
		},
		{
			name: "derived from https",
			conn: registry.Connection{WebServiceURL: "https://broker:8443"},
			want: "wss://broker:8443",
		},
		{
			name: "explicit streaming URL wins",
			conn: registry.Connection{WebServiceURL: "http://broker:8080", StreamingURL: "ws://stream:9090"},
			want: "ws://stream:9090",
		},
		{
			name: "unknown scheme passes through",
			conn: registry.Connection{WebServiceURL: "broker:8080"},
			want: "broker:8080",
		},
	}

	for _, tt := range tests {
		if got := tt.conn.StreamURL(); got != tt.want {
			t.Errorf("%s: StreamURL() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
