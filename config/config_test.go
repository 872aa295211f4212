// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/absmach/pulsarview/config"
	"github.com/absmach/pulsarview/registry"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Admin.Timeout != 30*time.Second {
		t.Errorf("expected default admin timeout, got %v", cfg.Admin.Timeout)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
admin:
  timeout: 5s
log:
  level: debug
  format: json
otel:
  enabled: true
  endpoint: collector:4317
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Admin.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.Admin.Timeout)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log overrides not applied: %+v", cfg.Log)
	}
	if !cfg.Otel.Enabled || cfg.Otel.Endpoint != "collector:4317" {
		t.Errorf("otel overrides not applied: %+v", cfg.Otel)
	}
	// Unset sections keep defaults.
	if cfg.Session.EventBuffer != 256 {
		t.Errorf("expected default event buffer, got %d", cfg.Session.EventBuffer)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad log level", "log:\n  level: verbose\n"},
		{"negative rate", "session:\n  rate_per_sec: -1\n"},
		{"zero timeout", "admin:\n  timeout: 0s\n"},
		{"otel without endpoint", "otel:\n  enabled: true\n  endpoint: \"\"\n"},
		{"malformed yaml", "log: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := config.Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestClusterStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "clusters.yaml")
	store := config.NewClusterStore(path)

	// Missing file is an empty snapshot, not an error.
	snap, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Clusters) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}

	want := registry.Snapshot{
		Clusters: []registry.Connection{
			{
				Name:          "prod",
				WebServiceURL: "https://pulsar.example.com:8443",
				StreamingURL:  "wss://pulsar.example.com:8443",
				AuthMode:      registry.AuthToken,
			},
		},
		Namespaces: map[string][]string{"prod": {"acme/staging"}},
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Clusters) != 1 || got.Clusters[0].Name != "prod" {
		t.Fatalf("unexpected clusters: %+v", got.Clusters)
	}
	if got.Clusters[0].AuthMode != registry.AuthToken {
		t.Errorf("auth mode not preserved: %v", got.Clusters[0].AuthMode)
	}
	if ns := got.Namespaces["prod"]; len(ns) != 1 || ns[0] != "acme/staging" {
		t.Errorf("namespaces not preserved: %+v", got.Namespaces)
	}
}

func TestClusterStoreSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.yaml")
	store := config.NewClusterStore(path)

	first := registry.Snapshot{Clusters: []registry.Connection{{Name: "a", WebServiceURL: "http://a:8080"}}}
	if err := store.Save(first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(registry.Snapshot{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Clusters) != 0 {
		t.Errorf("expected empty snapshot after overwrite, got %+v", got.Clusters)
	}
}
