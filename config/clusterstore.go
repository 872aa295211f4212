// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/absmach/pulsarview/registry"
)

// ClusterStore persists the cluster registry snapshot as a YAML file.
type ClusterStore struct {
	path string
}

// NewClusterStore creates a store backed by the file at path.
func NewClusterStore(path string) *ClusterStore {
	return &ClusterStore{path: path}
}

// Load reads the snapshot. A missing file yields an empty snapshot.
func (s *ClusterStore) Load() (registry.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return registry.Snapshot{}, nil
		}
		return registry.Snapshot{}, fmt.Errorf("failed to read clusters file: %w", err)
	}

	var snap registry.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return registry.Snapshot{}, fmt.Errorf("failed to parse clusters file: %w", err)
	}
	return snap, nil
}

// Save writes the snapshot atomically via a temp file rename.
func (s *ClusterStore) Save(snap registry.Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".clusters-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace clusters file: %w", err)
	}
	return nil
}
