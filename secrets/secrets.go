// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package secrets defines the credential store used for cluster auth
// tokens. Tokens never touch the durable cluster configuration; they live
// only here or in memory.
package secrets

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when no secret exists under the given key.
var ErrNotFound = errors.New("secret not found")

// Store holds secrets keyed by name.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Memory is an in-process Store, used when no durable vault is configured
// and in tests. Safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the secret under key.
func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete removes the secret under key. Deleting a missing key is not an
// error.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
