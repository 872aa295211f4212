// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package badger

import (
	"errors"
	"testing"

	"github.com/absmach/pulsarview/secrets"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGetDelete(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("cluster:prod", "token-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get("cluster:prod")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "token-1" {
		t.Errorf("Get = %q", got)
	}

	if err := s.Set("cluster:prod", "token-2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if got, _ := s.Get("cluster:prod"); got != "token-2" {
		t.Errorf("after overwrite Get = %q", got)
	}

	if err := s.Delete("cluster:prod"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("cluster:prod"); !errors.Is(err, secrets.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteMissingKey(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete("absent"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	s, err := New(Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
