// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package admin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/absmach/pulsarview/admin"
	"github.com/absmach/pulsarview/topic"
)

func TestListTopicsUnionAndDedupe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/v2/persistent/acme/billing":
			w.Write([]byte(`["persistent://acme/billing/orders-partition-0","persistent://acme/billing/orders-partition-1","persistent://acme/billing/widgets"]`))
		case "/admin/v2/non-persistent/acme/billing":
			w.Write([]byte(`["non-persistent://acme/billing/events"]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	g := newGateway(t, srv.URL, time.Second)
	topics, err := g.ListTopics(context.Background(), "acme", "billing")
	if err != nil {
		t.Fatalf("ListTopics: %v", err)
	}
	if len(topics) != 3 {
		t.Fatalf("got %d topics: %+v", len(topics), topics)
	}

	byName := map[string]admin.TopicInfo{}
	for _, ti := range topics {
		byName[ti.Address.LocalName] = ti
	}
	if byName["orders"].Partitions != 2 {
		t.Errorf("orders partitions = %d, want 2", byName["orders"].Partitions)
	}
	if byName["widgets"].Partitions != 0 {
		t.Errorf("widgets partitions = %d, want 0", byName["widgets"].Partitions)
	}
	if byName["events"].Address.Persistence != topic.NonPersistent {
		t.Errorf("events persistence = %v", byName["events"].Address.Persistence)
	}
}

func TestListTopicsToleratesFailingSublist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin/v2/persistent/acme/billing" {
			w.Write([]byte(`["persistent://acme/billing/orders"]`))
			return
		}
		http.Error(w, "non-persistent topics disabled", http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	g := newGateway(t, srv.URL, time.Second)
	topics, err := g.ListTopics(context.Background(), "acme", "billing")
	if err != nil {
		t.Fatalf("ListTopics: %v", err)
	}
	if len(topics) != 1 || topics[0].Address.LocalName != "orders" {
		t.Errorf("topics = %+v", topics)
	}
}

func TestDeleteTopicPartitioned(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Write([]byte(`{"partitions":4}`))
		case r.Method == http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	g := newGateway(t, srv.URL, time.Second)
	addr := topic.Parse("persistent://acme/billing/orders")
	if err := g.DeleteTopic(context.Background(), addr); err != nil {
		t.Fatalf("DeleteTopic: %v", err)
	}
	if deleted != "/admin/v2/persistent/acme/billing/orders/partitions" {
		t.Errorf("deleted path = %q", deleted)
	}
}

func TestDeleteTopicPlain(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Write([]byte(`{"partitions":0}`))
		case r.Method == http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	g := newGateway(t, srv.URL, time.Second)
	if err := g.DeleteTopic(context.Background(), topic.Parse("persistent://acme/billing/orders")); err != nil {
		t.Fatalf("DeleteTopic: %v", err)
	}
	if deleted != "/admin/v2/persistent/acme/billing/orders" {
		t.Errorf("deleted path = %q", deleted)
	}
}

func TestDeleteTopicMetadataProbeFailureFallsBack(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.Error(w, "metadata unavailable", http.StatusInternalServerError)
		case http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	g := newGateway(t, srv.URL, time.Second)
	if err := g.DeleteTopic(context.Background(), topic.Parse("persistent://acme/billing/orders")); err != nil {
		t.Fatalf("DeleteTopic should fall back to plain delete: %v", err)
	}
	if deleted != "/admin/v2/persistent/acme/billing/orders" {
		t.Errorf("deleted path = %q", deleted)
	}
}

func TestCreateTopic(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b := make([]byte, r.ContentLength)
		r.Body.Read(b)
		gotBody = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := newGateway(t, srv.URL, time.Second)
	addr := topic.Parse("persistent://acme/billing/orders")

	if err := g.CreateTopic(context.Background(), addr, 4); err != nil {
		t.Fatalf("CreateTopic partitioned: %v", err)
	}
	if gotPath != "/admin/v2/persistent/acme/billing/orders/partitions" || gotBody != "4" {
		t.Errorf("partitioned create: path=%q body=%q", gotPath, gotBody)
	}

	if err := g.CreateTopic(context.Background(), addr, 0); err != nil {
		t.Fatalf("CreateTopic plain: %v", err)
	}
	if gotPath != "/admin/v2/persistent/acme/billing/orders" {
		t.Errorf("plain create: path=%q", gotPath)
	}
}
