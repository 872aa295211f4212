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

const statsBody = `{"msgRateIn":1.5,"subscriptions":{"dump":{"type":"Shared","msgBacklog":42,"msgRateOut":0.5}}}`

func TestGetSubscriptionStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/v2/persistent/acme/billing/orders/stats" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(statsBody))
	}))
	defer srv.Close()

	g := newGateway(t, srv.URL, time.Second)
	sub, err := g.GetSubscriptionStats(context.Background(), topic.Parse("persistent://acme/billing/orders"), "dump")
	if err != nil {
		t.Fatalf("GetSubscriptionStats: %v", err)
	}
	if sub.MsgBacklog != 42 || sub.Type != "Shared" {
		t.Errorf("stats = %+v", sub)
	}
}

func TestGetSubscriptionStatsPartitionedRetry(t *testing.T) {
	var statsCalls, partCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/v2/persistent/acme/billing/orders/stats":
			statsCalls++
			http.NotFound(w, r)
		case "/admin/v2/persistent/acme/billing/orders/partitioned-stats":
			partCalls++
			w.Write([]byte(statsBody))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	g := newGateway(t, srv.URL, time.Second)
	sub, err := g.GetSubscriptionStats(context.Background(), topic.Parse("persistent://acme/billing/orders"), "dump")
	if err != nil {
		t.Fatalf("GetSubscriptionStats: %v", err)
	}
	if statsCalls != 1 || partCalls != 1 {
		t.Errorf("calls = %d regular, %d partitioned", statsCalls, partCalls)
	}
	if sub.MsgBacklog != 42 {
		t.Errorf("backlog = %d", sub.MsgBacklog)
	}
}

func TestGetSubscriptionStatsRetryFailureKeepsOriginalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	g := newGateway(t, srv.URL, time.Second)
	_, err := g.GetSubscriptionStats(context.Background(), topic.Parse("persistent://acme/billing/orders"), "dump")
	if !admin.IsNotFound(err) {
		t.Errorf("expected original 404, got %v", err)
	}
}

func TestGetSubscriptionStatsUnknownSubscription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(statsBody))
	}))
	defer srv.Close()

	g := newGateway(t, srv.URL, time.Second)
	_, err := g.GetSubscriptionStats(context.Background(), topic.Parse("persistent://acme/billing/orders"), "nope")
	if !admin.IsNotFound(err) {
		t.Errorf("expected not-found for unknown subscription, got %v", err)
	}
}

func TestSubscriptionLifecyclePaths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := newGateway(t, srv.URL, time.Second)
	addr := topic.Parse("persistent://acme/billing/orders")
	ctx := context.Background()

	if err := g.CreateSubscription(ctx, addr, "dump"); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if err := g.SkipAllMessages(ctx, addr, "dump"); err != nil {
		t.Fatalf("SkipAllMessages: %v", err)
	}
	if err := g.DeleteSubscription(ctx, addr, "dump"); err != nil {
		t.Fatalf("DeleteSubscription: %v", err)
	}

	want := []string{
		"PUT /admin/v2/persistent/acme/billing/orders/subscription/dump",
		"POST /admin/v2/persistent/acme/billing/orders/subscription/dump/skip_all",
		"DELETE /admin/v2/persistent/acme/billing/orders/subscription/dump",
	}
	for i, w := range want {
		if i >= len(paths) || paths[i] != w {
			t.Errorf("call %d = %q, want %q", i, paths[i], w)
		}
	}
}
