// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"context"
	"net/http"
	"net/url"
)

// ListClusters returns the cluster names known to this instance.
func (g *Gateway) ListClusters(ctx context.Context) ([]string, error) {
	var clusters []string
	if err := g.do(ctx, http.MethodGet, "/clusters", nil, &clusters); err != nil {
		return nil, err
	}
	return clusters, nil
}

// ListBrokers returns the active broker addresses of a cluster.
func (g *Gateway) ListBrokers(ctx context.Context, cluster string) ([]string, error) {
	var brokers []string
	if err := g.do(ctx, http.MethodGet, "/brokers/"+url.PathEscape(cluster), nil, &brokers); err != nil {
		return nil, err
	}
	return brokers, nil
}
