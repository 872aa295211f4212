// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"context"
	"net/http"
	"net/url"
)

// ListNamespaces returns the namespaces of a tenant as "tenant/namespace"
// strings, the form the admin surface uses.
func (g *Gateway) ListNamespaces(ctx context.Context, tenant string) ([]string, error) {
	var namespaces []string
	if err := g.do(ctx, http.MethodGet, "/namespaces/"+url.PathEscape(tenant), nil, &namespaces); err != nil {
		return nil, err
	}
	return namespaces, nil
}

// CreateNamespace creates a namespace under a tenant.
func (g *Gateway) CreateNamespace(ctx context.Context, tenant, namespace string) error {
	return g.do(ctx, http.MethodPut,
		"/namespaces/"+url.PathEscape(tenant)+"/"+url.PathEscape(namespace), nil, nil)
}

// DeleteNamespace removes a namespace.
func (g *Gateway) DeleteNamespace(ctx context.Context, tenant, namespace string) error {
	return g.do(ctx, http.MethodDelete,
		"/namespaces/"+url.PathEscape(tenant)+"/"+url.PathEscape(namespace), nil, nil)
}
