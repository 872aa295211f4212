// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"context"
	"net/http"
	"net/url"
)

// TenantInfo is the admin payload for tenant creation.
type TenantInfo struct {
	AdminRoles      []string `json:"adminRoles"`
	AllowedClusters []string `json:"allowedClusters"`
}

// ListTenants returns the tenants visible to the configured credentials.
func (g *Gateway) ListTenants(ctx context.Context) ([]string, error) {
	var tenants []string
	if err := g.do(ctx, http.MethodGet, "/tenants", nil, &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

// CreateTenant creates a tenant with the given roles and clusters.
func (g *Gateway) CreateTenant(ctx context.Context, tenant string, info TenantInfo) error {
	return g.do(ctx, http.MethodPut, "/tenants/"+url.PathEscape(tenant), info, nil)
}

// DeleteTenant removes a tenant. The broker rejects deletion of non-empty
// tenants; that surfaces as an HTTPError.
func (g *Gateway) DeleteTenant(ctx context.Context, tenant string) error {
	return g.do(ctx, http.MethodDelete, "/tenants/"+url.PathEscape(tenant), nil, nil)
}
