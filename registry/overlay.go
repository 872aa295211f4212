// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/absmach/pulsarview/admin"
)

// ErrBadNamespace is returned for overlay entries not of the form
// "tenant/namespace".
var ErrBadNamespace = fmt.Errorf("namespace must be of the form tenant/namespace")

// AddNamespace registers a manual namespace overlay entry for a cluster.
// The overlay compensates for restricted accounts: namespaces the tenant
// listing cannot discover are merged into every enumeration.
func (r *Registry) AddNamespace(cluster, namespace string) error {
	parts := strings.Split(namespace, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("%w: %q", ErrBadNamespace, namespace)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[cluster]; !ok || e == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, cluster)
	}
	if r.overlay[cluster] == nil {
		r.overlay[cluster] = make(map[string]struct{})
	}
	r.overlay[cluster][namespace] = struct{}{}
	return r.persistLocked()
}

// RemoveNamespace drops a manual overlay entry.
func (r *Registry) RemoveNamespace(cluster, namespace string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.overlay[cluster]
	if !ok {
		return nil
	}
	delete(set, namespace)
	return r.persistLocked()
}

// Tenants enumerates the tenants of a cluster: the API listing merged with
// the tenants named by the overlay. A permission-rejected listing degrades
// to the overlay alone instead of failing.
func (r *Registry) Tenants(ctx context.Context, cluster string) ([]string, error) {
	gw, err := r.Resolve(cluster)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	tenants, err := gw.ListTenants(ctx)
	if err != nil {
		if !admin.IsPermission(err) {
			return nil, err
		}
		r.logger.Warn("tenant listing restricted, using namespace overlay",
			slog.String("cluster", cluster),
			slog.String("error", err.Error()))
	}
	for _, t := range tenants {
		set[t] = struct{}{}
	}
	for ns := range r.overlaySet(cluster) {
		set[strings.SplitN(ns, "/", 2)[0]] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// Namespaces enumerates the namespaces of a tenant as "tenant/namespace"
// strings, merging the API listing with matching overlay entries. As with
// Tenants, a permission rejection degrades to the overlay.
func (r *Registry) Namespaces(ctx context.Context, cluster, tenant string) ([]string, error) {
	gw, err := r.Resolve(cluster)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	namespaces, err := gw.ListNamespaces(ctx, tenant)
	if err != nil {
		if !admin.IsPermission(err) {
			return nil, err
		}
		r.logger.Warn("namespace listing restricted, using namespace overlay",
			slog.String("cluster", cluster),
			slog.String("tenant", tenant),
			slog.String("error", err.Error()))
	}
	for _, ns := range namespaces {
		set[ns] = struct{}{}
	}
	for ns := range r.overlaySet(cluster) {
		if strings.HasPrefix(ns, tenant+"/") {
			set[ns] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for ns := range set {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out, nil
}

func (r *Registry) overlaySet(cluster string) map[string]struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]struct{}, len(r.overlay[cluster]))
	for ns := range r.overlay[cluster] {
		out[ns] = struct{}{}
	}
	return out
}
