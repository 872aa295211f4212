// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package registry owns the set of configured clusters and the admin
// gateway serving each.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/absmach/pulsarview/admin"
	pkgtls "github.com/absmach/pulsarview/pkg/tls"
	"github.com/absmach/pulsarview/secrets"
)

// Registry errors.
var (
	ErrNotFound  = errors.New("cluster not found")
	ErrDuplicate = errors.New("cluster already registered")
	ErrEmptyName = errors.New("cluster name cannot be empty")
)

type entry struct {
	conn    Connection
	gateway *admin.Gateway
}

// Registry is the source of truth for configured clusters. Add and Remove
// serialize on the registry mutex; gateways themselves are safe for
// concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	overlay map[string]map[string]struct{}
	store   Store
	secrets secrets.Store
	timeout time.Duration
	logger  *slog.Logger
}

// New loads the persisted snapshot and reconstructs a gateway per cluster.
// adminTimeout bounds every admin request issued through this registry's
// gateways; zero applies the gateway default.
func New(store Store, secretStore secrets.Store, adminTimeout time.Duration, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		entries: make(map[string]*entry),
		overlay: make(map[string]map[string]struct{}),
		store:   store,
		secrets: secretStore,
		timeout: adminTimeout,
		logger:  logger,
	}

	snap, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load cluster configuration: %w", err)
	}
	for _, conn := range snap.Clusters {
		gw, err := r.buildGateway(conn)
		if err != nil {
			logger.Warn("skipping persisted cluster",
				slog.String("cluster", conn.Name),
				slog.String("error", err.Error()))
			continue
		}
		r.entries[conn.Name] = &entry{conn: conn, gateway: gw}
	}
	for cluster, namespaces := range snap.Namespaces {
		set := make(map[string]struct{}, len(namespaces))
		for _, ns := range namespaces {
			set[ns] = struct{}{}
		}
		r.overlay[cluster] = set
	}
	return r, nil
}

func (r *Registry) buildGateway(conn Connection) (*admin.Gateway, error) {
	token := ""
	if conn.AuthMode == AuthToken {
		t, err := r.secrets.Get(secretKey(conn.Name))
		if err != nil && !errors.Is(err, secrets.ErrNotFound) {
			return nil, err
		}
		token = t
	}
	tlsConf, err := pkgtls.LoadClientConfig(conn.TLS, conn.AllowInsecureTLS)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS material: %w", err)
	}
	return admin.New(admin.Config{
		BaseURL:     conn.WebServiceURL,
		Token:       token,
		Timeout:     r.timeout,
		InsecureTLS: conn.AllowInsecureTLS,
		TLS:         tlsConf,
	}, r.logger)
}

func secretKey(cluster string) string {
	return "cluster:" + cluster
}

// Add registers a cluster after a permission-tolerant connectivity probe:
// health check, then cluster listing, then tenant listing. A tenant
// listing rejected with 401/403 still passes, the account merely has
// restricted access; any other failure aborts the add. On success the
// connection is persisted without its token.
func (r *Registry) Add(ctx context.Context, conn Connection, token string) error {
	if conn.Name == "" {
		return ErrEmptyName
	}

	// Reserve the name before probing so concurrent adds of the same
	// cluster are rejected, not last-writer-wins.
	r.mu.Lock()
	if _, exists := r.entries[conn.Name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicate, conn.Name)
	}
	r.entries[conn.Name] = nil
	r.mu.Unlock()

	var gw *admin.Gateway
	tlsConf, err := pkgtls.LoadClientConfig(conn.TLS, conn.AllowInsecureTLS)
	if err != nil {
		err = fmt.Errorf("failed to load TLS material: %w", err)
	}
	if err == nil {
		gw, err = admin.New(admin.Config{
			BaseURL:     conn.WebServiceURL,
			Token:       token,
			Timeout:     r.timeout,
			InsecureTLS: conn.AllowInsecureTLS,
			TLS:         tlsConf,
		}, r.logger)
	}
	if err == nil {
		err = r.probe(ctx, gw)
	}
	if err != nil {
		r.mu.Lock()
		delete(r.entries, conn.Name)
		r.mu.Unlock()
		return err
	}

	if token != "" {
		if err := r.secrets.Set(secretKey(conn.Name), token); err != nil {
			r.logger.Warn("failed to store cluster token",
				slog.String("cluster", conn.Name),
				slog.String("error", err.Error()))
		}
	}

	r.mu.Lock()
	r.entries[conn.Name] = &entry{conn: conn, gateway: gw}
	err = r.persistLocked()
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.logger.Info("cluster registered", slog.String("cluster", conn.Name))
	return nil
}

func (r *Registry) probe(ctx context.Context, gw *admin.Gateway) error {
	if err := gw.Health(ctx); err == nil {
		return nil
	}
	if _, err := gw.ListClusters(ctx); err == nil {
		return nil
	}
	if _, err := gw.ListTenants(ctx); err != nil {
		if admin.IsPermission(err) {
			r.logger.Warn("cluster accepted with restricted permissions",
				slog.String("error", err.Error()))
			return nil
		}
		return fmt.Errorf("cluster connectivity probe failed: %w", err)
	}
	return nil
}

// Remove deregisters a cluster, deletes its stored token and persists the
// remaining set.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	if _, exists := r.entries[name]; !exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(r.entries, name)
	delete(r.overlay, name)
	err := r.persistLocked()
	r.mu.Unlock()

	if derr := r.secrets.Delete(secretKey(name)); derr != nil {
		r.logger.Warn("failed to delete cluster token",
			slog.String("cluster", name),
			slog.String("error", derr.Error()))
	}
	if err != nil {
		return err
	}

	r.logger.Info("cluster removed", slog.String("cluster", name))
	return nil
}

// Resolve returns the gateway serving the named cluster.
func (r *Registry) Resolve(name string) (*admin.Gateway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok || e == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e.gateway, nil
}

// Connection returns the stored connection of the named cluster.
func (r *Registry) Connection(name string) (Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok || e == nil {
		return Connection{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e.conn, nil
}

// List returns all registered connections sorted by name.
func (r *Registry) List() []Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Connection, 0, len(r.entries))
	for _, e := range r.entries {
		if e == nil {
			continue
		}
		out = append(out, e.conn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Token returns the stored bearer token of the named cluster, or an
// empty string when none is stored.
func (r *Registry) Token(name string) (string, error) {
	if _, err := r.Connection(name); err != nil {
		return "", err
	}
	tok, err := r.secrets.Get(secretKey(name))
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return tok, nil
}

// UpdateToken swaps the bearer token of a registered cluster without
// reconnecting, and stores the new value in the secret store.
func (r *Registry) UpdateToken(name, token string) error {
	gw, err := r.Resolve(name)
	if err != nil {
		return err
	}
	gw.UpdateToken(token)
	if token == "" {
		return r.secrets.Delete(secretKey(name))
	}
	return r.secrets.Set(secretKey(name), token)
}

// persistLocked saves the snapshot; callers hold r.mu.
func (r *Registry) persistLocked() error {
	snap := Snapshot{Namespaces: make(map[string][]string)}
	for _, e := range r.entries {
		if e == nil {
			continue
		}
		snap.Clusters = append(snap.Clusters, e.conn)
	}
	sort.Slice(snap.Clusters, func(i, j int) bool { return snap.Clusters[i].Name < snap.Clusters[j].Name })
	for cluster, set := range r.overlay {
		namespaces := make([]string, 0, len(set))
		for ns := range set {
			namespaces = append(namespaces, ns)
		}
		sort.Strings(namespaces)
		snap.Namespaces[cluster] = namespaces
	}
	if err := r.store.Save(snap); err != nil {
		return fmt.Errorf("failed to persist cluster configuration: %w", err)
	}
	return nil
}
