// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package admin is the HTTP gateway to one cluster's admin REST surface.
// One Gateway serves one cluster; operations never retry, callers decide.
package admin

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	adminBasePath  = "/admin/v2"
	defaultTimeout = 30 * time.Second
)

// Config holds gateway configuration for one cluster.
type Config struct {
	// BaseURL is the web service URL, e.g. "http://localhost:8080".
	BaseURL string

	// Token is the bearer token sent on every request when non-empty.
	Token string

	// Timeout bounds the wall clock of every request. Zero means 30s.
	Timeout time.Duration

	// InsecureTLS skips server certificate verification.
	InsecureTLS bool

	// TLS overrides the default TLS stack, e.g. for mutual TLS.
	// Takes precedence over InsecureTLS.
	TLS *tls.Config
}

// Gateway executes admin operations against a single cluster. It is safe
// for concurrent use; only the token is mutable, via UpdateToken.
type Gateway struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger

	tokenMu sync.RWMutex
	token   string

	healthBreaker *gobreaker.CircuitBreaker

	requestDuration metric.Float64Histogram
	requestsTotal   metric.Int64Counter
}

// New creates a gateway for the given cluster endpoint.
func New(cfg Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		return nil, ErrEmptyURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadBaseURL, cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport
	switch {
	case cfg.TLS != nil:
		transport = &http.Transport{TLSClientConfig: cfg.TLS}
	case cfg.InsecureTLS:
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	g := &Gateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Transport: transport},
		timeout: timeout,
		token:   cfg.Token,
		logger:  logger,
	}

	g.healthBreaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "admin-health",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("health breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	meter := otel.Meter("pulsarview/admin")
	g.requestDuration, err = meter.Float64Histogram(
		"pulsarview.admin.request.duration",
		metric.WithDescription("Admin request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}
	g.requestsTotal, err = meter.Int64Counter(
		"pulsarview.admin.requests.total",
		metric.WithDescription("Total admin requests by method and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create requests counter: %w", err)
	}

	return g, nil
}

// UpdateToken swaps the bearer token without reconnecting.
func (g *Gateway) UpdateToken(token string) {
	g.tokenMu.Lock()
	g.token = token
	g.tokenMu.Unlock()
}

func (g *Gateway) bearer() string {
	g.tokenMu.RLock()
	defer g.tokenMu.RUnlock()
	return g.token
}

// BaseURL returns the cluster's web service URL.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Health performs the lightweight broker health check. It is a fast-path
// signal only: no retries, and a circuit breaker sheds probes once the
// endpoint fails repeatedly.
func (g *Gateway) Health(ctx context.Context) error {
	_, err := g.healthBreaker.Execute(func() (interface{}, error) {
		return nil, g.do(ctx, http.MethodGet, "/brokers/health", nil, nil)
	})
	return err
}

// do runs one request/response cycle against the admin surface. path is
// relative to the versioned admin prefix and must already be escaped.
// A 2xx response with an empty or non-JSON body leaves out untouched,
// which callers treat as an empty result.
func (g *Gateway) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+adminBasePath+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := g.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	g.record(ctx, method, start, resp, err)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}
		return fmt.Errorf("admin request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			// Many admin endpoints answer 2xx with a plain-text or empty
			// body; treat that as an empty result.
			g.logger.Debug("non-JSON admin response treated as empty",
				slog.String("method", method),
				slog.String("path", path))
		}
	}
	return nil
}

func (g *Gateway) record(ctx context.Context, method string, start time.Time, resp *http.Response, err error) {
	status := "error"
	if err == nil {
		status = fmt.Sprintf("%dxx", resp.StatusCode/100)
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status", status),
	)
	g.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	g.requestsTotal.Add(ctx, 1, attrs)
}
