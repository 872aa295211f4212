// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package session manages streaming produce/consume sessions over the
// websocket transport. A session owns all its partition connections; none
// outlives it. Sessions never reconnect on their own, a human operator
// always drives reconnects.
package session

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/absmach/pulsarview/admin"
	"github.com/absmach/pulsarview/topic"
)

// Session errors.
var (
	ErrNotConnected = errors.New("session not connected")
	ErrAlreadyOpen  = errors.New("session already open")
	ErrClosed       = errors.New("session has been closed")
	ErrTransport    = errors.New("transport failure")
	ErrBadPartition = errors.New("partition index out of range")
)

// Config holds the transport parameters shared by producer and consumer
// sessions against one cluster.
type Config struct {
	// StreamURL is the websocket base URL, e.g. "ws://localhost:8080".
	StreamURL string

	// Token is the bearer token sent on the websocket handshake.
	Token string

	// InsecureTLS skips server certificate verification.
	InsecureTLS bool

	// TLS overrides the default TLS stack, e.g. for mutual TLS.
	// Takes precedence over InsecureTLS.
	TLS *tls.Config

	// DialTimeout bounds the websocket handshake. Zero means 10s.
	DialTimeout time.Duration

	// EventBuffer is the capacity of the event stream. Zero means 256.
	EventBuffer int
}

func (c Config) eventBuffer() int {
	if c.EventBuffer > 0 {
		return c.EventBuffer
	}
	return 256
}

// MetadataResolver resolves partition metadata for a topic; *admin.Gateway
// satisfies it.
type MetadataResolver interface {
	PartitionedTopicMetadata(ctx context.Context, addr topic.Address) (admin.PartitionedMetadata, error)
}

// resolvePartitions looks up the partition count, treating any lookup
// failure as "non-partitioned". Admin access is not required to stream.
func resolvePartitions(ctx context.Context, r MetadataResolver, addr topic.Address) int {
	if r == nil {
		return 0
	}
	meta, err := r.PartitionedTopicMetadata(ctx, addr)
	if err != nil {
		return 0
	}
	return meta.Partitions
}

func producerURL(cfg Config, addr topic.Address) string {
	return strings.TrimRight(cfg.StreamURL, "/") + "/ws/v2/producer/" + addr.Path()
}

func consumerURL(cfg Config, addr topic.Address, subscription, subType, position string) string {
	q := url.Values{}
	q.Set("messageId", position)
	if subType != "" {
		q.Set("subscriptionType", subType)
	}
	return strings.TrimRight(cfg.StreamURL, "/") + "/ws/v2/consumer/" + addr.Path() +
		"/" + url.PathEscape(subscription) + "?" + q.Encode()
}

// prettyJSON indents payload when it is valid JSON; otherwise it returns
// the input unchanged. Best effort only, the raw text always survives.
func prettyJSON(payload string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(payload), "", "  "); err != nil {
		return payload
	}
	return buf.String()
}

// sessionMetrics are the OpenTelemetry instruments shared by producer and
// consumer sessions. With no SDK configured the global meter is a noop.
type sessionMetrics struct {
	messagesSent     metric.Int64Counter
	messagesReceived metric.Int64Counter
	sendErrors       metric.Int64Counter
}

func newSessionMetrics() (*sessionMetrics, error) {
	meter := otel.Meter("pulsarview/session")
	m := &sessionMetrics{}

	var err error
	m.messagesSent, err = meter.Int64Counter(
		"pulsarview.session.messages.sent",
		metric.WithDescription("Messages positively acknowledged by the broker"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sent counter: %w", err)
	}
	m.messagesReceived, err = meter.Int64Counter(
		"pulsarview.session.messages.received",
		metric.WithDescription("Messages received across partition connections"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create received counter: %w", err)
	}
	m.sendErrors, err = meter.Int64Counter(
		"pulsarview.session.send.errors",
		metric.WithDescription("Negative or malformed produce acknowledgments"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}
	return m, nil
}
