// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const defaultDialTimeout = 10 * time.Second

// conn is one partition-level streaming connection. Writes are serialized;
// gorilla allows a single concurrent writer.
type conn struct {
	ws        *websocket.Conn
	partition int

	writeMu sync.Mutex
	stopped atomic.Bool
}

// dial opens a websocket connection to the given streaming URL.
func dial(ctx context.Context, cfg Config, wsURL string, partition int) (*conn, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	switch {
	case cfg.TLS != nil:
		dialer.TLSClientConfig = cfg.TLS
	case cfg.InsecureTLS:
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	header := http.Header{}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}

	ws, _, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, wsURL, err)
	}
	return &conn{ws: ws, partition: partition}, nil
}

func (c *conn) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *conn) readJSON(v any) error {
	return c.ws.ReadJSON(v)
}

// close tears the connection down. The stopped flag lets read loops tell a
// deliberate close from a transport failure.
func (c *conn) close() error {
	c.stopped.Store(true)
	return c.ws.Close()
}

func (c *conn) isStopped() bool {
	return c.stopped.Load()
}
