// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"strings"

	pkgtls "github.com/absmach/pulsarview/pkg/tls"
)

// AuthMode is how a cluster connection authenticates.
type AuthMode string

// Supported auth modes.
const (
	AuthNone   AuthMode = "none"
	AuthToken  AuthMode = "token"
	AuthOAuth2 AuthMode = "oauth2"
	AuthTLS    AuthMode = "tls"
)

// Connection describes one configured cluster. The auth token is not part
// of the connection; it lives in the secret store only.
type Connection struct {
	Name             string        `yaml:"name"`
	WebServiceURL    string        `yaml:"web_service_url"`
	StreamingURL     string        `yaml:"streaming_url,omitempty"`
	AuthMode         AuthMode      `yaml:"auth_mode"`
	AllowInsecureTLS bool          `yaml:"allow_insecure_tls,omitempty"`
	TLS              pkgtls.Config `yaml:"tls,omitempty"`
}

// StreamURL returns the websocket base URL: the configured one, or the web
// service URL with its protocol substituted (http to ws, https to wss).
func (c Connection) StreamURL() string {
	if c.StreamingURL != "" {
		return c.StreamingURL
	}
	switch {
	case strings.HasPrefix(c.WebServiceURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.WebServiceURL, "https://")
	case strings.HasPrefix(c.WebServiceURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.WebServiceURL, "http://")
	}
	return c.WebServiceURL
}

// Snapshot is the durable form of the registry: cluster connections plus
// the manual namespace overlay, keyed by cluster name.
type Snapshot struct {
	Clusters   []Connection        `yaml:"clusters"`
	Namespaces map[string][]string `yaml:"namespaces,omitempty"`
}

// Store persists registry snapshots.
type Store interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}
