// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package tls loads client TLS material for admin and streaming
// connections.
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"
)

var (
	errLoadCerts    = errors.New("failed to load certificates")
	errLoadServerCA = errors.New("failed to load Server CA")
	errAppendCA     = errors.New("failed to append root ca tls.Config")
)

// Config points at the PEM material of one cluster connection. All
// fields are optional; mutual TLS needs both CertFile and KeyFile.
type Config struct {
	CertFile     string `yaml:"cert_file,omitempty"`
	KeyFile      string `yaml:"key_file,omitempty"`
	ServerCAFile string `yaml:"server_ca_file,omitempty"`
}

// Empty reports whether no TLS material is configured.
func (c Config) Empty() bool {
	return c.CertFile == "" && c.KeyFile == "" && c.ServerCAFile == ""
}

// LoadClientConfig returns a TLS configuration for client connections.
// A nil result means the default TLS stack suffices; insecure forces a
// non-nil config that skips server certificate verification.
func LoadClientConfig(c Config, insecure bool) (*tls.Config, error) {
	if c.Empty() && !insecure {
		return nil, nil
	}

	config := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecure,
	}

	if c.CertFile != "" || c.KeyFile != "" {
		certificate, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, errors.Join(errLoadCerts, err)
		}
		config.Certificates = []tls.Certificate{certificate}
	}

	rootCA, err := loadCertFile(c.ServerCAFile)
	if err != nil {
		return nil, errors.Join(errLoadServerCA, err)
	}
	if len(rootCA) > 0 {
		config.RootCAs = x509.NewCertPool()
		if !config.RootCAs.AppendCertsFromPEM(rootCA) {
			return nil, errAppendCA
		}
	}

	return config, nil
}

func loadCertFile(certFile string) ([]byte, error) {
	if certFile == "" {
		return nil, nil
	}
	return os.ReadFile(certFile)
}
