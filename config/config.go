// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package config loads application configuration and persists the
// cluster registry snapshot.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the pulsarview client.
type Config struct {
	Admin   AdminConfig   `yaml:"admin"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Otel    OtelConfig    `yaml:"otel"`
}

// AdminConfig holds admin REST client settings.
type AdminConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig holds messaging session settings.
type SessionConfig struct {
	DialTimeout time.Duration `yaml:"dial_timeout"`
	EventBuffer int           `yaml:"event_buffer"`
	RatePerSec  float64       `yaml:"rate_per_sec"` // 0 disables producer rate limiting
	RateBurst   int           `yaml:"rate_burst"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// StorageConfig holds local state locations.
type StorageConfig struct {
	ClustersFile string `yaml:"clusters_file"` // registry snapshot
	SecretsDir   string `yaml:"secrets_dir"`   // badger token vault
}

// OtelConfig holds OpenTelemetry export settings.
type OtelConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Endpoint       string        `yaml:"endpoint"`
	ServiceName    string        `yaml:"service_name"`
	ServiceVersion string        `yaml:"service_version"`
	Interval       time.Duration `yaml:"interval"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Admin: AdminConfig{
			Timeout: 30 * time.Second,
		},
		Session: SessionConfig{
			DialTimeout: 10 * time.Second,
			EventBuffer: 256,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			ClustersFile: defaultStatePath("clusters.yaml"),
			SecretsDir:   defaultStatePath("secrets"),
		},
		Otel: OtelConfig{
			Enabled:        false,
			Endpoint:       "localhost:4317",
			ServiceName:    "pulsarview",
			ServiceVersion: "1.0.0",
			Interval:       10 * time.Second,
		},
	}
}

func defaultStatePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return home + "/.pulsarview/" + name
}

// Load loads configuration from a YAML file.
// If the file doesn't exist, returns default configuration.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Admin.Timeout <= 0 {
		return fmt.Errorf("admin.timeout must be positive")
	}
	if c.Session.DialTimeout <= 0 {
		return fmt.Errorf("session.dial_timeout must be positive")
	}
	if c.Session.EventBuffer < 1 {
		return fmt.Errorf("session.event_buffer must be at least 1")
	}
	if c.Session.RatePerSec < 0 {
		return fmt.Errorf("session.rate_per_sec cannot be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("log.format must be one of: text, json")
	}

	if c.Storage.ClustersFile == "" {
		return fmt.Errorf("storage.clusters_file cannot be empty")
	}
	if c.Otel.Enabled && c.Otel.Endpoint == "" {
		return fmt.Errorf("otel.endpoint required when otel is enabled")
	}

	return nil
}
