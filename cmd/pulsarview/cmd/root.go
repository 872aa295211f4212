// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package cmd implements the pulsarview command tree.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/absmach/pulsarview/config"
	"github.com/absmach/pulsarview/observe"
	"github.com/absmach/pulsarview/registry"
	badgersecrets "github.com/absmach/pulsarview/secrets/badger"
)

var (
	configFile  string
	clusterName string
)

var rootCmd = &cobra.Command{
	Use:   "pulsarview",
	Short: "Pulsar cluster management and messaging client",
	Long: `pulsarview manages Pulsar clusters over the admin REST API and
streams messages over the websocket endpoints.

Most commands operate on one cluster, selected with --cluster. Register
clusters first with "pulsarview clusters add".`,
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&clusterName, "cluster", "c", "", "Cluster to operate on")
}

// app bundles the wired application state commands run against.
type app struct {
	cfg      *config.Config
	registry *registry.Registry

	shutdown []func(context.Context) error
}

// initApp loads configuration, sets up logging and metrics, and opens
// the registry. Callers must defer a.close().
func initApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}
	slog.SetDefault(slog.New(handler))

	a := &app{cfg: cfg}

	otelShutdown, err := observe.InitProvider(ctx, observe.Config{
		Enabled:        cfg.Otel.Enabled,
		Endpoint:       cfg.Otel.Endpoint,
		ServiceName:    cfg.Otel.ServiceName,
		ServiceVersion: cfg.Otel.ServiceVersion,
		Interval:       cfg.Otel.Interval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	a.shutdown = append(a.shutdown, otelShutdown)

	vault, err := badgersecrets.New(badgersecrets.Config{Dir: cfg.Storage.SecretsDir})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open secret store: %w", err)
	}
	a.shutdown = append(a.shutdown, func(context.Context) error { return vault.Close() })

	reg, err := registry.New(config.NewClusterStore(cfg.Storage.ClustersFile), vault, cfg.Admin.Timeout, slog.Default())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load cluster registry: %w", err)
	}
	a.registry = reg

	return a, nil
}

func (a *app) close() {
	ctx := context.Background()
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](ctx); err != nil {
			slog.Warn("shutdown error", "error", err)
		}
	}
}

// requireCluster validates the --cluster flag.
func requireCluster() (string, error) {
	if clusterName == "" {
		return "", fmt.Errorf("--cluster is required")
	}
	return clusterName, nil
}
