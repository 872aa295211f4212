// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	pkgtls "github.com/absmach/pulsarview/pkg/tls"
	"github.com/absmach/pulsarview/registry"
)

var (
	addWebURL    string
	addStreamURL string
	addAuthMode  string
	addToken     string
	addInsecure  bool
	addTLSCert   string
	addTLSKey    string
	addTLSCA     string
)

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Manage registered clusters",
}

var clustersAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Register a cluster after probing its admin endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		conn := registry.Connection{
			Name:             args[0],
			WebServiceURL:    addWebURL,
			StreamingURL:     addStreamURL,
			AuthMode:         registry.AuthMode(addAuthMode),
			AllowInsecureTLS: addInsecure,
			TLS: pkgtls.Config{
				CertFile:     addTLSCert,
				KeyFile:      addTLSKey,
				ServerCAFile: addTLSCA,
			},
		}
		if err := a.registry.Add(cmd.Context(), conn, addToken); err != nil {
			return err
		}
		fmt.Printf("Cluster %q registered\n", args[0])
		return nil
	},
}

var clustersRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a registered cluster and its stored token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.registry.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("Cluster %q removed\n", args[0])
		return nil
	},
}

var clustersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered clusters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		conns := a.registry.List()
		if len(conns) == 0 {
			fmt.Println("No clusters registered")
			return nil
		}
		for _, c := range conns {
			fmt.Printf("%s\t%s\t%s\tauth=%s\n", c.Name, c.WebServiceURL, c.StreamURL(), c.AuthMode)
		}
		return nil
	},
}

var clustersTokenCmd = &cobra.Command{
	Use:   "token NAME TOKEN",
	Short: "Replace the stored bearer token of a cluster",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.registry.UpdateToken(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Token updated for cluster %q\n", args[0])
		return nil
	},
}

func init() {
	clustersAddCmd.Flags().StringVar(&addWebURL, "web-url", "", "Admin REST base URL (required)")
	clustersAddCmd.Flags().StringVar(&addStreamURL, "stream-url", "", "Websocket base URL (defaults to web-url with ws scheme)")
	clustersAddCmd.Flags().StringVar(&addAuthMode, "auth", string(registry.AuthNone), "Auth mode (none, token, oauth2, tls)")
	clustersAddCmd.Flags().StringVar(&addToken, "token", "", "Bearer token stored in the local vault")
	clustersAddCmd.Flags().BoolVar(&addInsecure, "insecure", false, "Skip TLS certificate verification")
	clustersAddCmd.Flags().StringVar(&addTLSCert, "tls-cert", "", "Client certificate for mutual TLS")
	clustersAddCmd.Flags().StringVar(&addTLSKey, "tls-key", "", "Client key for mutual TLS")
	clustersAddCmd.Flags().StringVar(&addTLSCA, "tls-ca", "", "CA bundle for server verification")
	clustersAddCmd.MarkFlagRequired("web-url")

	clustersCmd.AddCommand(clustersAddCmd)
	clustersCmd.AddCommand(clustersRemoveCmd)
	clustersCmd.AddCommand(clustersListCmd)
	clustersCmd.AddCommand(clustersTokenCmd)
	rootCmd.AddCommand(clustersCmd)
}
