// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var nsManual bool

var namespacesCmd = &cobra.Command{
	Use:   "namespaces",
	Short: "Manage namespaces on a cluster",
}

var namespacesListCmd = &cobra.Command{
	Use:   "list TENANT",
	Short: "List namespaces of a tenant, merged with manual entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cluster, err := requireCluster()
		if err != nil {
			return err
		}
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		namespaces, err := a.registry.Namespaces(cmd.Context(), cluster, args[0])
		if err != nil {
			return err
		}
		for _, ns := range namespaces {
			fmt.Println(ns)
		}
		return nil
	},
}

var namespacesCreateCmd = &cobra.Command{
	Use:   "create TENANT/NAMESPACE",
	Short: "Create a namespace, or record it manually with --manual",
	Long: `Create a namespace through the admin API. With --manual the namespace
is only recorded locally, for clusters where the token cannot list or
create namespaces but can still produce and consume.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cluster, err := requireCluster()
		if err != nil {
			return err
		}
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if nsManual {
			if err := a.registry.AddNamespace(cluster, args[0]); err != nil {
				return err
			}
			fmt.Printf("Namespace %q recorded for cluster %q\n", args[0], cluster)
			return nil
		}

		tenant, ns, ok := strings.Cut(args[0], "/")
		if !ok || tenant == "" || ns == "" {
			return fmt.Errorf("namespace must be of the form tenant/namespace")
		}
		gw, err := a.registry.Resolve(cluster)
		if err != nil {
			return err
		}
		if err := gw.CreateNamespace(cmd.Context(), tenant, ns); err != nil {
			return err
		}
		fmt.Printf("Namespace %q created\n", args[0])
		return nil
	},
}

var namespacesDeleteCmd = &cobra.Command{
	Use:   "delete TENANT/NAMESPACE",
	Short: "Delete a namespace, or forget a manual entry with --manual",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cluster, err := requireCluster()
		if err != nil {
			return err
		}
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if nsManual {
			if err := a.registry.RemoveNamespace(cluster, args[0]); err != nil {
				return err
			}
			fmt.Printf("Namespace %q forgotten for cluster %q\n", args[0], cluster)
			return nil
		}

		tenant, ns, ok := strings.Cut(args[0], "/")
		if !ok || tenant == "" || ns == "" {
			return fmt.Errorf("namespace must be of the form tenant/namespace")
		}
		gw, err := a.registry.Resolve(cluster)
		if err != nil {
			return err
		}
		if err := gw.DeleteNamespace(cmd.Context(), tenant, ns); err != nil {
			return err
		}
		fmt.Printf("Namespace %q deleted\n", args[0])
		return nil
	},
}

func init() {
	namespacesCreateCmd.Flags().BoolVar(&nsManual, "manual", false, "Record locally instead of calling the admin API")
	namespacesDeleteCmd.Flags().BoolVar(&nsManual, "manual", false, "Forget the local record instead of calling the admin API")

	namespacesCmd.AddCommand(namespacesListCmd)
	namespacesCmd.AddCommand(namespacesCreateCmd)
	namespacesCmd.AddCommand(namespacesDeleteCmd)
	rootCmd.AddCommand(namespacesCmd)
}
