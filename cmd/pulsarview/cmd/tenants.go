// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/absmach/pulsarview/admin"
)

var (
	tenantAdminRoles      []string
	tenantAllowedClusters []string
)

var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "Manage tenants on a cluster",
}

var tenantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tenants visible on the cluster",
	Args:  cobra.NoArgs,
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

		tenants, err := a.registry.Tenants(cmd.Context(), cluster)
		if err != nil {
			return err
		}
		for _, t := range tenants {
			fmt.Println(t)
		}
		return nil
	},
}

var tenantsCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a tenant",
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

		gw, err := a.registry.Resolve(cluster)
		if err != nil {
			return err
		}
		info := admin.TenantInfo{
			AdminRoles:      tenantAdminRoles,
			AllowedClusters: tenantAllowedClusters,
		}
		if len(info.AllowedClusters) == 0 {
			clusters, err := gw.ListClusters(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to determine allowed clusters: %w", err)
			}
			info.AllowedClusters = clusters
		}
		if err := gw.CreateTenant(cmd.Context(), args[0], info); err != nil {
			return err
		}
		fmt.Printf("Tenant %q created\n", args[0])
		return nil
	},
}

var tenantsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a tenant",
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

		gw, err := a.registry.Resolve(cluster)
		if err != nil {
			return err
		}
		if err := gw.DeleteTenant(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Tenant %q deleted\n", args[0])
		return nil
	},
}

func init() {
	tenantsCreateCmd.Flags().StringSliceVar(&tenantAdminRoles, "admin-role", nil, "Admin role granted on the tenant (repeatable)")
	tenantsCreateCmd.Flags().StringSliceVar(&tenantAllowedClusters, "allowed-cluster", nil, "Cluster the tenant may use (defaults to all)")

	tenantsCmd.AddCommand(tenantsListCmd)
	tenantsCmd.AddCommand(tenantsCreateCmd)
	tenantsCmd.AddCommand(tenantsDeleteCmd)
	rootCmd.AddCommand(tenantsCmd)
}
