// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe broker health of registered clusters",
	Long: `Probe the /brokers/health endpoint. Without --cluster every
registered cluster is probed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		var names []string
		if clusterName != "" {
			names = []string{clusterName}
		} else {
			for _, c := range a.registry.List() {
				names = append(names, c.Name)
			}
		}
		if len(names) == 0 {
			fmt.Println("No clusters registered")
			return nil
		}

		var failed bool
		for _, name := range names {
			gw, err := a.registry.Resolve(name)
			if err != nil {
				return err
			}
			if err := gw.Health(cmd.Context()); err != nil {
				failed = true
				fmt.Printf("%s\tUNHEALTHY\t%v\n", name, err)
				continue
			}
			fmt.Printf("%s\tOK\n", name)
		}
		if failed {
			return fmt.Errorf("one or more clusters are unhealthy")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
