// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/absmach/pulsarview/topic"
)

var subscriptionsCmd = &cobra.Command{
	Use:     "subscriptions",
	Aliases: []string{"subs"},
	Short:   "Manage subscriptions on a topic",
}

var subsListCmd = &cobra.Command{
	Use:   "list TOPIC",
	Short: "List subscriptions of a topic",
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
		subs, err := gw.ListSubscriptions(cmd.Context(), topic.Parse(args[0]))
		if err != nil {
			return err
		}
		for _, s := range subs {
			fmt.Println(s)
		}
		return nil
	},
}

var subsStatsCmd = &cobra.Command{
	Use:   "stats TOPIC SUBSCRIPTION",
	Short: "Show backlog and consumer stats of a subscription",
	Args:  cobra.ExactArgs(2),
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
		stats, err := gw.GetSubscriptionStats(cmd.Context(), topic.Parse(args[0]), args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s on %s\n", args[1], args[0])
		fmt.Printf("  type:     %s\n", stats.Type)
		fmt.Printf("  backlog:  %d\n", stats.MsgBacklog)
		fmt.Printf("  rate out: %.2f msg/s\n", stats.MsgRateOut)
		for _, c := range stats.Consumers {
			fmt.Printf("  consumer %s (%s)\n", c.ConsumerName, c.Address)
		}
		return nil
	},
}

var subsCreateCmd = &cobra.Command{
	Use:   "create TOPIC SUBSCRIPTION",
	Short: "Create a subscription at the latest position",
	Args:  cobra.ExactArgs(2),
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
		if err := gw.CreateSubscription(cmd.Context(), topic.Parse(args[0]), args[1]); err != nil {
			return err
		}
		fmt.Printf("Subscription %q created on %s\n", args[1], args[0])
		return nil
	},
}

var subsDeleteCmd = &cobra.Command{
	Use:   "delete TOPIC SUBSCRIPTION",
	Short: "Delete a subscription",
	Args:  cobra.ExactArgs(2),
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
		if err := gw.DeleteSubscription(cmd.Context(), topic.Parse(args[0]), args[1]); err != nil {
			return err
		}
		fmt.Printf("Subscription %q deleted from %s\n", args[1], args[0])
		return nil
	},
}

var subsSkipCmd = &cobra.Command{
	Use:   "skip TOPIC SUBSCRIPTION",
	Short: "Skip all backlogged messages of a subscription",
	Args:  cobra.ExactArgs(2),
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
		if err := gw.SkipAllMessages(cmd.Context(), topic.Parse(args[0]), args[1]); err != nil {
			return err
		}
		fmt.Printf("Backlog cleared for %q on %s\n", args[1], args[0])
		return nil
	},
}

func init() {
	subscriptionsCmd.AddCommand(subsListCmd)
	subscriptionsCmd.AddCommand(subsStatsCmd)
	subscriptionsCmd.AddCommand(subsCreateCmd)
	subscriptionsCmd.AddCommand(subsDeleteCmd)
	subscriptionsCmd.AddCommand(subsSkipCmd)
	rootCmd.AddCommand(subscriptionsCmd)
}
