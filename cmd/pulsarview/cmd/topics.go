// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/absmach/pulsarview/topic"
)

var createPartitions int

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Manage topics on a cluster",
}

var topicsListCmd = &cobra.Command{
	Use:   "list TENANT/NAMESPACE",
	Short: "List topics of a namespace with partition counts",
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
		tenant, ns, ok := strings.Cut(args[0], "/")
		if !ok || tenant == "" || ns == "" {
			return fmt.Errorf("namespace must be of the form tenant/namespace")
		}
		topics, err := gw.ListTopics(cmd.Context(), tenant, ns)
		if err != nil {
			return err
		}
		if len(topics) == 0 {
			fmt.Println("No topics found")
			return nil
		}
		for _, t := range topics {
			if t.Partitions > 0 {
				fmt.Printf("%s\tpartitions=%d\n", t.Address, t.Partitions)
			} else {
				fmt.Println(t.Address)
			}
		}
		return nil
	},
}

var topicsCreateCmd = &cobra.Command{
	Use:   "create TOPIC",
	Short: "Create a topic, partitioned when --partitions is set",
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
		addr := topic.Parse(args[0])
		if err := gw.CreateTopic(cmd.Context(), addr, createPartitions); err != nil {
			return err
		}
		fmt.Printf("Topic %s created\n", addr)
		return nil
	},
}

var topicsDeleteCmd = &cobra.Command{
	Use:   "delete TOPIC",
	Short: "Delete a topic, partitioned or not",
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
		addr := topic.Parse(args[0])
		if err := gw.DeleteTopic(cmd.Context(), addr); err != nil {
			return err
		}
		fmt.Printf("Topic %s deleted\n", addr)
		return nil
	},
}

var topicsStatsCmd = &cobra.Command{
	Use:   "stats TOPIC",
	Short: "Show throughput, storage and subscription stats of a topic",
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
		addr := topic.Parse(args[0])

		stats, err := gw.TopicStats(cmd.Context(), addr)
		if err != nil {
			meta, merr := gw.PartitionedTopicMetadata(cmd.Context(), addr)
			if merr != nil || meta.Partitions == 0 {
				return err
			}
			stats, err = gw.PartitionedTopicStats(cmd.Context(), addr)
			if err != nil {
				return err
			}
		}

		fmt.Printf("%s\n", addr)
		fmt.Printf("  rate in:      %.2f msg/s\n", stats.MsgRateIn)
		fmt.Printf("  rate out:     %.2f msg/s\n", stats.MsgRateOut)
		fmt.Printf("  storage size: %d bytes\n", stats.StorageSize)
		for name, sub := range stats.Subscriptions {
			fmt.Printf("  subscription %s: type=%s backlog=%d consumers=%d\n",
				name, sub.Type, sub.MsgBacklog, len(sub.Consumers))
		}
		return nil
	},
}

func init() {
	topicsCreateCmd.Flags().IntVar(&createPartitions, "partitions", 0, "Partition count (0 creates a non-partitioned topic)")

	topicsCmd.AddCommand(topicsListCmd)
	topicsCmd.AddCommand(topicsCreateCmd)
	topicsCmd.AddCommand(topicsDeleteCmd)
	topicsCmd.AddCommand(topicsStatsCmd)
	rootCmd.AddCommand(topicsCmd)
}
