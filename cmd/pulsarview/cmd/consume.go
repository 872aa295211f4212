// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/absmach/pulsarview/archive"
	"github.com/absmach/pulsarview/filter"
	"github.com/absmach/pulsarview/session"
	"github.com/absmach/pulsarview/topic"
)

var (
	consumeSubscription string
	consumePosition     string
	consumeSubType      string
	consumeFilter       string
	consumeRegex        bool
	consumeAutoStop     bool
	consumeShowHidden   bool
	consumeArchivePath  string
)

var consumeCmd = &cobra.Command{
	Use:   "consume TOPIC",
	Short: "Stream messages from a topic",
	Long: `Consume from a topic over the websocket consumer endpoint, fanning
in all partitions. Runs until interrupted, or until a key filter match
when --auto-stop is set.`,
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

		cfg, err := sessionConfig(a, cluster)
		if err != nil {
			return err
		}
		gw, err := a.registry.Resolve(cluster)
		if err != nil {
			return err
		}

		var keyFilter *filter.KeyFilter
		if consumeFilter != "" {
			mode := filter.Exact
			if consumeRegex {
				mode = filter.Regex
			}
			keyFilter, err = filter.New(consumeFilter, mode, consumeAutoStop)
			if err != nil {
				return fmt.Errorf("invalid key filter: %w", err)
			}
		}

		position := session.Latest
		if consumePosition == "earliest" {
			position = session.Earliest
		} else if consumePosition != "latest" {
			return fmt.Errorf("--position must be earliest or latest")
		}

		var spool *archive.Writer
		if consumeArchivePath != "" {
			spool, err = archive.NewWriter(consumeArchivePath)
			if err != nil {
				return err
			}
			defer spool.Close()
		}

		c, err := session.NewConsumer(cfg, gw, nil)
		if err != nil {
			return err
		}
		addr := topic.Parse(args[0])
		opts := session.ConsumerOptions{
			Subscription:     consumeSubscription,
			Position:         position,
			SubscriptionType: consumeSubType,
			Filter:           keyFilter,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := c.Open(ctx, addr, opts); err != nil {
			return err
		}
		go func() {
			<-ctx.Done()
			c.Close()
		}()

		for ev := range c.Events() {
			switch e := ev.(type) {
			case session.MessageEvent:
				if e.Hidden && !consumeShowHidden {
					continue
				}
				printMessage(addr, e)
				if spool != nil {
					rec := archive.Record{
						Topic:           addr.String(),
						Partition:       e.Partition,
						MessageID:       e.MessageID,
						Key:             e.Key,
						Payload:         e.Payload,
						Properties:      e.Properties,
						PublishTime:     e.PublishTime,
						ReceivedAt:      time.Now().UTC(),
						RedeliveryCount: e.RedeliveryCount,
					}
					if err := spool.Append(rec); err != nil {
						c.Close()
						return fmt.Errorf("failed to archive message: %w", err)
					}
				}
			case session.StoppedOnMatchEvent:
				fmt.Printf("-- stopped on key match at %s (partition %d)\n", e.MessageID, e.Partition)
			case session.ConnDownEvent:
				fmt.Printf("-- partition %d connection lost: %v\n", e.Partition, e.Err)
			case session.ClosedEvent:
			}
		}

		received, errs := c.Counters()
		fmt.Printf("-- %d messages received, %d errors\n", received, errs)
		return nil
	},
}

func printMessage(addr topic.Address, e session.MessageEvent) {
	header := e.MessageID
	if e.Partition >= 0 {
		header = fmt.Sprintf("%s [p%d]", e.MessageID, e.Partition)
	}
	if e.Key != "" {
		header += " key=" + e.Key
	}
	if e.Match {
		header += " MATCH"
	}
	if e.RedeliveryCount > 0 {
		header += fmt.Sprintf(" redelivered=%d", e.RedeliveryCount)
	}
	fmt.Printf("%s %s\n", e.PublishTime.Format(time.RFC3339), header)
	fmt.Println(e.Pretty)
	for k, v := range e.Properties {
		fmt.Printf("  %s: %s\n", k, v)
	}
}

func init() {
	consumeCmd.Flags().StringVarP(&consumeSubscription, "subscription", "s", "", "Subscription name (required)")
	consumeCmd.Flags().StringVar(&consumePosition, "position", "latest", "Start position for a new subscription (earliest, latest)")
	consumeCmd.Flags().StringVar(&consumeSubType, "type", "", "Subscription type (Exclusive, Shared, Failover, KeyShared)")
	consumeCmd.Flags().StringVar(&consumeFilter, "filter", "", "Key filter pattern")
	consumeCmd.Flags().BoolVar(&consumeRegex, "regex", false, "Treat the key filter as a regular expression")
	consumeCmd.Flags().BoolVar(&consumeAutoStop, "auto-stop", false, "Stop consuming on the first key match")
	consumeCmd.Flags().BoolVar(&consumeShowHidden, "show-hidden", false, "Print messages the key filter would hide")
	consumeCmd.Flags().StringVar(&consumeArchivePath, "archive", "", "Spool messages to a zstd-compressed NDJSON file")
	consumeCmd.MarkFlagRequired("subscription")
	rootCmd.AddCommand(consumeCmd)
}
