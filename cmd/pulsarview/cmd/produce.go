// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	pkgtls "github.com/absmach/pulsarview/pkg/tls"
	"github.com/absmach/pulsarview/session"
	"github.com/absmach/pulsarview/topic"
)

var (
	produceKey        string
	produceProperties []string
	producePartition  int
)

// sessionConfig builds the websocket transport config for a cluster.
func sessionConfig(a *app, cluster string) (session.Config, error) {
	conn, err := a.registry.Connection(cluster)
	if err != nil {
		return session.Config{}, err
	}
	token, err := a.registry.Token(cluster)
	if err != nil {
		return session.Config{}, err
	}
	tlsConf, err := pkgtls.LoadClientConfig(conn.TLS, conn.AllowInsecureTLS)
	if err != nil {
		return session.Config{}, fmt.Errorf("failed to load TLS material: %w", err)
	}
	return session.Config{
		StreamURL:   conn.StreamURL(),
		Token:       token,
		InsecureTLS: conn.AllowInsecureTLS,
		TLS:         tlsConf,
		DialTimeout: a.cfg.Session.DialTimeout,
		EventBuffer: a.cfg.Session.EventBuffer,
	}, nil
}

func parseProperties(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	props := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("property must be of the form key=value: %q", p)
		}
		props[k] = v
	}
	return props, nil
}

var produceCmd = &cobra.Command{
	Use:   "produce TOPIC [PAYLOAD]",
	Short: "Publish messages to a topic",
	Long: `Publish to a topic over the websocket producer endpoint. With a
PAYLOAD argument one message is sent; without it each line read from
stdin becomes a message.`,
	Args: cobra.RangeArgs(1, 2),
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
		props, err := parseProperties(produceProperties)
		if err != nil {
			return err
		}
		gw, err := a.registry.Resolve(cluster)
		if err != nil {
			return err
		}

		p, err := session.NewProducer(cfg, gw, nil)
		if err != nil {
			return err
		}
		opts := session.ProducerOptions{
			Partition:  producePartition,
			RatePerSec: a.cfg.Session.RatePerSec,
			RateBurst:  a.cfg.Session.RateBurst,
		}
		if err := p.Open(cmd.Context(), topic.Parse(args[0]), opts); err != nil {
			return err
		}
		defer p.Close()

		send := func(payload string) error {
			id, err := p.Send(cmd.Context(), []byte(payload), produceKey, props)
			if err != nil {
				return err
			}
			for ev := range p.Events() {
				switch e := ev.(type) {
				case session.SendResultEvent:
					if e.CorrelationID != id {
						continue
					}
					if !e.OK {
						return fmt.Errorf("broker rejected message: %s", e.ErrorMsg)
					}
					fmt.Printf("sent %s\n", e.MessageID)
					return nil
				case session.ConnDownEvent:
					return fmt.Errorf("connection lost: %v", e.Err)
				}
			}
			return session.ErrClosed
		}

		if len(args) == 2 {
			return send(args[1])
		}

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			if err := send(scanner.Text()); err != nil {
				return err
			}
		}
		return scanner.Err()
	},
}

func init() {
	produceCmd.Flags().StringVarP(&produceKey, "key", "k", "", "Partition key attached to every message")
	produceCmd.Flags().StringArrayVarP(&produceProperties, "property", "p", nil, "Message property key=value (repeatable)")
	produceCmd.Flags().IntVar(&producePartition, "partition", 0, "Partition to produce to when the topic is partitioned")
	rootCmd.AddCommand(produceCmd)
}
