// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"context"
	"net/http"
	"net/url"

	"github.com/absmach/pulsarview/topic"
)

// SubscriptionStats is the read-only projection of one subscription.
type SubscriptionStats struct {
	Type       string  `json:"type"`
	MsgBacklog int64   `json:"msgBacklog"`
	MsgRateOut float64 `json:"msgRateOut"`
	Consumers  []struct {
		ConsumerName string `json:"consumerName"`
		Address      string `json:"address"`
	} `json:"consumers"`
}

// TopicStats is the per-topic stats document.
type TopicStats struct {
	MsgRateIn     float64                      `json:"msgRateIn"`
	MsgRateOut    float64                      `json:"msgRateOut"`
	StorageSize   int64                        `json:"storageSize"`
	Subscriptions map[string]SubscriptionStats `json:"subscriptions"`
}

// ListSubscriptions returns the subscription names of a topic.
func (g *Gateway) ListSubscriptions(ctx context.Context, addr topic.Address) ([]string, error) {
	var subs []string
	if err := g.do(ctx, http.MethodGet, "/"+addr.Path()+"/subscriptions", nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// TopicStats fetches the regular stats document of a topic.
func (g *Gateway) TopicStats(ctx context.Context, addr topic.Address) (TopicStats, error) {
	var stats TopicStats
	if err := g.do(ctx, http.MethodGet, "/"+addr.Path()+"/stats", nil, &stats); err != nil {
		return TopicStats{}, err
	}
	return stats, nil
}

// PartitionedTopicStats fetches the aggregate stats of a partitioned topic.
func (g *Gateway) PartitionedTopicStats(ctx context.Context, addr topic.Address) (TopicStats, error) {
	var stats TopicStats
	if err := g.do(ctx, http.MethodGet, "/"+addr.Path()+"/partitioned-stats", nil, &stats); err != nil {
		return TopicStats{}, err
	}
	return stats, nil
}

// GetSubscriptionStats fetches stats for one subscription via the topic's
// regular stats endpoint. A 404 there is retried against the partitioned
// aggregate endpoint: topics created partitioned have no bare-name stats.
// If the retry also fails the original error is surfaced.
func (g *Gateway) GetSubscriptionStats(ctx context.Context, addr topic.Address, subscription string) (SubscriptionStats, error) {
	stats, err := g.TopicStats(ctx, addr)
	if err != nil {
		if !IsNotFound(err) {
			return SubscriptionStats{}, err
		}
		partStats, perr := g.PartitionedTopicStats(ctx, addr)
		if perr != nil {
			return SubscriptionStats{}, err
		}
		stats = partStats
	}
	sub, ok := stats.Subscriptions[subscription]
	if !ok {
		return SubscriptionStats{}, &HTTPError{StatusCode: http.StatusNotFound,
			Body: "subscription " + subscription + " not found on " + addr.String()}
	}
	return sub, nil
}

// CreateSubscription creates a subscription on a topic.
func (g *Gateway) CreateSubscription(ctx context.Context, addr topic.Address, subscription string) error {
	return g.do(ctx, http.MethodPut, "/"+addr.Path()+"/subscription/"+url.PathEscape(subscription), nil, nil)
}

// DeleteSubscription removes a subscription.
func (g *Gateway) DeleteSubscription(ctx context.Context, addr topic.Address, subscription string) error {
	return g.do(ctx, http.MethodDelete, "/"+addr.Path()+"/subscription/"+url.PathEscape(subscription), nil, nil)
}

// SkipAllMessages clears the backlog of a subscription.
func (g *Gateway) SkipAllMessages(ctx context.Context, addr topic.Address, subscription string) error {
	return g.do(ctx, http.MethodPost, "/"+addr.Path()+"/subscription/"+url.PathEscape(subscription)+"/skip_all", nil, nil)
}
