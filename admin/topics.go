// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"

	"github.com/absmach/pulsarview/topic"
)

// TopicInfo is one logical topic from a namespace listing. Partitions is
// zero for non-partitioned topics.
type TopicInfo struct {
	Address    topic.Address
	Partitions int
}

// PartitionedMetadata is the partition metadata of a topic. Partitions of
// zero means the topic is not partitioned.
type PartitionedMetadata struct {
	Partitions int `json:"partitions"`
}

// ListTopics returns the union of the persistent and non-persistent topic
// listings of a namespace, with partition entries folded into per-topic
// partition counts. Either sub-listing failing is tolerated and treated as
// empty: non-persistent topics are frequently disabled broker-side.
func (g *Gateway) ListTopics(ctx context.Context, tenant, namespace string) ([]TopicInfo, error) {
	var out []TopicInfo
	for _, mode := range []topic.Persistence{topic.Persistent, topic.NonPersistent} {
		path := "/" + mode.String() + "/" + url.PathEscape(tenant) + "/" + url.PathEscape(namespace)
		var names []string
		if err := g.do(ctx, http.MethodGet, path, nil, &names); err != nil {
			g.logger.Debug("topic listing unavailable",
				slog.String("mode", mode.String()),
				slog.String("namespace", tenant+"/"+namespace),
				slog.String("error", err.Error()))
			continue
		}
		counts := topic.DedupePartitioned(localNames(names))
		for name, partitions := range counts {
			out = append(out, TopicInfo{
				Address: topic.Address{
					Persistence: mode,
					Tenant:      tenant,
					Namespace:   namespace,
					LocalName:   name,
					Partition:   -1,
				},
				Partitions: partitions,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address.String() < out[j].Address.String()
	})
	return out, nil
}

// localNames strips listings down to local names; the admin surface
// returns fully-qualified addresses. Partition suffixes are kept raw so
// DedupePartitioned owns the fold.
func localNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		a := topic.Parse(n)
		if a.Partition >= 0 {
			out = append(out, fmt.Sprintf("%s-partition-%d", a.LocalName, a.Partition))
			continue
		}
		out = append(out, a.LocalName)
	}
	return out
}

// CreateTopic creates a topic. A partition count above zero creates a
// partitioned topic, zero a plain one.
func (g *Gateway) CreateTopic(ctx context.Context, addr topic.Address, partitions int) error {
	if partitions > 0 {
		return g.do(ctx, http.MethodPut, "/"+addr.Path()+"/partitions", partitions, nil)
	}
	return g.do(ctx, http.MethodPut, "/"+addr.Path(), nil, nil)
}

// PartitionedTopicMetadata fetches the partition metadata of a topic.
func (g *Gateway) PartitionedTopicMetadata(ctx context.Context, addr topic.Address) (PartitionedMetadata, error) {
	var meta PartitionedMetadata
	if err := g.do(ctx, http.MethodGet, "/"+addr.Path()+"/partitions", nil, &meta); err != nil {
		return PartitionedMetadata{}, err
	}
	return meta, nil
}

// DeleteTopic removes a topic, choosing the partitioned or plain delete
// endpoint based on partition metadata. When the metadata probe itself
// fails the plain delete is attempted anyway, best effort.
func (g *Gateway) DeleteTopic(ctx context.Context, addr topic.Address) error {
	meta, err := g.PartitionedTopicMetadata(ctx, addr)
	if err != nil {
		g.logger.Debug("partition metadata probe failed, attempting plain delete",
			slog.String("topic", addr.String()),
			slog.String("error", err.Error()))
	} else if meta.Partitions > 0 {
		return g.do(ctx, http.MethodDelete, "/"+addr.Path()+"/partitions", nil, nil)
	}
	return g.do(ctx, http.MethodDelete, "/"+addr.Path(), nil, nil)
}
