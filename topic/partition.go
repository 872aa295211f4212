// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package topic

import (
	"strconv"
	"strings"
)

const partitionMarker = "-partition-"

// SplitPartition splits the "-partition-N" suffix off a local topic name.
// Returns the base name, the partition index and true when a suffix was
// present; the input unchanged, -1 and false otherwise.
func SplitPartition(name string) (string, int, bool) {
	i := strings.LastIndex(name, partitionMarker)
	if i < 0 {
		return name, -1, false
	}
	idx, err := strconv.Atoi(name[i+len(partitionMarker):])
	if err != nil || idx < 0 {
		return name, -1, false
	}
	return name[:i], idx, true
}

// DedupePartitioned collapses raw admin listing names into logical topics.
// Partition entries ("orders-partition-0", "orders-partition-1") fold into
// one topic with a partition count; plain names keep a count of zero.
// The raw listing does not label partitions, so the count is the number of
// distinct partition entries seen.
func DedupePartitioned(names []string) map[string]int {
	out := make(map[string]int, len(names))
	seen := make(map[string]map[int]struct{})
	for _, n := range names {
		base, idx, ok := SplitPartition(n)
		if !ok {
			if _, exists := out[base]; !exists {
				out[base] = 0
			}
			continue
		}
		if seen[base] == nil {
			seen[base] = make(map[int]struct{})
		}
		seen[base][idx] = struct{}{}
		out[base] = len(seen[base])
	}
	return out
}
