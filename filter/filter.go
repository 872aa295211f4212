// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package filter evaluates message keys against an operator-configured
// pattern on the consume hot path.
package filter

import (
	"fmt"
	"regexp"
)

// Mode selects how the pattern is matched.
type Mode int

// Match modes.
const (
	Exact Mode = iota
	Regex
)

// KeyFilter matches message keys. The zero value is inactive: it matches
// nothing and hides nothing. Regex patterns compile once at construction,
// keeping the per-message path free of repeated failure cost.
type KeyFilter struct {
	pattern  string
	mode     Mode
	re       *regexp.Regexp
	autoStop bool
	active   bool
}

// New configures a filter. A regex pattern that fails to compile yields an
// inactive filter and the compile error, never a per-message failure.
func New(pattern string, mode Mode, autoStop bool) (*KeyFilter, error) {
	f := &KeyFilter{pattern: pattern, mode: mode, autoStop: autoStop}
	if pattern == "" {
		return f, nil
	}
	if mode == Regex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return &KeyFilter{}, fmt.Errorf("invalid key filter pattern: %w", err)
		}
		f.re = re
	}
	f.active = true
	return f, nil
}

// Active reports whether a pattern is configured.
func (f *KeyFilter) Active() bool {
	return f != nil && f.active
}

// AutoStop reports whether consumption should stop on the first match.
func (f *KeyFilter) AutoStop() bool {
	return f.Active() && f.autoStop
}

// Matches reports whether key matches the configured pattern. An inactive
// filter matches nothing; so does a message without a key.
func (f *KeyFilter) Matches(key string) bool {
	if !f.Active() || key == "" {
		return false
	}
	if f.mode == Regex {
		return f.re.MatchString(key)
	}
	return key == f.pattern
}

// ShouldHide reports whether a message with the given key should be
// de-emphasized: true iff a filter is active and the key does not match.
// Filtering hides non-matches rather than dropping them, so the full
// history stays available.
func (f *KeyFilter) ShouldHide(key string) bool {
	return f.Active() && !f.Matches(key)
}
