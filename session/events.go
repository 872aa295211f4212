// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package session

import "time"

// Event is one item on a session's observable stream. Callers register by
// draining Events(); the session never publishes to any global bus.
type Event interface {
	sessionEvent()
}

// MessageEvent is a consumed message. Partition is the source partition
// index, -1 when the topic is not partitioned. Messages from different
// partitions interleave in arrival order; no cross-partition ordering is
// implied.
type MessageEvent struct {
	Partition       int
	MessageID       string
	Key             string
	Payload         string
	Pretty          string
	Properties      map[string]string
	PublishTime     time.Time
	RedeliveryCount int

	// Match and Hidden carry the key filter verdict for this message.
	Match  bool
	Hidden bool
}

// SendResultEvent is the asynchronous outcome of one produce call,
// correlated by the id returned from Send.
type SendResultEvent struct {
	OK            bool
	MessageID     string
	CorrelationID string
	ErrorMsg      string
}

// ConnDownEvent reports the failure of one partition connection. Sibling
// partitions keep running; the session does not reconnect on its own.
type ConnDownEvent struct {
	Partition int
	Err       error
}

// StoppedOnMatchEvent fires exactly once when an auto-stop filter matched
// and the whole session closed in response. Distinct from a plain
// disconnect so callers can surface the match.
type StoppedOnMatchEvent struct {
	Partition int
	MessageID string
}

// ClosedEvent is the final event before the stream closes.
type ClosedEvent struct{}

func (MessageEvent) sessionEvent()        {}
func (SendResultEvent) sessionEvent()     {}
func (ConnDownEvent) sessionEvent()       {}
func (StoppedOnMatchEvent) sessionEvent() {}
func (ClosedEvent) sessionEvent()         {}
