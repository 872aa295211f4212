// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/absmach/pulsarview/filter"
	"github.com/absmach/pulsarview/topic"
)

// StartPosition selects where a new subscription begins.
type StartPosition int

// Start positions.
const (
	Latest StartPosition = iota
	Earliest
)

func (p StartPosition) String() string {
	if p == Earliest {
		return "earliest"
	}
	return "latest"
}

// ConsumerOptions configure one consumer session. The whole value is
// swapped atomically by Reconfigure; there is no mutable current-filter or
// current-subscription field visible mid-update.
type ConsumerOptions struct {
	Subscription string
	Position     StartPosition

	// SubscriptionType is passed through to the broker. Empty leaves the
	// broker default.
	SubscriptionType string

	// Filter is the key filter applied per received message. Nil means no
	// filtering.
	Filter *filter.KeyFilter
}

// consumerGen is one set of partition connections. Reconfigure replaces
// the generation wholesale so readers never observe a half-updated one.
type consumerGen struct {
	opts  ConsumerOptions
	conns []*conn
	stop  chan struct{}
	wg    sync.WaitGroup
}

// Consumer is a consume session for one logical topic. For a partitioned
// topic it fans out one connection per partition and fans arrivals into a
// single event stream, in arrival order only: no ordering across
// partitions is attempted.
type Consumer struct {
	cfg      Config
	resolver MetadataResolver
	logger   *slog.Logger
	state    *stateManager
	metrics  *sessionMetrics

	mu         sync.Mutex
	gen        *consumerGen
	addr       topic.Address
	partitions int

	events    chan Event
	closedCh  chan struct{}
	closeOnce sync.Once
	stopOnce  sync.Once

	received atomic.Uint64
	errs     atomic.Uint64
}

// NewConsumer creates an idle consumer session.
func NewConsumer(cfg Config, resolver MetadataResolver, logger *slog.Logger) (*Consumer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	metrics, err := newSessionMetrics()
	if err != nil {
		return nil, err
	}
	return &Consumer{
		cfg:      cfg,
		resolver: resolver,
		logger:   logger,
		state:    newStateManager(),
		metrics:  metrics,
		events:   make(chan Event, cfg.eventBuffer()),
		closedCh: make(chan struct{}),
	}, nil
}

// Events returns the fan-in stream. It closes after Close; a ClosedEvent
// is the final item.
func (c *Consumer) Events() <-chan Event {
	return c.events
}

// State returns the current session state.
func (c *Consumer) State() State {
	return c.state.get()
}

// Counters returns the monotonic received and error counts.
func (c *Consumer) Counters() (received, errors uint64) {
	return c.received.Load(), c.errs.Load()
}

// Open resolves partition metadata and connects: one connection per
// partition under the same subscription name, or a single connection for a
// non-partitioned topic. A metadata lookup failure is treated as
// non-partitioned.
func (c *Consumer) Open(ctx context.Context, addr topic.Address, opts ConsumerOptions) error {
	if c.state.isClosed() {
		return ErrClosed
	}
	if !c.state.transition(StateIdle, StateConnecting) {
		return ErrAlreadyOpen
	}

	partitions := resolvePartitions(ctx, c.resolver, addr)
	gen, err := c.openGen(ctx, addr, partitions, opts)
	if err != nil {
		c.state.transition(StateConnecting, StateIdle)
		return err
	}

	c.mu.Lock()
	if !c.state.transition(StateConnecting, StateOpen) {
		c.mu.Unlock()
		teardownGen(gen)
		return ErrClosed
	}
	c.gen = gen
	c.addr = addr
	c.partitions = partitions
	c.startGen(gen)
	c.mu.Unlock()

	c.logger.Debug("consumer session open",
		slog.String("topic", addr.String()),
		slog.String("subscription", opts.Subscription),
		slog.Int("connections", len(gen.conns)))
	return nil
}

// openGen dials every partition connection of a generation. Any dial
// failing closes the ones already opened; opening is all-or-nothing even
// though receiving later is not.
func (c *Consumer) openGen(ctx context.Context, addr topic.Address, partitions int, opts ConsumerOptions) (*consumerGen, error) {
	targets := []topic.Address{addr}
	if partitions > 0 {
		targets = make([]topic.Address, 0, partitions)
		for i := 0; i < partitions; i++ {
			targets = append(targets, addr.Child(i))
		}
	}

	gen := &consumerGen{opts: opts, stop: make(chan struct{})}
	for _, target := range targets {
		wsURL := consumerURL(c.cfg, target, opts.Subscription, opts.SubscriptionType, opts.Position.String())
		cn, err := dial(ctx, c.cfg, wsURL, target.Partition)
		if err != nil {
			for _, open := range gen.conns {
				open.close()
			}
			return nil, err
		}
		gen.conns = append(gen.conns, cn)
	}
	return gen, nil
}

func (c *Consumer) startGen(gen *consumerGen) {
	for _, cn := range gen.conns {
		gen.wg.Add(1)
		go c.receiveLoop(gen, cn)
	}
}

// Reconfigure atomically swaps options and connections: the old generation
// is fully torn down, then a new one opened with the new options. The
// event stream stays open across the swap.
func (c *Consumer) Reconfigure(ctx context.Context, opts ConsumerOptions) error {
	if !c.state.transition(StateOpen, StateConnecting) {
		return ErrNotConnected
	}

	c.mu.Lock()
	old := c.gen
	addr := c.addr
	c.gen = nil
	c.mu.Unlock()

	if old != nil {
		teardownGen(old)
	}

	partitions := resolvePartitions(ctx, c.resolver, addr)
	gen, err := c.openGen(ctx, addr, partitions, opts)
	if err != nil {
		c.state.transition(StateConnecting, StateIdle)
		return err
	}

	c.mu.Lock()
	if !c.state.transition(StateConnecting, StateOpen) {
		c.mu.Unlock()
		teardownGen(gen)
		return ErrClosed
	}
	c.gen = gen
	c.partitions = partitions
	c.startGen(gen)
	c.mu.Unlock()
	return nil
}

func teardownGen(gen *consumerGen) {
	close(gen.stop)
	for _, cn := range gen.conns {
		cn.close()
	}
	gen.wg.Wait()
}

// Close closes every partition connection. Idempotent; once it returns no
// further events are delivered and no further acknowledgments leave.
func (c *Consumer) Close() error {
	if !c.state.transitionFrom(StateClosing, StateIdle, StateConnecting, StateOpen) {
		<-c.closedCh
		return nil
	}

	c.mu.Lock()
	gen := c.gen
	c.gen = nil
	c.mu.Unlock()

	if gen != nil {
		teardownGen(gen)
	}

	c.state.set(StateClosed)
	c.closeOnce.Do(func() {
		select {
		case c.events <- ClosedEvent{}:
		default:
		}
		close(c.events)
		close(c.closedCh)
	})
	return nil
}

// receiveLoop serves one partition connection: decode, acknowledge
// immediately, filter, deliver. A transport failure here downs only this
// partition; siblings keep receiving.
func (c *Consumer) receiveLoop(gen *consumerGen, cn *conn) {
	defer gen.wg.Done()

	for {
		var frame consumeFrame
		if err := cn.readJSON(&frame); err != nil {
			if cn.isStopped() || stopped(gen) {
				return
			}
			c.deliver(gen, ConnDownEvent{Partition: cn.partition, Err: err})
			return
		}

		ev := c.decode(gen, cn.partition, frame)

		// Ack on the same connection before anything else; one message,
		// one ack, at-least-once.
		if err := cn.writeJSON(consumeAckFrame{MessageID: frame.MessageID}); err != nil {
			if cn.isStopped() || stopped(gen) {
				return
			}
			c.deliver(gen, ConnDownEvent{Partition: cn.partition, Err: err})
			return
		}

		c.received.Add(1)
		c.metrics.messagesReceived.Add(context.Background(), 1)

		if !c.deliver(gen, ev) {
			return
		}

		if ev.Match && gen.opts.Filter.AutoStop() {
			c.stopOnce.Do(func() {
				c.deliver(gen, StoppedOnMatchEvent{Partition: cn.partition, MessageID: ev.MessageID})
				go c.Close()
			})
			return
		}
	}
}

// decode turns a wire frame into a MessageEvent. Payload decoding is best
// effort: a malformed base64 body falls back to the raw text rather than
// failing the receive.
func (c *Consumer) decode(gen *consumerGen, partition int, frame consumeFrame) MessageEvent {
	payload := frame.Payload
	if raw, err := base64.StdEncoding.DecodeString(frame.Payload); err == nil {
		payload = string(raw)
	}

	publishTime, _ := time.Parse(time.RFC3339, frame.PublishTime)

	f := gen.opts.Filter
	match := f.Matches(frame.Key)
	return MessageEvent{
		Partition:       partition,
		MessageID:       frame.MessageID,
		Key:             frame.Key,
		Payload:         payload,
		Pretty:          prettyJSON(payload),
		Properties:      frame.Properties,
		PublishTime:     publishTime,
		RedeliveryCount: frame.RedeliveryCount,
		Match:           match,
		Hidden:          f.ShouldHide(frame.Key),
	}
}

// deliver sends an event to the caller's sink unless the generation or the
// session is shutting down. Returns false once delivery is off.
func (c *Consumer) deliver(gen *consumerGen, e Event) bool {
	if c.state.isClosed() {
		return false
	}
	select {
	case <-gen.stop:
		return false
	default:
	}
	select {
	case <-gen.stop:
		return false
	case c.events <- e:
		return true
	}
}

func stopped(gen *consumerGen) bool {
	select {
	case <-gen.stop:
		return true
	default:
		return false
	}
}
