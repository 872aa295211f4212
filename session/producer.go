// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/absmach/pulsarview/topic"
)

// ProducerOptions select the partition and an optional send rate bound.
type ProducerOptions struct {
	// Partition is the partition to produce to. Ignored when the topic is
	// not partitioned.
	Partition int

	// RatePerSec caps outbound sends when above zero.
	RatePerSec float64

	// RateBurst is the burst allowance of the rate cap. Zero means 1.
	RateBurst int
}

// Producer is a produce session for one logical topic, holding exactly one
// partition-level connection. Sends are fire-and-forget at the API
// boundary; outcomes arrive asynchronously on the event stream.
type Producer struct {
	cfg      Config
	resolver MetadataResolver
	logger   *slog.Logger
	state    *stateManager
	metrics  *sessionMetrics

	mu         sync.Mutex
	conn       *conn
	addr       topic.Address
	opts       ProducerOptions
	partitions int
	ackDone    chan struct{}

	limiter *rate.Limiter

	events    chan Event
	closedCh  chan struct{}
	closeOnce sync.Once

	sent atomic.Uint64
	errs atomic.Uint64
}

// NewProducer creates an idle producer session.
func NewProducer(cfg Config, resolver MetadataResolver, logger *slog.Logger) (*Producer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	metrics, err := newSessionMetrics()
	if err != nil {
		return nil, err
	}
	return &Producer{
		cfg:      cfg,
		resolver: resolver,
		logger:   logger,
		state:    newStateManager(),
		metrics:  metrics,
		events:   make(chan Event, cfg.eventBuffer()),
		closedCh: make(chan struct{}),
	}, nil
}

// Events returns the observable status stream. It closes after Close.
func (p *Producer) Events() <-chan Event {
	return p.events
}

// State returns the current session state.
func (p *Producer) State() State {
	return p.state.get()
}

// Counters returns the monotonic sent and error counts.
func (p *Producer) Counters() (sent, errors uint64) {
	return p.sent.Load(), p.errs.Load()
}

// Open resolves partition metadata and connects to the selected partition,
// or to the bare topic when the metadata lookup reports (or fails as)
// non-partitioned.
func (p *Producer) Open(ctx context.Context, addr topic.Address, opts ProducerOptions) error {
	if p.state.isClosed() {
		return ErrClosed
	}
	if !p.state.transition(StateIdle, StateConnecting) {
		return ErrAlreadyOpen
	}

	partitions := resolvePartitions(ctx, p.resolver, addr)
	target := addr
	if partitions > 0 {
		if opts.Partition < 0 || opts.Partition >= partitions {
			p.state.transition(StateConnecting, StateIdle)
			return fmt.Errorf("%w: %d of %d", ErrBadPartition, opts.Partition, partitions)
		}
		target = addr.Child(opts.Partition)
	}

	c, err := dial(ctx, p.cfg, producerURL(p.cfg, target), target.Partition)
	if err != nil {
		p.state.transition(StateConnecting, StateIdle)
		return err
	}

	p.mu.Lock()
	if !p.state.transition(StateConnecting, StateOpen) {
		p.mu.Unlock()
		c.close()
		return ErrClosed
	}
	p.conn = c
	p.addr = addr
	p.opts = opts
	p.partitions = partitions
	p.ackDone = make(chan struct{})
	p.limiter = nil
	if opts.RatePerSec > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}
	done := p.ackDone
	p.mu.Unlock()

	go p.ackLoop(c, done)

	p.logger.Debug("producer session open",
		slog.String("topic", target.String()),
		slog.Int("partitions", partitions))
	return nil
}

// Send transport-encodes payload and writes it on the open connection,
// returning the correlation id. The outcome arrives later as a
// SendResultEvent; Send never queues while disconnected.
func (p *Producer) Send(ctx context.Context, payload []byte, key string, properties map[string]string) (string, error) {
	if !p.state.isOpen() {
		return "", ErrNotConnected
	}

	p.mu.Lock()
	c := p.conn
	limiter := p.limiter
	p.mu.Unlock()
	if c == nil {
		return "", ErrNotConnected
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	frame := produceFrame{
		Payload:    base64.StdEncoding.EncodeToString(payload),
		Properties: properties,
		Key:        key,
		Context:    uuid.NewString(),
	}
	if err := c.writeJSON(frame); err != nil {
		if p.state.transition(StateOpen, StateIdle) {
			p.emit(ConnDownEvent{Partition: c.partition, Err: err})
		}
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return frame.Context, nil
}

// SwitchPartition closes the current connection and reopens against the
// given partition. Unacknowledged sends on the old connection are
// abandoned, not retried.
func (p *Producer) SwitchPartition(ctx context.Context, partition int) error {
	if !p.state.transition(StateOpen, StateConnecting) {
		return ErrNotConnected
	}

	p.mu.Lock()
	addr := p.addr
	opts := p.opts
	old := p.conn
	oldDone := p.ackDone
	p.mu.Unlock()

	if old != nil {
		old.close()
		<-oldDone
	}

	opts.Partition = partition
	if !p.state.transition(StateConnecting, StateIdle) {
		return ErrClosed
	}
	return p.Open(ctx, addr, opts)
}

// Close tears down the connection and closes the event stream. Idempotent;
// every caller returns only once the connection is observably closed.
func (p *Producer) Close() error {
	if !p.state.transitionFrom(StateClosing, StateIdle, StateConnecting, StateOpen) {
		<-p.closedCh
		return nil
	}

	p.mu.Lock()
	c := p.conn
	done := p.ackDone
	p.conn = nil
	p.mu.Unlock()

	if c != nil {
		c.close()
		<-done
	}

	p.state.set(StateClosed)
	p.closeOnce.Do(func() {
		p.emit(ClosedEvent{})
		close(p.events)
		close(p.closedCh)
	})
	return nil
}

// ackLoop reads acknowledgment frames until the connection goes away. A
// positive ack bumps the sent counter, anything else the error counter;
// both surface on the event stream rather than a blocking return.
func (p *Producer) ackLoop(c *conn, done chan struct{}) {
	defer close(done)

	for {
		var ack produceAckFrame
		if err := c.readJSON(&ack); err != nil {
			if c.isStopped() {
				return
			}
			if p.state.transition(StateOpen, StateIdle) {
				p.emit(ConnDownEvent{Partition: c.partition, Err: err})
			}
			return
		}

		if ack.Result == ackOK {
			p.sent.Add(1)
			p.metrics.messagesSent.Add(context.Background(), 1)
			p.emit(SendResultEvent{OK: true, MessageID: ack.MessageID, CorrelationID: ack.Context})
			continue
		}

		p.errs.Add(1)
		p.metrics.sendErrors.Add(context.Background(), 1)
		msg := ack.ErrorMsg
		if msg == "" {
			msg = "malformed acknowledgment: " + ack.Result
		}
		p.emit(SendResultEvent{OK: false, CorrelationID: ack.Context, ErrorMsg: msg})
	}
}

// emit delivers an event without ever blocking the ack loop: on a full
// buffer the oldest event is dropped.
func (p *Producer) emit(e Event) {
	select {
	case p.events <- e:
	default:
		select {
		case <-p.events:
		default:
		}
		select {
		case p.events <- e:
		default:
		}
	}
}
