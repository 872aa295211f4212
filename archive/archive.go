// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package archive spools consumed messages to a zstd-compressed NDJSON
// file, one record per message.
package archive

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Record is one archived message.
type Record struct {
	Topic           string            `json:"topic"`
	Partition       int               `json:"partition"`
	MessageID       string            `json:"messageId"`
	Key             string            `json:"key,omitempty"`
	Payload         string            `json:"payload"`
	Properties      map[string]string `json:"properties,omitempty"`
	PublishTime     time.Time         `json:"publishTime"`
	ReceivedAt      time.Time         `json:"receivedAt"`
	RedeliveryCount int               `json:"redeliveryCount,omitempty"`
}

// Writer appends records to one archive file. Safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	f      *os.File
	zw     *zstd.Encoder
	enc    *json.Encoder
	closed bool
}

// NewWriter creates or truncates the archive at path.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create zstd writer: %w", err)
	}
	return &Writer{f: f, zw: zw, enc: json.NewEncoder(zw)}, nil
}

// Append writes one record.
func (w *Writer) Append(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("archive writer is closed")
	}
	return w.enc.Encode(rec)
}

// Close flushes the compressor and closes the file. Idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.zw.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// Read decodes every record of an archive.
func Read(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open zstd reader: %w", err)
	}
	defer zr.Close()

	var out []Record
	dec := json.NewDecoder(bufio.NewReader(zr))
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("corrupt archive record: %w", err)
		}
		out = append(out, rec)
	}
}
