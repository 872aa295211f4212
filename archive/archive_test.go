// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package archive_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/absmach/pulsarview/archive"
)

func TestWriteReadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.ndjson.zst")

	w, err := archive.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	pub := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := []archive.Record{
		{
			Topic:       "persistent://acme/prod/orders",
			Partition:   0,
			MessageID:   "10:4:0",
			Key:         "order-1",
			Payload:     `{"amount":42}`,
			Properties:  map[string]string{"source": "checkout"},
			PublishTime: pub,
			ReceivedAt:  pub.Add(time.Second),
		},
		{
			Topic:           "persistent://acme/prod/orders",
			Partition:       1,
			MessageID:       "10:5:1",
			Payload:         "plain text",
			PublishTime:     pub,
			ReceivedAt:      pub.Add(2 * time.Second),
			RedeliveryCount: 3,
		},
	}
	for _, rec := range recs {
		if err := w.Append(rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := archive.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != len(recs) {
		t.Fatalf("expected %d records, got %d", len(recs), len(got))
	}
	if got[0].Key != "order-1" || got[0].Properties["source"] != "checkout" {
		t.Errorf("first record mismatch: %+v", got[0])
	}
	if got[1].RedeliveryCount != 3 || got[1].Payload != "plain text" {
		t.Errorf("second record mismatch: %+v", got[1])
	}
	if !got[0].PublishTime.Equal(pub) {
		t.Errorf("expected publish time %v, got %v", pub, got[0].PublishTime)
	}
}

func TestAppendAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.zst")
	w, err := archive.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close should be nil, got %v", err)
	}
	if err := w.Append(archive.Record{MessageID: "x"}); err == nil {
		t.Error("expected error appending after close")
	}
}

func TestConcurrentAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.zst")
	w, err := archive.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if err := w.Append(archive.Record{MessageID: "m", Payload: "p"}); err != nil {
					t.Errorf("Append: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := archive.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 200 {
		t.Errorf("expected 200 records, got %d", len(got))
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := archive.Read(filepath.Join(t.TempDir(), "nope.zst")); err == nil {
		t.Error("expected error for missing file")
	}
}
