package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type capturePublisher struct {
	mu      sync.Mutex
	batches [][]AggregatedLogEntry
	done    chan struct{}
}

func (p *capturePublisher) PublishMessage(_ context.Context, _ string, payload interface{}) error {
	p.mu.Lock()
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

func TestCollectorDeduplicatesByMessageAndCaller(t *testing.T) {
	pub := &capturePublisher{done: make(chan struct{}, 1)}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Topic: "logs", Publisher: pub})
	defer c.Close()

	c.AddLog("error", "fetch failed", map[string]interface{}{"symbol": "BTCUSDT"}, "a.go:1")
	c.AddLog("error", "fetch failed", map[string]interface{}{"symbol": "ETHUSDT"}, "a.go:1")
	if got := c.Pending(); got != 1 {
		t.Fatalf("pending = %d, want 1", got)
	}

	c.AddLog("error", "store failed", nil, "b.go:9")

	select {
	case <-pub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("threshold flush did not publish")
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 || len(pub.batches[0]) != 2 {
		t.Fatalf("unexpected batches: %+v", pub.batches)
	}
	for _, e := range pub.batches[0] {
		if e.Message == "fetch failed" && e.Count != 2 {
			t.Fatalf("fetch failed count = %d, want 2", e.Count)
		}
	}
}

func TestErrorFieldNil(t *testing.T) {
	k, v := ErrorField{Key: "error"}.GetKeyValue()
	if k != "error" || v != nil {
		t.Fatalf("got %s=%v", k, v)
	}
	k, v = Error(errors.New("boom")).GetKeyValue()
	if v != "boom" {
		t.Fatalf("got %s=%v", k, v)
	}
}
