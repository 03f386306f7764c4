package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"SignalScan/pkg/logger"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	if _, err := NewConsumer(logger.Nop()); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestParseCompression(t *testing.T) {
	tests := map[string]kafka.Compression{
		"gzip":   kafka.Gzip,
		"lz4":    kafka.Lz4,
		"zstd":   kafka.Zstd,
		"snappy": kafka.Snappy,
		"":       kafka.Snappy,
	}
	for in, want := range tests {
		if got := parseCompression(in); got != want {
			t.Errorf("parseCompression(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestEncode(t *testing.T) {
	b, err := encode(map[string]int{"a": 1})
	if err != nil || string(b) != `{"a":1}` {
		t.Fatalf("encode = %s, %v", b, err)
	}
	raw := []byte("x")
	if b, _ := encode(raw); string(b) != "x" {
		t.Fatalf("raw bytes changed: %s", b)
	}
}

func TestBackoffWithJitterBounds(t *testing.T) {
	min, max := 100*time.Millisecond, time.Second
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		if d <= 0 || d > max {
			t.Fatalf("attempt %d: backoff %v out of (0, %v]", attempt, d, max)
		}
	}
	if d := backoffWithJitter(min, max, 1); d < min/2 {
		t.Fatalf("first backoff %v below half of min", d)
	}
}
