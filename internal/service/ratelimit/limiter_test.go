package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBurstAndRefill(t *testing.T) {
	l := New(3, 0.5)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should pass within burst", i)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("fourth request should be limited")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatal("other key must have its own bucket")
	}

	now = now.Add(2 * time.Second) // +1 token
	if !l.Allow("1.2.3.4") {
		t.Fatal("expected refill after 2s")
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("only one token should have refilled")
	}
}

func TestLimiterSweep(t *testing.T) {
	l := New(1, 1)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(time.Minute)
	l.Allow("b")

	if n := l.Sweep(30 * time.Second); n != 1 {
		t.Fatalf("Sweep removed %d keys, want 1", n)
	}
}
