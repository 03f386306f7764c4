package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type point struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

func newTestCache(t *testing.T, opts ...MemoryOption) *MemoryCache {
	t.Helper()
	mc := NewMemoryCache(opts...)
	t.Cleanup(func() { _ = mc.Close() })
	return mc
}

func TestMemorySetGetStruct(t *testing.T) {
	ctx := context.Background()
	mc := newTestCache(t)

	if err := mc.Set(ctx, "k", point{Symbol: "BTCUSDT", Price: 1.5}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var got point
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Symbol != "BTCUSDT" || got.Price != 1.5 {
		t.Fatalf("got %+v", got)
	}

	var missing point
	if err := mc.Get(ctx, "nope", &missing); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	mc := newTestCache(t)
	now := time.Unix(1_700_000_000, 0)
	mc.now = func() time.Time { return now }

	_ = mc.Set(ctx, "k", "v", time.Minute)
	now = now.Add(2 * time.Minute)

	var s string
	if err := mc.Get(ctx, "k", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired key to miss, got %v (%q)", err, s)
	}
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := newTestCache(t, WithMemoryMaxSize(2))
	now := time.Unix(1_700_000_000, 0)
	mc.now = func() time.Time { return now }

	_ = mc.Set(ctx, "a", "1", 0)
	now = now.Add(time.Second)
	_ = mc.Set(ctx, "b", "2", 0)
	now = now.Add(time.Second)
	var s string
	_ = mc.Get(ctx, "a", &s)
	now = now.Add(time.Second)
	_ = mc.Set(ctx, "c", "3", 0)

	if err := mc.Get(ctx, "b", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected b evicted, got %v", err)
	}
	if err := mc.Get(ctx, "a", &s); err != nil || s != "1" {
		t.Fatalf("expected a kept, got %q %v", s, err)
	}
}

func TestMemoryLock(t *testing.T) {
	ctx := context.Background()
	mc := newTestCache(t)
	now := time.Unix(1_700_000_000, 0)
	mc.now = func() time.Time { return now }

	token, err := mc.TryLock(ctx, "signal:outcome:1", 30*time.Second)
	if err != nil || token == "" {
		t.Fatalf("first lock: %q %v", token, err)
	}
	if _, err := mc.TryLock(ctx, "signal:outcome:1", 30*time.Second); !errors.Is(err, ErrLockHeld) {
		t.Fatalf("second lock: expected ErrLockHeld, got %v", err)
	}

	// a stale token must not release the lock
	_ = mc.Unlock(ctx, "signal:outcome:1", "other")
	if _, err := mc.TryLock(ctx, "signal:outcome:1", 30*time.Second); !errors.Is(err, ErrLockHeld) {
		t.Fatalf("lock released by wrong token: %v", err)
	}

	_ = mc.Unlock(ctx, "signal:outcome:1", token)
	if _, err := mc.TryLock(ctx, "signal:outcome:1", 30*time.Second); err != nil {
		t.Fatalf("relock after unlock: %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := mc.TryLock(ctx, "signal:outcome:1", 30*time.Second); err != nil {
		t.Fatalf("relock after ttl: %v", err)
	}
}
