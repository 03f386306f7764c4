package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"SignalScan/internal/domain/models"
	"SignalScan/pkg/cache"
	applogger "SignalScan/pkg/logger"
)

type countingSink struct {
	err      error
	signals  int
	alerts   int
	snapshot int
	obs      int
}

func (s *countingSink) PublishSignals(_ context.Context, r []models.SignalRecord) error {
	s.signals += len(r)
	return s.err
}

func (s *countingSink) PublishAlerts(_ context.Context, a []models.PumpDumpAlert) error {
	s.alerts += len(a)
	return s.err
}

func (s *countingSink) PublishSnapshot(context.Context, *models.Snapshot) error {
	s.snapshot++
	return s.err
}

func (s *countingSink) PublishObservations(_ context.Context, o []models.Observation) error {
	s.obs += len(o)
	return s.err
}

func TestMultiSinkContinuesPastFailure(t *testing.T) {
	ctx := context.Background()
	broken := &countingSink{err: errors.New("down")}
	ok := &countingSink{}
	sink := NewMultiSink(applogger.Nop(),
		NamedSink{Name: "broken", Sink: broken},
		NamedSink{Name: "nil", Sink: nil},
		NamedSink{Name: "ok", Sink: ok},
	)
	if sink.Len() != 2 {
		t.Fatalf("nil sink should be skipped, have %d", sink.Len())
	}

	if err := sink.PublishSignals(ctx, []models.SignalRecord{{ID: 1}, {ID: 2}}); err == nil {
		t.Fatalf("expected error from broken sink")
	}
	if err := sink.PublishAlerts(ctx, []models.PumpDumpAlert{{Symbol: "A"}}); err == nil {
		t.Fatalf("expected error from broken sink")
	}
	if ok.signals != 2 || ok.alerts != 1 {
		t.Fatalf("healthy sink missed deliveries: %+v", ok)
	}

	healthy := NewMultiSink(applogger.Nop(), NamedSink{Name: "ok", Sink: ok})
	if err := healthy.PublishObservations(ctx, []models.Observation{{SignalID: 1}}); err != nil {
		t.Fatalf("PublishObservations: %v", err)
	}
	if err := healthy.PublishSnapshot(ctx, &models.Snapshot{Version: 1}); err != nil {
		t.Fatalf("PublishSnapshot: %v", err)
	}
	if ok.obs != 1 || ok.snapshot != 1 {
		t.Fatalf("unexpected counts %+v", ok)
	}
}

func TestCacheLocker(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	defer mc.Close()
	locker := NewCacheLocker(mc)

	unlock, err := locker.TryLock(ctx, "signal:outcome:7", time.Minute)
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if _, err := locker.TryLock(ctx, "signal:outcome:7", time.Minute); !errors.Is(err, cache.ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}
	unlock()
	again, err := locker.TryLock(ctx, "signal:outcome:7", time.Minute)
	if err != nil {
		t.Fatalf("lock not released: %v", err)
	}
	again()
}

func TestSnapshotMirror(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	defer mc.Close()
	mirror := NewSnapshotMirror(mc, time.Minute)

	if err := mirror.PublishSnapshot(ctx, nil); err != nil {
		t.Fatalf("nil snapshot: %v", err)
	}
	snap := &models.Snapshot{Version: 3, TickID: "tick-3", Instruments: 120}
	if err := mirror.PublishSnapshot(ctx, snap); err != nil {
		t.Fatalf("PublishSnapshot: %v", err)
	}

	var got struct {
		Version     uint64 `json:"version"`
		TickID      string `json:"tick_id"`
		Instruments int    `json:"instruments"`
	}
	if err := mc.Get(ctx, SnapshotKey, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Version != 3 || got.TickID != "tick-3" || got.Instruments != 120 {
		t.Fatalf("mirrored snapshot = %+v", got)
	}
}
