package repository

import (
	"context"
	"time"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	"SignalScan/pkg/cache"
)

const SnapshotKey = "snapshot:latest"

// SnapshotMirror copies each published snapshot into the cache so other
// processes can read the latest scan without calling the API.
type SnapshotMirror struct {
	cache cache.Service
	ttl   time.Duration
}

var _ drepo.SignalSink = (*SnapshotMirror)(nil)

// NewSnapshotMirror keeps the mirrored snapshot for ttl; zero means no expiry.
func NewSnapshotMirror(c cache.Service, ttl time.Duration) *SnapshotMirror {
	return &SnapshotMirror{cache: c, ttl: ttl}
}

func (m *SnapshotMirror) PublishSnapshot(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil {
		return nil
	}
	return m.cache.Set(ctx, SnapshotKey, snap, m.ttl)
}

func (m *SnapshotMirror) PublishSignals(context.Context, []models.SignalRecord) error { return nil }
func (m *SnapshotMirror) PublishAlerts(context.Context, []models.PumpDumpAlert) error { return nil }
func (m *SnapshotMirror) PublishObservations(context.Context, []models.Observation) error {
	return nil
}
