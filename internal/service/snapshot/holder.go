// Package snapshot owns the latest scan result. A snapshot is replaced as a
// whole under the write lock and never mutated afterwards.
package snapshot

import (
	"sync"

	"SignalScan/internal/domain/models"
)

type Holder struct {
	mu  sync.RWMutex
	cur *models.Snapshot
}

func NewHolder() *Holder {
	return &Holder{cur: &models.Snapshot{
		Signals: []models.Signal{},
		Alerts:  []models.PumpDumpAlert{},
		Movers:  models.Movers{Gainers: []models.Ticker{}, Losers: []models.Ticker{}},
	}}
}

// Latest returns the current snapshot. Callers must treat it as read-only.
func (h *Holder) Latest() *models.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cur
}

// Version is the version of the current snapshot.
func (h *Holder) Version() uint64 {
	return h.Latest().Version
}

// Publish installs next with the following version number and returns it.
func (h *Holder) Publish(next models.Snapshot) *models.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	next.Version = h.cur.Version + 1
	h.cur = &next
	return h.cur
}
