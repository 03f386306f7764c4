package repository

import (
	"context"
	"errors"
	"time"

	"SignalScan/internal/domain/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrSignalClosed is returned when a terminal outcome is written for a
	// signal that already has one.
	ErrSignalClosed = errors.New("signal already closed")
)

// MarketData is the exchange as seen by the engine.
type MarketData interface {
	ListInstruments(ctx context.Context) ([]models.Instrument, error)
	FetchCandles(ctx context.Context, symbol string, tf Timeframe, limit int) (models.Candles, error)
	FetchQuote(ctx context.Context, symbol string) (models.Quote, error)
	FetchTickers(ctx context.Context) ([]models.Ticker, error)
}

// SignalStore persists signals, alerts and validation history.
type SignalStore interface {
	Init(ctx context.Context) error
	PersistSignal(ctx context.Context, s models.Signal) (int64, error)
	PersistAlert(ctx context.Context, a models.PumpDumpAlert) (int64, error)
	// RecordValidation appends obs and, when obs.Status is terminal, closes
	// the signal in the same transaction. A signal that is already closed
	// yields ErrSignalClosed and nothing is written.
	RecordValidation(ctx context.Context, obs models.Observation) error
	ActiveSignals(ctx context.Context, limit int) ([]models.SignalRecord, error)
	SignalHistory(ctx context.Context, since time.Time, limit int) ([]models.SignalRecord, error)
	GetSignal(ctx context.Context, id int64) (models.SignalRecord, error)
	Observations(ctx context.Context, signalID int64) ([]models.Observation, error)
	AlertHistory(ctx context.Context, since time.Time, limit int) ([]models.PumpDumpAlert, error)
	Statistics(ctx context.Context, now time.Time) (models.Statistics, error)
	Health(ctx context.Context) error
	Close() error
}

// Archive is an append-only analytical copy of everything produced.
type Archive interface {
	Init(ctx context.Context) error
	ArchiveSignals(ctx context.Context, signals []models.SignalRecord) error
	ArchiveAlerts(ctx context.Context, alerts []models.PumpDumpAlert) error
	ArchiveObservations(ctx context.Context, obs []models.Observation) error
	Close() error
}

// SignalSink fans results out to live consumers. Signals are published
// after they were persisted, so records carry their store ids.
type SignalSink interface {
	PublishSignals(ctx context.Context, signals []models.SignalRecord) error
	PublishAlerts(ctx context.Context, alerts []models.PumpDumpAlert) error
	PublishSnapshot(ctx context.Context, snap *models.Snapshot) error
	PublishObservations(ctx context.Context, obs []models.Observation) error
}

// Locker guards single-writer sections across processes.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

type Metrics interface {
	RecordScan(seconds float64)
	RecordInstrument(result string)
	RecordSignal(kind, direction string)
	RecordAlert(kind string)
	RecordValidation(status string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	SetSnapshotVersion(v uint64)
}
