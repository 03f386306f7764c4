package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	pkgch "SignalScan/pkg/clickhouse"
	applogger "SignalScan/pkg/logger"
)

// ClickHouseArchive appends every signal, alert and observation to
// MergeTree tables for offline analysis. Nothing is ever updated.
type ClickHouseArchive struct {
	ch *pkgch.Client
	db string
	l  *applogger.Logger
}

var _ drepo.Archive = (*ClickHouseArchive)(nil)

func NewClickHouseArchive(ch *pkgch.Client, l *applogger.Logger) *ClickHouseArchive {
	return &ClickHouseArchive{ch: ch, db: ch.Database(), l: l.With("clickhouse-archive")}
}

func (a *ClickHouseArchive) table(name string) string {
	return a.db + "." + name
}

func (a *ClickHouseArchive) Init(ctx context.Context) error {
	return a.ch.InitSchema(ctx, []string{
		`CREATE DATABASE IF NOT EXISTS ` + a.db,
		`CREATE TABLE IF NOT EXISTS ` + a.table("signals") + ` (
			signal_id    Int64,
			symbol       LowCardinality(String),
			signal_type  LowCardinality(String),
			direction    LowCardinality(String),
			detector     LowCardinality(String),
			price        Float64,
			target_price Nullable(Float64),
			stop_loss    Nullable(Float64),
			strength     UInt8,
			reason       String,
			indicators   String,
			detected_at  DateTime64(3, 'UTC'),
			created_at   DateTime64(3, 'UTC')
		) ENGINE = MergeTree ORDER BY (symbol, created_at)`,
		`CREATE TABLE IF NOT EXISTS ` + a.table("pump_dump_alerts") + ` (
			alert_id      Int64,
			symbol        LowCardinality(String),
			alert_type    LowCardinality(String),
			direction     LowCardinality(String),
			price         Float64,
			price_change  Float64,
			volume_change Float64,
			strength      UInt8,
			detected_at   DateTime64(3, 'UTC'),
			created_at    DateTime64(3, 'UTC')
		) ENGINE = MergeTree ORDER BY (symbol, created_at)`,
		`CREATE TABLE IF NOT EXISTS ` + a.table("signal_validations") + ` (
			signal_id        Int64,
			symbol           LowCardinality(String),
			direction        LowCardinality(String),
			entry_price      Float64,
			current_price    Float64,
			price_change_pct Float64,
			status           LowCardinality(String),
			notes            String,
			checked_at       DateTime64(3, 'UTC')
		) ENGINE = MergeTree ORDER BY (signal_id, checked_at)`,
	})
}

func (a *ClickHouseArchive) ArchiveSignals(ctx context.Context, signals []models.SignalRecord) error {
	rows := make([][]any, 0, len(signals))
	for _, s := range signals {
		ind, err := json.Marshal(s.Indicators)
		if err != nil {
			return fmt.Errorf("encode indicators: %w", err)
		}
		rows = append(rows, []any{
			s.ID, s.Symbol, string(s.Kind), string(s.Direction), string(s.Detector),
			s.Price, s.Target, s.Stop, uint8(s.Strength), s.Reason, string(ind), utc(s.DetectedAt),
			utc(s.CreatedAt),
		})
	}
	return a.insert(ctx, "signals", `(signal_id, symbol, signal_type, direction, detector, price,
		target_price, stop_loss, strength, reason, indicators, detected_at, created_at)`, rows)
}

func (a *ClickHouseArchive) ArchiveAlerts(ctx context.Context, alerts []models.PumpDumpAlert) error {
	rows := make([][]any, 0, len(alerts))
	for _, al := range alerts {
		rows = append(rows, []any{
			al.ID, al.Symbol, string(al.Kind), string(al.Direction), al.Price,
			al.PriceChangePct, al.VolumeChangePct, uint8(al.Strength), utc(al.DetectedAt),
			utc(al.CreatedAt),
		})
	}
	return a.insert(ctx, "pump_dump_alerts", `(alert_id, symbol, alert_type, direction, price,
		price_change, volume_change, strength, detected_at, created_at)`, rows)
}

func (a *ClickHouseArchive) ArchiveObservations(ctx context.Context, obs []models.Observation) error {
	rows := make([][]any, 0, len(obs))
	for _, o := range obs {
		rows = append(rows, []any{
			o.SignalID, o.Symbol, string(o.Direction), o.EntryPrice, o.Price,
			o.ChangePct, string(o.Status), o.Note, utc(o.CheckedAt),
		})
	}
	return a.insert(ctx, "signal_validations", `(signal_id, symbol, direction, entry_price,
		current_price, price_change_pct, status, notes, checked_at)`, rows)
}

func (a *ClickHouseArchive) insert(ctx context.Context, table, columns string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	start := time.Now()
	if err := a.ch.InsertBatch(ctx, "INSERT INTO "+a.table(table)+" "+columns, rows); err != nil {
		a.l.Error("clickhouse archive insert failed",
			applogger.String("table", table),
			applogger.Int("rows", len(rows)),
			applogger.Error(err),
		)
		return fmt.Errorf("archive %s: %w", table, err)
	}
	a.l.Debug("archived",
		applogger.String("table", table),
		applogger.Int("rows", len(rows)),
		applogger.Duration("took", time.Since(start)),
	)
	return nil
}

// Close releases the underlying client.
func (a *ClickHouseArchive) Close() error {
	return a.ch.Close()
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
