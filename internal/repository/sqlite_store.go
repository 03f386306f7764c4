package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	"SignalScan/pkg/sqlite"
	"SignalScan/pkg/util"
)

const signalColumns = `id, symbol, signal_type, direction, detector, entry_price, target_price, stop_loss,
	strength, reason, bar_index, indicator_data, detected_at, created_at, status, validation_result,
	final_price, profit_loss, closed_at`

// SQLiteSignalStore implements SignalStore on a single-writer SQLite file.
type SQLiteSignalStore struct {
	client *sqlite.Client
	now    func() time.Time
}

var _ drepo.SignalStore = (*SQLiteSignalStore)(nil)

func NewSQLiteSignalStore(client *sqlite.Client) *SQLiteSignalStore {
	return &SQLiteSignalStore{client: client, now: time.Now}
}

func (s *SQLiteSignalStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, sqliteSchema)
}

// PersistSignal stamps created_at with the store clock and keeps the bar
// time in detected_at. History and today's count filter on created_at.
func (s *SQLiteSignalStore) PersistSignal(ctx context.Context, sig models.Signal) (int64, error) {
	rec := models.NewSignalRecord(sig)
	indicators, err := json.Marshal(rec.Indicators)
	if err != nil {
		return 0, fmt.Errorf("encode indicators: %w", err)
	}
	createdAt := s.now()
	detectedAt := rec.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = createdAt
	}

	res, err := s.client.DB().ExecContext(ctx, `INSERT INTO signals
		(symbol, signal_type, direction, detector, entry_price, target_price, stop_loss,
		 strength, reason, bar_index, indicator_data, detected_at, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Symbol, string(rec.Kind), string(rec.Direction), string(rec.Detector),
		rec.Price, nullFloat(rec.Target), nullFloat(rec.Stop),
		rec.Strength, rec.Reason, rec.Index, string(indicators),
		detectedAt.UnixMilli(), createdAt.UnixMilli(), string(models.StatusActive),
	)
	if err != nil {
		return 0, fmt.Errorf("insert signal: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteSignalStore) PersistAlert(ctx context.Context, a models.PumpDumpAlert) (int64, error) {
	createdAt := s.now()
	detectedAt := a.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = createdAt
	}
	res, err := s.client.DB().ExecContext(ctx, `INSERT INTO pump_dump_alerts
		(symbol, alert_type, direction, price_at_alert, price_change, volume_change, strength, reason,
		 detected_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Symbol, string(a.Kind), string(a.Direction), a.Price, a.PriceChangePct, a.VolumeChangePct,
		a.Strength, a.Reason, detectedAt.UnixMilli(), createdAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert alert: %w", err)
	}
	return res.LastInsertId()
}

// RecordValidation appends obs and, for a terminal status, closes the
// signal with a conditional update in the same transaction.
func (s *SQLiteSignalStore) RecordValidation(ctx context.Context, obs models.Observation) error {
	checkedAt := obs.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = s.now()
	}
	return s.client.WithTx(ctx, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM signals WHERE id = ?`, obs.SignalID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return drepo.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load signal %d: %w", obs.SignalID, err)
		}
		if status != string(models.StatusActive) {
			return drepo.ErrSignalClosed
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO signal_validations
			(signal_id, check_time, current_price, price_change_pct, status, notes)
			VALUES (?, ?, ?, ?, ?, ?)`,
			obs.SignalID, checkedAt.UnixMilli(), obs.Price, obs.ChangePct, string(obs.Status), obs.Note,
		); err != nil {
			return fmt.Errorf("insert validation: %w", err)
		}
		if !obs.Status.IsTerminal() {
			return nil
		}

		res, err := tx.ExecContext(ctx, `UPDATE signals
			SET status = ?, validation_result = ?, final_price = ?, profit_loss = ?, closed_at = ?
			WHERE id = ? AND status = ?`,
			string(models.StatusClosed), string(obs.Status), obs.Price, obs.ChangePct, checkedAt.UnixMilli(),
			obs.SignalID, string(models.StatusActive),
		)
		if err != nil {
			return fmt.Errorf("close signal %d: %w", obs.SignalID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return drepo.ErrSignalClosed
		}
		return nil
	})
}

// ActiveSignals returns ACTIVE signals, newest first.
func (s *SQLiteSignalStore) ActiveSignals(ctx context.Context, limit int) ([]models.SignalRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.querySignals(ctx, `SELECT `+signalColumns+` FROM signals
		WHERE status = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		string(models.StatusActive), limit)
}

func (s *SQLiteSignalStore) SignalHistory(ctx context.Context, since time.Time, limit int) ([]models.SignalRecord, error) {
	if limit <= 0 {
		limit = 500
	}
	return s.querySignals(ctx, `SELECT `+signalColumns+` FROM signals
		WHERE created_at >= ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		since.UnixMilli(), limit)
}

func (s *SQLiteSignalStore) GetSignal(ctx context.Context, id int64) (models.SignalRecord, error) {
	recs, err := s.querySignals(ctx, `SELECT `+signalColumns+` FROM signals WHERE id = ?`, id)
	if err != nil {
		return models.SignalRecord{}, err
	}
	if len(recs) == 0 {
		return models.SignalRecord{}, drepo.ErrNotFound
	}
	return recs[0], nil
}

func (s *SQLiteSignalStore) Observations(ctx context.Context, signalID int64) ([]models.Observation, error) {
	rows, err := s.client.DB().QueryContext(ctx, `SELECT v.id, v.signal_id, s.symbol, s.direction, s.entry_price,
		v.current_price, v.price_change_pct, v.status, COALESCE(v.notes, ''), v.check_time
		FROM signal_validations v JOIN signals s ON s.id = v.signal_id
		WHERE v.signal_id = ? ORDER BY v.check_time, v.id`, signalID)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	out := make([]models.Observation, 0)
	for rows.Next() {
		var (
			o         models.Observation
			direction string
			status    string
			checkedAt int64
		)
		if err := rows.Scan(&o.ID, &o.SignalID, &o.Symbol, &direction, &o.EntryPrice,
			&o.Price, &o.ChangePct, &status, &o.Note, &checkedAt); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.Direction = models.Direction(direction)
		o.Status = models.ValidationStatus(status)
		o.CheckedAt = time.UnixMilli(checkedAt).UTC()
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLiteSignalStore) AlertHistory(ctx context.Context, since time.Time, limit int) ([]models.PumpDumpAlert, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.client.DB().QueryContext(ctx, `SELECT id, symbol, alert_type, direction, price_at_alert,
		price_change, volume_change, strength, COALESCE(reason, ''), detected_at, created_at
		FROM pump_dump_alerts WHERE created_at >= ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		since.UnixMilli(), limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	out := make([]models.PumpDumpAlert, 0)
	for rows.Next() {
		var (
			a          models.PumpDumpAlert
			kind, dir  string
			detectedAt int64
			createdAt  int64
		)
		if err := rows.Scan(&a.ID, &a.Symbol, &kind, &dir, &a.Price, &a.PriceChangePct,
			&a.VolumeChangePct, &a.Strength, &a.Reason, &detectedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Kind = models.AlertKind(kind)
		a.Direction = models.Direction(dir)
		a.DetectedAt = time.UnixMilli(detectedAt).UTC()
		a.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// Statistics aggregates closed signals. Today is the UTC day of now.
func (s *SQLiteSignalStore) Statistics(ctx context.Context, now time.Time) (models.Statistics, error) {
	var (
		st        models.Statistics
		avgProfit sql.NullFloat64
	)
	err := s.client.DB().QueryRowContext(ctx, `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN validation_result = 'SUCCESS' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN validation_result = 'FAILED' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN validation_result = 'STOPPED' THEN 1 ELSE 0 END), 0),
		AVG(profit_loss)
		FROM signals WHERE status = ?`, string(models.StatusClosed),
	).Scan(&st.Total, &st.Wins, &st.Losses, &st.Stopped, &avgProfit)
	if err != nil {
		return st, fmt.Errorf("query statistics: %w", err)
	}
	if avgProfit.Valid {
		v := util.Round(avgProfit.Float64, 2)
		st.AvgProfit = &v
	}
	if st.Total > 0 {
		st.WinRate = util.Round(float64(st.Wins)/float64(st.Total)*100, 2)
	}

	day := now.UTC().Truncate(24 * time.Hour)
	err = s.client.DB().QueryRowContext(ctx, `SELECT
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN created_at >= ? AND created_at < ? THEN 1 ELSE 0 END), 0)
		FROM signals`,
		string(models.StatusActive), day.UnixMilli(), day.Add(24*time.Hour).UnixMilli(),
	).Scan(&st.Active, &st.TodaySignals)
	if err != nil {
		return st, fmt.Errorf("query statistics: %w", err)
	}
	return st, nil
}

func (s *SQLiteSignalStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *SQLiteSignalStore) Close() error {
	return s.client.Close()
}

func (s *SQLiteSignalStore) querySignals(ctx context.Context, query string, args ...any) ([]models.SignalRecord, error) {
	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	out := make([]models.SignalRecord, 0)
	for rows.Next() {
		rec, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanSignal(rows *sql.Rows) (models.SignalRecord, error) {
	var (
		rec                         models.SignalRecord
		kind, dir, detector, status string
		target, stop                sql.NullFloat64
		finalPrice, profitLoss      sql.NullFloat64
		reason, indicators, outcome sql.NullString
		detectedAt, createdAt       int64
		closedAt                    sql.NullInt64
	)
	if err := rows.Scan(&rec.ID, &rec.Symbol, &kind, &dir, &detector, &rec.Price, &target, &stop,
		&rec.Strength, &reason, &rec.Index, &indicators, &detectedAt, &createdAt, &status, &outcome,
		&finalPrice, &profitLoss, &closedAt); err != nil {
		return rec, fmt.Errorf("scan signal: %w", err)
	}

	rec.Kind = models.SignalKind(kind)
	rec.Direction = models.Direction(dir)
	rec.Detector = models.Detector(detector)
	rec.Target = floatPtr(target)
	rec.Stop = floatPtr(stop)
	rec.Reason = reason.String
	rec.DetectedAt = time.UnixMilli(detectedAt).UTC()
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	if indicators.Valid && indicators.String != "" {
		if err := json.Unmarshal([]byte(indicators.String), &rec.Indicators); err != nil {
			return rec, fmt.Errorf("decode indicators of signal %d: %w", rec.ID, err)
		}
	}

	rec.Validation = models.ValidationState{
		Status:     models.ValidationStatus(status),
		Outcome:    models.ValidationStatus(outcome.String),
		FinalPrice: floatPtr(finalPrice),
		ProfitLoss: floatPtr(profitLoss),
	}
	if closedAt.Valid {
		t := time.UnixMilli(closedAt.Int64).UTC()
		rec.Validation.ClosedAt = &t
	}
	return rec, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
