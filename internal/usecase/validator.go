package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	"SignalScan/pkg/logger"
)

// Flat thresholds applied after target and stop.
const (
	SuccessChangePct = 5.0
	FailureChangePct = -5.0
)

var ErrInvalidEntry = errors.New("signal has no usable entry price")

type ValidatorConfig struct {
	Interval    time.Duration
	Backoff     time.Duration
	Workers     int
	ItemDelay   time.Duration
	ActiveLimit int
	LockTTL     time.Duration
}

// ValidationResult is the outcome for one active signal. Observation is
// nil when the signal could not be priced.
type ValidationResult struct {
	Signal      models.SignalRecord
	Observation *models.Observation
	Err         error
}

type ValidationReport struct {
	Results  []ValidationResult
	Closed   int
	Failed   int
	Duration time.Duration
}

// Validator re-prices open signals until they reach a terminal outcome.
type Validator struct {
	market  drepo.MarketData
	store   drepo.SignalStore
	archive drepo.Archive
	sink    drepo.SignalSink
	locker  drepo.Locker
	metrics drepo.Metrics
	log     *logger.Logger
	cfg     ValidatorConfig
	now     func() time.Time
}

// NewValidator builds the loop. archive, sink and locker may be nil.
func NewValidator(
	market drepo.MarketData,
	store drepo.SignalStore,
	archive drepo.Archive,
	sink drepo.SignalSink,
	locker drepo.Locker,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg ValidatorConfig,
) *Validator {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return &Validator{
		market:  market,
		store:   store,
		archive: archive,
		sink:    sink,
		locker:  locker,
		metrics: metrics,
		log:     log.With("validator"),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Evaluate classifies a signal against the current price. Target is checked
// first, then stop, then the flat percentage thresholds.
func Evaluate(rec models.SignalRecord, price float64) (models.Outcome, error) {
	entry := rec.Price
	if entry <= 0 {
		return models.Outcome{}, ErrInvalidEntry
	}
	change := (price - entry) / entry * 100
	buy := rec.Direction == models.Buy
	if !buy {
		change = (entry - price) / entry * 100
	}
	out := models.Outcome{Status: models.StatusActive, Price: price, ChangePct: change}

	switch {
	case rec.Target != nil && ((buy && price >= *rec.Target) || (!buy && price <= *rec.Target)):
		out.Status = models.StatusSuccess
		out.Note = fmt.Sprintf("Target reached! +%.2f%%", change)
	case rec.Stop != nil && ((buy && price <= *rec.Stop) || (!buy && price >= *rec.Stop)):
		out.Status = models.StatusStopped
		out.Note = fmt.Sprintf("Stop loss hit! %.2f%%", change)
	case change >= SuccessChangePct:
		out.Status = models.StatusSuccess
		out.Note = fmt.Sprintf("+5%% profit! %.2f%%", change)
	case change <= FailureChangePct:
		out.Status = models.StatusFailed
		out.Note = fmt.Sprintf("-5%% loss! %.2f%%", change)
	default:
		out.Note = fmt.Sprintf("Price: %.6f | Change: %+.2f%%", price, change)
	}
	return out, nil
}

// Run validates until ctx is cancelled.
func (v *Validator) Run(ctx context.Context) error {
	v.log.Info("validator started",
		logger.Duration("interval", v.cfg.Interval),
		logger.Int("workers", v.cfg.Workers))
	return runLoop(ctx, "validation", v.cfg.Interval, v.cfg.Backoff, v.log, func(ctx context.Context) error {
		_, err := v.Tick(ctx)
		return err
	})
}

// ValidateTick checks each signal with bounded concurrency. Results keep
// the input order.
func (v *Validator) ValidateTick(ctx context.Context, active []models.SignalRecord) []ValidationResult {
	results := make([]ValidationResult, len(active))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.Workers)
	for i, rec := range active {
		g.Go(func() error {
			results[i] = v.validateOne(gctx, rec)
			sleepCtx(gctx, v.cfg.ItemDelay)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (v *Validator) validateOne(ctx context.Context, rec models.SignalRecord) (res ValidationResult) {
	res.Signal = rec
	defer func() {
		if r := recover(); r != nil {
			res.Observation = nil
			res.Err = fmt.Errorf("validate %d: panic: %v", rec.ID, r)
		}
	}()

	start := time.Now()
	quote, err := v.market.FetchQuote(ctx, rec.Symbol)
	v.metrics.RecordLatency("fetch_quote", time.Since(start).Seconds())
	if err != nil {
		res.Err = fmt.Errorf("quote %s: %w", rec.Symbol, err)
		return res
	}
	out, err := Evaluate(rec, quote.Price)
	if err != nil {
		res.Err = fmt.Errorf("evaluate %d: %w", rec.ID, err)
		return res
	}

	obs := models.Observation{
		SignalID:   rec.ID,
		Symbol:     rec.Symbol,
		Direction:  rec.Direction,
		EntryPrice: rec.Price,
		Price:      out.Price,
		ChangePct:  out.ChangePct,
		Status:     out.Status,
		Note:       out.Note,
		CheckedAt:  v.now().UTC(),
	}

	if out.Status.IsTerminal() && v.locker != nil {
		unlock, err := v.locker.TryLock(ctx, fmt.Sprintf("signal:outcome:%d", rec.ID), v.cfg.LockTTL)
		if err != nil {
			res.Err = fmt.Errorf("lock signal %d: %w", rec.ID, err)
			return res
		}
		defer unlock()
	}
	if err := v.store.RecordValidation(ctx, obs); err != nil {
		res.Err = fmt.Errorf("record validation %d: %w", rec.ID, err)
		return res
	}
	res.Observation = &obs
	return res
}

// Tick loads the active signals and validates them. Only a failure to load
// the active set is a tick-level error.
func (v *Validator) Tick(ctx context.Context) (*ValidationReport, error) {
	start := time.Now()
	active, err := v.store.ActiveSignals(ctx, v.cfg.ActiveLimit)
	if err != nil {
		v.metrics.RecordError("active_signals")
		return nil, fmt.Errorf("active signals: %w", err)
	}

	rep := &ValidationReport{Results: v.ValidateTick(ctx, active)}
	var observations []models.Observation
	for _, r := range rep.Results {
		if r.Err != nil {
			rep.Failed++
			if !errors.Is(r.Err, drepo.ErrSignalClosed) {
				v.metrics.RecordError("validation")
			}
			v.log.Debug("validation skipped", logger.Int64("signal_id", r.Signal.ID), logger.Error(r.Err))
			continue
		}
		observations = append(observations, *r.Observation)
		v.metrics.RecordValidation(string(r.Observation.Status))
		if r.Observation.Status.IsTerminal() {
			rep.Closed++
		}
	}

	if len(observations) > 0 {
		if v.archive != nil {
			if err := v.archive.ArchiveObservations(ctx, observations); err != nil {
				v.log.Warn("archive observations failed", logger.Error(err))
			}
		}
		if v.sink != nil {
			if err := v.sink.PublishObservations(ctx, observations); err != nil {
				v.log.Warn("publish observations failed", logger.Error(err))
			}
		}
	}

	rep.Duration = time.Since(start)
	v.log.Info("validation tick done",
		logger.Int("active", len(active)),
		logger.Int("closed", rep.Closed),
		logger.Int("failed", rep.Failed),
		logger.Duration("duration", rep.Duration))
	return rep, nil
}
