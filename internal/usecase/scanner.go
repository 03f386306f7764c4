package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	"SignalScan/internal/service/snapshot"
	"SignalScan/pkg/logger"
)

type ScannerConfig struct {
	Interval        time.Duration
	Backoff         time.Duration
	Workers         int
	SymbolLimit     int
	Timeframe       drepo.Timeframe
	CandleLimit     int
	ItemDelay       time.Duration
	SnapshotSignals int
	SnapshotAlerts  int
	MoversLimit     int
}

// ScanItemResult is the outcome for one instrument. Err is set on a fetch or
// engine fault; Skipped when the exchange had no candles.
type ScanItemResult struct {
	Symbol  string
	Signals []models.Signal
	Alerts  []models.PumpDumpAlert
	Err     error
	Skipped bool
}

// ScanReport summarises one completed tick.
type ScanReport struct {
	TickID  string
	Items   []ScanItemResult
	Signals []models.Signal
	Alerts  []models.PumpDumpAlert
	// Records are the persisted signals with their store ids; a signal
	// whose insert failed is absent.
	Records  []models.SignalRecord
	Failed   int
	Skipped  int
	Snapshot *models.Snapshot
	Duration time.Duration
}

// Scanner is the periodic scan loop.
type Scanner struct {
	market  drepo.MarketData
	engine  *SignalEngine
	store   drepo.SignalStore
	archive drepo.Archive
	sink    drepo.SignalSink
	snaps   *snapshot.Holder
	metrics drepo.Metrics
	log     *logger.Logger
	cfg     ScannerConfig
	now     func() time.Time
}

// NewScanner builds the loop. archive and sink may be nil.
func NewScanner(
	market drepo.MarketData,
	engine *SignalEngine,
	store drepo.SignalStore,
	archive drepo.Archive,
	sink drepo.SignalSink,
	snaps *snapshot.Holder,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg ScannerConfig,
) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = drepo.DefaultTimeframe()
	}
	return &Scanner{
		market:  market,
		engine:  engine,
		store:   store,
		archive: archive,
		sink:    sink,
		snaps:   snaps,
		metrics: metrics,
		log:     log.With("scanner"),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run scans until ctx is cancelled.
func (s *Scanner) Run(ctx context.Context) error {
	s.log.Info("scanner started",
		logger.Duration("interval", s.cfg.Interval),
		logger.Int("workers", s.cfg.Workers),
		logger.String("timeframe", string(s.cfg.Timeframe)))
	return runLoop(ctx, "scan", s.cfg.Interval, s.cfg.Backoff, s.log, func(ctx context.Context) error {
		_, err := s.Tick(ctx)
		return err
	})
}

// ScanTick fetches and analyses each symbol with bounded concurrency.
// Results keep the order of symbols.
func (s *Scanner) ScanTick(ctx context.Context, symbols []string) []ScanItemResult {
	results := make([]ScanItemResult, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, sym := range symbols {
		g.Go(func() error {
			results[i] = s.scanItem(gctx, sym)
			sleepCtx(gctx, s.cfg.ItemDelay)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Scanner) scanItem(ctx context.Context, symbol string) (res ScanItemResult) {
	res.Symbol = symbol
	defer func() {
		if r := recover(); r != nil {
			res.Signals, res.Alerts = nil, nil
			res.Err = fmt.Errorf("scan %s: panic: %v", symbol, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	start := time.Now()
	candles, err := s.market.FetchCandles(ctx, symbol, s.cfg.Timeframe, s.cfg.CandleLimit)
	s.metrics.RecordLatency("fetch_candles", time.Since(start).Seconds())
	if err != nil {
		res.Err = fmt.Errorf("fetch candles %s: %w", symbol, err)
		return res
	}
	if len(candles) == 0 {
		res.Skipped = true
		return res
	}
	out := s.engine.Best(symbol, candles)
	res.Signals, res.Alerts = out.Signals, out.Alerts
	return res
}

// Tick runs one full scan: list, analyse, persist, publish. The error is a
// tick-level fault; per-instrument faults are in the report.
func (s *Scanner) Tick(ctx context.Context) (*ScanReport, error) {
	start := time.Now()
	rep := &ScanReport{TickID: uuid.NewString()}

	instruments, err := s.market.ListInstruments(ctx)
	if err != nil {
		s.metrics.RecordError("list_instruments")
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	symbols := make([]string, 0, len(instruments))
	for _, in := range instruments {
		symbols = append(symbols, in.Symbol)
	}
	symbols = head(symbols, s.cfg.SymbolLimit)

	rep.Items = s.ScanTick(ctx, symbols)
	for _, it := range rep.Items {
		switch {
		case it.Err != nil:
			rep.Failed++
			s.metrics.RecordInstrument("failed")
			s.log.Debug("instrument failed", logger.String("symbol", it.Symbol), logger.Error(it.Err))
		case it.Skipped:
			rep.Skipped++
			s.metrics.RecordInstrument("skipped")
		default:
			s.metrics.RecordInstrument("ok")
			rep.Signals = append(rep.Signals, it.Signals...)
			rep.Alerts = append(rep.Alerts, it.Alerts...)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(rep.Items) > 0 && rep.Failed == len(rep.Items) {
		s.metrics.RecordError("scan_tick")
		return nil, fmt.Errorf("scan tick: all %d instruments failed: %w", rep.Failed, rep.Items[0].Err)
	}

	s.persist(ctx, rep)
	rep.Snapshot = s.publishSnapshot(ctx, rep, len(symbols))
	s.publish(ctx, rep)

	rep.Duration = time.Since(start)
	s.metrics.RecordScan(rep.Duration.Seconds())
	s.log.Info("scan tick done",
		logger.String("tick_id", rep.TickID),
		logger.Int("instruments", len(symbols)),
		logger.Int("signals", len(rep.Signals)),
		logger.Int("alerts", len(rep.Alerts)),
		logger.Int("failed", rep.Failed),
		logger.Int("skipped", rep.Skipped),
		logger.Duration("duration", rep.Duration))
	return rep, nil
}

func (s *Scanner) persist(ctx context.Context, rep *ScanReport) {
	rep.Records = make([]models.SignalRecord, 0, len(rep.Signals))
	stored := s.now().UTC()
	for _, sig := range rep.Signals {
		b := sig.Base()
		s.metrics.RecordSignal(string(b.Kind), string(b.Direction))
		id, err := s.store.PersistSignal(ctx, sig)
		if err != nil {
			s.metrics.RecordError("persist_signal")
			s.log.Warn("persist signal failed", logger.String("symbol", b.Symbol), logger.Error(err))
			continue
		}
		rec := models.NewSignalRecord(sig)
		rec.ID = id
		rec.CreatedAt = stored
		rep.Records = append(rep.Records, rec)
	}
	for i := range rep.Alerts {
		a := &rep.Alerts[i]
		s.metrics.RecordAlert(string(a.Kind))
		id, err := s.store.PersistAlert(ctx, *a)
		if err != nil {
			s.metrics.RecordError("persist_alert")
			s.log.Warn("persist alert failed", logger.String("symbol", a.Symbol), logger.Error(err))
			continue
		}
		a.ID = id
		a.CreatedAt = stored
	}
	if s.archive == nil {
		return
	}
	if err := s.archive.ArchiveSignals(ctx, rep.Records); err != nil {
		s.metrics.RecordError("archive")
		s.log.Warn("archive signals failed", logger.Error(err))
	}
	if err := s.archive.ArchiveAlerts(ctx, rep.Alerts); err != nil {
		s.metrics.RecordError("archive")
		s.log.Warn("archive alerts failed", logger.Error(err))
	}
}

func (s *Scanner) publishSnapshot(ctx context.Context, rep *ScanReport, instruments int) *models.Snapshot {
	prev := s.snaps.Latest()
	movers := prev.Movers
	tickers, err := s.market.FetchTickers(ctx)
	if err != nil {
		s.metrics.RecordError("fetch_tickers")
		s.log.Warn("movers not refreshed", logger.Error(err))
	} else {
		movers = BuildMovers(tickers, s.cfg.MoversLimit)
	}

	snap := s.snaps.Publish(models.Snapshot{
		TickID:      rep.TickID,
		Signals:     append([]models.Signal{}, tail(rep.Signals, s.cfg.SnapshotSignals)...),
		Alerts:      append([]models.PumpDumpAlert{}, tail(rep.Alerts, s.cfg.SnapshotAlerts)...),
		Movers:      movers,
		Instruments: instruments,
		Failed:      rep.Failed,
		UpdatedAt:   s.now().UTC(),
	})
	s.metrics.SetSnapshotVersion(snap.Version)
	return snap
}

func (s *Scanner) publish(ctx context.Context, rep *ScanReport) {
	if s.sink == nil {
		return
	}
	if len(rep.Records) > 0 {
		if err := s.sink.PublishSignals(ctx, rep.Records); err != nil {
			s.log.Warn("publish signals failed", logger.Error(err))
		}
	}
	if len(rep.Alerts) > 0 {
		if err := s.sink.PublishAlerts(ctx, rep.Alerts); err != nil {
			s.log.Warn("publish alerts failed", logger.Error(err))
		}
	}
	if err := s.sink.PublishSnapshot(ctx, rep.Snapshot); err != nil {
		s.log.Warn("publish snapshot failed", logger.Error(err))
	}
}
