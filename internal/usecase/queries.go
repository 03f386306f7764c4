package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	"SignalScan/internal/service/snapshot"
	"SignalScan/internal/services/indicators"
	"SignalScan/pkg/util"
)

var ErrNoCandles = errors.New("no candle data")

const symbolsPreview = 50

// QueryUseCase answers the read side of the API.
type QueryUseCase struct {
	store  drepo.SignalStore
	snaps  *snapshot.Holder
	market drepo.MarketData
	engine *SignalEngine
	now    func() time.Time
}

func NewQueryUseCase(store drepo.SignalStore, snaps *snapshot.Holder, market drepo.MarketData, engine *SignalEngine) *QueryUseCase {
	return &QueryUseCase{store: store, snaps: snaps, market: market, engine: engine, now: time.Now}
}

// LatestSignals returns the newest limit signals of the current snapshot.
func (uc *QueryUseCase) LatestSignals(limit int) []models.Signal {
	return tail(uc.snaps.Latest().Signals, limit)
}

func (uc *QueryUseCase) Alerts() []models.PumpDumpAlert {
	return uc.snaps.Latest().Alerts
}

func (uc *QueryUseCase) Movers(limit int) models.Movers {
	m := uc.snaps.Latest().Movers
	return models.Movers{Gainers: head(m.Gainers, limit), Losers: head(m.Losers, limit)}
}

type SnapshotInfo struct {
	Version     uint64    `json:"version"`
	TickID      string    `json:"tick_id"`
	UpdatedAt   time.Time `json:"last_update"`
	Signals     int       `json:"signals"`
	Alerts      int       `json:"pump_dump"`
	Instruments int       `json:"instruments"`
	Failed      int       `json:"failed"`
}

func (uc *QueryUseCase) SnapshotInfo() SnapshotInfo {
	s := uc.snaps.Latest()
	return SnapshotInfo{
		Version:     s.Version,
		TickID:      s.TickID,
		UpdatedAt:   s.UpdatedAt,
		Signals:     len(s.Signals),
		Alerts:      len(s.Alerts),
		Instruments: s.Instruments,
		Failed:      s.Failed,
	}
}

func (uc *QueryUseCase) SignalHistory(ctx context.Context, days, limit int) ([]models.SignalRecord, error) {
	since := uc.now().Add(-time.Duration(days) * 24 * time.Hour)
	recs, err := uc.store.SignalHistory(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("signal history: %w", err)
	}
	return recs, nil
}

func (uc *QueryUseCase) ActiveSignals(ctx context.Context, limit int) ([]models.SignalRecord, error) {
	recs, err := uc.store.ActiveSignals(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("active signals: %w", err)
	}
	return recs, nil
}

type SignalDetail struct {
	Signal      models.SignalRecord  `json:"signal"`
	Validations []models.Observation `json:"validations"`
}

func (uc *QueryUseCase) SignalDetail(ctx context.Context, id int64) (*SignalDetail, error) {
	rec, err := uc.store.GetSignal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get signal %d: %w", id, err)
	}
	obs, err := uc.store.Observations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("observations %d: %w", id, err)
	}
	if obs == nil {
		obs = []models.Observation{}
	}
	return &SignalDetail{Signal: rec, Validations: obs}, nil
}

func (uc *QueryUseCase) AlertHistory(ctx context.Context, hours, limit int) ([]models.PumpDumpAlert, error) {
	since := uc.now().Add(-time.Duration(hours) * time.Hour)
	alerts, err := uc.store.AlertHistory(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("alert history: %w", err)
	}
	return alerts, nil
}

func (uc *QueryUseCase) Stats(ctx context.Context) (models.Statistics, error) {
	st, err := uc.store.Statistics(ctx, uc.now())
	if err != nil {
		return models.Statistics{}, fmt.Errorf("statistics: %w", err)
	}
	return st, nil
}

type SymbolsResult struct {
	Count   int      `json:"count"`
	Symbols []string `json:"symbols"`
}

func (uc *QueryUseCase) Symbols(ctx context.Context) (*SymbolsResult, error) {
	ins, err := uc.market.ListInstruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	out := &SymbolsResult{Count: len(ins), Symbols: make([]string, 0, symbolsPreview)}
	for _, in := range head(ins, symbolsPreview) {
		out.Symbols = append(out.Symbols, in.Symbol)
	}
	return out, nil
}

// Analyze fetches live candles and runs the full, uncut engine.
func (uc *QueryUseCase) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error) {
	symbol := util.NormalizeSymbol(req.Symbol)
	tf := drepo.NormalizeTimeframe(req.Timeframe)
	candles, err := uc.market.FetchCandles(ctx, symbol, tf, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s: %w", symbol, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoCandles)
	}

	res := uc.engine.Analyze(symbol, candles)
	a := &models.Analysis{
		Symbol:    symbol,
		Timeframe: string(tf),
		Candles:   len(candles),
		Signals:   res.Signals,
		Alerts:    res.Alerts,
	}
	if a.Signals == nil {
		a.Signals = []models.Signal{}
	}
	if a.Alerts == nil {
		a.Alerts = []models.PumpDumpAlert{}
	}
	if res.Series != nil {
		a.Indicators = indicators.Summarize(candles, res.Series)
	}
	return a, nil
}

// Health pings the store.
func (uc *QueryUseCase) Health(ctx context.Context) error {
	return uc.store.Health(ctx)
}
