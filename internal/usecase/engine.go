package usecase

import (
	"slices"

	"SignalScan/internal/domain/models"
	"SignalScan/internal/services/detectors"
	"SignalScan/internal/services/indicators"
)

// SignalEngine runs every strategy over one instrument and ranks the result.
type SignalEngine struct {
	set  *detectors.Set
	ind  indicators.Params
	topN int
}

func NewSignalEngine(set *detectors.Set, ind indicators.Params, topN int) *SignalEngine {
	if topN <= 0 {
		topN = 5
	}
	return &SignalEngine{set: set, ind: ind, topN: topN}
}

// EngineResult holds the ranked signals and the separate pump/dump alerts.
type EngineResult struct {
	Signals []models.Signal
	Alerts  []models.PumpDumpAlert
	Series  *models.IndicatorSeries
}

// Analyze returns every signal for the instrument, ranked by strength.
// Ties keep emission order.
func (e *SignalEngine) Analyze(symbol string, candles models.Candles) EngineResult {
	var res EngineResult
	if len(candles) == 0 {
		return res
	}
	series, ok := indicators.Calculate(candles, e.ind)
	if ok {
		res.Series = series
	}

	var all []models.Signal
	all = append(all, e.set.SmartMoney(candles)...)
	all = append(all, e.set.OrderBlocks(candles)...)
	all = append(all, e.set.LiquidityGrabs(candles)...)
	all = append(all, e.set.Divergences(candles)...)
	all = append(all, e.set.Whales(candles)...)
	all = append(all, indicators.TrendSignals(candles, e.ind.UTSensitivity, e.ind.UTATRPeriod)...)
	if ok {
		all = append(all, indicators.Crossovers(candles, series)...)
	}
	for _, s := range all {
		s.Base().Symbol = symbol
	}
	slices.SortStableFunc(all, func(a, b models.Signal) int {
		return b.Base().Strength - a.Base().Strength
	})
	res.Signals = all

	res.Alerts = e.set.PumpDump(candles)
	for i := range res.Alerts {
		res.Alerts[i].Symbol = symbol
	}
	return res
}

// Best is Analyze cut to the engine's top N. Alerts are never cut.
func (e *SignalEngine) Best(symbol string, candles models.Candles) EngineResult {
	return e.BestN(symbol, candles, e.topN)
}

func (e *SignalEngine) BestN(symbol string, candles models.Candles, n int) EngineResult {
	res := e.Analyze(symbol, candles)
	if n >= 0 && len(res.Signals) > n {
		res.Signals = res.Signals[:n]
	}
	return res
}
