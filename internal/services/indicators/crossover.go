package indicators

import (
	"SignalScan/internal/domain/models"
)

const (
	crossMinBars     = 55
	crossKeepLast    = 10
	emaCrossStrength = 75
	maCrossStrength  = 85
)

type crossPair struct {
	name          string
	fast, slow    []float64
	golden, death models.SignalKind
	strength      int
	goldenReason  string
	deathReason   string
}

// Crossovers finds EMA 9/21 and MA 20/50 golden and death crosses. The
// series is computed from candles when s is nil.
func Crossovers(candles models.Candles, s *models.IndicatorSeries) []models.Signal {
	if len(candles) < crossMinBars {
		return nil
	}
	if s == nil {
		var ok bool
		if s, ok = Calculate(candles, DefaultParams()); !ok {
			return nil
		}
	}
	pairs := []crossPair{
		{
			name: "EMA9/21", fast: s.EMA[9], slow: s.EMA[21],
			golden: models.KindEMAGoldenCross, death: models.KindEMADeathCross,
			strength:     emaCrossStrength,
			goldenReason: "EMA 9/21 Golden Cross (BUY)",
			deathReason:  "EMA 9/21 Death Cross (SELL)",
		},
		{
			name: "MA20/50", fast: s.MA[20], slow: s.MA[50],
			golden: models.KindMAGoldenCross, death: models.KindMADeathCross,
			strength:     maCrossStrength,
			goldenReason: "MA 20/50 Golden Cross (Strong BUY)",
			deathReason:  "MA 20/50 Death Cross (Strong SELL)",
		},
	}

	var out []models.Signal
	for i := 1; i < len(candles); i++ {
		for _, p := range pairs {
			f0, s0, f1, s1 := p.fast[i-1], p.slow[i-1], p.fast[i], p.slow[i]
			if !defined(f0, s0, f1, s1) {
				continue
			}
			var kind models.SignalKind
			var dir models.Direction
			var reason string
			if f1 > s1 && f0 <= s0 {
				kind, dir, reason = p.golden, models.Buy, p.goldenReason
			} else if f1 < s1 && f0 >= s0 {
				kind, dir, reason = p.death, models.Sell, p.deathReason
			} else {
				continue
			}
			out = append(out, &models.CrossoverSignal{
				SignalBase: models.SignalBase{
					Symbol:     candles[i].Symbol,
					Kind:       kind,
					Direction:  dir,
					Price:      candles[i].Close,
					Strength:   p.strength,
					Reason:     reason,
					Index:      i,
					DetectedAt: candles[i].Time,
				},
				Pair: p.name,
				Fast: f1,
				Slow: s1,
			})
		}
	}
	return lastN(out, crossKeepLast)
}
