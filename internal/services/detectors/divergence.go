package detectors

import (
	"fmt"
	"math"

	"SignalScan/internal/domain/models"
	"SignalScan/internal/services/indicators"
)

const (
	divergenceMinBars  = 30
	divergenceLookback = 5
	divergenceStrength = 85
)

// Divergences compares price and RSI(14) against the bar five back.
func (s *Set) Divergences(c models.Candles) []models.Signal {
	if len(c) < divergenceMinBars {
		return nil
	}
	closes := c.Closes()
	rsi := indicators.RSI(closes, 14)
	lb := divergenceLookback

	var out []models.Signal
	for i := lb * 2; i < len(c); i++ {
		r, pr := rsi[i], rsi[i-lb]
		if math.IsNaN(r) || math.IsNaN(pr) {
			continue
		}
		if closes[i] < closes[i-lb] && r > pr && r < 40 {
			out = append(out, &models.DivergenceSignal{
				SignalBase: base(c, i, models.KindBullishDivergence, models.Buy, divergenceStrength,
					fmt.Sprintf("RSI Bullish Divergence (RSI: %.1f)", r)),
				RSI: r, PriorRSI: pr, PriorClose: closes[i-lb],
			})
		}
		if closes[i] > closes[i-lb] && r < pr && r > 60 {
			out = append(out, &models.DivergenceSignal{
				SignalBase: base(c, i, models.KindBearishDivergence, models.Sell, divergenceStrength,
					fmt.Sprintf("RSI Bearish Divergence (RSI: %.1f)", r)),
				RSI: r, PriorRSI: pr, PriorClose: closes[i-lb],
			})
		}
	}
	return recent(out)
}
