package detectors

import (
	"fmt"

	"SignalScan/internal/domain/models"
)

// LiquidityGrabs detects a wick through the prior lookback range that
// closes back inside it on a bar of the reversal colour.
func (s *Set) LiquidityGrabs(c models.Candles) []models.Signal {
	lb := s.p.LiquidityLookback
	if lb <= 0 || len(c) < lb+5 {
		return nil
	}
	var out []models.Signal
	for i := lb; i < len(c); i++ {
		lo, hi := c[i-lb].Low, c[i-lb].High
		for _, w := range c[i-lb+1 : i] {
			if w.Low < lo {
				lo = w.Low
			}
			if w.High > hi {
				hi = w.High
			}
		}
		cur := c[i]

		if cur.Low < lo && cur.Close > lo && cur.Close > cur.Open && lo > 0 {
			hunt := (lo - cur.Low) / lo * 100
			sig := &models.LiquidityGrabSignal{
				SignalBase: base(c, i, models.KindLiquidityGrabLow, models.Buy,
					strength(75+float64(int(hunt*10)), 95),
					fmt.Sprintf("Liquidity Hunt Below Support (%.2f%%)", hunt)),
				HuntPct: hunt,
				Level:   lo,
			}
			sig.Stop = models.Float(cur.Low * 0.995)
			out = append(out, sig)
		}

		if cur.High > hi && cur.Close < hi && cur.Close < cur.Open && hi > 0 {
			hunt := (cur.High - hi) / hi * 100
			sig := &models.LiquidityGrabSignal{
				SignalBase: base(c, i, models.KindLiquidityGrabHigh, models.Sell,
					strength(75+float64(int(hunt*10)), 95),
					fmt.Sprintf("Liquidity Hunt Above Resistance (%.2f%%)", hunt)),
				HuntPct: hunt,
				Level:   hi,
			}
			sig.Stop = models.Float(cur.High * 1.005)
			out = append(out, sig)
		}
	}
	return recent(out)
}
