package detectors

import (
	"fmt"

	"SignalScan/internal/domain/models"
)

const orderBlockMinBars = 10

// OrderBlocks finds an opposite-colour bar engulfed by the next bar's close
// with a move above half a percent. The newest bar is never evaluated.
func (s *Set) OrderBlocks(c models.Candles) []models.Signal {
	if len(c) < orderBlockMinBars {
		return nil
	}
	var out []models.Signal
	for i := 3; i < len(c)-1; i++ {
		prev, cur := c[i-1], c[i]

		if prev.Close < prev.Open && cur.Close > cur.Open && cur.Close > prev.High && prev.Low > 0 {
			move := (cur.Close - prev.Low) / prev.Low * 100
			if move > 0.5 {
				out = append(out, &models.OrderBlockSignal{
					SignalBase: base(c, i, models.KindBullishOrderBlock, models.Buy,
						strength(move*20, 90),
						fmt.Sprintf("Bullish Order Block (%.1f%% move)", move)),
					MovePct: move,
				})
			}
		}

		if prev.Close > prev.Open && cur.Close < cur.Open && cur.Close < prev.Low && prev.High > 0 {
			move := (prev.High - cur.Close) / prev.High * 100
			if move > 0.5 {
				out = append(out, &models.OrderBlockSignal{
					SignalBase: base(c, i, models.KindBearishOrderBlock, models.Sell,
						strength(move*20, 90),
						fmt.Sprintf("Bearish Order Block (%.1f%% move)", move)),
					MovePct: move,
				})
			}
		}
	}
	return recent(out)
}
