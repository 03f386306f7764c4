package detectors

import (
	"fmt"
	"math"

	"SignalScan/internal/domain/models"
	"SignalScan/internal/services/indicators"
)

const (
	whaleMinBars = 60
	whaleWindow  = 50
	whaleMinBody = 0.3
)

// Whales flags volume outliers against a 50-bar baseline, directed by the
// bar body.
func (s *Set) Whales(c models.Candles) []models.Signal {
	if len(c) < whaleMinBars {
		return nil
	}
	vols := c.Volumes()
	mean := indicators.RollingMean(vols, whaleWindow)
	std := indicators.RollingStd(vols, whaleWindow)

	var out []models.Signal
	for i := whaleWindow; i < len(c); i++ {
		if math.IsNaN(std[i]) || std[i] == 0 || c[i].Open == 0 {
			continue
		}
		z := (vols[i] - mean[i]) / std[i]
		if z <= s.p.WhaleZScore {
			continue
		}
		body := (c[i].Close - c[i].Open) / c[i].Open * 100
		str := strength(65+float64(int(z*8)), 95)
		switch {
		case body > whaleMinBody:
			out = append(out, &models.WhaleSignal{
				SignalBase: base(c, i, models.KindWhaleBuying, models.Buy, str,
					fmt.Sprintf("Whale Buying (Vol Z: %.1f)", z)),
				ZScore: z, BodyPct: body,
			})
		case body < -whaleMinBody:
			out = append(out, &models.WhaleSignal{
				SignalBase: base(c, i, models.KindWhaleSelling, models.Sell, str,
					fmt.Sprintf("Whale Selling (Vol Z: %.1f)", z)),
				ZScore: z, BodyPct: body,
			})
		}
	}
	return recent(out)
}
