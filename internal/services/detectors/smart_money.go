package detectors

import (
	"fmt"
	"math"

	"SignalScan/internal/domain/models"
	"SignalScan/internal/services/indicators"
)

const (
	smartMoneyMinBars = 30
	smartMoneyWindow  = 20
)

// SmartMoney flags heavy volume on a flat bar as accumulation and heavy
// volume on a strong up bar as distribution.
func (s *Set) SmartMoney(c models.Candles) []models.Signal {
	if len(c) < smartMoneyMinBars {
		return nil
	}
	vols := c.Volumes()
	avg := indicators.RollingMean(vols, smartMoneyWindow)

	var out []models.Signal
	for i := smartMoneyWindow; i < len(c); i++ {
		if math.IsNaN(avg[i]) || avg[i] == 0 || c[i-1].Close == 0 {
			continue
		}
		ratio := vols[i] / avg[i]
		change := math.Abs((c[i].Close - c[i-1].Close) / c[i-1].Close * 100)
		if ratio <= s.p.SmartMoneyVolumeRatio {
			continue
		}
		switch {
		case change < 0.5:
			out = append(out, &models.SmartMoneySignal{
				SignalBase: base(c, i, models.KindSmartMoneyAccumulation, models.Buy,
					strength(ratio*30, 95),
					fmt.Sprintf("Smart Money Accumulation (Vol: %.1fx)", ratio)),
				VolumeRatio:    ratio,
				PriceChangePct: change,
			})
		case change > 2 && c[i].Close > c[i-1].Close:
			out = append(out, &models.SmartMoneySignal{
				SignalBase: base(c, i, models.KindSmartMoneyDistribution, models.Sell,
					strength(ratio*25, 90),
					fmt.Sprintf("Smart Money Distribution (Vol: %.1fx)", ratio)),
				VolumeRatio:    ratio,
				PriceChangePct: change,
			})
		}
	}
	return recent(out)
}
