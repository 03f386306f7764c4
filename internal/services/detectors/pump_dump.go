package detectors

import (
	"fmt"
	"math"

	"SignalScan/internal/domain/models"
	"SignalScan/pkg/util"
)

const (
	pumpBaselineBars = 100
	pumpExtraBars    = 50
	pumpMinVolume    = 30
)

// PumpDump checks the trailing window for a sharp move on elevated volume.
// At most one alert is returned.
func (s *Set) PumpDump(c models.Candles) []models.PumpDumpAlert {
	w := s.p.PumpWindow
	if w < 2 || len(c) < w+pumpExtraBars {
		return nil
	}
	window := c[len(c)-w:]
	start, end := window[0].Close, window[len(window)-1].Close
	if start == 0 {
		return nil
	}
	change := (end - start) / start * 100

	baseline := mean(c[max(0, len(c)-pumpBaselineBars):].Volumes())
	recentVol := mean(window.Volumes())
	volChange := 0.0
	if baseline > 0 {
		volChange = (recentVol - baseline) / baseline * 100
	}
	if volChange <= pumpMinVolume {
		return nil
	}

	last := window[len(window)-1]
	alert := models.PumpDumpAlert{
		Symbol:          last.Symbol,
		Price:           end,
		PriceChangePct:  util.Round(change, 2),
		VolumeChangePct: util.Round(volChange, 2),
		DetectedAt:      last.Time,
	}
	switch {
	case change >= s.p.PumpThreshold:
		alert.Kind, alert.Direction = models.AlertPump, models.Buy
		alert.Strength = strength(70+float64(int(change*2)), 95)
		alert.Reason = fmt.Sprintf("PUMP! +%.1f%% | Vol +%.0f%%", change, volChange)
	case change <= -s.p.PumpThreshold:
		alert.Kind, alert.Direction = models.AlertDump, models.Sell
		alert.Strength = strength(70+float64(int(math.Abs(change)*2)), 95)
		alert.Reason = fmt.Sprintf("DUMP! %.1f%% | Vol +%.0f%%", change, volChange)
	default:
		return nil
	}
	return []models.PumpDumpAlert{alert}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}
