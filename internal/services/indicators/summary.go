package indicators

import (
	"SignalScan/internal/domain/models"
	"SignalScan/pkg/util"
)

const (
	TrendBullish = "BULLISH"
	TrendBearish = "BEARISH"
	TrendNeutral = "NEUTRAL"
)

// Summarize reads the latest bar of s into a compact report.
func Summarize(candles models.Candles, s *models.IndicatorSeries) models.IndicatorSummary {
	i := len(candles) - 1
	last := candles[i]
	sum := models.IndicatorSummary{Price: last.Close}

	sum.RSI = roundedAt(s.RSI, i, 2)
	sum.MACD = roundedAt(s.MACD, i, 6)
	sum.MACDSignal = roundedAt(s.MACDSignal, i, 6)
	sum.ATRPercent = roundedAt(s.ATRPercent, i, 2)

	if up, lo := s.BBUpper[i], s.BBLower[i]; defined(up, lo) && up-lo > 0 {
		pos := util.Round((last.Close-lo)/(up-lo)*100, 1)
		sum.BBPosition = &pos
	}

	ma20, ma50 := s.MA[20][i], s.MA[50][i]
	if defined(ma20, ma50) {
		switch {
		case last.Close > ma20 && ma20 > ma50:
			sum.MATrend = TrendBullish
		case last.Close < ma20 && ma20 < ma50:
			sum.MATrend = TrendBearish
		default:
			sum.MATrend = TrendNeutral
		}
	}
	return sum
}

func roundedAt(xs []float64, i int, places int32) *float64 {
	if i >= len(xs) || !defined(xs[i]) {
		return nil
	}
	v := util.Round(xs[i], places)
	return &v
}
