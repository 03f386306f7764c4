package indicators

import (
	"SignalScan/internal/domain/models"
)

var (
	maWindows  = []int{7, 20, 50, 100, 200}
	emaWindows = []int{9, 12, 21, 26, 50}
)

// Params tunes the UT trailing stop.
type Params struct {
	UTSensitivity float64
	UTATRPeriod   int
}

func DefaultParams() Params {
	return Params{UTSensitivity: 1, UTATRPeriod: 10}
}

// Calculate derives every indicator series. It reports false when the
// series is shorter than MinBars.
func Calculate(candles models.Candles, p Params) (*models.IndicatorSeries, bool) {
	if len(candles) < MinBars {
		return nil, false
	}
	closes, highs, lows := candles.Closes(), candles.Highs(), candles.Lows()

	s := &models.IndicatorSeries{
		Len: len(candles),
		MA:  make(map[int][]float64, len(maWindows)),
		EMA: make(map[int][]float64, len(emaWindows)),
	}
	for _, w := range maWindows {
		s.MA[w] = SMA(closes, w)
	}
	for _, w := range emaWindows {
		s.EMA[w] = EMA(closes, w)
	}

	s.RSI = RSI(closes, 14)
	s.RSI7 = RSI(closes, 7)
	s.MACD, s.MACDSignal, s.MACDHist = MACD(closes, 12, 26, 9)

	s.BBUpper, s.BBMiddle, s.BBLower = Bollinger(closes, 20, 2)
	s.BBWidth = nanSeries(len(closes))
	for i := range closes {
		if defined(s.BBUpper[i], s.BBLower[i], s.BBMiddle[i]) && s.BBMiddle[i] != 0 {
			s.BBWidth[i] = (s.BBUpper[i] - s.BBLower[i]) / s.BBMiddle[i]
		}
	}

	s.ATR = ATR(highs, lows, closes, 14)
	s.ATRPercent = nanSeries(len(closes))
	for i := range closes {
		if defined(s.ATR[i]) && closes[i] != 0 {
			s.ATRPercent[i] = s.ATR[i] / closes[i] * 100
		}
	}

	s.StochK, s.StochD = Stochastic(highs, lows, closes, 14, 3)

	ts := TrailingStop(candles, p.UTSensitivity, p.UTATRPeriod)
	s.TrailingStop, s.Position = ts.Stop, ts.Position
	return s, true
}
