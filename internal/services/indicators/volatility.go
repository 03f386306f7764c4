package indicators

import (
	"math"

	"github.com/markcheno/go-talib"
)

// Bollinger returns upper, middle and lower bands around an n-bar SMA with
// population standard deviation.
func Bollinger(closes []float64, n int, dev float64) (upper, middle, lower []float64) {
	if n <= 1 || len(closes) < n {
		return nanSeries(len(closes)), nanSeries(len(closes)), nanSeries(len(closes))
	}
	upper, middle, lower = talib.BBands(closes, n, dev, dev, talib.SMA)
	return maskBefore(upper, n-1), maskBefore(middle, n-1), maskBefore(lower, n-1)
}

// TrueRange uses high-low for the first bar.
func TrueRange(highs, lows, closes []float64) []float64 {
	tr := make([]float64, len(closes))
	for i := range closes {
		hl := highs[i] - lows[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		pc := closes[i-1]
		tr[i] = math.Max(hl, math.Max(math.Abs(highs[i]-pc), math.Abs(lows[i]-pc)))
	}
	return tr
}

// ATR seeds with the mean of the first n true ranges, then smooths with
// Wilder's recurrence.
func ATR(highs, lows, closes []float64, n int) []float64 {
	out := nanSeries(len(closes))
	if n <= 0 || len(closes) < n {
		return out
	}
	tr := TrueRange(highs, lows, closes)
	sum := 0.0
	for _, v := range tr[:n] {
		sum += v
	}
	out[n-1] = sum / float64(n)
	for i := n; i < len(closes); i++ {
		out[i] = (out[i-1]*float64(n-1) + tr[i]) / float64(n)
	}
	return out
}
