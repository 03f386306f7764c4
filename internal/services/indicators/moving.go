package indicators

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMA is the simple moving average over n closes.
func SMA(closes []float64, n int) []float64 {
	if n <= 0 || len(closes) < n {
		return nanSeries(len(closes))
	}
	return maskBefore(talib.Sma(closes, n), n-1)
}

// EMA uses alpha 2/(n+1) seeded with the first close.
func EMA(closes []float64, n int) []float64 {
	if n <= 0 {
		return nanSeries(len(closes))
	}
	return ewm(closes, 2/float64(n+1), n)
}

// RSI is Wilder's relative strength index.
func RSI(closes []float64, n int) []float64 {
	out := nanSeries(len(closes))
	if n <= 0 || len(closes) == 0 {
		return out
	}
	ups := make([]float64, len(closes))
	downs := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			ups[i] = d
		} else {
			downs[i] = -d
		}
	}
	alpha := 1 / float64(n)
	avgUp := ewm(ups, alpha, n)
	avgDown := ewm(downs, alpha, n)
	for i := range closes {
		if !defined(avgUp[i], avgDown[i]) {
			continue
		}
		if avgDown[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgUp[i] / avgDown[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACD returns the line, signal and histogram for the given periods.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	ef := EMA(closes, fast)
	es := EMA(closes, slow)
	line = nanSeries(len(closes))
	for i := range closes {
		if defined(ef[i], es[i]) {
			line[i] = ef[i] - es[i]
		}
	}
	sig = ewm(line, 2/float64(signal+1), signal)
	hist = nanSeries(len(closes))
	for i := range closes {
		if defined(line[i], sig[i]) {
			hist[i] = line[i] - sig[i]
		}
	}
	return line, sig, hist
}

// Stochastic returns %K and its 3-bar mean %D.
func Stochastic(highs, lows, closes []float64, n, smooth int) (k, d []float64) {
	hh := RollingMax(highs, n)
	ll := RollingMin(lows, n)
	k = nanSeries(len(closes))
	for i := range closes {
		if !defined(hh[i], ll[i]) {
			continue
		}
		rng := hh[i] - ll[i]
		if rng == 0 || math.IsInf(rng, 0) {
			continue
		}
		k[i] = 100 * (closes[i] - ll[i]) / rng
	}
	return k, RollingMean(k, smooth)
}
