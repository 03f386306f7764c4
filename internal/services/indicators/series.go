package indicators

import "math"

// MinBars is the shortest series the calculator will work on.
const MinBars = 50

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func defined(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// maskBefore overwrites everything before index n with NaN.
func maskBefore(xs []float64, n int) []float64 {
	for i := 0; i < n && i < len(xs); i++ {
		xs[i] = math.NaN()
	}
	return xs
}

// RollingMean is a trailing mean that is NaN until the window is full or
// while any value inside it is NaN.
func RollingMean(xs []float64, window int) []float64 {
	out := nanSeries(len(xs))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(xs); i++ {
		sum := 0.0
		ok := true
		for _, v := range xs[i-window+1 : i+1] {
			if math.IsNaN(v) {
				ok = false
				break
			}
			sum += v
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// RollingStd is the trailing sample standard deviation (n-1).
func RollingStd(xs []float64, window int) []float64 {
	out := nanSeries(len(xs))
	if window < 2 {
		return out
	}
	means := RollingMean(xs, window)
	for i := window - 1; i < len(xs); i++ {
		if math.IsNaN(means[i]) {
			continue
		}
		ss := 0.0
		for _, v := range xs[i-window+1 : i+1] {
			d := v - means[i]
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

func rollingExtreme(xs []float64, window int, better func(a, b float64) bool) []float64 {
	out := nanSeries(len(xs))
	for i := window - 1; i < len(xs) && window > 0; i++ {
		best := xs[i-window+1]
		for _, v := range xs[i-window+2 : i+1] {
			if better(v, best) {
				best = v
			}
		}
		out[i] = best
	}
	return out
}

func RollingMin(xs []float64, window int) []float64 {
	return rollingExtreme(xs, window, func(a, b float64) bool { return a < b })
}

func RollingMax(xs []float64, window int) []float64 {
	return rollingExtreme(xs, window, func(a, b float64) bool { return a > b })
}

// ewm is an exponentially weighted mean seeded with the first defined
// value. Leading NaNs stay NaN and the result is masked until minPeriods
// values have been consumed.
func ewm(xs []float64, alpha float64, minPeriods int) []float64 {
	out := nanSeries(len(xs))
	start := -1
	for i, v := range xs {
		if !math.IsNaN(v) {
			start = i
			break
		}
	}
	if start < 0 {
		return out
	}
	prev := xs[start]
	out[start] = prev
	for i := start + 1; i < len(xs); i++ {
		prev = alpha*xs[i] + (1-alpha)*prev
		out[i] = prev
	}
	return maskBefore(out, start+minPeriods-1)
}
