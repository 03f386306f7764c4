package usecase

import (
	"math"
	"slices"

	"SignalScan/internal/domain/models"
)

// BuildMovers ranks tickers by 24h change into the top gainers and losers.
func BuildMovers(tickers []models.Ticker, limit int) models.Movers {
	valid := make([]models.Ticker, 0, len(tickers))
	for _, t := range tickers {
		if !math.IsNaN(t.ChangePct) && !math.IsInf(t.ChangePct, 0) {
			valid = append(valid, t)
		}
	}
	gainers := slices.Clone(valid)
	slices.SortStableFunc(gainers, func(a, b models.Ticker) int { return cmpFloat(b.ChangePct, a.ChangePct) })
	losers := slices.Clone(valid)
	slices.SortStableFunc(losers, func(a, b models.Ticker) int { return cmpFloat(a.ChangePct, b.ChangePct) })
	return models.Movers{Gainers: head(gainers, limit), Losers: head(losers, limit)}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func head[T any](xs []T, n int) []T {
	if n > 0 && len(xs) > n {
		return xs[:n]
	}
	return xs
}

func tail[T any](xs []T, n int) []T {
	if n > 0 && len(xs) > n {
		return xs[len(xs)-n:]
	}
	return xs
}
