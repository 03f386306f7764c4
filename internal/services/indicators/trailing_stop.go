package indicators

import (
	"fmt"
	"math"

	"SignalScan/internal/domain/models"
)

const (
	utStrength  = 80
	utKeepLast  = 5
	utExtraBars = 10
)

// TrailingStopResult is the UT trailing stop with its position sign.
type TrailingStopResult struct {
	Stop     []float64
	Position []int
	ATR      []float64
}

// TrailingStop runs the UT recurrence with loss = k * ATR(p). The first bar
// and bars where the ATR is not yet defined pin the stop to the close, so
// their position is flat.
func TrailingStop(candles models.Candles, k float64, p int) TrailingStopResult {
	closes := candles.Closes()
	atr := ATR(candles.Highs(), candles.Lows(), closes, p)
	stop := make([]float64, len(closes))
	pos := make([]int, len(closes))
	if len(closes) > 0 {
		stop[0] = closes[0]
	}

	for i := 1; i < len(closes); i++ {
		loss := k * atr[i]
		c, pc, prev := closes[i], closes[i-1], stop[i-1]
		switch {
		case math.IsNaN(loss):
			stop[i] = c
		case c > prev && pc > prev:
			stop[i] = math.Max(prev, c-loss)
		case c < prev && pc < prev:
			stop[i] = math.Min(prev, c+loss)
		case c > prev:
			stop[i] = c - loss
		default:
			stop[i] = c + loss
		}
	}
	for i, c := range closes {
		switch {
		case c > stop[i]:
			pos[i] = 1
		case c < stop[i]:
			pos[i] = -1
		}
	}
	return TrailingStopResult{Stop: stop, Position: pos, ATR: atr}
}

// TrendSignals emits an entry whenever the position swings fully from one
// side of the stop to the other. Only the latest few are returned.
func TrendSignals(candles models.Candles, k float64, p int) []models.Signal {
	if p <= 0 || len(candles) < p+utExtraBars {
		return nil
	}
	ts := TrailingStop(candles, k, p)
	var out []models.Signal
	for i := 1; i < len(candles); i++ {
		var kind models.SignalKind
		var dir models.Direction
		var label string
		switch ts.Position[i] - ts.Position[i-1] {
		case 2:
			kind, dir, label = models.KindUTBotBuy, models.Buy, "Buy"
		case -2:
			kind, dir, label = models.KindUTBotSell, models.Sell, "Sell"
		default:
			continue
		}
		stop := ts.Stop[i]
		out = append(out, &models.TrendStopSignal{
			SignalBase: models.SignalBase{
				Symbol:     candles[i].Symbol,
				Kind:       kind,
				Direction:  dir,
				Price:      candles[i].Close,
				Stop:       models.Float(stop),
				Strength:   utStrength,
				Reason:     fmt.Sprintf("UT Bot %s Signal (Stop: %.4f)", label, stop),
				Index:      i,
				DetectedAt: candles[i].Time,
			},
			TrailingStop: stop,
			ATR:          ts.ATR[i],
		})
	}
	return lastN(out, utKeepLast)
}

func lastN(xs []models.Signal, n int) []models.Signal {
	if len(xs) > n {
		return xs[len(xs)-n:]
	}
	return xs
}
