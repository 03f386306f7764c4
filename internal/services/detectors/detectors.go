// Package detectors holds the stateless pattern strategies. Each one reads
// a candle series and returns its most recent matches.
package detectors

import (
	"math"

	"SignalScan/internal/domain/models"
	"SignalScan/pkg/config"
)

const keepLast = 5

// Params are the tunable thresholds shared by the strategies.
type Params struct {
	SmartMoneyVolumeRatio float64
	LiquidityLookback     int
	WhaleZScore           float64
	PumpWindow            int
	PumpThreshold         float64
}

func DefaultParams() Params {
	return Params{
		SmartMoneyVolumeRatio: 2.0,
		LiquidityLookback:     20,
		WhaleZScore:           2.5,
		PumpWindow:            15,
		PumpThreshold:         5,
	}
}

// ParamsFromConfig fills unset values with defaults.
func ParamsFromConfig(cfg config.Detectors) Params {
	p := DefaultParams()
	if cfg.SmartMoneyVolumeRatio > 0 {
		p.SmartMoneyVolumeRatio = cfg.SmartMoneyVolumeRatio
	}
	if cfg.LiquidityLookback > 0 {
		p.LiquidityLookback = cfg.LiquidityLookback
	}
	if cfg.WhaleZScore > 0 {
		p.WhaleZScore = cfg.WhaleZScore
	}
	if cfg.PumpWindow > 1 {
		p.PumpWindow = cfg.PumpWindow
	}
	if cfg.PumpThreshold > 0 {
		p.PumpThreshold = cfg.PumpThreshold
	}
	return p
}

// Set runs every strategy with one parameter set.
type Set struct {
	p Params
}

func NewSet(p Params) *Set { return &Set{p: p} }

func (s *Set) Params() Params { return s.p }

// strength truncates v and bounds it to [0, ceiling].
func strength(v float64, ceiling int) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= float64(ceiling) {
		return ceiling
	}
	return int(v)
}

func base(c models.Candles, i int, kind models.SignalKind, dir models.Direction, str int, reason string) models.SignalBase {
	return models.SignalBase{
		Symbol:     c[i].Symbol,
		Kind:       kind,
		Direction:  dir,
		Price:      c[i].Close,
		Strength:   str,
		Reason:     reason,
		Index:      i,
		DetectedAt: c[i].Time,
	}
}

func recent(xs []models.Signal) []models.Signal {
	if len(xs) > keepLast {
		return xs[len(xs)-keepLast:]
	}
	return xs
}
