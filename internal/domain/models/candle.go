package models

import "time"

// Candle is one OHLCV bar of a fixed timeframe.
type Candle struct {
	Symbol string    `json:"symbol"`
	Time   time.Time `json:"timestamp"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Candles is an ascending series for one instrument.
type Candles []Candle

func (cs Candles) Opens() []float64   { return cs.column(func(c Candle) float64 { return c.Open }) }
func (cs Candles) Highs() []float64   { return cs.column(func(c Candle) float64 { return c.High }) }
func (cs Candles) Lows() []float64    { return cs.column(func(c Candle) float64 { return c.Low }) }
func (cs Candles) Closes() []float64  { return cs.column(func(c Candle) float64 { return c.Close }) }
func (cs Candles) Volumes() []float64 { return cs.column(func(c Candle) float64 { return c.Volume }) }

func (cs Candles) column(f func(Candle) float64) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = f(c)
	}
	return out
}

// Last returns the newest bar. The series must not be empty.
func (cs Candles) Last() Candle { return cs[len(cs)-1] }
