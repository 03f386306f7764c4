package models

// IndicatorSeries holds every derived series for one candle series.
// Each slice has the length of the input; NaN marks an undefined value.
type IndicatorSeries struct {
	Len int

	MA  map[int][]float64
	EMA map[int][]float64

	RSI  []float64
	RSI7 []float64

	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	BBUpper  []float64
	BBMiddle []float64
	BBLower  []float64
	BBWidth  []float64

	ATR        []float64
	ATRPercent []float64

	StochK []float64
	StochD []float64

	// UT trailing stop and its position (+1, -1, 0).
	TrailingStop []float64
	Position     []int
}

// IndicatorSummary is the latest-bar view returned by the analyze route.
type IndicatorSummary struct {
	Price      float64  `json:"price"`
	RSI        *float64 `json:"rsi"`
	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macd_signal"`
	BBPosition *float64 `json:"bb_position"`
	ATRPercent *float64 `json:"atr_percent"`
	MATrend    string   `json:"ma_trend"`
}

// Analysis is the on-demand report for a single instrument.
type Analysis struct {
	Symbol     string           `json:"symbol"`
	Timeframe  string           `json:"timeframe"`
	Candles    int              `json:"candles"`
	Signals    []Signal         `json:"signals"`
	Alerts     []PumpDumpAlert  `json:"alerts"`
	Indicators IndicatorSummary `json:"indicators"`
}
