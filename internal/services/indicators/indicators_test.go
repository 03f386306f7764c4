package indicators

import (
	"math"
	"testing"
	"time"

	"SignalScan/internal/domain/models"
)

func candlesFrom(closes []float64) models.Candles {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make(models.Candles, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		out[i] = models.Candle{
			Symbol: "BTCUSDT",
			Time:   base.Add(time.Duration(i) * 15 * time.Minute),
			Open:   open,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 100,
		}
	}
	return out
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSMA(t *testing.T) {
	got := SMA(ramp(10, 1, 1), 5)
	for i := 0; i < 4; i++ {
		if !math.IsNaN(got[i]) {
			t.Fatalf("SMA[%d] = %v, want NaN", i, got[i])
		}
	}
	if !near(got[4], 3) || !near(got[9], 8) {
		t.Fatalf("SMA = %v", got)
	}

	short := SMA([]float64{1, 2, 3}, 5)
	for _, v := range short {
		if !math.IsNaN(v) {
			t.Fatalf("short SMA = %v, want all NaN", short)
		}
	}
}

func TestEMAConstantSeries(t *testing.T) {
	xs := make([]float64, 30)
	for i := range xs {
		xs[i] = 42
	}
	got := EMA(xs, 9)
	if !math.IsNaN(got[7]) {
		t.Fatalf("EMA[7] = %v, want NaN", got[7])
	}
	for i := 8; i < len(got); i++ {
		if !near(got[i], 42) {
			t.Fatalf("EMA[%d] = %v, want 42", i, got[i])
		}
	}
}

func TestRSIExtremes(t *testing.T) {
	up := RSI(ramp(40, 100, 1), 14)
	down := RSI(ramp(40, 100, -1), 14)
	if !math.IsNaN(up[12]) {
		t.Fatalf("RSI[12] = %v, want NaN", up[12])
	}
	for i := 13; i < 40; i++ {
		if !near(up[i], 100) {
			t.Fatalf("rising RSI[%d] = %v, want 100", i, up[i])
		}
		if !near(down[i], 0) {
			t.Fatalf("falling RSI[%d] = %v, want 0", i, down[i])
		}
	}
}

func TestATRConstantRange(t *testing.T) {
	n := 30
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := range closes {
		closes[i], highs[i], lows[i] = 100, 101, 99
	}
	got := ATR(highs, lows, closes, 14)
	if !math.IsNaN(got[12]) {
		t.Fatalf("ATR[12] = %v, want NaN", got[12])
	}
	for i := 13; i < n; i++ {
		if !near(got[i], 2) {
			t.Fatalf("ATR[%d] = %v, want 2", i, got[i])
		}
	}
}

func TestBollingerConstantSeries(t *testing.T) {
	xs := make([]float64, 40)
	for i := range xs {
		xs[i] = 10
	}
	up, mid, lo := Bollinger(xs, 20, 2)
	if !math.IsNaN(mid[18]) {
		t.Fatalf("middle[18] = %v, want NaN", mid[18])
	}
	for i := 19; i < len(xs); i++ {
		if math.Abs(up[i]-10) > 1e-6 || math.Abs(mid[i]-10) > 1e-6 || math.Abs(lo[i]-10) > 1e-6 {
			t.Fatalf("bands[%d] = %v/%v/%v, want 10", i, up[i], mid[i], lo[i])
		}
	}
}

func TestStochasticBounds(t *testing.T) {
	c := candlesFrom(ramp(60, 50, 0.7))
	k, d := Stochastic(c.Highs(), c.Lows(), c.Closes(), 14, 3)
	if !math.IsNaN(k[12]) || !math.IsNaN(d[14]) {
		t.Fatalf("warm-up not masked: k[12]=%v d[14]=%v", k[12], d[14])
	}
	for i := 15; i < len(k); i++ {
		if k[i] < 0 || k[i] > 100 || d[i] < 0 || d[i] > 100 {
			t.Fatalf("out of range at %d: k=%v d=%v", i, k[i], d[i])
		}
	}
}

func TestCalculateNeedsMinimumBars(t *testing.T) {
	if _, ok := Calculate(candlesFrom(ramp(MinBars-1, 100, 1)), DefaultParams()); ok {
		t.Fatal("Calculate accepted a short series")
	}
	s, ok := Calculate(candlesFrom(ramp(MinBars, 100, 1)), DefaultParams())
	if !ok {
		t.Fatal("Calculate rejected a full series")
	}
	if s.Len != MinBars || len(s.MA[200]) != MinBars {
		t.Fatalf("series lengths wrong: %d %d", s.Len, len(s.MA[200]))
	}
	if !math.IsNaN(s.MA[100][MinBars-1]) {
		t.Fatal("MA100 must be undefined on 50 bars")
	}
	if math.IsNaN(s.MA[50][MinBars-1]) {
		t.Fatal("MA50 must be defined on the last of 50 bars")
	}
}

func TestTrailingStopRisingSeriesStaysLong(t *testing.T) {
	p := 10
	c := candlesFrom(ramp(80, 100, 1))
	ts := TrailingStop(c, 1, p)
	for i := p - 1; i < len(c); i++ {
		if ts.Position[i] != 1 {
			t.Fatalf("position[%d] = %d, want 1", i, ts.Position[i])
		}
		if i > p-1 && ts.Stop[i] < ts.Stop[i-1] {
			t.Fatalf("stop fell at %d: %v < %v", i, ts.Stop[i], ts.Stop[i-1])
		}
	}
	if got := TrendSignals(c, 1, p); len(got) != 0 {
		t.Fatalf("rising series produced %d flips", len(got))
	}
}

func TestTrendSignalsFullSwing(t *testing.T) {
	closes := ramp(30, 100, 1)
	closes = append(closes, 80)
	closes = append(closes, ramp(9, 120, 1)...)
	c := candlesFrom(closes)

	got := TrendSignals(c, 1, 10)
	if len(got) != 2 {
		t.Fatalf("got %d signals, want 2", len(got))
	}
	sell, buy := got[0].Base(), got[1].Base()
	if sell.Kind != models.KindUTBotSell || sell.Direction != models.Sell || sell.Index != 30 {
		t.Fatalf("first signal = %+v", sell)
	}
	if buy.Kind != models.KindUTBotBuy || buy.Direction != models.Buy || buy.Index != 31 {
		t.Fatalf("second signal = %+v", buy)
	}
	ts := TrailingStop(c, 1, 10)
	if sell.Stop == nil || *sell.Stop != ts.Stop[30] {
		t.Fatalf("sell stop = %v, want %v", sell.Stop, ts.Stop[30])
	}
	if sell.Strength != 80 {
		t.Fatalf("strength = %d", sell.Strength)
	}
}

func TestTrendSignalsShortSeries(t *testing.T) {
	if got := TrendSignals(candlesFrom(ramp(19, 100, 1)), 1, 10); got != nil {
		t.Fatalf("short series produced %v", got)
	}
}

func TestCrossoversVShape(t *testing.T) {
	closes := ramp(60, 200, -1)
	closes = append(closes, ramp(60, 141, 1)...)
	got := Crossovers(candlesFrom(closes), nil)

	var emaGolden int
	for _, s := range got {
		b := s.Base()
		switch b.Kind {
		case models.KindEMADeathCross, models.KindMADeathCross:
			t.Fatalf("unexpected death cross at %d", b.Index)
		case models.KindEMAGoldenCross:
			emaGolden++
		}
		if b.Direction != models.Buy {
			t.Fatalf("golden cross with direction %s", b.Direction)
		}
	}
	if emaGolden == 0 {
		t.Fatal("no EMA golden cross on a V-shaped series")
	}
}

func TestCrossoversNeverBothAtOneIndex(t *testing.T) {
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/7)
	}
	got := Crossovers(candlesFrom(closes), nil)
	if len(got) > 10 {
		t.Fatalf("kept %d crosses, want at most 10", len(got))
	}
	type key struct {
		idx  int
		pair string
	}
	seen := map[key]bool{}
	for _, s := range got {
		c := s.(*models.CrossoverSignal)
		k := key{c.Index, c.Pair}
		if seen[k] {
			t.Fatalf("two crosses for %s at %d", c.Pair, c.Index)
		}
		seen[k] = true
		if c.Pair == "MA20/50" && c.Index < 50 {
			t.Fatalf("MA cross before MA50 is defined: %d", c.Index)
		}
	}
}

func TestSummarize(t *testing.T) {
	c := candlesFrom(ramp(120, 100, 1))
	s, ok := Calculate(c, DefaultParams())
	if !ok {
		t.Fatal("Calculate failed")
	}
	sum := Summarize(c, s)
	if sum.Price != c.Last().Close {
		t.Fatalf("price = %v", sum.Price)
	}
	if sum.MATrend != TrendBullish {
		t.Fatalf("trend = %q, want BULLISH", sum.MATrend)
	}
	if sum.RSI == nil || *sum.RSI != 100 {
		t.Fatalf("rsi = %v", sum.RSI)
	}
	if sum.BBPosition == nil || sum.ATRPercent == nil || sum.MACD == nil {
		t.Fatalf("summary has gaps: %+v", sum)
	}
}
