package detectors

import (
	"math"
	"testing"
	"time"

	"SignalScan/internal/domain/models"
	"SignalScan/pkg/config"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func bar(i int, open, high, low, close, vol float64) models.Candle {
	return models.Candle{
		Symbol: "ETHUSDT",
		Time:   t0.Add(time.Duration(i) * 15 * time.Minute),
		Open:   open, High: high, Low: low, Close: close, Volume: vol,
	}
}

func flat(n int, price, vol float64) models.Candles {
	out := make(models.Candles, n)
	for i := range out {
		out[i] = bar(i, price, price+0.2, price-0.2, price, vol)
	}
	return out
}

func TestPumpConcreteCase(t *testing.T) {
	c := make(models.Candles, 100)
	for i := range c {
		price := 100.0
		vol := 92.5
		switch {
		case i >= 85:
			price = 100 + float64(i-85)*6/14
			vol = 140
		case i >= 80:
			vol = 100
		}
		c[i] = bar(i, price, price+0.1, price-0.1, price, vol)
	}
	c[99].Close = 106

	got := NewSet(DefaultParams()).PumpDump(c)
	if len(got) != 1 {
		t.Fatalf("got %d alerts, want 1", len(got))
	}
	a := got[0]
	if a.Kind != models.AlertPump || a.Direction != models.Buy {
		t.Fatalf("alert = %+v", a)
	}
	if a.Strength != 82 {
		t.Fatalf("strength = %d, want 82", a.Strength)
	}
	if a.PriceChangePct != 6 || a.VolumeChangePct != 40 {
		t.Fatalf("changes = %v / %v, want 6 / 40", a.PriceChangePct, a.VolumeChangePct)
	}
	if a.Symbol != "ETHUSDT" || a.Price != 106 {
		t.Fatalf("alert = %+v", a)
	}
}

func TestDumpMirror(t *testing.T) {
	c := make(models.Candles, 100)
	for i := range c {
		price, vol := 100.0, 92.5
		switch {
		case i >= 85:
			price = 100 - float64(i-85)*6/14
			vol = 140
		case i >= 80:
			vol = 100
		}
		c[i] = bar(i, price, price+0.1, price-0.1, price, vol)
	}
	c[99].Close = 94

	got := NewSet(DefaultParams()).PumpDump(c)
	if len(got) != 1 || got[0].Kind != models.AlertDump || got[0].Direction != models.Sell {
		t.Fatalf("got %+v", got)
	}
	if got[0].Strength != 82 || got[0].PriceChangePct != -6 {
		t.Fatalf("dump = %+v", got[0])
	}
}

func TestPumpDumpNeedsHistory(t *testing.T) {
	s := NewSet(DefaultParams())
	if got := s.PumpDump(flat(64, 100, 100)); got != nil {
		t.Fatalf("short series produced %v", got)
	}
	if got := s.PumpDump(flat(120, 100, 100)); got != nil {
		t.Fatalf("flat series produced %v", got)
	}
}

func TestLiquidityGrabLowConcreteCase(t *testing.T) {
	c := make(models.Candles, 26)
	for i := 0; i < 25; i++ {
		c[i] = bar(i, 51, 52, 50, 51.5, 100)
	}
	c[25] = bar(25, 50.2, 51, 49, 50.5, 100)

	got := NewSet(DefaultParams()).LiquidityGrabs(c)
	if len(got) != 1 {
		t.Fatalf("got %d signals, want 1", len(got))
	}
	s := got[0].(*models.LiquidityGrabSignal)
	if s.Kind != models.KindLiquidityGrabLow || s.Direction != models.Buy {
		t.Fatalf("signal = %+v", s)
	}
	if s.Strength != 95 {
		t.Fatalf("strength = %d, want 95", s.Strength)
	}
	if s.Stop == nil || math.Abs(*s.Stop-48.755) > 1e-9 {
		t.Fatalf("stop = %v, want 48.755", s.Stop)
	}
	if s.Level != 50 || math.Abs(s.HuntPct-2) > 1e-9 {
		t.Fatalf("level/hunt = %v/%v", s.Level, s.HuntPct)
	}
}

func TestLiquidityGrabHigh(t *testing.T) {
	c := make(models.Candles, 26)
	for i := 0; i < 25; i++ {
		c[i] = bar(i, 51, 52, 50, 50.5, 100)
	}
	c[25] = bar(25, 51.8, 53, 51, 51.5, 100)

	got := NewSet(DefaultParams()).LiquidityGrabs(c)
	if len(got) != 1 {
		t.Fatalf("got %d signals, want 1", len(got))
	}
	s := got[0].(*models.LiquidityGrabSignal)
	if s.Kind != models.KindLiquidityGrabHigh || s.Direction != models.Sell || s.Index != 25 {
		t.Fatalf("signal = %+v", s)
	}
	// hunt is 1/52 of the level, 1.92%, so strength is 75+19.
	if s.Strength != 94 {
		t.Fatalf("strength = %d, want 94", s.Strength)
	}
	if s.Stop == nil || math.Abs(*s.Stop-53*1.005) > 1e-9 {
		t.Fatalf("stop = %v, want %v", s.Stop, 53*1.005)
	}
	if s.Level != 52 || math.Abs(s.HuntPct-100.0/52) > 1e-9 {
		t.Fatalf("level/hunt = %v/%v", s.Level, s.HuntPct)
	}
}

func TestSmartMoney(t *testing.T) {
	tests := []struct {
		name     string
		close    float64
		vol      float64
		kind     models.SignalKind
		strength int
	}{
		{"accumulation", 100, 500, models.KindSmartMoneyAccumulation, 95},
		{"distribution", 103, 300, models.KindSmartMoneyDistribution, 68},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := flat(40, 100, 100)
			for i := 35; i < 40; i++ {
				c[i] = bar(i, tt.close, tt.close+0.2, tt.close-0.2, tt.close, 100)
			}
			c[35].Open = 100
			c[35].Volume = tt.vol

			got := NewSet(DefaultParams()).SmartMoney(c)
			if len(got) != 1 {
				t.Fatalf("got %d signals, want 1", len(got))
			}
			b := got[0].Base()
			if b.Kind != tt.kind || b.Strength != tt.strength || b.Index != 35 {
				t.Fatalf("signal = %+v", b)
			}
		})
	}
}

func TestOrderBlocks(t *testing.T) {
	c := flat(12, 100, 100)
	c[5] = bar(5, 101, 101.2, 99.8, 100, 100)
	c[6] = bar(6, 100, 102.1, 99.9, 102, 100)
	for i := 7; i < 12; i++ {
		c[i] = bar(i, 102, 102.2, 101.8, 102, 100)
	}

	got := NewSet(DefaultParams()).OrderBlocks(c)
	if len(got) != 1 {
		t.Fatalf("got %d signals, want 1", len(got))
	}
	b := got[0].Base()
	if b.Kind != models.KindBullishOrderBlock || b.Direction != models.Buy || b.Strength != 44 {
		t.Fatalf("signal = %+v", b)
	}
}

func TestOrderBlocksSkipsNewestBar(t *testing.T) {
	c := flat(12, 100, 100)
	c[10] = bar(10, 101, 101.2, 99.8, 100, 100)
	c[11] = bar(11, 100, 102.1, 99.9, 102, 100)
	if got := NewSet(DefaultParams()).OrderBlocks(c); len(got) != 0 {
		t.Fatalf("newest bar evaluated: %v", got)
	}
}

func TestOrderBlockDirections(t *testing.T) {
	tests := []struct {
		name     string
		base     float64
		block    models.Candle
		next     models.Candle
		kind     models.SignalKind
		strength int
	}{
		{
			name:     "bearish",
			base:     100,
			block:    bar(5, 100, 101.2, 99.8, 101, 100),
			next:     bar(6, 100, 100.1, 97.9, 98, 100),
			kind:     models.KindBearishOrderBlock,
			strength: 63,
		},
		{
			// engulfs the block but moves only 0.4%
			name:  "below half a percent",
			base:  200,
			block: bar(5, 200.5, 200.6, 200, 200.2, 100),
			next:  bar(6, 200.2, 200.9, 200.1, 200.8, 100),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := flat(12, tt.base, 100)
			c[5], c[6] = tt.block, tt.next
			for i := 7; i < 12; i++ {
				p := tt.next.Close
				c[i] = bar(i, p, p+0.2, p-0.2, p, 100)
			}

			got := NewSet(DefaultParams()).OrderBlocks(c)
			if tt.kind == "" {
				if len(got) != 0 {
					t.Fatalf("unexpected signals %v", got)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("got %d signals, want 1", len(got))
			}
			b := got[0].Base()
			if b.Kind != tt.kind || b.Direction != wantDirection[tt.kind] || b.Strength != tt.strength || b.Index != 6 {
				t.Fatalf("signal = %+v", b)
			}
		})
	}
}

func closesSeries(closes []float64) models.Candles {
	out := make(models.Candles, len(closes))
	for i, p := range closes {
		out[i] = bar(i, p, p+0.5, p-0.5, p, 100)
	}
	return out
}

// trend is n closes from start moving step per bar.
func trend(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// zigzag alternates between lo and lo+step, holding RSI near the middle.
func zigzag(n int, lo, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i%2)*step
	}
	return out
}

func TestDivergences(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		kind   models.SignalKind
		index  int
	}{
		{
			// 5 bars after the low of a straight decline, price is lower and RSI is off zero
			name:   "bullish after decline",
			closes: append(trend(25, 130, -1), 111, 110.5, 110, 109.5, 105.9),
			kind:   models.KindBullishDivergence,
			index:  29,
		},
		{
			name:   "bearish after rally",
			closes: append(trend(25, 100, 1), 119, 119.5, 120, 120.5, 124.1),
			kind:   models.KindBearishDivergence,
			index:  29,
		},
		{
			// RSI 35.8 -> 39.6 with a lower close
			name:   "bullish below 40",
			closes: append(zigzag(24, 100, 1), 96, 98, 99, 100, 101, 95.8),
			kind:   models.KindBullishDivergence,
			index:  29,
		},
		{
			// RSI 38.3 -> 40.2 with a lower close
			name:   "bullish gate at 40",
			closes: append(zigzag(24, 100, 1), 97, 98, 99, 100, 101, 96.5),
		},
		{
			// RSI 61.7 -> 59.9 with a higher close
			name:   "bearish gate at 60",
			closes: append(zigzag(24, 100, -1), 103, 102, 101, 100, 99, 103.5),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSet(DefaultParams()).Divergences(closesSeries(tt.closes))
			if tt.kind == "" {
				if len(got) != 0 {
					t.Fatalf("unexpected signals %+v", got[0].Base())
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("got %d signals, want 1", len(got))
			}
			d := got[0].(*models.DivergenceSignal)
			if d.Kind != tt.kind || d.Direction != wantDirection[tt.kind] || d.Index != tt.index || d.Strength != 85 {
				t.Fatalf("signal = %+v", d)
			}
			if d.PriorClose != tt.closes[tt.index-5] {
				t.Fatalf("prior close = %v, want the close five bars back %v", d.PriorClose, tt.closes[tt.index-5])
			}
			if d.Kind == models.KindBullishDivergence && !(d.RSI < 40 && d.RSI > d.PriorRSI) {
				t.Fatalf("rsi %v prior %v", d.RSI, d.PriorRSI)
			}
			if d.Kind == models.KindBearishDivergence && !(d.RSI > 60 && d.RSI < d.PriorRSI) {
				t.Fatalf("rsi %v prior %v", d.RSI, d.PriorRSI)
			}
		})
	}
}

func TestWhales(t *testing.T) {
	tests := []struct {
		name      string
		spike     models.Candle
		kind      models.SignalKind
		direction models.Direction
		body      float64
	}{
		{"buying", bar(65, 100, 101.2, 99.9, 101, 1000), models.KindWhaleBuying, models.Buy, 1},
		{"selling", bar(65, 100, 100.1, 98.8, 99, 1000), models.KindWhaleSelling, models.Sell, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := make(models.Candles, 70)
			for i := range c {
				vol := 90.0
				if i%2 == 0 {
					vol = 110
				}
				c[i] = bar(i, 100, 100.2, 99.8, 100, vol)
			}
			c[65] = tt.spike

			got := NewSet(DefaultParams()).Whales(c)
			if len(got) != 1 {
				t.Fatalf("got %d signals, want 1", len(got))
			}
			w := got[0].(*models.WhaleSignal)
			if w.Kind != tt.kind || w.Direction != tt.direction || w.Strength != 95 || w.Index != 65 {
				t.Fatalf("signal = %+v", w)
			}
			if w.ZScore <= 2.5 {
				t.Fatalf("zscore = %v", w.ZScore)
			}
			if math.Abs(w.BodyPct-tt.body) > 1e-9 {
				t.Fatalf("body = %v, want %v", w.BodyPct, tt.body)
			}
		})
	}
}

func TestWhalesSkipZeroDeviation(t *testing.T) {
	if got := NewSet(DefaultParams()).Whales(flat(80, 100, 100)); len(got) != 0 {
		t.Fatalf("constant volume produced %v", got)
	}
}

// walk is a deterministic noisy series for property checks.
func walk(n int) models.Candles {
	out := make(models.Candles, n)
	seed := uint32(7)
	next := func() float64 {
		seed = seed*1664525 + 1013904223
		return float64(seed>>8) / float64(1<<24)
	}
	price := 100.0
	for i := range out {
		open := price
		price *= 1 + (next()-0.5)*0.06
		hi := math.Max(open, price) * (1 + next()*0.01)
		lo := math.Min(open, price) * (1 - next()*0.01)
		vol := 100 + next()*100
		if next() > 0.93 {
			vol *= 6
		}
		out[i] = bar(i, open, hi, lo, price, vol)
	}
	return out
}

var wantDirection = map[models.SignalKind]models.Direction{
	models.KindSmartMoneyAccumulation: models.Buy,
	models.KindSmartMoneyDistribution: models.Sell,
	models.KindBullishOrderBlock:      models.Buy,
	models.KindBearishOrderBlock:      models.Sell,
	models.KindLiquidityGrabLow:       models.Buy,
	models.KindLiquidityGrabHigh:      models.Sell,
	models.KindBullishDivergence:      models.Buy,
	models.KindBearishDivergence:      models.Sell,
	models.KindWhaleBuying:            models.Buy,
	models.KindWhaleSelling:           models.Sell,
}

func TestDetectorInvariantsOnNoisySeries(t *testing.T) {
	c := walk(400)
	s := NewSet(DefaultParams())
	runs := map[string][]models.Signal{
		"smart-money":  s.SmartMoney(c),
		"order-blocks": s.OrderBlocks(c),
		"liquidity":    s.LiquidityGrabs(c),
		"divergence":   s.Divergences(c),
		"whales":       s.Whales(c),
	}
	total := 0
	for name, got := range runs {
		if len(got) > 5 {
			t.Fatalf("%s kept %d signals", name, len(got))
		}
		total += len(got)
		for _, sig := range got {
			b := sig.Base()
			if b.Strength < 0 || b.Strength > 100 {
				t.Fatalf("%s strength %d out of range", name, b.Strength)
			}
			if want := wantDirection[b.Kind]; want != b.Direction {
				t.Fatalf("%s: %s has direction %s", name, b.Kind, b.Direction)
			}
			if b.Index < 0 || b.Index >= len(c) || b.Price != c[b.Index].Close {
				t.Fatalf("%s: bad index %d", name, b.Index)
			}
		}
	}
	if total == 0 {
		t.Fatal("noisy series produced no signals at all")
	}
}

func TestParamsFromConfigKeepsDefaults(t *testing.T) {
	p := ParamsFromConfig(configDetectors(0, 30))
	if p.SmartMoneyVolumeRatio != 2 || p.LiquidityLookback != 30 || p.PumpWindow != 15 {
		t.Fatalf("params = %+v", p)
	}
}

func configDetectors(ratio float64, lookback int) config.Detectors {
	return config.Detectors{SmartMoneyVolumeRatio: ratio, LiquidityLookback: lookback}
}
