package models

import "time"

type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

// SignalKind is the concrete pattern that produced a signal.
type SignalKind string

const (
	KindSmartMoneyAccumulation SignalKind = "SMART_MONEY_ACCUMULATION"
	KindSmartMoneyDistribution SignalKind = "SMART_MONEY_DISTRIBUTION"
	KindBullishOrderBlock      SignalKind = "BULLISH_ORDER_BLOCK"
	KindBearishOrderBlock      SignalKind = "BEARISH_ORDER_BLOCK"
	KindLiquidityGrabLow       SignalKind = "LIQUIDITY_GRAB_LOW"
	KindLiquidityGrabHigh      SignalKind = "LIQUIDITY_GRAB_HIGH"
	KindBullishDivergence      SignalKind = "BULLISH_DIVERGENCE"
	KindBearishDivergence      SignalKind = "BEARISH_DIVERGENCE"
	KindWhaleBuying            SignalKind = "WHALE_BUYING"
	KindWhaleSelling           SignalKind = "WHALE_SELLING"
	KindUTBotBuy               SignalKind = "UT_BOT_BUY"
	KindUTBotSell              SignalKind = "UT_BOT_SELL"
	KindEMAGoldenCross         SignalKind = "EMA_GOLDEN_CROSS"
	KindEMADeathCross          SignalKind = "EMA_DEATH_CROSS"
	KindMAGoldenCross          SignalKind = "MA_GOLDEN_CROSS"
	KindMADeathCross           SignalKind = "MA_DEATH_CROSS"
)

// Detector groups kinds by the strategy family that emits them.
type Detector string

const (
	DetectorSmartMoney    Detector = "smart-money"
	DetectorOrderBlock    Detector = "order-block"
	DetectorLiquidityGrab Detector = "liquidity-grab"
	DetectorDivergence    Detector = "divergence"
	DetectorWhale         Detector = "whale"
	DetectorUTTrend       Detector = "ut-trend"
	DetectorTrendCross    Detector = "trend-cross"
)

var kindDetector = map[SignalKind]Detector{
	KindSmartMoneyAccumulation: DetectorSmartMoney,
	KindSmartMoneyDistribution: DetectorSmartMoney,
	KindBullishOrderBlock:      DetectorOrderBlock,
	KindBearishOrderBlock:      DetectorOrderBlock,
	KindLiquidityGrabLow:       DetectorLiquidityGrab,
	KindLiquidityGrabHigh:      DetectorLiquidityGrab,
	KindBullishDivergence:      DetectorDivergence,
	KindBearishDivergence:      DetectorDivergence,
	KindWhaleBuying:            DetectorWhale,
	KindWhaleSelling:           DetectorWhale,
	KindUTBotBuy:               DetectorUTTrend,
	KindUTBotSell:              DetectorUTTrend,
	KindEMAGoldenCross:         DetectorTrendCross,
	KindEMADeathCross:          DetectorTrendCross,
	KindMAGoldenCross:          DetectorTrendCross,
	KindMADeathCross:           DetectorTrendCross,
}

// Detector returns the strategy family of k, or "" for an unknown kind.
func (k SignalKind) Detector() Detector { return kindDetector[k] }

// Valid reports whether k is one of the known kinds.
func (k SignalKind) Valid() bool {
	_, ok := kindDetector[k]
	return ok
}

// SignalBase is the shape shared by every signal variant.
type SignalBase struct {
	Symbol     string     `json:"symbol"`
	Kind       SignalKind `json:"type"`
	Direction  Direction  `json:"signal"`
	Price      float64    `json:"price"`
	Target     *float64   `json:"target,omitempty"`
	Stop       *float64   `json:"stop_loss,omitempty"`
	Strength   int        `json:"strength"`
	Reason     string     `json:"reason"`
	Index      int        `json:"index"`
	DetectedAt time.Time  `json:"detected_at"`
}

// Base gives access to the common fields of any variant.
func (b *SignalBase) Base() *SignalBase { return b }

// Signal is a closed union: only the variants declared in this file
// implement it.
type Signal interface {
	Base() *SignalBase
	// Indicators is the snapshot of indicator values behind the signal.
	Indicators() map[string]float64
	isSignal()
}

type SmartMoneySignal struct {
	SignalBase
	VolumeRatio    float64 `json:"volume_ratio"`
	PriceChangePct float64 `json:"price_change_pct"`
}

type OrderBlockSignal struct {
	SignalBase
	MovePct float64 `json:"move_pct"`
}

type LiquidityGrabSignal struct {
	SignalBase
	HuntPct float64 `json:"hunt_pct"`
	Level   float64 `json:"level"` // swept rolling low or high
}

type DivergenceSignal struct {
	SignalBase
	RSI        float64 `json:"rsi"`
	PriorRSI   float64 `json:"prior_rsi"`
	PriorClose float64 `json:"prior_close"`
}

type WhaleSignal struct {
	SignalBase
	ZScore  float64 `json:"zscore"`
	BodyPct float64 `json:"body_pct"`
}

type TrendStopSignal struct {
	SignalBase
	TrailingStop float64 `json:"trailing_stop"`
	ATR          float64 `json:"atr"`
}

type CrossoverSignal struct {
	SignalBase
	Pair string  `json:"pair"`
	Fast float64 `json:"fast"`
	Slow float64 `json:"slow"`
}

func (*SmartMoneySignal) isSignal()    {}
func (*OrderBlockSignal) isSignal()    {}
func (*LiquidityGrabSignal) isSignal() {}
func (*DivergenceSignal) isSignal()    {}
func (*WhaleSignal) isSignal()         {}
func (*TrendStopSignal) isSignal()     {}
func (*CrossoverSignal) isSignal()     {}

func (s *SmartMoneySignal) Indicators() map[string]float64 {
	return map[string]float64{"volume_ratio": s.VolumeRatio, "price_change_pct": s.PriceChangePct}
}

func (s *OrderBlockSignal) Indicators() map[string]float64 {
	return map[string]float64{"move_pct": s.MovePct}
}

func (s *LiquidityGrabSignal) Indicators() map[string]float64 {
	return map[string]float64{"hunt_pct": s.HuntPct, "level": s.Level}
}

func (s *DivergenceSignal) Indicators() map[string]float64 {
	return map[string]float64{"rsi": s.RSI, "prior_rsi": s.PriorRSI, "prior_close": s.PriorClose}
}

func (s *WhaleSignal) Indicators() map[string]float64 {
	return map[string]float64{"zscore": s.ZScore, "body_pct": s.BodyPct}
}

func (s *TrendStopSignal) Indicators() map[string]float64 {
	return map[string]float64{"trailing_stop": s.TrailingStop, "atr": s.ATR}
}

func (s *CrossoverSignal) Indicators() map[string]float64 {
	return map[string]float64{"fast": s.Fast, "slow": s.Slow}
}

// Float returns a pointer to v, for the optional price fields.
func Float(v float64) *float64 { return &v }
