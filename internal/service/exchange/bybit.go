package exchange

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	drepo "SignalScan/internal/domain/repository"
)

// envelope is the Bybit v5 response wrapper.
type envelope[T any] struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  T      `json:"result"`
}

type instrumentsResult struct {
	List []struct {
		Symbol       string `json:"symbol"`
		ContractType string `json:"contractType"`
		Status       string `json:"status"`
		BaseCoin     string `json:"baseCoin"`
		QuoteCoin    string `json:"quoteCoin"`
	} `json:"list"`
	NextPageCursor string `json:"nextPageCursor"`
}

// klineResult rows are [start, open, high, low, close, volume, turnover],
// newest first.
type klineResult struct {
	Symbol string     `json:"symbol"`
	List   [][]string `json:"list"`
}

type tickerRow struct {
	Symbol       string `json:"symbol"`
	LastPrice    string `json:"lastPrice"`
	Price24hPcnt string `json:"price24hPcnt"`
	Turnover24h  string `json:"turnover24h"`
	HighPrice24h string `json:"highPrice24h"`
	LowPrice24h  string `json:"lowPrice24h"`
}

type tickersResult struct {
	List []tickerRow `json:"list"`
}

var intervals = map[drepo.Timeframe]string{
	drepo.TF1m:  "1",
	drepo.TF3m:  "3",
	drepo.TF5m:  "5",
	drepo.TF15m: "15",
	drepo.TF30m: "30",
	drepo.TF1h:  "60",
	drepo.TF2h:  "120",
	drepo.TF4h:  "240",
	drepo.TF6h:  "360",
	drepo.TF12h: "720",
	drepo.TF1d:  "D",
	drepo.TF1w:  "W",
}

// parseNumber reads an exchange decimal string. Empty means absent.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// parsePercent converts a ratio string ("0.0523") into percent (5.23)
// without binary rounding noise.
func parsePercent(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.Shift(2).InexactFloat64(), true
}

func parseMillis(s string) (time.Time, bool) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}
