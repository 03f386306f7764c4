// Package exchange reads public market data from the Bybit v5 REST API.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	xhttp "SignalScan/pkg/http"
)

// ErrNoData is returned when the exchange has nothing for a symbol.
var ErrNoData = errors.New("exchange: no data")

// APIError is a non-zero retCode.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bybit error %d: %s", e.Code, e.Msg)
}

type Config struct {
	BaseURL           string
	Category          string
	QuoteCoin         string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// Client implements domain MarketData. Every request waits on a shared
// token bucket.
type Client struct {
	http     *xhttp.Client
	limiter  *rate.Limiter
	category string
	quote    string
	timeout  time.Duration
}

var _ drepo.MarketData = (*Client)(nil)

func NewClient(cfg Config, opts ...xhttp.ClientOption) *Client {
	if cfg.Category == "" {
		cfg.Category = "linear"
	}
	if cfg.QuoteCoin == "" {
		cfg.QuoteCoin = "USDT"
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 8
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(cfg.Timeout)}, opts...)
	return &Client{
		http:     xhttp.NewClient(cfg.BaseURL, opts...),
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		category: cfg.Category,
		quote:    cfg.QuoteCoin,
		timeout:  cfg.Timeout,
	}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	env := envelope[any]{Result: result}
	if err := c.http.GetJSON(ctx, path, q, &env); err != nil {
		return err
	}
	if env.RetCode != 0 {
		return &APIError{Code: env.RetCode, Msg: env.RetMsg}
	}
	return nil
}

// ListInstruments returns trading perpetuals quoted in the configured coin,
// in exchange order.
func (c *Client) ListInstruments(ctx context.Context) ([]models.Instrument, error) {
	var out []models.Instrument
	cursor := ""
	for {
		q := url.Values{"category": {c.category}, "limit": {"1000"}}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		var res instrumentsResult
		if err := c.get(ctx, "/v5/market/instruments-info", q, &res); err != nil {
			return nil, fmt.Errorf("list instruments: %w", err)
		}
		for _, it := range res.List {
			if it.Status != "Trading" || it.QuoteCoin != c.quote {
				continue
			}
			if it.ContractType != "" && it.ContractType != "LinearPerpetual" {
				continue
			}
			out = append(out, models.Instrument{Symbol: it.Symbol, BaseCoin: it.BaseCoin, QuoteCoin: it.QuoteCoin})
		}
		if res.NextPageCursor == "" || res.NextPageCursor == cursor {
			break
		}
		cursor = res.NextPageCursor
	}
	return out, nil
}

// FetchCandles returns up to limit bars in ascending time order. Rows the
// exchange sends malformed are dropped.
func (c *Client) FetchCandles(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) (models.Candles, error) {
	interval, ok := intervals[tf]
	if !ok {
		return nil, fmt.Errorf("unsupported timeframe %q", tf)
	}
	limit = min(max(limit, 1), 1000)

	q := url.Values{
		"category": {c.category},
		"symbol":   {symbol},
		"interval": {interval},
		"limit":    {strconv.Itoa(limit)},
	}
	var res klineResult
	if err := c.get(ctx, "/v5/market/kline", q, &res); err != nil {
		return nil, fmt.Errorf("fetch candles %s: %w", symbol, err)
	}

	candles := make(models.Candles, 0, len(res.List))
	for _, row := range res.List {
		if cd, ok := parseKline(symbol, row); ok {
			candles = append(candles, cd)
		}
	}
	slices.Reverse(candles)
	return candles, nil
}

func parseKline(symbol string, row []string) (models.Candle, bool) {
	if len(row) < 6 {
		return models.Candle{}, false
	}
	ts, ok := parseMillis(row[0])
	if !ok {
		return models.Candle{}, false
	}
	var vals [5]float64
	for i := range vals {
		v, ok := parseNumber(row[i+1])
		if !ok {
			return models.Candle{}, false
		}
		vals[i] = v
	}
	return models.Candle{
		Symbol: symbol,
		Time:   ts,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, true
}

// FetchQuote returns the last traded price of symbol.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (models.Quote, error) {
	q := url.Values{"category": {c.category}, "symbol": {symbol}}
	var res tickersResult
	if err := c.get(ctx, "/v5/market/tickers", q, &res); err != nil {
		return models.Quote{}, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}
	for _, row := range res.List {
		if row.Symbol != symbol {
			continue
		}
		if p, ok := parseNumber(row.LastPrice); ok && p > 0 {
			return models.Quote{Symbol: symbol, Price: p, Time: time.Now().UTC()}, nil
		}
	}
	return models.Quote{}, fmt.Errorf("fetch quote %s: %w", symbol, ErrNoData)
}

// FetchTickers returns every ticker with a defined 24h change.
func (c *Client) FetchTickers(ctx context.Context) ([]models.Ticker, error) {
	q := url.Values{"category": {c.category}}
	var res tickersResult
	if err := c.get(ctx, "/v5/market/tickers", q, &res); err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}

	out := make([]models.Ticker, 0, len(res.List))
	for _, row := range res.List {
		change, ok := parsePercent(row.Price24hPcnt)
		if !ok {
			continue
		}
		last, _ := parseNumber(row.LastPrice)
		turnover, _ := parseNumber(row.Turnover24h)
		high, _ := parseNumber(row.HighPrice24h)
		low, _ := parseNumber(row.LowPrice24h)
		out = append(out, models.Ticker{
			Symbol:      row.Symbol,
			LastPrice:   last,
			ChangePct:   change,
			Turnover24h: turnover,
			High24h:     high,
			Low24h:      low,
		})
	}
	return out, nil
}
