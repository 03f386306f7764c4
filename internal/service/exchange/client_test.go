package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	drepo "SignalScan/internal/domain/repository"
)

func newTestClient(t *testing.T, routes map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, RequestsPerSecond: 1000, Burst: 100, Timeout: 2 * time.Second})
}

func TestListInstrumentsFilters(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/v5/market/instruments-info": `{"retCode":0,"retMsg":"OK","result":{"list":[
			{"symbol":"BTCUSDT","contractType":"LinearPerpetual","status":"Trading","baseCoin":"BTC","quoteCoin":"USDT"},
			{"symbol":"ETHUSDC","contractType":"LinearPerpetual","status":"Trading","baseCoin":"ETH","quoteCoin":"USDC"},
			{"symbol":"OLDUSDT","contractType":"LinearPerpetual","status":"Closed","baseCoin":"OLD","quoteCoin":"USDT"},
			{"symbol":"BTC-27DEC","contractType":"LinearFutures","status":"Trading","baseCoin":"BTC","quoteCoin":"USDT"},
			{"symbol":"SOLUSDT","contractType":"LinearPerpetual","status":"Trading","baseCoin":"SOL","quoteCoin":"USDT"}
		],"nextPageCursor":""}}`,
	})

	got, err := c.ListInstruments(context.Background())
	if err != nil {
		t.Fatalf("ListInstruments: %v", err)
	}
	if len(got) != 2 || got[0].Symbol != "BTCUSDT" || got[1].Symbol != "SOLUSDT" {
		t.Fatalf("unexpected instruments: %+v", got)
	}
}

func TestFetchCandlesAscending(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/v5/market/kline": `{"retCode":0,"retMsg":"OK","result":{"symbol":"BTCUSDT","list":[
			["1700000900000","101","103","100","102","12.5","1000"],
			["1700000000000","100","102","99","101","10","900"],
			["bad","1","1","1","1","1","1"]
		]}}`,
	})

	got, err := c.FetchCandles(context.Background(), "BTCUSDT", drepo.TF15m, 200)
	if err != nil {
		t.Fatalf("FetchCandles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(got))
	}
	if !got[0].Time.Before(got[1].Time) {
		t.Fatalf("candles not ascending: %v, %v", got[0].Time, got[1].Time)
	}
	if got[1].Close != 102 || got[1].Volume != 12.5 || got[1].Symbol != "BTCUSDT" {
		t.Fatalf("unexpected newest candle: %+v", got[1])
	}
}

func TestFetchCandlesUnsupportedTimeframe(t *testing.T) {
	c := newTestClient(t, nil)
	if _, err := c.FetchCandles(context.Background(), "BTCUSDT", drepo.Timeframe("2d"), 200); err == nil {
		t.Fatal("expected error for unsupported timeframe")
	}
}

func TestFetchQuote(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/v5/market/tickers": `{"retCode":0,"retMsg":"OK","result":{"list":[{"symbol":"BTCUSDT","lastPrice":"43250.5"}]}}`,
	})

	q, err := c.FetchQuote(context.Background(), "BTCUSDT")
	if err != nil || q.Price != 43250.5 {
		t.Fatalf("FetchQuote = %+v, %v", q, err)
	}
	if _, err := c.FetchQuote(context.Background(), "ETHUSDT"); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestFetchTickersPercent(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/v5/market/tickers": `{"retCode":0,"retMsg":"OK","result":{"list":[
			{"symbol":"BTCUSDT","lastPrice":"100","price24hPcnt":"0.0523","turnover24h":"5","highPrice24h":"110","lowPrice24h":"90"},
			{"symbol":"NEWUSDT","lastPrice":"1","price24hPcnt":""}
		]}}`,
	})

	got, err := c.FetchTickers(context.Background())
	if err != nil {
		t.Fatalf("FetchTickers: %v", err)
	}
	if len(got) != 1 || got[0].ChangePct != 5.23 {
		t.Fatalf("unexpected tickers: %+v", got)
	}
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/v5/market/tickers": `{"retCode":10001,"retMsg":"params error","result":{}}`,
	})
	_, err := c.FetchTickers(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 10001 {
		t.Fatalf("expected APIError 10001, got %v", err)
	}
}
