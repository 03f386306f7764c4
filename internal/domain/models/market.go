package models

import "time"

// Instrument is a tradable symbol on the exchange.
type Instrument struct {
	Symbol    string `json:"symbol"`
	BaseCoin  string `json:"base_coin"`
	QuoteCoin string `json:"quote_coin"`
}

// Quote is the latest trade price of one symbol.
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
}

// Ticker is a 24h rolling summary.
type Ticker struct {
	Symbol      string  `json:"symbol"`
	LastPrice   float64 `json:"price"`
	ChangePct   float64 `json:"change"`
	Turnover24h float64 `json:"volume"`
	High24h     float64 `json:"high"`
	Low24h      float64 `json:"low"`
}

type Movers struct {
	Gainers []Ticker `json:"gainers"`
	Losers  []Ticker `json:"losers"`
}
