package models

import "time"

// -----------------------------------------------------------------------------

// MPriceQuote is the price cache entry for one symbol.
// Overwritten on every trade, never deleted.
type MPriceQuote struct {
	Symbol     string    `json:"symbol"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}

// -----------------------------------------------------------------------------

// MQuote is the upstream REST quote payload (field names match the wire format).
type MQuote struct {
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
}

// -----------------------------------------------------------------------------

// MTickerQuote is one row of the realtime snapshot endpoint.
type MTickerQuote struct {
	Ticker        string  `json:"ticker"`
	CurrentPrice  float64 `json:"currentPrice,omitempty"`
	HighPrice     float64 `json:"highPrice,omitempty"`
	LowPrice      float64 `json:"lowPrice,omitempty"`
	OpenPrice     float64 `json:"openPrice,omitempty"`
	PreviousClose float64 `json:"previousClose,omitempty"`
	Error         string  `json:"error,omitempty"`
}
