package models

// -----------------------------------------------------------------------------
// Portfolio rows
// -----------------------------------------------------------------------------

// MHolding is one portfolio row: owned quantity and cost basis for a ticker.
// The row survives a full sell-off with quantity 0 (display filters it out).
type MHolding struct {
	Ticker   string  `json:"ticker"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	BuyPrice float64 `json:"buyPrice"`
}

// -----------------------------------------------------------------------------

// MHoldingView is a holding enriched with the last known live price.
// LivePrice is nil until the feed has seen at least one trade for the ticker.
type MHoldingView struct {
	MHolding
	LivePrice *float64 `json:"livePrice"`
}
