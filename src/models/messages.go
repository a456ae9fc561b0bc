package models

// -----------------------------------------------------------------------------
// Upstream feed wire format
// -----------------------------------------------------------------------------

// MFeedCommand is sent to the feed: {"type":"subscribe","symbol":"BINANCE:BTCUSDT"}
type MFeedCommand struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

// MFeedTrade is one trade inside a feed message (short keys per the wire format).
type MFeedTrade struct {
	Symbol    string  `json:"s"`
	Price     float64 `json:"p"`
	Timestamp int64   `json:"t"`
	Volume    float64 `json:"v"`
}

// MFeedMessage is an inbound feed frame. Type "trade" carries price data,
// anything else (ping, ack) is ignored.
type MFeedMessage struct {
	Type string       `json:"type"`
	Data []MFeedTrade `json:"data"`
}

// -----------------------------------------------------------------------------
// Browser client protocol
// -----------------------------------------------------------------------------

// MClientCommand for client messages: {"action":"subscribe","symbol":"..."}
type MClientCommand struct {
	Action string `json:"action"`
	Symbol string `json:"symbol"`
}

// MPriceUpdate is the per-trade broadcast payload.
type MPriceUpdate struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// MInitialMessage is pushed once on connect: full holdings snapshot.
type MInitialMessage struct {
	Type string         `json:"type"` // "initial"
	Data []MHoldingView `json:"data"`
}

// MUpdateMessage is pushed per price change.
type MUpdateMessage struct {
	Type string       `json:"type"` // "update"
	Data MPriceUpdate `json:"data"`
}
