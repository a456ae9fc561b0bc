package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// -----------------------------------------------------------------------------
// Trading-hours lookup for the REST quote refresher. Crypto pairs
// (exchange-qualified, e.g. "BINANCE:BTCUSDT") trade around the clock;
// equities are only polled while their venue is open.
// -----------------------------------------------------------------------------

// TradingCalendar wraps scmhub/calendar with a Mon-Fri fallback.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// IsCryptoSymbol reports whether a symbol is an exchange-qualified crypto
// pair. Those never observe market hours.
func IsCryptoSymbol(symbol string) bool {
	return strings.Contains(symbol, ":")
}

// -----------------------------------------------------------------------------

// micFor maps a ticker suffix to an ISO 10383 MIC code. Unsuffixed tickers
// default to NYSE.
func micFor(symbol string) string {
	mic := "xnys"
	switch {
	case strings.HasSuffix(symbol, ".L"):
		mic = "xlon"
	case strings.HasSuffix(symbol, ".PA"):
		mic = "xpar"
	case strings.HasSuffix(symbol, ".DE"):
		mic = "xfra"
	case strings.HasSuffix(symbol, ".AS"):
		mic = "xams"
	case strings.HasSuffix(symbol, ".MI"):
		mic = "xmil"
	case strings.HasSuffix(symbol, ".MC"):
		mic = "xmad"
	case strings.HasSuffix(symbol, ".SW"):
		mic = "xswx"
	case strings.HasSuffix(symbol, ".TO"):
		mic = "xtse"
	case strings.HasSuffix(symbol, ".T"):
		mic = "xtks"
	case strings.HasSuffix(symbol, ".HK"):
		mic = "xhkg"
	case strings.HasSuffix(symbol, ".AX"):
		mic = "xasx"
	}
	return mic
}

// -----------------------------------------------------------------------------

// GetCalendar returns the trading calendar for a symbol's venue.
func GetCalendar(symbol string) *TradingCalendar {
	cal := calendar.GetCalendar(micFor(symbol))
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		// Simple fallback: Mon-Fri 09:30-16:00 New York time.
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenAt checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenAt(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}

		hour := t.Hour()
		minute := t.Minute()

		// 9:30 - 16:00 NY Time
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

// MarketOpen reports whether trading is live for a symbol at time t.
func MarketOpen(symbol string, t time.Time) bool {
	if IsCryptoSymbol(symbol) {
		return true
	}
	return GetCalendar(symbol).IsOpenAt(t)
}
