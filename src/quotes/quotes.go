package quotes

import (
	"encoding/json"
	"fmt"
	"time"

	"virtual-trader/src/interfaces"
	"virtual-trader/src/logger"
	"virtual-trader/src/models"
	"virtual-trader/src/utils"
)

// -----------------------------------------------------------------------------
// QuoteService fetches on-demand REST quotes. This is a stateless proxy:
// results are returned to the caller, never written into the price cache
// (only the live feed feeds the cache).
// -----------------------------------------------------------------------------

type QuoteService struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewQuoteService(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *QuoteService {
	return &QuoteService{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Fetch retrieves the current quote for one symbol.
func (q *QuoteService) Fetch(symbol string) (models.MQuote, error) {
	params := map[string]string{
		"symbol": symbol,
		"token":  q.Config.Feed.APIKey,
	}

	body, err := q.Network.Get(q.Config.Quotes.URL, params)
	if err != nil {
		return models.MQuote{}, fmt.Errorf("quote fetch for %s failed: %w", symbol, err)
	}

	var quote models.MQuote
	if err := json.Unmarshal(body, &quote); err != nil {
		return models.MQuote{}, fmt.Errorf("quote parse for %s failed: %w", symbol, err)
	}
	return quote, nil
}

// -----------------------------------------------------------------------------

// FetchAll retrieves quotes for every holding. Equities whose venue is
// closed are skipped rather than polled; per-symbol failures are reported
// in the row, not as an error.
func (q *QuoteService) FetchAll(holdings []models.MHolding) []models.MTickerQuote {
	now := time.Now()
	results := make([]models.MTickerQuote, 0, len(holdings))

	for _, h := range holdings {
		if !utils.MarketOpen(h.Ticker, now) {
			results = append(results, models.MTickerQuote{
				Ticker: h.Ticker,
				Error:  "market closed",
			})
			continue
		}

		quote, err := q.Fetch(h.Ticker)
		if err != nil {
			q.Logger.Warning("quotes: %v", err)
			results = append(results, models.MTickerQuote{
				Ticker: h.Ticker,
				Error:  "failed to fetch data",
			})
			continue
		}

		results = append(results, models.MTickerQuote{
			Ticker:        h.Ticker,
			CurrentPrice:  quote.Current,
			HighPrice:     quote.High,
			LowPrice:      quote.Low,
			OpenPrice:     quote.Open,
			PreviousClose: quote.PreviousClose,
		})
	}
	return results
}
