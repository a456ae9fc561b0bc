package portfolio

import (
	"sync"

	"virtual-trader/src/cache"
	"virtual-trader/src/feed"
	"virtual-trader/src/helpers"
	"virtual-trader/src/interfaces"
	"virtual-trader/src/logger"
	"virtual-trader/src/models"
)

// -----------------------------------------------------------------------------
// Service applies buy/sell mutations against the portfolio store and keeps
// the subscription registry consistent with the result. Mutations are
// serialized per ticker; the registry signal is only sent after the store
// write committed.
// -----------------------------------------------------------------------------

type Service struct {
	Logger   *logger.Logger
	store    interfaces.IPortfolioStore
	registry *feed.SubscriptionRegistry
	cache    *cache.PriceCache

	mu          sync.Mutex
	tickerLocks map[string]*sync.Mutex
}

// -----------------------------------------------------------------------------

func NewService(
	store interfaces.IPortfolioStore,
	registry *feed.SubscriptionRegistry,
	priceCache *cache.PriceCache,
	log *logger.Logger,
) *Service {
	return &Service{
		Logger:      log,
		store:       store,
		registry:    registry,
		cache:       priceCache,
		tickerLocks: make(map[string]*sync.Mutex),
	}
}

// -----------------------------------------------------------------------------

// lockTicker returns the mutex serializing mutations for one ticker.
// Locks are never released back; the ticker universe is small.
func (s *Service) lockTicker(ticker string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.tickerLocks[ticker]
	if !ok {
		l = &sync.Mutex{}
		s.tickerLocks[ticker] = l
	}
	return l
}

// -----------------------------------------------------------------------------

// Buy adds quantity shares of ticker. An unknown ticker gets a new holding
// with buyPrice taken from refPrice, or from the price cache when refPrice
// is zero. An existing holding keeps its original buyPrice: the recorded
// cost basis is the first buy, not an average.
func (s *Service) Buy(ticker string, quantity int, refPrice float64) (models.MHolding, error) {
	if ticker == "" {
		return models.MHolding{}, helpers.NewValidationError("ticker is required")
	}
	if quantity <= 0 {
		return models.MHolding{}, helpers.NewValidationError("quantity must be a positive integer, got %d", quantity)
	}

	l := s.lockTicker(ticker)
	l.Lock()
	defer l.Unlock()

	holding, err := s.store.FindByTicker(ticker)
	switch {
	case err == nil:
		holding.Quantity += quantity
		if err := s.store.UpdateQuantity(ticker, holding.Quantity); err != nil {
			return models.MHolding{}, err
		}

	case helpers.IsNotFound(err):
		price := refPrice
		if price == 0 {
			if p, ok := s.cache.Price(ticker); ok {
				price = p
			}
		}
		holding = models.MHolding{
			Ticker:   ticker,
			Name:     ticker,
			Quantity: quantity,
			BuyPrice: price,
		}
		if err := s.store.Create(holding); err != nil {
			return models.MHolding{}, err
		}

	default:
		return models.MHolding{}, err
	}

	// Registry signal strictly after the committed store write. Add is
	// idempotent, so re-buying a subscribed ticker is a no-op here.
	s.registry.Add(ticker)

	s.Logger.Info("bought %d %s (total %d)", quantity, ticker, holding.Quantity)
	return holding, nil
}

// -----------------------------------------------------------------------------

// Sell removes quantity shares of ticker. The row survives a full sell-off
// with quantity 0, but its subscription is dropped.
func (s *Service) Sell(ticker string, quantity int) (models.MHolding, error) {
	if ticker == "" {
		return models.MHolding{}, helpers.NewValidationError("ticker is required")
	}
	if quantity <= 0 {
		return models.MHolding{}, helpers.NewValidationError("quantity must be a positive integer, got %d", quantity)
	}

	l := s.lockTicker(ticker)
	l.Lock()
	defer l.Unlock()

	holding, err := s.store.FindByTicker(ticker)
	if err != nil {
		return models.MHolding{}, err
	}

	if quantity > holding.Quantity {
		return models.MHolding{}, helpers.NewInsufficientQuantityError(
			"cannot sell %d of %s, only %d held", quantity, ticker, holding.Quantity)
	}

	holding.Quantity -= quantity
	if err := s.store.UpdateQuantity(ticker, holding.Quantity); err != nil {
		return models.MHolding{}, err
	}

	if holding.Quantity == 0 {
		s.registry.Remove(ticker)
	}

	s.Logger.Info("sold %d %s (remaining %d)", quantity, ticker, holding.Quantity)
	return holding, nil
}

// -----------------------------------------------------------------------------

// Holdings returns every row joined with the last known live price.
func (s *Service) Holdings() ([]models.MHoldingView, error) {
	rows, err := s.store.FindAll()
	if err != nil {
		return nil, err
	}

	views := make([]models.MHoldingView, 0, len(rows))
	for _, h := range rows {
		view := models.MHoldingView{MHolding: h}
		if p, ok := s.cache.Price(h.Ticker); ok {
			price := p
			view.LivePrice = &price
		}
		views = append(views, view)
	}
	return views, nil
}

// -----------------------------------------------------------------------------

// SeedDefaults creates a quantity-1 holding for each default symbol that has
// no row yet. Symbols without a live cache price are skipped; they get
// another chance on the next call. Returns the number of rows created.
func (s *Service) SeedDefaults(symbols []string) (int, error) {
	created := 0
	for _, sym := range symbols {
		l := s.lockTicker(sym)
		l.Lock()

		_, err := s.store.FindByTicker(sym)
		if err == nil {
			l.Unlock()
			continue
		}
		if !helpers.IsNotFound(err) {
			l.Unlock()
			return created, err
		}

		price, ok := s.cache.Price(sym)
		if !ok {
			l.Unlock()
			continue
		}

		h := models.MHolding{Ticker: sym, Name: sym, Quantity: 1, BuyPrice: price}
		if err := s.store.Create(h); err != nil {
			l.Unlock()
			return created, err
		}
		l.Unlock()

		s.registry.Add(sym)
		created++
	}
	return created, nil
}

// -----------------------------------------------------------------------------

// SeedRegistry subscribes the default symbols plus every held ticker with a
// positive quantity. Called once at startup so holdings acquired before a
// restart keep receiving live prices.
func (s *Service) SeedRegistry(defaults []string) error {
	for _, sym := range defaults {
		s.registry.Add(sym)
	}

	rows, err := s.store.FindAll()
	if err != nil {
		return err
	}
	for _, h := range rows {
		if h.Quantity > 0 {
			s.registry.Add(h.Ticker)
		}
	}
	return nil
}
