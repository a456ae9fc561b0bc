package portfolio

import (
	"sync"
	"testing"

	"virtual-trader/src/cache"
	"virtual-trader/src/feed"
	"virtual-trader/src/helpers"
	"virtual-trader/src/logger"
	"virtual-trader/src/models"
)

// -----------------------------------------------------------------------------
// Mock store
// -----------------------------------------------------------------------------

type mockStore struct {
	mu        sync.Mutex
	rows      map[string]models.MHolding
	failWrite bool
}

func newMockStore() *mockStore {
	return &mockStore{rows: make(map[string]models.MHolding)}
}

func (m *mockStore) Initialize() error { return nil }
func (m *mockStore) Close() error      { return nil }

func (m *mockStore) FindAll() ([]models.MHolding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.MHolding, 0, len(m.rows))
	for _, h := range m.rows {
		out = append(out, h)
	}
	return out, nil
}

func (m *mockStore) FindByTicker(ticker string) (models.MHolding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.rows[ticker]
	if !ok {
		return models.MHolding{}, helpers.NewNotFoundError("no holding for ticker %s", ticker)
	}
	return h, nil
}

func (m *mockStore) Create(h models.MHolding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return helpers.NewStoreError("create failed", nil)
	}
	m.rows[h.Ticker] = h
	return nil
}

func (m *mockStore) UpdateQuantity(ticker string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return helpers.NewStoreError("update failed", nil)
	}
	h, ok := m.rows[ticker]
	if !ok {
		return helpers.NewNotFoundError("no holding for ticker %s", ticker)
	}
	h.Quantity = quantity
	m.rows[ticker] = h
	return nil
}

// -----------------------------------------------------------------------------

func newTestService() (*Service, *mockStore, *feed.SubscriptionRegistry, *cache.PriceCache) {
	store := newMockStore()
	registry := feed.NewSubscriptionRegistry()
	priceCache := cache.NewPriceCache()
	svc := NewService(store, registry, priceCache, logger.NewLogger("ERROR", "PortfolioTest"))
	return svc, store, registry, priceCache
}

// -----------------------------------------------------------------------------
// Buy
// -----------------------------------------------------------------------------

func TestBuy_CreatesHoldingAtCachePrice(t *testing.T) {
	svc, _, registry, priceCache := newTestService()
	priceCache.Set("BINANCE:BTCUSDT", 100)

	h, err := svc.Buy("BINANCE:BTCUSDT", 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Quantity != 2 || h.BuyPrice != 100 {
		t.Errorf("expected quantity 2 at buyPrice 100, got %+v", h)
	}
	if !registry.Contains("BINANCE:BTCUSDT") {
		t.Error("buy must subscribe the ticker")
	}
}

func TestBuy_IncrementKeepsOriginalBuyPrice(t *testing.T) {
	svc, _, _, priceCache := newTestService()
	priceCache.Set("ETH", 50)

	svc.Buy("ETH", 1, 0)
	priceCache.Set("ETH", 80)

	h, err := svc.Buy("ETH", 3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", h.Quantity)
	}
	if h.BuyPrice != 50 {
		t.Errorf("buyPrice must stay at the original 50, got %v", h.BuyPrice)
	}
}

func TestBuy_ReferencePriceOverridesCache(t *testing.T) {
	svc, _, _, priceCache := newTestService()
	priceCache.Set("AAPL", 190)

	h, err := svc.Buy("AAPL", 1, 185.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.BuyPrice != 185.5 {
		t.Errorf("expected caller-supplied reference price, got %v", h.BuyPrice)
	}
}

func TestBuy_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _, registry, _ := newTestService()

	for _, qty := range []int{0, -1, -100} {
		if _, err := svc.Buy("ETH", qty, 0); !helpers.IsValidation(err) {
			t.Errorf("quantity %d: expected ValidationError, got %v", qty, err)
		}
	}
	if registry.Contains("ETH") {
		t.Error("rejected buy must not subscribe")
	}
}

func TestBuy_AddIsIdempotentOnResubscribe(t *testing.T) {
	svc, _, registry, _ := newTestService()

	svc.Buy("ETH", 1, 10)
	svc.Buy("ETH", 1, 10)

	if !registry.Contains("ETH") {
		t.Error("ticker should stay subscribed")
	}
	if registry.Len() != 1 {
		t.Errorf("expected 1 subscription, got %d", registry.Len())
	}
}

func TestBuy_StoreFailureSkipsRegistrySignal(t *testing.T) {
	svc, store, registry, _ := newTestService()
	store.failWrite = true

	if _, err := svc.Buy("ETH", 1, 10); err == nil {
		t.Fatal("expected store error")
	}
	if registry.Contains("ETH") {
		t.Error("registry must not be signalled when the store write fails")
	}
}

func TestBuy_ConcurrentCreateYieldsSingleRow(t *testing.T) {
	svc, store, _, _ := newTestService()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Buy("ETH", 1, 10); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	rows, _ := store.FindAll()
	if len(rows) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(rows))
	}
	if rows[0].Quantity != 2 {
		t.Errorf("expected quantity 2 after both buys, got %d", rows[0].Quantity)
	}
}

// -----------------------------------------------------------------------------
// Sell
// -----------------------------------------------------------------------------

func TestSell_UnknownTickerIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, err := svc.Sell("GHOST", 1); !helpers.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestSell_OversellFailsAndLeavesQuantity(t *testing.T) {
	svc, store, _, _ := newTestService()
	svc.Buy("ETH", 2, 10)

	if _, err := svc.Sell("ETH", 3); !helpers.IsInsufficientQuantity(err) {
		t.Errorf("expected InsufficientQuantityError, got %v", err)
	}

	h, _ := store.FindByTicker("ETH")
	if h.Quantity != 2 {
		t.Errorf("failed sell must not change quantity, got %d", h.Quantity)
	}
}

func TestSell_ToZeroKeepsRowDropsSubscription(t *testing.T) {
	svc, _, registry, _ := newTestService()
	svc.Buy("BINANCE:BTCUSDT", 2, 100)

	h, err := svc.Sell("BINANCE:BTCUSDT", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Quantity != 0 {
		t.Errorf("expected quantity 0, got %d", h.Quantity)
	}
	if registry.Contains("BINANCE:BTCUSDT") {
		t.Error("fully sold ticker must be unsubscribed")
	}

	// The zero-quantity row survives, so the next sell is an oversell,
	// not a missing ticker.
	if _, err := svc.Sell("BINANCE:BTCUSDT", 1); !helpers.IsInsufficientQuantity(err) {
		t.Errorf("expected InsufficientQuantityError on zero-quantity row, got %v", err)
	}
}

func TestSell_PartialKeepsSubscription(t *testing.T) {
	svc, _, registry, _ := newTestService()
	svc.Buy("ETH", 5, 10)

	svc.Sell("ETH", 3)

	if !registry.Contains("ETH") {
		t.Error("partially held ticker must stay subscribed")
	}
}

func TestReplay_QuantityIsSumOfBuysMinusSells(t *testing.T) {
	svc, store, _, _ := newTestService()

	ops := []struct {
		buy bool
		qty int
	}{
		{true, 5}, {true, 3}, {false, 4}, {true, 2}, {false, 6},
	}
	for _, op := range ops {
		if op.buy {
			svc.Buy("ETH", op.qty, 10)
		} else {
			svc.Sell("ETH", op.qty)
		}
	}

	h, _ := store.FindByTicker("ETH")
	if h.Quantity != 0 {
		t.Errorf("expected 5+3-4+2-6 = 0, got %d", h.Quantity)
	}
}

// -----------------------------------------------------------------------------
// Views and seeding
// -----------------------------------------------------------------------------

func TestHoldings_JoinsLivePrices(t *testing.T) {
	svc, _, _, priceCache := newTestService()
	svc.Buy("ETH", 1, 10)

	views, err := svc.Holdings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || views[0].LivePrice != nil {
		t.Fatalf("expected one view with nil livePrice before any trade, got %+v", views)
	}

	priceCache.Set("ETH", 42)
	views, _ = svc.Holdings()
	if views[0].LivePrice == nil || *views[0].LivePrice != 42 {
		t.Errorf("expected livePrice 42, got %+v", views[0].LivePrice)
	}
}

func TestSeedDefaults_SkipsSymbolsWithoutLivePrice(t *testing.T) {
	svc, store, registry, priceCache := newTestService()
	priceCache.Set("BINANCE:BTCUSDT", 100)

	created, err := svc.SeedDefaults([]string{"BINANCE:BTCUSDT", "BINANCE:ETHUSDT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 1 {
		t.Errorf("expected 1 created, got %d", created)
	}

	if _, err := store.FindByTicker("BINANCE:ETHUSDT"); !helpers.IsNotFound(err) {
		t.Error("symbol without live price must not be seeded")
	}
	if !registry.Contains("BINANCE:BTCUSDT") {
		t.Error("seeded symbol must be subscribed")
	}

	// Second pass must not duplicate.
	created, _ = svc.SeedDefaults([]string{"BINANCE:BTCUSDT"})
	if created != 0 {
		t.Errorf("expected 0 created on second pass, got %d", created)
	}
}

func TestSeedRegistry_DefaultsPlusHeldTickers(t *testing.T) {
	svc, store, registry, _ := newTestService()

	store.Create(models.MHolding{Ticker: "AAPL", Name: "AAPL", Quantity: 3, BuyPrice: 180})
	store.Create(models.MHolding{Ticker: "SOLD", Name: "SOLD", Quantity: 0, BuyPrice: 10})

	if err := svc.SeedRegistry([]string{"BINANCE:BTCUSDT"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !registry.Contains("BINANCE:BTCUSDT") {
		t.Error("default symbol missing from registry")
	}
	if !registry.Contains("AAPL") {
		t.Error("held ticker missing from registry")
	}
	if registry.Contains("SOLD") {
		t.Error("zero-quantity ticker must not be resubscribed")
	}
}
