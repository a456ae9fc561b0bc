package cache

import (
	"sync"
	"time"

	"virtual-trader/src/models"
)

// -----------------------------------------------------------------------------
// PriceCache: process-wide symbol -> last known price. Written only by the
// feed connector, read by everyone. Entries are never deleted so a
// resubscribed symbol shows its last known price instead of null.
// -----------------------------------------------------------------------------

type PriceCache struct {
	mu      sync.RWMutex
	entries map[string]models.MPriceQuote
}

// -----------------------------------------------------------------------------

func NewPriceCache() *PriceCache {
	return &PriceCache{
		entries: make(map[string]models.MPriceQuote),
	}
}

// -----------------------------------------------------------------------------

// Set overwrites the entry for symbol with the given price.
func (c *PriceCache) Set(symbol string, price float64) {
	c.mu.Lock()
	c.entries[symbol] = models.MPriceQuote{
		Symbol:     symbol,
		Price:      price,
		ObservedAt: time.Now(),
	}
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Get returns the full entry for a symbol.
func (c *PriceCache) Get(symbol string) (models.MPriceQuote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q, ok := c.entries[symbol]
	return q, ok
}

// -----------------------------------------------------------------------------

// Price returns just the last price for a symbol.
func (c *PriceCache) Price(symbol string) (float64, bool) {
	q, ok := c.Get(symbol)
	return q.Price, ok
}

// -----------------------------------------------------------------------------

// Snapshot returns a copy of all entries.
func (c *PriceCache) Snapshot() map[string]models.MPriceQuote {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]models.MPriceQuote, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// -----------------------------------------------------------------------------

// Len returns the number of cached symbols.
func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
