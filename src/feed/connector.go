package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"virtual-trader/src/cache"
	"virtual-trader/src/helpers"
	"virtual-trader/src/interfaces"
	"virtual-trader/src/logger"
	"virtual-trader/src/models"
)

// -----------------------------------------------------------------------------
// Connector state machine: idle -> connecting -> connected -> disconnected ->
// connecting -> ... (connecting -> disconnected on immediate dial failure).
// -----------------------------------------------------------------------------

type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Connector owns the single upstream feed connection. It replays the
// subscription registry on every (re)connect, writes every trade into the
// price cache and emits it to the broadcast sink. Transport errors degrade to
// disconnected and retry forever with exponential backoff.
// -----------------------------------------------------------------------------

type Connector struct {
	Config   *models.MConfig
	Logger   *logger.Logger
	registry *SubscriptionRegistry
	cache    *cache.PriceCache
	sink     interfaces.IPriceBroadcaster
	dialer   interfaces.IFeedDialer

	mu    sync.Mutex // guards conn and serializes writes
	conn  interfaces.IFeedConn
	state atomic.Int32
}

// -----------------------------------------------------------------------------

func NewConnector(
	cfg *models.MConfig,
	registry *SubscriptionRegistry,
	priceCache *cache.PriceCache,
	sink interfaces.IPriceBroadcaster,
	dialer interfaces.IFeedDialer,
	log *logger.Logger,
) *Connector {
	c := &Connector{
		Config:   cfg,
		Logger:   log,
		registry: registry,
		cache:    priceCache,
		sink:     sink,
		dialer:   dialer,
	}
	c.state.Store(int32(StateIdle))
	registry.Attach(c)
	return c
}

// -----------------------------------------------------------------------------

// State returns the current connection state.
func (c *Connector) State() State {
	return State(c.state.Load())
}

func (c *Connector) setState(s State) {
	c.state.Store(int32(s))
}

// -----------------------------------------------------------------------------

func (c *Connector) feedURL() string {
	url := c.Config.Feed.URL
	if c.Config.Feed.APIKey != "" {
		url = fmt.Sprintf("%s?token=%s", url, c.Config.Feed.APIKey)
	}
	return url
}

// -----------------------------------------------------------------------------

// Run maintains the upstream connection until ctx is cancelled. It is the
// only goroutine that dials, so at most one reconnect is ever pending.
func (c *Connector) Run(ctx context.Context) {
	base := time.Duration(c.Config.Feed.ReconnectBaseSeconds) * time.Second
	maxDelay := time.Duration(c.Config.Feed.ReconnectMaxSeconds) * time.Second
	attempt := 0

	for ctx.Err() == nil {
		c.setState(StateConnecting)
		conn, err := c.dialer.Dial(ctx, c.feedURL())
		if err != nil {
			c.setState(StateDisconnected)
			if ctx.Err() != nil {
				return
			}
			delay := helpers.BackoffDelay(attempt, base, maxDelay)
			c.Logger.Warning("feed: connect failed (attempt %d): %v, retrying in %v", attempt+1, err, delay)
			attempt++
			if !sleepCtx(ctx, delay) {
				return
			}
			continue
		}

		// Successful open resets the backoff sequence.
		attempt = 0
		c.setConn(conn)
		c.setState(StateConnected)
		c.Logger.Info("feed: connected to %s", c.Config.Feed.URL)
		c.replaySubscriptions()

		err = c.readLoop(ctx, conn)
		c.setConn(nil)
		conn.Close()
		c.setState(StateDisconnected)

		if ctx.Err() != nil {
			return
		}

		delay := helpers.BackoffDelay(attempt, base, maxDelay)
		c.Logger.Warning("feed: connection lost: %v, reconnecting in %v", err, delay)
		attempt++
		if !sleepCtx(ctx, delay) {
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (c *Connector) setConn(conn interfaces.IFeedConn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------

// replaySubscriptions re-issues a subscribe command for every registered
// symbol. The upstream feed holds no subscription state across reconnects.
func (c *Connector) replaySubscriptions() {
	symbols := c.registry.Symbols()
	for _, sym := range symbols {
		c.Subscribe(sym)
	}
	if len(symbols) > 0 {
		c.Logger.Info("feed: replayed %d subscriptions", len(symbols))
	}
}

// -----------------------------------------------------------------------------

// readLoop pumps inbound frames until the transport fails. Cancelling ctx
// closes the connection, which unblocks ReadMessage.
func (c *Connector) readLoop(ctx context.Context, conn interfaces.IFeedConn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return helpers.NewUpstreamFeedError("feed read failed", err)
		}
		c.handleMessage(raw)
	}
}

// -----------------------------------------------------------------------------

// handleMessage parses one inbound frame. Malformed frames are logged and
// dropped; they never tear the connection down.
func (c *Connector) handleMessage(raw []byte) {
	var msg models.MFeedMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.Logger.Warning("feed: dropping malformed message: %v", err)
		return
	}

	if msg.Type != "trade" {
		// ping / ack frames
		return
	}

	for _, trade := range msg.Data {
		if trade.Symbol == "" {
			c.Logger.Warning("feed: dropping trade with empty symbol")
			continue
		}
		c.cache.Set(trade.Symbol, trade.Price)
		c.sink.BroadcastPrice(trade.Symbol, trade.Price)
	}
}

// -----------------------------------------------------------------------------
// Subscriber implementation (signalled by the SubscriptionRegistry)
// -----------------------------------------------------------------------------

// Subscribe sends a subscribe command if the connection is open. While
// disconnected the registry membership alone is enough: replay covers it on
// the next connect.
func (c *Connector) Subscribe(symbol string) {
	c.sendCommand("subscribe", symbol)
}

// Unsubscribe is symmetric to Subscribe.
func (c *Connector) Unsubscribe(symbol string) {
	c.sendCommand("unsubscribe", symbol)
}

// -----------------------------------------------------------------------------

func (c *Connector) sendCommand(cmdType, symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return
	}
	if err := c.conn.WriteJSON(models.MFeedCommand{Type: cmdType, Symbol: symbol}); err != nil {
		// The read loop sees the same broken transport and handles reconnect.
		c.Logger.Warning("feed: %s command for %s failed: %v", cmdType, symbol, err)
	}
}

// -----------------------------------------------------------------------------

// sleepCtx waits for d, returning false if ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
