package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"virtual-trader/src/cache"
	"virtual-trader/src/feed"
	"virtual-trader/src/helpers"
	"virtual-trader/src/logger"
	"virtual-trader/src/models"
	"virtual-trader/src/portfolio"
	"virtual-trader/src/quotes"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// TradeServer
// -----------------------------------------------------------------------------

type TradeServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine

	portfolio *portfolio.Service
	registry  *feed.SubscriptionRegistry
	cache     *cache.PriceCache
	quotes    *quotes.QuoteService

	// Health reporting hook for the feed connector, set after wiring.
	feedState func() string

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan models.MPriceUpdate // Buffered queue, drained by the hub loop
	register   chan *Client
	unregister chan *Client

	stateMu sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewTradeServer(
	cfg *models.MConfig,
	log *logger.Logger,
	svc *portfolio.Service,
	registry *feed.SubscriptionRegistry,
	priceCache *cache.PriceCache,
	quoteSvc *quotes.QuoteService,
) *TradeServer {
	// Set Gin mode
	if strings.ToUpper(cfg.LogLevel) != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &TradeServer{
		Config:    cfg,
		Logger:    log,
		engine:    gin.Default(),
		portfolio: svc,
		registry:  registry,
		cache:     priceCache,
		quotes:    quoteSvc,
		clients:   make(map[*Client]struct{}),
		// Buffered so a burst of trades never blocks the feed read loop.
		broadcast:  make(chan models.MPriceUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		feedState:  func() string { return "idle" },
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *TradeServer) setupRoutes() {
	s.engine.GET("/", s.getRoot)
	s.engine.GET("/stocks", s.getStocks)
	s.engine.POST("/stocks/buy", s.postBuy)
	s.engine.POST("/stocks/sell", s.postSell)
	s.engine.GET("/stocks/realtime", s.getRealtime)
	s.engine.GET("/stock/:symbol", s.getQuote)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *TradeServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.runHub()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

// AttachFeedState wires the feed connector's state into the health endpoint.
func (s *TradeServer) AttachFeedState(fn func() string) {
	s.stateMu.Lock()
	s.feedState = fn
	s.stateMu.Unlock()
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *TradeServer) getRoot(c *gin.Context) {
	c.String(http.StatusOK, "Backend is up!")
}

// -----------------------------------------------------------------------------

// getStocks lists holdings with live prices, seeding missing default
// holdings first so a fresh database is immediately populated.
func (s *TradeServer) getStocks(c *gin.Context) {
	if _, err := s.portfolio.SeedDefaults(s.Config.Feed.DefaultSymbols); err != nil {
		s.Logger.Error("seeding defaults failed: %v", err)
	}

	holdings, err := s.portfolio.Holdings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching stocks"})
		return
	}
	c.JSON(http.StatusOK, holdings)
}

// -----------------------------------------------------------------------------

type buyRequest struct {
	Ticker        string `json:"ticker"`
	QuantityToBuy int    `json:"quantityToBuy"`
}

func (s *TradeServer) postBuy(c *gin.Context) {
	var req buyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}
	if req.Ticker == "" || req.QuantityToBuy <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	holding, err := s.portfolio.Buy(req.Ticker, req.QuantityToBuy, 0)
	if err != nil {
		s.writeMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Bought %d shares of %s", req.QuantityToBuy, req.Ticker),
		"stock":   holding,
	})
}

// -----------------------------------------------------------------------------

type sellRequest struct {
	Ticker         string `json:"ticker"`
	QuantityToSell int    `json:"quantityToSell"`
}

func (s *TradeServer) postSell(c *gin.Context) {
	var req sellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}
	if req.Ticker == "" || req.QuantityToSell <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	holding, err := s.portfolio.Sell(req.Ticker, req.QuantityToSell)
	if err != nil {
		s.writeMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Sold %d shares of %s", req.QuantityToSell, req.Ticker),
		"stock":   holding,
	})
}

// -----------------------------------------------------------------------------

func (s *TradeServer) writeMutationError(c *gin.Context, err error) {
	switch {
	case helpers.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case helpers.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"message": "Stock not found"})
	case helpers.IsInsufficientQuantity(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient shares"})
	default:
		s.Logger.Error("mutation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error processing trade"})
	}
}

// -----------------------------------------------------------------------------

// getQuote proxies a single REST quote.
func (s *TradeServer) getQuote(c *gin.Context) {
	symbol := c.Param("symbol")

	quote, err := s.quotes.Fetch(symbol)
	if err != nil {
		s.Logger.Warning("quote proxy: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Unable to fetch stock data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":        symbol,
		"currentPrice":  quote.Current,
		"high":          quote.High,
		"low":           quote.Low,
		"open":          quote.Open,
		"previousClose": quote.PreviousClose,
	})
}

// -----------------------------------------------------------------------------

// getRealtime fetches REST quotes for every holding.
func (s *TradeServer) getRealtime(c *gin.Context) {
	holdings, err := s.portfolio.Holdings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching real-time data"})
		return
	}
	if len(holdings) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No subscribed tickers found"})
		return
	}

	rows := make([]models.MHolding, 0, len(holdings))
	for _, h := range holdings {
		rows = append(rows, h.MHolding)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Real-time data fetched successfully",
		"data":    s.quotes.FetchAll(rows),
	})
}

// -----------------------------------------------------------------------------

func (s *TradeServer) getHealth(c *gin.Context) {
	s.stateMu.RLock()
	state := s.feedState()
	s.stateMu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"feed":          state,
		"subscriptions": s.registry.Len(),
		"cachedSymbols": s.cache.Len(),
	})
}
