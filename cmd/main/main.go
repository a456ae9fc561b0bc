package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"virtual-trader/src/cache"
	"virtual-trader/src/config"
	"virtual-trader/src/feed"
	"virtual-trader/src/interfaces"
	"virtual-trader/src/logger"
	"virtual-trader/src/network"
	"virtual-trader/src/portfolio"
	"virtual-trader/src/quotes"
	"virtual-trader/src/server"
	"virtual-trader/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "./config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// 2. Portfolio store
	var store interfaces.IPortfolioStore

	switch cfg.Storage.DBType {
	case "postgres":
		store, err = storage.NewPostgresStore(cfg.MConfig, appLogger)
	default:
		// Default to SQLite
		store, err = storage.NewSQLiteStore(cfg.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init store: %v", err)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate store: %v", err)
	}
	defer store.Close()

	// 3. Core components
	priceCache := cache.NewPriceCache()
	registry := feed.NewSubscriptionRegistry()
	portfolioSvc := portfolio.NewService(store, registry, priceCache, appLogger)

	netMgr := network.NewAsyncNetworkManager(cfg.MConfig, logger.NewLogger(cfg.LogLevel, "Network"))
	quoteSvc := quotes.NewQuoteService(cfg.MConfig, netMgr, logger.NewLogger(cfg.LogLevel, "Quotes"))

	srv := server.NewTradeServer(cfg.MConfig, appLogger, portfolioSvc, registry, priceCache, quoteSvc)

	// 4. Upstream feed connector (attaches itself to the registry)
	connector := feed.NewConnector(
		cfg.MConfig,
		registry,
		priceCache,
		srv,
		feed.NewWebsocketDialer(),
		logger.NewLogger(cfg.LogLevel, "Feed"),
	)
	srv.AttachFeedState(func() string { return connector.State().String() })

	// 5. Seed subscriptions: defaults plus every held ticker, so holdings
	// acquired before a restart keep receiving live prices.
	if err := portfolioSvc.SeedRegistry(cfg.Feed.DefaultSymbols); err != nil {
		appLogger.Error("Failed to seed registry from store: %v", err)
	}
	appLogger.Info("Registry seeded with %d symbols", registry.Len())

	// 6. Start server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// 7. Run the feed until shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feedDone := make(chan struct{})
	go func() {
		connector.Run(ctx)
		close(feedDone)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	appLogger.Info("Shutting down...")
	cancel()
	<-feedDone
}
