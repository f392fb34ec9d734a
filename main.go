package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"wallet-flow-backend/config"
	"wallet-flow-backend/internal/cache"
	"wallet-flow-backend/internal/demo"
	"wallet-flow-backend/internal/helius"
	"wallet-flow-backend/internal/server"
	"wallet-flow-backend/internal/stats"
	"wallet-flow-backend/internal/tracker"
	"wallet-flow-backend/internal/utils"
)

func main() {
	configPath := os.Getenv("WFA_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}

	appConfig, err := config.Load(configPath)
	if err != nil {
		utils.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	utils.InitializeComponentLoggers(utils.ParseLogLevel(appConfig.LogLevel))
	utils.SetIncludeStackTrace(utils.IsDebugEnabled())

	if err := appConfig.Validate(); err != nil {
		utils.LogError(err, utils.ServerLogger)
		os.Exit(1)
	}
	if appConfig.Indexer.APIKey == "" {
		utils.Warn("No indexer API key configured, only demo mode will return data")
	}
	utils.Info("Configuration loaded from %s", configPath)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	responseCache := newCache(ctx, appConfig.Cache)
	if responseCache != nil {
		defer responseCache.Close()
	}

	analyzer := stats.NewAnalyzer(appConfig.StatsConfig())
	indexer := helius.New(appConfig.IndexerConfig(), responseCache)
	walletTracker := tracker.New(appConfig.Tracker, indexer, analyzer)
	demoTracker := walletTracker.WithFetcher(demo.NewFetcher(appConfig.Demo), true)

	srv := server.NewServer(appConfig.Server, walletTracker, demoTracker)

	var wg sync.WaitGroup

	// Start HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Start(ctx); err != nil {
			utils.LogError(err, utils.ServerLogger)
			cancel()
		}
	}()

	utils.Info("Wallet flow backend started on %s", appConfig.Server.Port)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		utils.Info("Shutdown signal received...")
	case <-ctx.Done():
	}
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		utils.Info("Graceful shutdown completed")
	case <-time.After(10 * time.Second):
		utils.Warn("Shutdown timeout reached")
	}
}

// newCache picks redis when an address is configured, falling back to the
// in-memory cache when redis is unreachable
func newCache(ctx context.Context, cfg config.CacheConfig) cache.Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.RedisAddr == "" {
		utils.CacheLogger.Info("Using in-memory response cache")
		return cache.NewMemory()
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rc, err := cache.NewRedis(pingCtx, cache.RedisConfig{
		Addr:       cfg.RedisAddr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		PoolSize:   cfg.PoolSize,
		MaxRetries: cfg.MaxRetries,
		KeyPrefix:  cfg.KeyPrefix,
	})
	if err != nil {
		utils.LogError(err, utils.CacheLogger)
		utils.CacheLogger.Warn("Falling back to in-memory response cache")
		return cache.NewMemory()
	}
	return rc
}
