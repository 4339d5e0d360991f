package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cesargomez89/weathercache/internal/config"
	"github.com/cesargomez89/weathercache/internal/constants"
	"github.com/cesargomez89/weathercache/internal/forecast"
	"github.com/cesargomez89/weathercache/internal/httpapi"
	"github.com/cesargomez89/weathercache/internal/httpclient"
	"github.com/cesargomez89/weathercache/internal/logger"
	"github.com/cesargomez89/weathercache/internal/router"
	"github.com/cesargomez89/weathercache/internal/store"
	"github.com/cesargomez89/weathercache/internal/weathersync"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize forecast client
	forecastClient := forecast.NewClient(forecast.Config{
		BaseURL: cfg.ForecastURL,
		APIKey:  cfg.ForecastAPIKey,
		Days:    constants.ForecastDays,
		Timeout: cfg.FetchTimeout,
	}, httpclient.NewClient(nil, constants.DefaultMinRequestGap), appLogger)

	// Initialize sync
	normalizer := weathersync.NewNormalizer(db, forecastClient, appLogger)
	syncer := weathersync.NewSyncer(normalizer, appLogger)
	scheduler := weathersync.NewScheduler(syncer, cfg.DefaultLocation, cfg.Units, cfg.SyncInterval, appLogger)
	if err := scheduler.Start(); err != nil {
		appLogger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	// Routes
	h := httpapi.NewHandler(router.NewRouter(db, appLogger), syncer, db, cfg.DefaultLocation, cfg.Units, appLogger)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: h.NewServer(),
	}

	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exiting")
}
