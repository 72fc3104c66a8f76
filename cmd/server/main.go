package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/api"
	"github.com/andresuchdata/shopdash/backend-go/internal/app"
	"github.com/andresuchdata/shopdash/backend-go/internal/cache"
	"github.com/andresuchdata/shopdash/backend-go/internal/config"
	"github.com/andresuchdata/shopdash/backend-go/internal/service"
	"github.com/andresuchdata/shopdash/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger.UseJSON(os.Stdout)
	}
	logger.SetLevel(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize sources and stores
	loader, err := app.NewSourceLoader(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize source loader")
	}

	stores, err := app.OpenStores(ctx, &cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer stores.Close()

	snapshotCache, err := cache.NewSnapshotCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("snapshot cache disabled, falling back to memory")
		snapshotCache = cache.NewMemorySnapshotCache(cfg.Cache.SnapshotTTL(), nil)
	}
	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("report cache disabled")
		reportCache = cache.NewNoopReportCache()
	}

	// Initialize services
	var opts []service.Option
	if stores != nil {
		opts = append(opts, service.WithFactRepository(stores.Facts), service.WithRunHistory(stores.Runs))
	}
	dashboard := service.NewDashboardService(app.NewRunner(cfg, loader, stores), snapshotCache, reportCache, opts...)

	// Warm the snapshot so the first dashboard request is served from cache
	go func() {
		if _, err := dashboard.Refresh(ctx); err != nil {
			logger.Log.Warn().Err(err).Msg("initial refresh failed")
		}
	}()

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{Dashboard: dashboard}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("source", loader.Name()).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-ctx.Done()
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
