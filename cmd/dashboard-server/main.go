package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/catalog"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/config"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/dashboard"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/database"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/daterange"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/httpserver"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/metrics"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/middleware"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Can't use logger yet, fall back to standard log
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	logger, err := middleware.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("starting dashboard server",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
		zap.String("backend", cfg.Store.Backend),
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(cfg.Metrics.Namespace)
	}

	// Initialize the store
	store, checkers, closeStore, err := storage.Open(ctx, cfg, logger, m)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	var invalidator dashboard.Invalidator
	if cfg.Store.CacheEnabled {
		redis, err := database.NewRedisDB(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis not available, cache disabled", zap.Error(err))
		} else {
			defer redis.Close()
			cached := storage.NewCachedStore(store, storage.NewRedisCache(redis.Client), cfg.Store.CacheTTL, m, logger)
			store, invalidator = cached, cached
			checkers = append(checkers, redis)
		}
	}

	loc, err := daterange.LoadLocation(cfg.Dashboard.Timezone)
	if err != nil {
		logger.Fatal("invalid timezone", zap.Error(err))
	}
	resolver := daterange.NewResolver(loc,
		daterange.WithLaunchDates(catalog.LaunchDates()),
		daterange.WithEndDates(catalog.EndDates()),
		daterange.WithOpeningStarts(catalog.OpeningStarts()),
		daterange.WithDefaults(catalog.DefaultProductID, catalog.DefaultLaunchDate),
	)

	svc := dashboard.NewService(store, resolver, logger,
		dashboard.WithLeaderboardTop(cfg.Dashboard.LeaderboardTop),
		dashboard.WithMetrics(m),
		dashboard.WithLoadTimeout(cfg.Dashboard.LoadTimeout),
	)
	refresher := dashboard.NewRefresher(svc, resolver, dashboard.RefresherConfig{
		Interval:    cfg.Dashboard.RefreshInterval,
		MaxTracked:  cfg.Dashboard.MaxTracked,
		Invalidator: invalidator,
		Metrics:     m,
	}, logger)
	go refresher.Run(ctx)

	rateLimitMW := middleware.NewRateLimitMiddleware(cfg.RateLimit, logger, m)

	handler := httpserver.NewServer(&httpserver.Dependencies{
		Refresher:   refresher,
		Resolver:    resolver,
		Checkers:    checkers,
		RateLimiter: rateLimitMW,
		Config:      cfg,
		Logger:      logger,
		Metrics:     m,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      cfg.Dashboard.LoadTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server starting", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Start rate limiter cleanup goroutine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := rateLimitMW.CleanupIPLimiters(time.Hour); n > 0 {
					logger.Debug("cleaned up idle rate limiters", zap.Int("removed", n))
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Cancel main context to stop background goroutines
	cancel()

	logger.Info("server stopped")
}
