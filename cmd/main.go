package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/crux/internal/adapters/cache"
	"github.com/okian/crux/internal/adapters/feed"
	"github.com/okian/crux/internal/adapters/http/api"
	"github.com/okian/crux/internal/adapters/repository"
	app "github.com/okian/crux/internal/app"
	"github.com/okian/crux/internal/config"
	"github.com/okian/crux/internal/domain/calibration"
	"github.com/okian/crux/internal/domain/composite"
	"github.com/okian/crux/pkg/logger"
	"github.com/okian/crux/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Calibration: built-in v1 unless a file override is configured.
	table := calibration.Default()
	if cfg.CalibrationFile != "" {
		table, err = calibration.LoadFile(cfg.CalibrationFile)
		if err != nil {
			os.Stderr.WriteString("failed to load calibration: " + err.Error() + "\n")
			return
		}
	}
	aggregator, err := composite.New(table)
	if err != nil {
		os.Stderr.WriteString("invalid calibration or weights: " + err.Error() + "\n")
		return
	}
	loggerInstance.Info(ctx, "calibration loaded", logger.String("version", table.Version()))

	// Persistence backend.
	var store repository.Store
	switch cfg.StoreBackend {
	case "postgres":
		pg, err := repository.Connect(ctx, cfg.DatabaseURL, cfg.DBMinConns, cfg.DBMaxConns)
		if err != nil {
			os.Stderr.WriteString("failed to connect postgres: " + err.Error() + "\n")
			return
		}
		defer pg.Close()
		store = pg
	default:
		store = repository.NewMemoryStore()
	}

	// Cache backend.
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	var momentCache cache.Cache
	switch cfg.CacheBackend {
	case "redis":
		momentCache = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			cache.WithRedisTTL(ttl),
		)
	default:
		momentCache = cache.NewMemoryCache(cache.WithTTL(ttl))
	}

	// Upstream feed client.
	source := feed.NewClient(cfg.FeedURL,
		feed.WithTimeout(time.Duration(cfg.FeedTimeoutMS)*time.Millisecond),
		feed.WithRequestsPerMinute(cfg.FeedRequestsPerMin),
		feed.WithLogger(loggerInstance),
	)

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithSource(source),
		app.WithStore(store),
		app.WithCache(momentCache),
		app.WithAggregator(aggregator),
		app.WithStaleFallback(cfg.StaleFallback),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc, api.Limits{
		HistoryMaxLimit:          cfg.HistoryMaxLimit,
		LeaderboardMaxLimit:      cfg.LeaderboardMaxLimit,
		LeaderboardMaxWindowDays: cfg.LeaderboardMaxWindowDays,
	})
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Average GC pause across all collections so far
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
