package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zombar/statementanalyzer/internal/analyzer"
	"github.com/zombar/statementanalyzer/internal/api"
	"github.com/zombar/statementanalyzer/internal/database"
	"github.com/zombar/statementanalyzer/internal/queue"
	"github.com/zombar/statementanalyzer/pkg/logging"
	"github.com/zombar/statementanalyzer/pkg/metrics"
	"github.com/zombar/statementanalyzer/pkg/tracing"
)

const (
	serviceName      = "statementanalyzer"
	metricsNamespace = "statementanalyzer"
	version          = "1.0.0"
)

type config struct {
	Port              string
	DBPath            string
	RedisAddr         string
	WorkerConcurrency int
	RealTimeRPS       float64
	RealTimeBurst     int
}

// parseConfig reads flags, falling back to environment variables for defaults
func parseConfig(fs *flag.FlagSet, args []string) (config, error) {
	var cfg config
	fs.StringVar(&cfg.Port, "port", getEnv("PORT", "8080"), "Server port (env: PORT)")
	fs.StringVar(&cfg.DBPath, "db", getEnv("DB_PATH", "statementanalyzer.db"), "Database file path (env: DB_PATH)")
	fs.StringVar(&cfg.RedisAddr, "redis", getEnv("REDIS_ADDR", "localhost:6379"), "Redis address for the analysis queue (env: REDIS_ADDR)")
	fs.IntVar(&cfg.WorkerConcurrency, "worker-concurrency", getEnvInt("WORKER_CONCURRENCY", 4), "Concurrent analysis tasks (env: WORKER_CONCURRENCY)")
	fs.Float64Var(&cfg.RealTimeRPS, "realtime-rps", getEnvFloat("REALTIME_RPS", 5), "Real-time requests per second per client (env: REALTIME_RPS)")
	fs.IntVar(&cfg.RealTimeBurst, "realtime-burst", getEnvInt("REALTIME_BURST", 10), "Real-time burst size per client (env: REALTIME_BURST)")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.WorkerConcurrency < 1 {
		return cfg, fmt.Errorf("worker concurrency must be at least 1, got %d", cfg.WorkerConcurrency)
	}
	if cfg.RealTimeRPS <= 0 || cfg.RealTimeBurst < 1 {
		return cfg, fmt.Errorf("real-time rate limit must be positive, got %v rps burst %d", cfg.RealTimeRPS, cfg.RealTimeBurst)
	}
	return cfg, nil
}

func main() {
	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("statementanalyzer service initializing", "version", version)

	cfg, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	// Initialize tracing
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
		logger.Info("tracing initialized successfully")
	}

	// Initialize database
	db, err := database.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "database_path", cfg.DBPath)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize metrics once; the API and the worker share the collectors
	dbMetrics := metrics.NewDatabaseMetrics(metricsNamespace, prometheus.DefaultRegisterer)
	businessMetrics := metrics.NewBusinessMetrics(metricsNamespace, prometheus.DefaultRegisterer)
	statsCtx, stopStats := context.WithCancel(context.Background())
	defer stopStats()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-statsCtx.Done():
				return
			case <-ticker.C:
				dbMetrics.UpdateDBStats(db.Conn())
			}
		}
	}()
	logger.Info("metrics initialized")

	textAnalyzer := analyzer.New()

	// Queue client for the API, worker for background analysis
	queueClient := queue.NewClient(queue.ClientConfig{RedisAddr: cfg.RedisAddr})
	defer queueClient.Close()

	worker := queue.NewWorker(queue.WorkerConfig{
		RedisAddr:   cfg.RedisAddr,
		Concurrency: cfg.WorkerConcurrency,
	}, db, textAnalyzer, businessMetrics)

	go func() {
		if err := worker.Start(); err != nil {
			logger.Error("worker stopped", "error", err)
		}
	}()

	// Initialize API handler
	apiHandler := api.NewHandler(db, textAnalyzer, queueClient, businessMetrics, api.Config{
		RealTimeRPS:   cfg.RealTimeRPS,
		RealTimeBurst: cfg.RealTimeBurst,
	})

	// Wrap handler with middleware chain: HTTP logging -> tracing -> handlers
	handler := logging.HTTPLoggingMiddleware(logger)(
		tracing.HTTPMiddleware(serviceName)(apiHandler),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("statementanalyzer service starting",
			"port", cfg.Port,
			"database", cfg.DBPath,
			"redis_addr", cfg.RedisAddr,
			"worker_concurrency", cfg.WorkerConcurrency,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	worker.Shutdown()

	logger.Info("server stopped")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("ignoring invalid integer environment variable", "key", key, "value", value)
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		slog.Warn("ignoring invalid float environment variable", "key", key, "value", value)
	}
	return defaultValue
}
