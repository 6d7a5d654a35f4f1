package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/zombar/statementanalyzer/internal/analyzer"
	"github.com/zombar/statementanalyzer/internal/database"
	"github.com/zombar/statementanalyzer/pkg/metrics"
)

// retryDelays is the backoff schedule for failed analysis tasks
var retryDelays = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	2 * time.Minute,
}

// Worker wraps the Asynq server for processing tasks
type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	db          *database.DB
	analyzer    *analyzer.Analyzer
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.BusinessMetrics
}

// WorkerConfig contains configuration for the queue worker
type WorkerConfig struct {
	RedisAddr   string
	Concurrency int
}

// NewWorker creates a new queue worker
func NewWorker(
	cfg WorkerConfig,
	db *database.DB,
	analyzer *analyzer.Analyzer,
	businessMetrics *metrics.BusinessMetrics,
) *Worker {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}

	serverCfg := asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			QueueAnalysis: 5,
		},
		RetryDelayFunc:  retryDelay,
		ShutdownTimeout: 30 * time.Second,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)

			slog.Error("task processing error",
				"task_type", task.Type(),
				"error", err,
				"retry_count", retried,
				"max_retries", maxRetry,
			)
		}),
	}

	w := &Worker{
		server:      asynq.NewServer(redisOpt, serverCfg),
		mux:         asynq.NewServeMux(),
		db:          db,
		analyzer:    analyzer,
		concurrency: cfg.Concurrency,
		logger:      slog.Default(),
		metrics:     businessMetrics,
	}

	w.mux.HandleFunc(TypeAnalyzeStatement, w.handleAnalyzeStatement)

	return w
}

// Start runs the worker until Shutdown is called
func (w *Worker) Start() error {
	w.logger.Info("starting asynq worker",
		"concurrency", w.concurrency,
		"queue", QueueAnalysis,
	)

	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("asynq server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the worker
func (w *Worker) Shutdown() {
	w.logger.Info("shutting down asynq worker")
	w.server.Shutdown()
}

func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n < 0 {
		n = 0
	}
	if n < len(retryDelays) {
		return retryDelays[n]
	}
	return retryDelays[len(retryDelays)-1]
}
