package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Task type constants
const (
	TypeAnalyzeStatement = "statementanalyzer:analyze_statement"
)

// QueueAnalysis is the asynq queue statement analyses run on
const QueueAnalysis = "analysis"

// AnalyzeStatementPayload represents the payload for a statement analysis task
type AnalyzeStatementPayload struct {
	StatementID string `json:"statement_id"`
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix timestamp in nanoseconds
}

// Client wraps the Asynq client for enqueueing tasks
type Client struct {
	client *asynq.Client
}

// ClientConfig contains configuration for the queue client
type ClientConfig struct {
	RedisAddr string
}

// NewClient creates a new queue client
func NewClient(cfg ClientConfig) *Client {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}

	return &Client{
		client: asynq.NewClient(redisOpt),
	}
}

// NewAnalyzeStatementTask builds the task and options for analyzing a statement,
// capturing the trace context of ctx in the payload
func NewAnalyzeStatementTask(ctx context.Context, statementID string) (*asynq.Task, []asynq.Option, error) {
	payload := AnalyzeStatementPayload{
		StatementID: statementID,
		EnqueuedAt:  time.Now().UnixNano(),
	}

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()
		payload.TraceID = spanCtx.TraceID().String()
		payload.SpanID = spanCtx.SpanID().String()

		span.AddEvent("task_enqueued", trace.WithAttributes(
			attribute.String("task.type", TypeAnalyzeStatement),
			attribute.String("task.id", statementID),
			attribute.String("statement.id", statementID),
			attribute.Int64("enqueued_at", payload.EnqueuedAt),
		))
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeAnalyzeStatement, payloadBytes)
	opts := []asynq.Option{
		asynq.TaskID(statementID),
		asynq.MaxRetry(3),
		asynq.Timeout(2 * time.Minute),
		asynq.Queue(QueueAnalysis),
		asynq.Retention(7 * 24 * time.Hour),
	}

	return task, opts, nil
}

// EnqueueAnalyzeStatement enqueues analysis of a stored statement.
// A statement that is already queued is not enqueued twice.
func (c *Client) EnqueueAnalyzeStatement(ctx context.Context, statementID string) (string, error) {
	task, opts, err := NewAnalyzeStatementTask(ctx, statementID)
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return statementID, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to enqueue analyze statement task: %w", err)
	}

	return info.ID, nil
}

// Close closes the client connection
func (c *Client) Close() error {
	return c.client.Close()
}
