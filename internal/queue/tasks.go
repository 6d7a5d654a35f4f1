package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/zombar/statementanalyzer/internal/analyzer"
	"github.com/zombar/statementanalyzer/internal/database"
	"github.com/zombar/statementanalyzer/internal/models"
	"github.com/zombar/statementanalyzer/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// handleAnalyzeStatement loads a stored statement, scores it and saves the analysis
func (w *Worker) handleAnalyzeStatement(ctx context.Context, t *asynq.Task) error {
	var payload AnalyzeStatementPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %v: %w", err, asynq.SkipRetry)
	}

	statementID := payload.StatementID
	retryCount, _ := asynq.GetRetryCount(ctx)

	var queueWaitTime time.Duration
	if payload.EnqueuedAt > 0 {
		queueWaitTime = time.Since(time.Unix(0, payload.EnqueuedAt))
	}

	ctx = tracing.ContextWithRemoteParent(ctx, payload.TraceID, payload.SpanID)
	ctx, span := tracing.StartSpan(ctx, "asynq.task.process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("task.type", TypeAnalyzeStatement),
			attribute.String("statement.id", statementID),
			attribute.Int("retry_count", retryCount),
			attribute.Float64("queue.wait_time_seconds", queueWaitTime.Seconds()),
		),
	)
	defer span.End()

	w.logger.Info("analyzing statement",
		"statement_id", statementID,
		"retry_count", retryCount,
		"queue_wait_seconds", queueWaitTime.Seconds(),
		"trace_id", tracing.TraceIDFromContext(ctx),
	)

	stmt, err := w.db.GetStatement(statementID)
	if errors.Is(err, database.ErrNotFound) {
		span.SetStatus(codes.Error, "statement not found")
		w.logger.Warn("statement no longer exists, dropping task", "statement_id", statementID)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to load statement: %w", err)
	}

	start := time.Now()
	features, err := w.analyzer.Analyze(stmt.Text, stmt.DurationSeconds)
	elapsed := time.Since(start)
	if err != nil {
		w.metrics.ObserveDurationWithExemplar(ctx, w.metrics.AnalysisDuration, elapsed.Seconds(), "invalid")
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, analyzer.ErrInvalidDuration) || errors.Is(err, analyzer.ErrTextTooLarge) {
			return fmt.Errorf("statement %s rejected: %v: %w", statementID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to analyze statement: %w", err)
	}

	analysis := &models.Analysis{
		ID:               uuid.New().String(),
		StatementID:      statementID,
		Features:         features,
		ProcessingTimeMs: elapsed.Milliseconds(),
		CreatedAt:        time.Now().UTC(),
	}

	if err := w.db.SaveAnalysis(analysis); err != nil {
		w.metrics.ObserveDurationWithExemplar(ctx, w.metrics.AnalysisDuration, elapsed.Seconds(), "error")
		span.RecordError(err)
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	w.recordAnalysis(ctx, features, elapsed)

	span.SetAttributes(
		attribute.String("analysis.id", analysis.ID),
		attribute.Float64("credibility.overall", features.Credibility.OverallScore),
		attribute.String("credibility.confidence", string(features.Credibility.ConfidenceLevel)),
	)

	w.logger.Info("statement analysis completed",
		"statement_id", statementID,
		"analysis_id", analysis.ID,
		"overall_score", features.Credibility.OverallScore,
		"confidence_level", features.Credibility.ConfidenceLevel,
		"stress_level", features.RiskFactors.StressLevel,
		"flags", len(features.RiskFactors.AllFlags()),
		"processing_ms", analysis.ProcessingTimeMs,
	)

	return nil
}

func (w *Worker) recordAnalysis(ctx context.Context, features models.Features, elapsed time.Duration) {
	w.metrics.ObserveDurationWithExemplar(ctx, w.metrics.AnalysisDuration, elapsed.Seconds(), "success")
	w.metrics.AnalysesTotal.WithLabelValues(string(features.Credibility.ConfidenceLevel)).Inc()
	w.metrics.CredibilityScore.Observe(features.Credibility.OverallScore)

	risks := features.RiskFactors
	w.metrics.FlagsRaisedTotal.WithLabelValues(database.FlagKindDeception).Add(float64(len(risks.DeceptionIndicators)))
	w.metrics.FlagsRaisedTotal.WithLabelValues(database.FlagKindInconsistency).Add(float64(len(risks.InconsistencyFlags)))
	w.metrics.FlagsRaisedTotal.WithLabelValues(database.FlagKindCredibility).Add(float64(len(risks.CredibilityFlags)))
}
