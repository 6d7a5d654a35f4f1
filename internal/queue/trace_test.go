package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TestTraceFlowEnqueueToWorker checks that the worker span joins the trace of
// the request that enqueued the task
func TestTraceFlowEnqueueToWorker(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	w := setupTestWorker(t)
	saveStatement(t, w.db, "stmt-trace", "I saw the car but it drove away quickly toward the station.", 6)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "POST /api/statements",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	task, _, err := NewAnalyzeStatementTask(ctx, "stmt-trace")
	require.NoError(t, err)
	parent.End()

	// the worker runs with a fresh context, as asynq would
	require.NoError(t, w.handleAnalyzeStatement(context.Background(), task))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	var workerSpan sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() == "asynq.task.process" {
			workerSpan = s
		}
	}
	require.NotNil(t, workerSpan)

	assert.Equal(t, trace.SpanKindConsumer, workerSpan.SpanKind())
	assert.Equal(t, parent.SpanContext().TraceID(), workerSpan.SpanContext().TraceID())
	assert.Equal(t, parent.SpanContext().SpanID(), workerSpan.Parent().SpanID())
	assert.True(t, workerSpan.Parent().IsRemote())

	keys := map[string]bool{}
	for _, attr := range workerSpan.Attributes() {
		keys[string(attr.Key)] = true
	}
	for _, key := range []string{"task.type", "statement.id", "analysis.id", "credibility.overall"} {
		assert.True(t, keys[key], "missing attribute %s", key)
	}
}

func TestTraceFlowWithoutParent(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	w := setupTestWorker(t)
	saveStatement(t, w.db, "stmt-root", "We left at noon.", 2)

	require.NoError(t, w.handleAnalyzeStatement(context.Background(), newTask(t, "stmt-root")))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.False(t, spans[0].Parent().IsValid())
}
