package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zombar/statementanalyzer/internal/analyzer"
	"github.com/zombar/statementanalyzer/internal/database"
	"github.com/zombar/statementanalyzer/internal/models"
	"github.com/zombar/statementanalyzer/pkg/metrics"
)

const sampleStatement = "I am certain I saw him yesterday at the park."

// mockQueue records enqueued statements
type mockQueue struct {
	mu       sync.Mutex
	enqueued []string
	err      error
}

func (m *mockQueue) EnqueueAnalyzeStatement(ctx context.Context, statementID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.enqueued = append(m.enqueued, statementID)
	return "task-" + statementID, nil
}

func setupTestHandler(t *testing.T) (*Handler, *mockQueue) {
	t.Helper()
	return setupTestHandlerWithConfig(t, Config{RealTimeRPS: 1000, RealTimeBurst: 1000})
}

func setupTestHandlerWithConfig(t *testing.T, cfg Config) (*Handler, *mockQueue) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	q := &mockQueue{}
	m := metrics.NewBusinessMetrics("test", prometheus.NewRegistry())
	return newHandler(db, analyzer.New(), q, m, cfg), q
}

func doRequest(h *Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		json.NewEncoder(&buf).Encode(b)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.mux.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp["error"]
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := setupTestHandler(t)

	w := doRequest(h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["time"])
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := setupTestHandler(t)

	w := doRequest(h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestAnalyzeEndpoint(t *testing.T) {
	h, _ := setupTestHandler(t)

	w := doRequest(h, http.MethodPost, "/api/analyze", analyzeRequest{Text: sampleStatement, DurationSeconds: 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var features models.Features
	require.NoError(t, json.NewDecoder(w.Body).Decode(&features))
	assert.Equal(t, 10, features.Linguistic.WordCount)
	assert.Equal(t, 57.0, features.Credibility.OverallScore)
	assert.Equal(t, models.ConfidenceMedium, features.Credibility.ConfidenceLevel)
	assert.NotEmpty(t, features.Recommendations)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.AnalysesTotal.WithLabelValues("Medium")))
}

func TestAnalyzeEndpointEmptyText(t *testing.T) {
	h, _ := setupTestHandler(t)

	w := doRequest(h, http.MethodPost, "/api/analyze", analyzeRequest{Text: "", DurationSeconds: 0})
	require.Equal(t, http.StatusOK, w.Code)

	var features models.Features
	require.NoError(t, json.NewDecoder(w.Body).Decode(&features))
	assert.Equal(t, 0, features.Linguistic.WordCount)
	assert.Equal(t, 35.0, features.Credibility.OverallScore)
	assert.Equal(t, models.ConfidenceLow, features.Credibility.ConfidenceLevel)
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       interface{}
		wantStatus int
	}{
		{"wrong method", http.MethodGet, nil, http.StatusMethodNotAllowed},
		{"malformed json", http.MethodPost, "{", http.StatusBadRequest},
		{"negative duration", http.MethodPost, analyzeRequest{Text: "hello", DurationSeconds: -1}, http.StatusBadRequest},
		{"text too large", http.MethodPost, analyzeRequest{Text: strings.Repeat("a", analyzer.MaxTextBytes+1)}, http.StatusRequestEntityTooLarge},
		{"body too large", http.MethodPost, `{"text":"` + strings.Repeat("a", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge},
	}

	h, _ := setupTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h, tt.method, "/api/analyze", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotEmpty(t, decodeError(t, w))
		})
	}
}

func TestRealTimeEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantStatus models.Status
	}{
		{"empty transcript", "", models.StatusGood},
		{"contradiction", "I saw the car but it drove away quickly toward the station.", models.StatusWarning},
		{"many alerts", "But actually I was not there, no, wait.", models.StatusConcerning},
	}

	h, _ := setupTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h, http.MethodPost, "/api/realtime", analyzeRequest{Text: tt.text, DurationSeconds: 5})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var status models.RealTimeStatus
			require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.NotNil(t, status.Alerts)
		})
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.RealTimeStatusTotal.WithLabelValues("concerning")))
}

func TestRealTimeRateLimit(t *testing.T) {
	h, _ := setupTestHandlerWithConfig(t, Config{RealTimeRPS: 0.001, RealTimeBurst: 2})

	for i := 0; i < 2; i++ {
		w := doRequest(h, http.MethodPost, "/api/realtime", analyzeRequest{Text: "We waited."})
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(h, http.MethodPost, "/api/realtime", analyzeRequest{Text: "We waited."})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "Rate limit exceeded", decodeError(t, w))

	// analyze is not rate limited
	w = doRequest(h, http.MethodPost, "/api/analyze", analyzeRequest{Text: "We waited."})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateStatement(t *testing.T) {
	h, q := setupTestHandler(t)

	w := doRequest(h, http.MethodPost, "/api/statements", createStatementRequest{
		CaseID:          "case-42",
		WitnessName:     "A. Witness",
		Text:            sampleStatement,
		DurationSeconds: 10,
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	id, _ := resp["statement_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "queued", resp["status"])
	assert.Equal(t, "task-"+id, resp["task_id"])
	assert.Equal(t, []string{id}, q.enqueued)

	w = doRequest(h, http.MethodGet, "/api/statements/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stmt models.Statement
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stmt))
	assert.Equal(t, "case-42", stmt.CaseID)
	assert.Equal(t, sampleStatement, stmt.Text)
	assert.Equal(t, 10.0, stmt.DurationSeconds)
}

func TestCreateStatementValidation(t *testing.T) {
	badConfidence := 1.5
	tests := []struct {
		name string
		req  createStatementRequest
		want string
	}{
		{"missing case", createStatementRequest{Text: "text"}, "case_id is required"},
		{"missing text", createStatementRequest{CaseID: "c", Text: "   "}, "statement_text is required"},
		{"bad confidence", createStatementRequest{CaseID: "c", Text: "t", TranscriptionConfidence: &badConfidence}, "transcription_confidence must be between 0 and 1"},
		{"negative duration", createStatementRequest{CaseID: "c", Text: "t", DurationSeconds: -3}, "invalid duration"},
	}

	h, q := setupTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h, http.MethodPost, "/api/statements", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w), tt.want)
		})
	}
	assert.Empty(t, q.enqueued)
}

func TestCreateStatementEnqueueFailure(t *testing.T) {
	h, q := setupTestHandler(t)
	q.err = errors.New("redis unavailable")

	w := doRequest(h, http.MethodPost, "/api/statements", createStatementRequest{CaseID: "c", Text: sampleStatement})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeError(t, w), "redis unavailable")
}

func TestListStatements(t *testing.T) {
	h, _ := setupTestHandler(t)

	for i, caseID := range []string{"a", "a", "b"} {
		stmt := &models.Statement{
			ID:        string(rune('x' + i)),
			CaseID:    caseID,
			Text:      sampleStatement,
			CreatedAt: time.Date(2025, 1, 1, 0, i, 0, 0, time.UTC),
			UpdatedAt: time.Date(2025, 1, 1, 0, i, 0, 0, time.UTC),
		}
		require.NoError(t, h.db.SaveStatement(stmt))
	}

	tests := []struct {
		name      string
		query     string
		wantCount int
	}{
		{"all", "", 3},
		{"by case", "?case_id=a", 2},
		{"limit", "?limit=1", 1},
		{"offset", "?offset=2", 1},
		{"limit clamped", "?limit=100000", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h, http.MethodGet, "/api/statements"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var statements []models.Statement
			require.NoError(t, json.NewDecoder(w.Body).Decode(&statements))
			assert.Len(t, statements, tt.wantCount)
		})
	}

	for _, query := range []string{"?limit=0", "?limit=abc", "?offset=-1"} {
		w := doRequest(h, http.MethodGet, "/api/statements"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestStatementNotFound(t *testing.T) {
	h, _ := setupTestHandler(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/statements/missing"},
		{http.MethodDelete, "/api/statements/missing"},
		{http.MethodGet, "/api/statements/missing/analysis"},
		{http.MethodGet, "/api/statements/missing/unknown"},
	} {
		w := doRequest(h, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.method+" "+tc.path)
	}
}

func TestStatementAnalysisAndDelete(t *testing.T) {
	h, _ := setupTestHandler(t)

	now := time.Now().UTC()
	require.NoError(t, h.db.SaveStatement(&models.Statement{
		ID: "stmt-1", CaseID: "c", Text: sampleStatement, DurationSeconds: 10, CreatedAt: now, UpdatedAt: now,
	}))

	// queued but not analyzed yet
	w := doRequest(h, http.MethodGet, "/api/statements/stmt-1/analysis", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	features, err := h.analyzer.Analyze(sampleStatement, 10)
	require.NoError(t, err)
	require.NoError(t, h.db.SaveAnalysis(&models.Analysis{
		ID: "analysis-1", StatementID: "stmt-1", Features: features, CreatedAt: now,
	}))

	w = doRequest(h, http.MethodGet, "/api/statements/stmt-1/analysis", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var analysis models.Analysis
	require.NoError(t, json.NewDecoder(w.Body).Decode(&analysis))
	assert.Equal(t, "analysis-1", analysis.ID)
	assert.Equal(t, features.Credibility, analysis.Features.Credibility)

	w = doRequest(h, http.MethodGet, "/api/search?flag="+strings.ReplaceAll(features.RiskFactors.AllFlags()[0], " ", "+"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []models.Analysis
	require.NoError(t, json.NewDecoder(w.Body).Decode(&found))
	assert.Len(t, found, 1)

	w = doRequest(h, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats database.Stats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Statements)
	assert.Equal(t, 1, stats.Analyses)

	w = doRequest(h, http.MethodDelete, "/api/statements/stmt-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(h, http.MethodGet, "/api/statements/stmt-1/analysis", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchRequiresFlag(t *testing.T) {
	h, _ := setupTestHandler(t)

	w := doRequest(h, http.MethodGet, "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "flag parameter is required", decodeError(t, w))
}

func TestCORSHeaders(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "cors.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	handler := NewHandler(db, analyzer.New(), &mockQueue{}, metrics.NewBusinessMetrics("cors", prometheus.NewRegistry()), Config{RealTimeRPS: 1, RealTimeBurst: 1})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
