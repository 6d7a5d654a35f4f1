package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/zombar/statementanalyzer/internal/analyzer"
	"github.com/zombar/statementanalyzer/internal/database"
	"github.com/zombar/statementanalyzer/internal/models"
	"github.com/zombar/statementanalyzer/pkg/logging"
	"github.com/zombar/statementanalyzer/pkg/metrics"
	"github.com/zombar/statementanalyzer/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	// maxBodyBytes leaves room for the JSON envelope around a maximal text
	maxBodyBytes = analyzer.MaxTextBytes + 64<<10
)

// TaskQueue enqueues background analysis of stored statements
type TaskQueue interface {
	EnqueueAnalyzeStatement(ctx context.Context, statementID string) (string, error)
}

// Config tunes the HTTP layer
type Config struct {
	RealTimeRPS   float64
	RealTimeBurst int
}

// Handler handles HTTP requests
type Handler struct {
	db       *database.DB
	analyzer *analyzer.Analyzer
	queue    TaskQueue
	metrics  *metrics.BusinessMetrics
	limiter  *clientLimiter
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewHandler creates a new API handler with CORS support and metrics
func NewHandler(db *database.DB, a *analyzer.Analyzer, queue TaskQueue, m *metrics.BusinessMetrics, cfg Config) http.Handler {
	h := newHandler(db, a, queue, m, cfg)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(h.mux)
}

func newHandler(db *database.DB, a *analyzer.Analyzer, queue TaskQueue, m *metrics.BusinessMetrics, cfg Config) *Handler {
	h := &Handler{
		db:       db,
		analyzer: a,
		queue:    queue,
		metrics:  m,
		limiter:  newClientLimiter(cfg.RealTimeRPS, cfg.RealTimeBurst),
		logger:   slog.Default(),
		mux:      http.NewServeMux(),
	}
	h.setupRoutes()
	return h
}

// setupRoutes configures all API routes
func (h *Handler) setupRoutes() {
	h.mux.Handle("/metrics", promhttp.Handler())
	h.mux.HandleFunc("/health", h.handleHealth)
	h.mux.HandleFunc("/api/analyze", h.handleAnalyze)
	h.mux.HandleFunc("/api/realtime", h.limiter.middleware(h.handleRealTime))
	h.mux.HandleFunc("/api/statements", h.handleStatements)
	h.mux.HandleFunc("/api/statements/", h.handleStatementOperations)
	h.mux.HandleFunc("/api/search", h.handleSearchByFlag)
	h.mux.HandleFunc("/api/stats", h.handleStats)
}

// analyzeRequest is the body of /api/analyze and /api/realtime
type analyzeRequest struct {
	Text            string  `json:"text"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// createStatementRequest is the body of POST /api/statements
type createStatementRequest struct {
	CaseID                  string   `json:"case_id"`
	WitnessName             string   `json:"witness_name,omitempty"`
	Text                    string   `json:"statement_text"`
	AudioFilePath           string   `json:"audio_file_path,omitempty"`
	TranscriptionConfidence *float64 `json:"transcription_confidence,omitempty"`
	DurationSeconds         float64  `json:"duration_seconds"`
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleAnalyze scores a statement synchronously without storing it
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.Int("text.length", len(req.Text)),
		attribute.Float64("duration.seconds", req.DurationSeconds))

	start := time.Now()
	features, err := h.analyzer.Analyze(req.Text, req.DurationSeconds)
	elapsed := time.Since(start)
	if err != nil {
		h.metrics.ObserveDurationWithExemplar(r.Context(), h.metrics.AnalysisDuration, elapsed.Seconds(), "invalid")
		h.respondAnalyzerError(w, r, err)
		return
	}

	h.metrics.ObserveDurationWithExemplar(r.Context(), h.metrics.AnalysisDuration, elapsed.Seconds(), "success")
	h.metrics.AnalysesTotal.WithLabelValues(string(features.Credibility.ConfidenceLevel)).Inc()
	h.metrics.CredibilityScore.Observe(features.Credibility.OverallScore)

	tracing.SetSpanAttributes(r.Context(),
		attribute.Float64("credibility.overall", features.Credibility.OverallScore),
		attribute.String("credibility.confidence", string(features.Credibility.ConfidenceLevel)))

	respondJSON(w, features, http.StatusOK)
}

// handleRealTime classifies an in-progress transcript
func (h *Handler) handleRealTime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	status, err := h.analyzer.AnalyzeRealTime(req.Text, req.DurationSeconds)
	if err != nil {
		h.respondAnalyzerError(w, r, err)
		return
	}

	h.metrics.RealTimeStatusTotal.WithLabelValues(string(status.Status)).Inc()
	tracing.SetSpanAttributes(r.Context(),
		attribute.Int("text.length", len(req.Text)),
		attribute.String("realtime.status", string(status.Status)),
		attribute.Int("realtime.alerts", len(status.Alerts)))

	respondJSON(w, status, http.StatusOK)
}

// handleStatements handles creating and listing statements
func (h *Handler) handleStatements(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createStatement(w, r)
	case http.MethodGet:
		h.listStatements(w, r)
	default:
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// createStatement stores a statement and queues it for analysis
func (h *Handler) createStatement(w http.ResponseWriter, r *http.Request) {
	var req createStatementRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.CaseID) == "" {
		respondError(w, "case_id is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, "statement_text is required", http.StatusBadRequest)
		return
	}
	if c := req.TranscriptionConfidence; c != nil && (*c < 0 || *c > 1) {
		respondError(w, "transcription_confidence must be between 0 and 1", http.StatusBadRequest)
		return
	}
	if err := analyzer.Validate(req.Text, req.DurationSeconds); err != nil {
		h.respondAnalyzerError(w, r, err)
		return
	}

	now := time.Now().UTC()
	stmt := &models.Statement{
		ID:                      uuid.New().String(),
		CaseID:                  req.CaseID,
		WitnessName:             req.WitnessName,
		Text:                    req.Text,
		AudioFilePath:           req.AudioFilePath,
		TranscriptionConfidence: req.TranscriptionConfidence,
		DurationSeconds:         req.DurationSeconds,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.String("statement.id", stmt.ID),
		attribute.String("case.id", stmt.CaseID),
		attribute.Int("text.length", len(stmt.Text)))

	if err := h.db.SaveStatement(stmt); err != nil {
		h.respondInternal(w, r, fmt.Errorf("failed to save statement: %w", err))
		return
	}

	taskID, err := h.queue.EnqueueAnalyzeStatement(r.Context(), stmt.ID)
	if err != nil {
		h.respondInternal(w, r, fmt.Errorf("failed to enqueue analysis: %w", err))
		return
	}

	respondJSON(w, map[string]interface{}{
		"statement_id": stmt.ID,
		"task_id":      taskID,
		"status":       "queued",
		"message":      "Statement queued for analysis",
	}, http.StatusAccepted)
}

// listStatements lists statements with optional case filter and pagination
func (h *Handler) listStatements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := parseIntParam(q.Get("limit"), defaultListLimit)
	if err != nil || limit < 1 {
		respondError(w, "limit must be a positive integer", http.StatusBadRequest)
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset, err := parseIntParam(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		respondError(w, "offset must be a non-negative integer", http.StatusBadRequest)
		return
	}

	statements, err := h.db.ListStatements(q.Get("case_id"), limit, offset)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	respondJSON(w, statements, http.StatusOK)
}

// handleStatementOperations routes /api/statements/{id} and /api/statements/{id}/analysis
func (h *Handler) handleStatementOperations(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(r.URL.Path[len("/api/statements/"):], "/")
	parts := strings.Split(rest, "/")
	id := parts[0]

	if id == "" {
		respondError(w, "Statement ID is required", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.getStatement(w, r, id)
		case http.MethodDelete:
			h.deleteStatement(w, r, id)
		default:
			respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "analysis":
		if r.Method != http.MethodGet {
			respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.getStatementAnalysis(w, r, id)
	default:
		respondError(w, "Not found", http.StatusNotFound)
	}
}

func (h *Handler) getStatement(w http.ResponseWriter, r *http.Request, id string) {
	stmt, err := h.db.GetStatement(id)
	if err != nil {
		h.respondLookupError(w, r, err)
		return
	}
	respondJSON(w, stmt, http.StatusOK)
}

func (h *Handler) deleteStatement(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.db.DeleteStatement(id); err != nil {
		h.respondLookupError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getStatementAnalysis returns the latest analysis; 404 until the worker has run
func (h *Handler) getStatementAnalysis(w http.ResponseWriter, r *http.Request, id string) {
	analysis, err := h.db.GetLatestAnalysis(id)
	if err != nil {
		h.respondLookupError(w, r, err)
		return
	}
	respondJSON(w, analysis, http.StatusOK)
}

// handleSearchByFlag lists analyses that raised a given risk flag
func (h *Handler) handleSearchByFlag(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flag := r.URL.Query().Get("flag")
	if flag == "" {
		respondError(w, "flag parameter is required", http.StatusBadRequest)
		return
	}

	analyses, err := h.db.SearchAnalysesByFlag(flag)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	respondJSON(w, analyses, http.StatusOK)
}

// handleStats reports stored statement and analysis counts
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.db.Stats()
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	respondJSON(w, stats, http.StatusOK)
}

// decodeBody decodes a size-limited JSON body, answering 400 or 413 on failure
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) respondAnalyzerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, analyzer.ErrTextTooLarge):
		respondError(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, analyzer.ErrInvalidDuration):
		respondError(w, err.Error(), http.StatusBadRequest)
	default:
		h.respondInternal(w, r, err)
	}
}

func (h *Handler) respondLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	h.respondInternal(w, r, err)
}

func (h *Handler) respondInternal(w http.ResponseWriter, r *http.Request, err error) {
	logging.HTTPErrorLogger(h.logger, http.StatusInternalServerError, err, r)
	respondError(w, err.Error(), http.StatusInternalServerError)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, map[string]string{"error": message}, statusCode)
}

func parseIntParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
