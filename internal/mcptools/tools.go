// Package mcptools exposes the statement analyzer as MCP tools served over stdio.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/zombar/statementanalyzer/internal/analyzer"
)

// NewServer builds an MCP server with every analyzer tool registered.
func NewServer(a *analyzer.Analyzer, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"statementanalyzer",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	analyze := NewAnalyzeStatementTool(a)
	s.AddTool(analyze.Definition(), analyze.Handle)

	realtime := NewRealTimeStatusTool(a)
	s.AddTool(realtime.Definition(), realtime.Handle)

	return s
}

// AnalyzeStatementTool runs the full credibility analysis on a statement.
type AnalyzeStatementTool struct {
	analyzer *analyzer.Analyzer
}

// NewAnalyzeStatementTool creates an AnalyzeStatementTool.
func NewAnalyzeStatementTool(a *analyzer.Analyzer) *AnalyzeStatementTool {
	return &AnalyzeStatementTool{analyzer: a}
}

// Definition returns the MCP tool definition.
func (t *AnalyzeStatementTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_statement",
		mcp.WithDescription(
			"Analyze a witness statement transcript and return credibility scores, "+
				"psychological indicators, risk flags and interviewer recommendations. "+
				"Scores are heuristic and deterministic; they are not a lie detector.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The statement transcript to analyze"),
		),
		mcp.WithNumber("duration_seconds",
			mcp.Description("Length of the recording in seconds. Omit or pass 0 when unknown."),
		),
	)
}

// Handle processes the analyze_statement tool call.
func (t *AnalyzeStatementTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}
	duration := req.GetFloat("duration_seconds", 0)

	features, err := t.analyzer.Analyze(text, duration)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body, err := json.MarshalIndent(features, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding analysis: %w", err)
	}

	var b strings.Builder
	b.WriteString(analyzer.Summary(features))
	b.WriteString("\n```json\n")
	b.Write(body)
	b.WriteString("\n```\n")

	return mcp.NewToolResultText(b.String()), nil
}

// RealTimeStatusTool returns the live monitoring status for a partial transcript.
type RealTimeStatusTool struct {
	analyzer *analyzer.Analyzer
}

// NewRealTimeStatusTool creates a RealTimeStatusTool.
func NewRealTimeStatusTool(a *analyzer.Analyzer) *RealTimeStatusTool {
	return &RealTimeStatusTool{analyzer: a}
}

// Definition returns the MCP tool definition.
func (t *RealTimeStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("realtime_status",
		mcp.WithDescription(
			"Classify a transcript captured so far as normal, warning or concerning "+
				"and list the alerts that triggered the status. Intended for use while an interview is in progress.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The transcript captured so far"),
		),
		mcp.WithNumber("duration_seconds",
			mcp.Description("Elapsed interview time in seconds"),
		),
	)
}

// Handle processes the realtime_status tool call.
func (t *RealTimeStatusTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	duration := req.GetFloat("duration_seconds", 0)

	status, err := t.analyzer.AnalyzeRealTime(text, duration)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding status: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n", status.Status)
	fmt.Fprintf(&b, "Coherence %.2f | detail %.2f | stress %.2f\n",
		status.Metrics.Coherence, status.Metrics.Detail, status.Metrics.Stress)
	if len(status.Alerts) == 0 {
		b.WriteString("No alerts.\n")
	}
	for _, alert := range status.Alerts {
		fmt.Fprintf(&b, "  - %s\n", alert)
	}
	b.WriteString("\n```json\n")
	b.Write(body)
	b.WriteString("\n```\n")

	return mcp.NewToolResultText(b.String()), nil
}
