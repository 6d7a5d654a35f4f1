package mcptools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombar/statementanalyzer/internal/analyzer"
	"github.com/zombar/statementanalyzer/internal/models"
)

const sampleStatement = "I am certain I saw him yesterday at the park."

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// jsonBlock returns the fenced JSON payload appended to a tool result
func jsonBlock(t *testing.T, text string) []byte {
	t.Helper()
	start := strings.Index(text, "```json\n")
	require.NotEqual(t, -1, start, "missing json block in %q", text)
	rest := text[start+len("```json\n"):]
	end := strings.Index(rest, "\n```")
	require.NotEqual(t, -1, end)
	return []byte(rest[:end])
}

func TestAnalyzeStatementTool_Definition(t *testing.T) {
	def := NewAnalyzeStatementTool(analyzer.New()).Definition()

	assert.Equal(t, "analyze_statement", def.Name)
	assert.Contains(t, def.InputSchema.Properties, "text")
	assert.Contains(t, def.InputSchema.Properties, "duration_seconds")
	assert.Equal(t, []string{"text"}, def.InputSchema.Required)
}

func TestAnalyzeStatementTool_Handle(t *testing.T) {
	tool := NewAnalyzeStatementTool(analyzer.New())

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"text":             sampleStatement,
		"duration_seconds": 10.0,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(result)
	assert.Contains(t, text, "Credibility: 57/100 (Medium confidence)")
	assert.Contains(t, text, "Excessive hesitation markers")

	var features models.Features
	require.NoError(t, json.Unmarshal(jsonBlock(t, text), &features))
	assert.Equal(t, 57.0, features.Credibility.OverallScore)
	assert.Equal(t, 10, features.Linguistic.WordCount)
}

func TestAnalyzeStatementTool_Errors(t *testing.T) {
	tool := NewAnalyzeStatementTool(analyzer.New())

	tests := []struct {
		name    string
		args    map[string]interface{}
		message string
	}{
		{"missing text", map[string]interface{}{}, "'text' is required"},
		{"blank text", map[string]interface{}{"text": "   "}, "'text' is required"},
		{"negative duration", map[string]interface{}{"text": sampleStatement, "duration_seconds": -1.0}, "invalid duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Handle(context.Background(), makeReq(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(result), tt.message)
		})
	}
}

func TestRealTimeStatusTool_Handle(t *testing.T) {
	tool := NewRealTimeStatusTool(analyzer.New())

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"text":             "But actually I was not there, no, wait.",
		"duration_seconds": 3.0,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(result)
	assert.True(t, strings.HasPrefix(text, "Status: concerning\n"), text)

	var status models.RealTimeStatus
	require.NoError(t, json.Unmarshal(jsonBlock(t, text), &status))
	assert.Equal(t, models.Status("concerning"), status.Status)
	assert.Len(t, status.Alerts, 3)
}

func TestRealTimeStatusTool_EmptyText(t *testing.T) {
	tool := NewRealTimeStatusTool(analyzer.New())

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"text": ""}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(result), "Status: ")
}

func TestRealTimeStatusTool_InvalidDuration(t *testing.T) {
	tool := NewRealTimeStatusTool(analyzer.New())

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"text":             sampleStatement,
		"duration_seconds": -5.0,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestNewServer(t *testing.T) {
	s := NewServer(analyzer.New(), "test")
	require.NotNil(t, s)
}
