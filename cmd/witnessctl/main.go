// witnessctl analyzes witness statement transcripts from the command line
// and serves the analyzer as an MCP server.
//
// Usage:
//
//	witnessctl analyze statement.txt -duration 95
//	witnessctl realtime partial.txt -duration 30
//	witnessctl mcp
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/zombar/statementanalyzer/internal/analyzer"
	"github.com/zombar/statementanalyzer/internal/ingest"
	"github.com/zombar/statementanalyzer/internal/mcptools"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "1.0.0"

var errUsage = errors.New("usage error")

func main() {
	// stdout carries reports and the MCP stdio transport, so logs go to stderr
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = runAnalyze(os.Args[2:], os.Stdout)
	case "realtime":
		err = runRealTime(os.Args[2:], os.Stdout)
	case "mcp", "serve":
		err = server.ServeStdio(mcptools.NewServer(analyzer.New(), version))
	case "--help", "-h", "help":
		printUsage(os.Stdout)
		return
	case "--version", "-v", "version":
		fmt.Printf("witnessctl v%s\n", version)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		if !errors.Is(err, errUsage) {
			logger.Error("command failed", "command", os.Args[1], "error", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

type commandOptions struct {
	path     string
	duration float64
	asJSON   bool
}

// parseCommand accepts the file argument before or after the flags
func parseCommand(name string, args []string) (commandOptions, error) {
	var opts commandOptions
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Float64Var(&opts.duration, "duration", 0, "recording length in seconds")
	fs.BoolVar(&opts.asJSON, "json", false, "print the result as JSON")

	var positional []string
	for len(args) > 0 {
		if err := fs.Parse(args); err != nil {
			return opts, fmt.Errorf("%w: %v", errUsage, err)
		}
		args = fs.Args()
		if len(args) > 0 {
			positional = append(positional, args[0])
			args = args[1:]
		}
	}

	if len(positional) != 1 {
		return opts, fmt.Errorf("%w: %s expects exactly one transcript file", errUsage, name)
	}
	opts.path = positional[0]
	return opts, nil
}

func runAnalyze(args []string, out io.Writer) error {
	opts, err := parseCommand("analyze", args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	parsed, err := ingest.ParseFile(opts.path)
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}

	features, err := analyzer.New().Analyze(parsed.Text, opts.duration)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", parsed.Title, err)
	}

	if opts.asJSON {
		return writeJSON(out, features)
	}
	fmt.Fprintf(out, "Statement: %s\n", parsed.Title)
	_, err = io.WriteString(out, analyzer.Summary(features))
	return err
}

func runRealTime(args []string, out io.Writer) error {
	opts, err := parseCommand("realtime", args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	parsed, err := ingest.ParseFile(opts.path)
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}

	status, err := analyzer.New().AnalyzeRealTime(parsed.Text, opts.duration)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", parsed.Title, err)
	}

	if opts.asJSON {
		return writeJSON(out, status)
	}
	fmt.Fprintf(out, "Status: %s\n", status.Status)
	for _, alert := range status.Alerts {
		fmt.Fprintf(out, "  - %s\n", alert)
	}
	return nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `witnessctl v%s - witness statement credibility analyzer

Usage:
  witnessctl analyze <file> [-duration seconds] [-json]
        Full credibility analysis of a .txt, .docx or .pdf transcript
  witnessctl realtime <file> [-duration seconds] [-json]
        Live monitoring status (normal, warning, concerning)
  witnessctl mcp
        Serve analyze_statement and realtime_status as MCP tools over stdio
  witnessctl version

Scores are heuristic indicators for interviewers, not a lie detector.
`, version)
}
