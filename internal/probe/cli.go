package probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/glyco/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "probe_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	if err := logger.InitWithWriter(multiWriter); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the scoring probe tool.
func ShowHelp() {
	os.Stdout.WriteString(`Glyco Scoring Probe
===================

A concurrent tool for exercising the glyco risk-scoring service: generates
valid survey submissions, scores them through the JSON API, and verifies
every persisted record against the live prediction.

Usage:
  go run cmd/probe/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -submissions int
        Number of survey submissions to generate and score (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated submissions (default: probe_submissions_TIMESTAMP.json)
  -log string
        Log file for probe output (default: probe_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Probe with default settings
  go run cmd/probe/main.go

  # Probe with custom parameters
  go run cmd/probe/main.go -submissions 5000 -workers 16 -url http://localhost:8080
`)
}
