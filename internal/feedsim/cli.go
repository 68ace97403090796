package feedsim

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/crux/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "feedsim_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the feed simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`Crux Feed Simulator
===================

Serves synthetic in-progress games as an upstream feed and drives the
moment engine's compute endpoint against them.

Usage:
  go run cmd/feedsim/main.go [options]

Options:
  -engine string
        Base URL of the moment engine (default "http://localhost:9080")
  -addr string
        Listen address for the synthetic feed server (default ":9090")
  -games int
        Number of synthetic games to generate (default 100)
  -computes int
        Number of compute requests to issue (default 1000)
  -top int
        Number of leaderboard entries to fetch (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for run output (default: feedsim_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run cmd/feedsim/main.go

  # Heavier run against a local engine
  go run cmd/feedsim/main.go -games 500 -computes 10000 -workers 16

  # Point the engine at the simulator first:
  CRUX_FEED_URL=http://localhost:9090 go run cmd/main.go
`)
}
