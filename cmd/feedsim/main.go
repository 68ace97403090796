package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/crux/internal/feedsim"
)

// Default configuration constants.
const (
	defaultNumGames   = 100
	defaultComputes   = 1000
	defaultTopN       = 50
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		engineURL = flag.String("engine", "http://localhost:9080", "Base URL of the moment engine")
		feedAddr  = flag.String("addr", ":9090", "Listen address for the synthetic feed server")
		numGames  = flag.Int("games", defaultNumGames, "Number of synthetic games to generate")
		computes  = flag.Int("computes", defaultComputes, "Number of compute requests to issue")
		topN      = flag.Int("top", defaultTopN, "Number of leaderboard entries to fetch")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile   = flag.String("log", "", "Log file for run output (default: feedsim_log_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		feedsim.ShowHelp()
		return
	}

	// Setup logging
	if err := feedsim.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create run configuration
	config := &feedsim.Config{
		EngineURL: *engineURL,
		FeedAddr:  *feedAddr,
		NumGames:  *numGames,
		Computes:  *computes,
		TopN:      *topN,
		Workers:   *workers,
		Timeout:   *timeout,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	// Run the simulation
	if err := feedsim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
