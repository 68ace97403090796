package feedsim

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/crux/pkg/logger"
)

// Run executes the complete feed simulation: serve synthetic games, drive
// the engine's compute endpoint, then check the leaderboard view.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting crux feed simulation",
		logger.String("engineURL", config.EngineURL),
		logger.String("feedAddr", config.FeedAddr),
		logger.Int("games", config.NumGames),
		logger.Int("computes", config.Computes),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Generate synthetic games
	games, err := generateGames(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("game generation failed: %w", err)
	}

	// Step 2: Serve them as the upstream feed
	feedServer := NewFeedServer(games)
	feedServer.Start(ctx, config.FeedAddr)
	defer feedServer.Stop(ctx)

	// Step 3: Check engine health
	if err := checkEngineHealth(ctx, config); err != nil {
		return fmt.Errorf("engine health check failed: %w", err)
	}

	// Step 4: Drive the compute endpoint concurrently
	moments, err := driveComputes(ctx, config, feedServer.GameIDs(), stats)
	if err != nil {
		return fmt.Errorf("compute run failed: %w", err)
	}

	// Step 5: Give appends a moment to land
	logger.Get().Info(ctx, "waiting for appends to settle")
	time.Sleep(ProcessingDelay)

	// Step 6: Fetch the leaderboard
	leaderboard, err := getLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	// Step 7: Verify ordering
	if err := verifyResults(ctx, config, moments, leaderboard, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkEngineHealth verifies the engine is running.
func checkEngineHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking engine health")

	client := newHTTPClient(config.Timeout)
	url := config.EngineURL + "/healthz"

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to engine: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("engine health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "engine is healthy")
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, computesPerSecond float64

	if stats.ComputesIssued > 0 {
		successRate = float64(stats.ComputesSuccessful) / float64(stats.ComputesIssued) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		computesPerSecond = float64(stats.ComputesIssued) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("gamesGenerated", stats.GamesGenerated),
		logger.Int("computesIssued", stats.ComputesIssued),
		logger.Int("computesSuccessful", stats.ComputesSuccessful),
		logger.Int("computesFailed", stats.ComputesFailed),
		logger.Int("eliteMoments", stats.EliteMoments),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("computesPerSecond", computesPerSecond))
}
