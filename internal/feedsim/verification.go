package feedsim

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// verifyResults checks the leaderboard against the moments the driver saw.
func verifyResults(ctx context.Context, config *Config, moments, leaderboard []Moment, stats *Stats) error {
	log.Println("verifying results...")

	if len(moments) == 0 {
		return fmt.Errorf("no computed moments to verify")
	}

	// Sort computed moments by composite (descending)
	sorted := make([]Moment, len(moments))
	copy(sorted, moments)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Composite > sorted[j].Composite
	})

	if len(leaderboard) > 0 {
		if err := verifyLeaderboardOrdering(sorted, leaderboard); err != nil {
			log.Printf("leaderboard consistency warning: %v", err)
		} else {
			log.Println("leaderboard ordering verified")
		}
	}

	displayTopMoments(sorted, leaderboard, config.Verbose)

	log.Println("result verification completed")
	return nil
}

// verifyLeaderboardOrdering checks the leaderboard is sorted and its top
// entry matches the best composite the driver observed.
func verifyLeaderboardOrdering(sorted, leaderboard []Moment) error {
	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	for i := 1; i < len(leaderboard); i++ {
		if leaderboard[i].Composite > leaderboard[i-1].Composite {
			return fmt.Errorf("leaderboard not sorted: entry %d outscores entry %d", i, i-1)
		}
	}

	// Caching can make the driver's view slightly stale, so compare scores
	// rather than ids.
	if leaderboard[0].Composite < sorted[0].Composite {
		return fmt.Errorf("top leaderboard composite (%.2f) below best observed (%.2f)",
			leaderboard[0].Composite, sorted[0].Composite)
	}

	return nil
}

// displayTopMoments shows the hardest moments from both views.
func displayTopMoments(sorted, leaderboard []Moment, verbose bool) {
	topN := 10
	if len(sorted) < topN {
		topN = len(sorted)
	}

	log.Printf("top %d observed moments:", topN)
	for i := 0; i < topN; i++ {
		m := sorted[i]
		log.Printf("   %d. %s [%s] composite %.2f", i+1, m.EventID, m.Band, m.Composite)
	}

	if len(leaderboard) > 0 {
		boardTopN := topN
		if len(leaderboard) < boardTopN {
			boardTopN = len(leaderboard)
		}
		log.Printf("top %d leaderboard moments:", boardTopN)
		for i := 0; i < boardTopN; i++ {
			m := leaderboard[i]
			log.Printf("   %d. %s [%s] composite %.2f", i+1, m.EventID, m.Band, m.Composite)
		}
	}

	if verbose && len(sorted) > 0 {
		log.Printf("composite statistics: avg %.2f, max %.2f, min %.2f",
			averageComposite(sorted), sorted[0].Composite, sorted[len(sorted)-1].Composite)
	}
}

// averageComposite calculates the mean composite across moments.
func averageComposite(moments []Moment) float64 {
	if len(moments) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range moments {
		sum += m.Composite
	}
	return sum / float64(len(moments))
}
