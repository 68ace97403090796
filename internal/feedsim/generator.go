package feedsim

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"
	"github.com/okian/crux/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	scenarioDivisor    = 8
)

// Constants for scenario cases.
const (
	caseEarlyBlowout    = 0
	caseMidGameNeutral  = 1
	caseLateCloseGame   = 2
	caseNinthInningJam  = 3
	caseExtraInnings    = 4
	caseTiredReliever   = 5
	casePlayoffPressure = 6
	caseFreshStarter    = 7
)

var pitchTypes = []string{"fastball", "slider", "curveball", "changeup", "sinker", "cutter", "splitter", "knuckleball"}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomInt(max int64) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(max))
	return int(n.Int64())
}

// generateGames creates the configured number of synthetic in-progress games.
func generateGames(ctx context.Context, config *Config, stats *Stats) (map[string]Snapshot, error) {
	logger.Get().Info(ctx, "generating synthetic games", logger.Int("numGames", config.NumGames))

	games := make(map[string]Snapshot, config.NumGames)
	for i := 0; i < config.NumGames; i++ {
		id := "game_" + strconv.Itoa(i) + "_" + strconv.Itoa(randomInt(10000))
		games[id] = generateSingleGame()
	}

	stats.GamesGenerated = len(games)
	logger.Get().Info(ctx, "generated games successfully", logger.Int("count", len(games)))
	return games, nil
}

// generateSingleGame creates one game snapshot with a varied scenario mix so
// the resulting composites spread across all four bands.
func generateSingleGame() Snapshot {
	s := Snapshot{
		InProgress: true,
		PitcherID:  uuid.New().String(),
		BatterID:   uuid.New().String(),
		Action: Action{
			Kind:     "pitch",
			Subtype:  pitchTypes[randomInt(int64(len(pitchTypes)))],
			Velocity: 85 + getRandomFloat()*15,
		},
	}

	switch randomInt(scenarioDivisor) {
	case caseEarlyBlowout:
		s.Inning = 1 + randomInt(3)
		s.ScoreDiff = 5 + randomInt(5)
		s.Workload = Workload{PitchCount: 10 + randomInt(20), RestDays: 4, Role: "starter", TempoAvgSeconds: 18, RecentPerfAvg: 1.2}
	case caseMidGameNeutral:
		s.Inning = 4 + randomInt(3)
		s.Outs = randomInt(3)
		s.ScoreDiff = 2 + randomInt(2)
		s.Workload = Workload{PitchCount: 40 + randomInt(25), RestDays: 3, Role: "starter", TempoAvgSeconds: 20, RecentPerfAvg: 1.1}
	case caseLateCloseGame:
		s.Inning = 8
		s.Outs = randomInt(3)
		s.ScoreDiff = randomInt(2)
		s.Bases = Bases{Second: true}
		s.Balls = 1 + randomInt(2)
		s.Strikes = 2
		s.Workload = Workload{PitchCount: 70 + randomInt(15), RestDays: 2, Role: "starter", TempoAvgSeconds: 23, RecentPerfAvg: 1.0}
	case caseNinthInningJam:
		s.Inning = 9
		s.Outs = 2
		s.ScoreDiff = 1
		s.Bases = Bases{First: true, Second: true, Third: true}
		s.Balls = 3
		s.Strikes = 2
		s.Workload = Workload{PitchCount: 20 + randomInt(15), RestDays: 1, Role: "closer", TempoAvgSeconds: 26, RecentPerfAvg: 0.9}
	case caseExtraInnings:
		s.Inning = 10 + randomInt(3)
		s.Outs = 1 + randomInt(2)
		s.ScoreDiff = 0
		s.Bases = Bases{Second: true, Third: true}
		s.Workload = Workload{PitchCount: 25 + randomInt(20), RestDays: 0, Role: "reliever", TempoAvgSeconds: 27, RecentPerfAvg: 0.85, RecentSub: true}
	case caseTiredReliever:
		s.Inning = 7 + randomInt(2)
		s.Outs = randomInt(3)
		s.ScoreDiff = 1 + randomInt(2)
		s.Bases = Bases{First: true}
		s.Workload = Workload{PitchCount: 90 + randomInt(20), RestDays: 0, Role: "reliever", TempoAvgSeconds: 28, RecentPerfAvg: 0.8}
	case casePlayoffPressure:
		s.Inning = 6 + randomInt(4)
		s.Outs = randomInt(3)
		s.ScoreDiff = randomInt(3)
		s.Playoff = true
		s.Timeout = randomInt(4) == 0
		s.Balls = randomInt(4)
		s.Strikes = randomInt(3)
		s.Workload = Workload{PitchCount: 55 + randomInt(30), RestDays: 2, Role: "starter", TempoAvgSeconds: 24, RecentPerfAvg: 0.95}
	default: // caseFreshStarter
		s.Inning = 1 + randomInt(2)
		s.ScoreDiff = randomInt(3)
		s.Workload = Workload{PitchCount: randomInt(15), RestDays: 5, Role: "starter", TempoAvgSeconds: 17, RecentPerfAvg: 1.3}
	}

	return s
}
