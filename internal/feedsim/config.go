package feedsim

import "time"

// Config holds configuration for the feed simulation run
type Config struct {
	EngineURL string        // Base URL of the moment engine
	FeedAddr  string        // Listen address for the synthetic feed server
	NumGames  int           // Number of synthetic games to generate
	Computes  int           // Number of compute requests to issue
	TopN      int           // Number of leaderboard entries to fetch
	Workers   int           // Number of concurrent workers
	Timeout   time.Duration // HTTP request timeout
	LogFile   string        // Log file for run output
	Verbose   bool          // Enable verbose logging
}

// Snapshot is the provider-side game state served by the synthetic feed.
type Snapshot struct {
	InProgress bool     `json:"in_progress"`
	Inning     int      `json:"inning"`
	TopHalf    bool     `json:"top_half"`
	Outs       int      `json:"outs"`
	Bases      Bases    `json:"bases"`
	ScoreDiff  int      `json:"score_diff"`
	Balls      int      `json:"balls"`
	Strikes    int      `json:"strikes"`
	PitcherID  string   `json:"pitcher_id"`
	BatterID   string   `json:"batter_id"`
	Playoff    bool     `json:"playoff"`
	Timeout    bool     `json:"timeout_on_field"`
	Workload   Workload `json:"workload"`
	Action     Action   `json:"action"`
}

// Bases mirrors the provider's runner occupancy shape.
type Bases struct {
	First  bool `json:"first"`
	Second bool `json:"second"`
	Third  bool `json:"third"`
}

// Workload mirrors the provider's pitcher workload shape.
type Workload struct {
	PitchCount      int     `json:"pitch_count"`
	RestDays        int     `json:"rest_days"`
	Role            string  `json:"role"`
	TempoAvgSeconds float64 `json:"tempo_avg_seconds"`
	RecentPerfAvg   float64 `json:"recent_perf_avg"`
	RecentSub       bool    `json:"recent_substitution"`
}

// Action mirrors the provider's action shape.
type Action struct {
	Kind     string  `json:"kind"`
	Subtype  string  `json:"subtype"`
	Velocity float64 `json:"velocity_mph"`
}

// Moment is the engine's computed moment as seen by the driver.
type Moment struct {
	ID        string  `json:"id"`
	EventID   string  `json:"event_id"`
	SubjectID string  `json:"subject_id"`
	Composite float64 `json:"composite"`
	Band      string  `json:"band"`
}

// Stats holds run statistics
type Stats struct {
	GamesGenerated     int
	ComputesIssued     int
	ComputesSuccessful int
	ComputesFailed     int
	EliteMoments       int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
