// Package model contains domain models passed between layers.
package model

// Role classifies the acting pitcher's usage pattern.
type Role string

// Pitcher roles.
const (
	RoleStarter  Role = "starter"
	RoleReliever Role = "reliever"
	RoleCloser   Role = "closer"
)

// IsRelief reports whether the role is a high-workload bullpen role.
func (r Role) IsRelief() bool {
	return r == RoleReliever || r == RoleCloser
}

// Bases describes runner occupancy.
type Bases struct {
	First  bool `json:"first"`
	Second bool `json:"second"`
	Third  bool `json:"third"`
}

// Loaded reports whether every base is occupied.
func (b Bases) Loaded() bool {
	return b.First && b.Second && b.Third
}

// ScoringPosition reports whether any runner is on second or third.
func (b Bases) ScoringPosition() bool {
	return b.Second || b.Third
}

// Empty reports whether no base is occupied.
func (b Bases) Empty() bool {
	return !b.First && !b.Second && !b.Third
}

// Situation is an immutable snapshot of the game state at the instant a
// moment is scored. Built once per request at the adapter boundary; the
// calculators never see missing fields.
type Situation struct {
	Inning         int    `json:"inning"`
	TopHalf        bool   `json:"top_half"`
	Outs           int    `json:"outs"`
	Bases          Bases  `json:"bases"`
	ScoreDiff      int    `json:"score_diff"` // batting side minus fielding side
	Balls          int    `json:"balls"`
	Strikes        int    `json:"strikes"`
	PitcherID      string `json:"pitcher_id"`
	BatterID       string `json:"batter_id"`
	Playoff        bool   `json:"playoff"`
	TimeoutOnField bool   `json:"timeout_on_field"`
}

// FinalRegulation reports whether the game is in the last scheduled inning.
func (s Situation) FinalRegulation() bool {
	return s.Inning == regulationInnings
}

// ExtraInnings reports whether the game has gone past regulation.
func (s Situation) ExtraInnings() bool {
	return s.Inning > regulationInnings
}

// LateInning reports whether the game is in the 8th inning or later.
func (s Situation) LateInning() bool {
	return s.Inning >= lateInningStart
}

// FullCount reports a 3-2 count.
func (s Situation) FullCount() bool {
	return s.Balls == maxBalls && s.Strikes == maxStrikes
}

// TwoStrikes reports a two-strike count.
func (s Situation) TwoStrikes() bool {
	return s.Strikes == maxStrikes
}

// ThreeBalls reports a three-ball count.
func (s Situation) ThreeBalls() bool {
	return s.Balls == maxBalls
}

// CloseScore reports a margin of at most one run.
func (s Situation) CloseScore() bool {
	diff := s.ScoreDiff
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}

// Count state constants.
const (
	regulationInnings = 9
	lateInningStart   = 8
	maxBalls          = 3
	maxStrikes        = 2
)

// Workload holds the fatigue inputs for the acting pitcher. Sourced from
// the upstream feed alongside the situation; never persisted on its own.
type Workload struct {
	PitchCount         int     `json:"pitch_count"`
	RestDays           int     `json:"rest_days"`
	Role               Role    `json:"role"`
	TempoAvgSeconds    float64 `json:"tempo_avg_seconds"`
	RecentPerfAvg      float64 `json:"recent_perf_avg"` // outs per baserunner allowed; lower is worse
	RecentSubstitution bool    `json:"recent_substitution"`
}

// Action describes the pending pitch being scored.
type Action struct {
	Kind     string  `json:"kind"`    // e.g. "pitch"
	Subtype  string  `json:"subtype"` // pitch type, e.g. "slider"
	Velocity float64 `json:"velocity_mph"`
}
