package feed

import "github.com/okian/crux/internal/domain/model"

// GameState bundles everything the calculators need for one computation.
type GameState struct {
	Situation model.Situation
	Workload  model.Workload
	Action    model.Action
}

// Neutral defaults applied for fields the provider omits. The snapshot is
// untrusted and partial; defaults live here so the calculators never need
// null checks.
const (
	defaultInning   = 1
	defaultRestDays = 3
	defaultTempo    = 20.0
	defaultPerfAvg  = 1.2
	defaultPitch    = "fastball"
	defaultVelocity = 90.0
	defaultKind     = "pitch"
)

// snapshotDTO mirrors the provider's wire shape. Pointers distinguish
// absent fields from zero values.
type snapshotDTO struct {
	InProgress bool         `json:"in_progress"`
	Inning     *int         `json:"inning"`
	TopHalf    *bool        `json:"top_half"`
	Outs       *int         `json:"outs"`
	Bases      *basesDTO    `json:"bases"`
	ScoreDiff  *int         `json:"score_diff"`
	Balls      *int         `json:"balls"`
	Strikes    *int         `json:"strikes"`
	PitcherID  string       `json:"pitcher_id"`
	BatterID   string       `json:"batter_id"`
	Playoff    *bool        `json:"playoff"`
	Timeout    *bool        `json:"timeout_on_field"`
	Workload   *workloadDTO `json:"workload"`
	Action     *actionDTO   `json:"action"`
}

type basesDTO struct {
	First  bool `json:"first"`
	Second bool `json:"second"`
	Third  bool `json:"third"`
}

type workloadDTO struct {
	PitchCount    *int     `json:"pitch_count"`
	RestDays      *int     `json:"rest_days"`
	Role          string   `json:"role"`
	TempoAvg      *float64 `json:"tempo_avg_seconds"`
	RecentPerfAvg *float64 `json:"recent_perf_avg"`
	RecentSub     *bool    `json:"recent_substitution"`
}

type actionDTO struct {
	Kind     string   `json:"kind"`
	Subtype  string   `json:"subtype"`
	Velocity *float64 `json:"velocity_mph"`
}

// liveGamesDTO is the provider's live-games listing.
type liveGamesDTO struct {
	EventIDs []string `json:"event_ids"`
}

// toGameState maps the raw snapshot to the internal value objects,
// substituting the documented neutral default for every missing field.
func (d snapshotDTO) toGameState() GameState {
	s := model.Situation{
		Inning:    intOr(d.Inning, defaultInning),
		TopHalf:   boolOr(d.TopHalf, true),
		Outs:      intOr(d.Outs, 0),
		ScoreDiff: intOr(d.ScoreDiff, 0),
		Balls:     intOr(d.Balls, 0),
		Strikes:   intOr(d.Strikes, 0),
		PitcherID: d.PitcherID,
		BatterID:  d.BatterID,
		Playoff:   boolOr(d.Playoff, false),
	}
	if d.Bases != nil {
		s.Bases = model.Bases{First: d.Bases.First, Second: d.Bases.Second, Third: d.Bases.Third}
	}
	s.TimeoutOnField = boolOr(d.Timeout, false)

	w := model.Workload{
		PitchCount:      0,
		RestDays:        defaultRestDays,
		Role:            model.RoleStarter,
		TempoAvgSeconds: defaultTempo,
		RecentPerfAvg:   defaultPerfAvg,
	}
	if d.Workload != nil {
		w.PitchCount = intOr(d.Workload.PitchCount, 0)
		w.RestDays = intOr(d.Workload.RestDays, defaultRestDays)
		if r := model.Role(d.Workload.Role); r == model.RoleStarter || r.IsRelief() {
			w.Role = r
		}
		w.TempoAvgSeconds = floatOr(d.Workload.TempoAvg, defaultTempo)
		w.RecentPerfAvg = floatOr(d.Workload.RecentPerfAvg, defaultPerfAvg)
		w.RecentSubstitution = boolOr(d.Workload.RecentSub, false)
	}

	a := model.Action{Kind: defaultKind, Subtype: defaultPitch, Velocity: defaultVelocity}
	if d.Action != nil {
		if d.Action.Kind != "" {
			a.Kind = d.Action.Kind
		}
		if d.Action.Subtype != "" {
			a.Subtype = d.Action.Subtype
		}
		a.Velocity = floatOr(d.Action.Velocity, defaultVelocity)
	}

	return GameState{Situation: s, Workload: w, Action: a}
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
