package calc

import "github.com/okian/crux/internal/domain/model"

// Fatigue blend weights and bonuses.
const (
	pitchCountWeight = 0.7
	restWeight       = 0.3

	reliefRoleBonus      = 10.0
	lateInningFatigueAdd = 5.0
)

// pitchCountScore maps cumulative pitches this appearance to a stepped
// fatigue level.
func pitchCountScore(pitches int) float64 {
	switch {
	case pitches <= 25:
		return 10
	case pitches <= 50:
		return 30
	case pitches <= 75:
		return 55
	case pitches <= 90:
		return 75
	default:
		return 90
	}
}

// restScore penalizes short rest. Same-day reuse is penalized most; the
// penalty tapers to near zero after several days off.
func restScore(restDays int) float64 {
	switch {
	case restDays <= 0:
		return 80
	case restDays == 1:
		return 50
	case restDays == 2:
		return 30
	case restDays == 3:
		return 15
	default:
		return 5
	}
}

// Fatigue scores workload-driven decline for the acting pitcher on [0,100]:
// a 70/30 blend of the pitch-count curve and the rest penalty, plus flat
// bonuses for bullpen roles and late-inning work.
func Fatigue(s model.Situation, w model.Workload, _ model.Action) float64 {
	f := pitchCountWeight*pitchCountScore(w.PitchCount) + restWeight*restScore(w.RestDays)

	if w.Role.IsRelief() {
		f += reliefRoleBonus
	}
	if s.LateInning() {
		f += lateInningFatigueAdd
	}

	return clamp(f, 0, ScoreMax)
}
