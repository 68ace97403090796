package calc

import "github.com/okian/crux/internal/domain/model"

// Bio-proxy base and increments. These are observable stress indicators,
// not physiological measurements.
const (
	bioBase = 50.0

	slowTempoSeconds  = 26.0
	slowTempoBonus    = 15.0
	raisedTempoSeconds = 21.0
	raisedTempoBonus   = 8.0

	substitutionBonus = 10.0

	poorPerfThreshold = 0.9
	poorPerfBonus     = 15.0
	weakPerfThreshold = 1.1
	weakPerfBonus     = 8.0
)

// Bio scores behavioral stress indicators on [0,100]: a slowed pace
// between pitches, a recent substitution event on the field, and a
// degraded recent performance average.
func Bio(_ model.Situation, w model.Workload, _ model.Action) float64 {
	b := bioBase

	switch {
	case w.TempoAvgSeconds > slowTempoSeconds:
		b += slowTempoBonus
	case w.TempoAvgSeconds > raisedTempoSeconds:
		b += raisedTempoBonus
	}

	if w.RecentSubstitution {
		b += substitutionBonus
	}

	switch {
	case w.RecentPerfAvg < poorPerfThreshold:
		b += poorPerfBonus
	case w.RecentPerfAvg < weakPerfThreshold:
		b += weakPerfBonus
	}

	return clamp(b, 0, ScoreMax)
}
