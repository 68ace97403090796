package calc

import "github.com/okian/crux/internal/domain/model"

// Execution base and increments.
const (
	executionBase = 50.0

	highVelocityMPH   = 97.0
	highVelocityBonus = 10.0
	midVelocityMPH    = 93.0
	midVelocityBonus  = 5.0

	fullCountExecution = 10.0
	twoStrikeExecution = 6.0

	defaultPitchDifficulty = 5.0
)

// pitchDifficulty ranks pitch types by how hard they are to execute well.
var pitchDifficulty = map[string]float64{
	"knuckleball": 18,
	"slider":      15,
	"curveball":   12,
	"cutter":      10,
	"splitter":    9,
	"changeup":    8,
	"sinker":      6,
	"fastball":    5,
}

// Execution scores the technical difficulty of the required pitch on
// [0,100]: a fixed difficulty table by pitch type, a velocity bonus, and
// count proximity.
func Execution(s model.Situation, _ model.Workload, a model.Action) float64 {
	e := executionBase

	diff, ok := pitchDifficulty[a.Subtype]
	if !ok {
		diff = defaultPitchDifficulty
	}
	e += diff

	switch {
	case a.Velocity >= highVelocityMPH:
		e += highVelocityBonus
	case a.Velocity >= midVelocityMPH:
		e += midVelocityBonus
	}

	switch {
	case s.FullCount():
		e += fullCountExecution
	case s.TwoStrikes():
		e += twoStrikeExecution
	}

	return clamp(e, 0, ScoreMax)
}
