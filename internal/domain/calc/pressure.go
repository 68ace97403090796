package calc

import "github.com/okian/crux/internal/domain/model"

// Pressure increments. Count proximity is graded: a full count outweighs
// two strikes, which outweighs three balls.
const (
	pressureBase = 50.0

	timeoutBonus = 8.0
	playoffBonus = 15.0

	fullCountPressure  = 15.0
	twoStrikePressure  = 10.0
	threeBallPressure  = 5.0

	lateInningPressure = 10.0
	closeScorePressure = 10.0
)

// Pressure scores the psychological intensity of the moment on [0,100]:
// additive increments over a neutral base of 50.
func Pressure(s model.Situation, _ model.Workload, _ model.Action) float64 {
	p := pressureBase

	if s.TimeoutOnField {
		p += timeoutBonus
	}
	if s.Playoff {
		p += playoffBonus
	}

	switch {
	case s.FullCount():
		p += fullCountPressure
	case s.TwoStrikes():
		p += twoStrikePressure
	case s.ThreeBalls():
		p += threeBallPressure
	}

	if s.LateInning() {
		p += lateInningPressure
	}
	if s.CloseScore() {
		p += closeScorePressure
	}

	return clamp(p, 0, ScoreMax)
}
