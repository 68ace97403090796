package calc

import "github.com/okian/crux/internal/domain/model"

// Leverage multipliers. Each factor scales the base independently; the
// product is clamped so stacked factors cannot run away.
const (
	leverageBase = 1.0

	finalInningFactor = 1.5
	extraInningFactor = 1.8

	tieGameFactor = 1.4
	oneRunFactor  = 1.6

	basesLoadedFactor     = 2.0
	scoringPositionFactor = 1.5

	twoOutFactor   = 1.3
	fullCountFactor = 1.4
)

// Leverage scores how much the current situation could swing the game,
// on a [0,5] scale. Multiplicative: late innings, a tight score, traffic
// on the bases, two outs and a full count all compound.
func Leverage(s model.Situation, _ model.Workload, _ model.Action) float64 {
	lev := leverageBase

	switch {
	case s.ExtraInnings():
		lev *= extraInningFactor
	case s.FinalRegulation():
		lev *= finalInningFactor
	}

	switch {
	case s.ScoreDiff == 0:
		lev *= tieGameFactor
	case s.CloseScore():
		// One-run margin: there is a lead to protect or erase.
		lev *= oneRunFactor
	}

	switch {
	case s.Bases.Loaded():
		lev *= basesLoadedFactor
	case s.Bases.ScoringPosition():
		lev *= scoringPositionFactor
	}

	if s.Outs == 2 {
		lev *= twoOutFactor
	}
	if s.FullCount() {
		lev *= fullCountFactor
	}

	return clamp(lev, 0, LeverageMax)
}
